// Package spectate fans out live session snapshots to read-only viewers.
// Publishing never blocks the game loop: slow subscribers lose old frames.
package spectate

import (
	"crypto/rand"
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/vovakirdan/tui-platformer/internal/sim"
)

// SessionID identifies a live play session.
type SessionID string

// ErrUnknownSession is returned when subscribing to a session that is not live.
var ErrUnknownSession = errors.New("spectate: unknown session")

// Info describes a live session for listings.
type Info struct {
	ID          SessionID `json:"id"`
	MapID       string    `json:"map_id"`
	Player      string    `json:"player"`
	StartedAt   time.Time `json:"started_at"`
	Tick        uint64    `json:"tick"`
	Health      float64   `json:"health"`
	Status      string    `json:"status"`
	Subscribers int       `json:"subscribers"`
}

// Subscriber receives encoded frames for one session.
type Subscriber struct {
	frames   chan []byte
	done     chan struct{}
	doneOnce sync.Once
}

func newSubscriber(buffer int) *Subscriber {
	if buffer < 1 {
		buffer = 16
	}
	return &Subscriber{
		frames: make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
}

// Frames returns the channel of JSON-encoded frames.
func (s *Subscriber) Frames() <-chan []byte {
	return s.frames
}

// Done closes when the session ends or the subscriber is removed.
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

// send delivers a frame; if the buffer is full the oldest frame is dropped.
func (s *Subscriber) send(b []byte) {
	select {
	case <-s.done:
		return
	default:
	}

	select {
	case s.frames <- b:
	default:
		select {
		case <-s.frames:
		default:
		}
		select {
		case s.frames <- b:
		default:
		}
	}
}

func (s *Subscriber) close() {
	s.doneOnce.Do(func() {
		close(s.done)
	})
}

type session struct {
	info Info
	last []byte
	subs map[*Subscriber]struct{}
}

// Hub tracks live sessions and their subscribers. Safe for concurrent use.
type Hub struct {
	mu       sync.RWMutex
	sessions map[SessionID]*session

	// OnSubscribersChanged is called with the total subscriber count, if set.
	OnSubscribersChanged func(total int)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{sessions: make(map[SessionID]*session)}
}

// Register adds a live session and returns its id.
func (h *Hub) Register(mapID, player string) SessionID {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.uniqueID()
	h.sessions[id] = &session{
		info: Info{ID: id, MapID: mapID, Player: player, StartedAt: time.Now(), Status: sim.StatusRunning.String()},
		subs: make(map[*Subscriber]struct{}),
	}
	return id
}

// Unregister removes a session and closes its subscribers.
func (h *Hub) Unregister(id SessionID) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if ok {
		delete(h.sessions, id)
		for sub := range s.subs {
			sub.close()
		}
	}
	total := h.subscriberCountLocked()
	h.mu.Unlock()

	if ok {
		h.notify(total)
	}
}

// Publish encodes a snapshot and fans it out. It never blocks on subscribers.
// Each session is expected to have a single publisher.
func (h *Hub) Publish(id SessionID, snap sim.Snapshot) error {
	h.mu.RLock()
	s, ok := h.sessions[id]
	var mapID string
	if ok {
		mapID = s.info.MapID
	}
	h.mu.RUnlock()
	if !ok {
		return ErrUnknownSession
	}

	data, err := json.Marshal(NewFrame(id, mapID, snap))
	if err != nil {
		return fmt.Errorf("spectate: encoding frame: %w", err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	// The session may have been unregistered while encoding.
	if h.sessions[id] != s {
		return ErrUnknownSession
	}
	s.info.Tick = snap.Tick
	s.info.Health = snap.Player.Health
	s.info.Status = snap.Status.String()
	s.last = data
	for sub := range s.subs {
		sub.send(data)
	}
	return nil
}

// Subscribe attaches a viewer to a session. The latest frame, if any, is
// delivered immediately. Call the returned cancel func when done.
func (h *Hub) Subscribe(id SessionID, buffer int) (*Subscriber, func(), error) {
	h.mu.Lock()
	s, ok := h.sessions[id]
	if !ok {
		h.mu.Unlock()
		return nil, nil, ErrUnknownSession
	}
	sub := newSubscriber(buffer)
	s.subs[sub] = struct{}{}
	if s.last != nil {
		sub.send(s.last)
	}
	total := h.subscriberCountLocked()
	h.mu.Unlock()
	h.notify(total)

	cancel := func() {
		h.mu.Lock()
		removed := false
		if s, ok := h.sessions[id]; ok {
			if _, ok := s.subs[sub]; ok {
				delete(s.subs, sub)
				removed = true
			}
		}
		total := h.subscriberCountLocked()
		h.mu.Unlock()
		sub.close()
		if removed {
			h.notify(total)
		}
	}
	return sub, cancel, nil
}

// Sessions lists live sessions, oldest first.
func (h *Hub) Sessions() []Info {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]Info, 0, len(h.sessions))
	for _, s := range h.sessions {
		info := s.info
		info.Subscribers = len(s.subs)
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Get returns one session's info.
func (h *Hub) Get(id SessionID) (Info, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	s, ok := h.sessions[id]
	if !ok {
		return Info{}, false
	}
	info := s.info
	info.Subscribers = len(s.subs)
	return info, true
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) subscriberCountLocked() int {
	n := 0
	for _, s := range h.sessions {
		n += len(s.subs)
	}
	return n
}

func (h *Hub) notify(total int) {
	if h.OnSubscribersChanged != nil {
		h.OnSubscribersChanged(total)
	}
}

func (h *Hub) uniqueID() SessionID {
	for {
		id := NewSessionID()
		if _, exists := h.sessions[id]; !exists {
			return id
		}
	}
}

// NewSessionID creates an 8-character uppercase alphanumeric id.
func NewSessionID() SessionID {
	b := make([]byte, 5) // 40 bits encode to exactly 8 base32 chars
	if _, err := rand.Read(b); err != nil {
		return SessionID(fmt.Sprintf("%08X", time.Now().UnixNano()&0xFFFFFFFF))
	}
	return SessionID(strings.ToUpper(base32.StdEncoding.EncodeToString(b)))
}

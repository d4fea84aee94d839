// Package audio plays the platformer's sound effects. Effects are synthesized
// on the fly; no sample files are shipped.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Player plays named sound effects. Unknown names are ignored.
type Player interface {
	Play(name string, volume float64)
}

// Nop discards every sound.
type Nop struct{}

// Play does nothing.
func (Nop) Play(string, float64) {}

// Synth mixes recipe streams into the system speaker.
type Synth struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	recipes     map[string]Recipe
	master      float64
	initialized bool
}

// NewSynth creates a synth with the built-in recipes. Master volume is clamped to [0,1].
func NewSynth(master float64) *Synth {
	if master < 0 {
		master = 0
	}
	if master > 1 {
		master = 1
	}
	return &Synth{
		mixer:   &beep.Mixer{},
		recipes: Recipes,
		master:  master,
	}
}

// Initialize opens the speaker. Without an audio device it returns the
// error and the synth stays silent.
func (s *Synth) Initialize() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(s.mixer)
	s.initialized = true
	return nil
}

// Close stops all sounds.
func (s *Synth) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	speaker.Lock()
	s.mixer.Clear()
	speaker.Unlock()
	s.initialized = false
}

// Stream builds the streamer for a named sound without touching the speaker.
func (s *Synth) Stream(name string, volume float64) (beep.Streamer, bool) {
	r, ok := s.recipes[name]
	if !ok {
		return nil, false
	}
	return r.Build(sampleRate, volume*s.master), true
}

// Play queues a sound on the mixer. It is a no-op before Initialize.
func (s *Synth) Play(name string, volume float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.initialized {
		return
	}
	st, ok := s.Stream(name, volume)
	if !ok {
		return
	}
	speaker.Lock()
	s.mixer.Add(st)
	speaker.Unlock()
}

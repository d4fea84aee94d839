package audio

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveNoise
)

// Note is one segment of a sound recipe. The pitch slides linearly from
// Freq to EndFreq (0 keeps it flat).
type Note struct {
	Wave     Wave
	Freq     float64
	EndFreq  float64
	Duration time.Duration
	Attack   time.Duration
	Release  time.Duration
	Gain     float64
}

// Recipe is a sequence of notes played back to back.
type Recipe []Note

// Sound names used by the engine and the catalog.
const (
	SoundPickup   = "pickup"
	SoundHeal     = "heal"
	SoundHurt     = "hurt"
	SoundShoot    = "shoot"
	SoundSplash   = "splash"
	SoundGameOver = "gameover"
)

// Recipes are the built-in effects.
var Recipes = map[string]Recipe{
	SoundPickup: {
		{Wave: WaveSquare, Freq: 987.77, Duration: 60 * time.Millisecond, Attack: 2 * time.Millisecond, Release: 30 * time.Millisecond, Gain: 0.35},
		{Wave: WaveSquare, Freq: 1318.51, Duration: 120 * time.Millisecond, Attack: 2 * time.Millisecond, Release: 90 * time.Millisecond, Gain: 0.35},
	},
	SoundHeal: {
		{Wave: WaveSine, Freq: 523.25, EndFreq: 1046.5, Duration: 220 * time.Millisecond, Attack: 10 * time.Millisecond, Release: 120 * time.Millisecond, Gain: 0.5},
	},
	SoundHurt: {
		{Wave: WaveSaw, Freq: 220, EndFreq: 90, Duration: 180 * time.Millisecond, Attack: 2 * time.Millisecond, Release: 100 * time.Millisecond, Gain: 0.4},
	},
	SoundShoot: {
		{Wave: WaveSquare, Freq: 880, EndFreq: 330, Duration: 90 * time.Millisecond, Attack: 1 * time.Millisecond, Release: 60 * time.Millisecond, Gain: 0.25},
	},
	SoundSplash: {
		{Wave: WaveNoise, Duration: 250 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 200 * time.Millisecond, Gain: 0.3},
	},
	SoundGameOver: {
		{Wave: WaveSine, Freq: 392, Duration: 200 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 60 * time.Millisecond, Gain: 0.5},
		{Wave: WaveSine, Freq: 311.13, Duration: 200 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 60 * time.Millisecond, Gain: 0.5},
		{Wave: WaveSine, Freq: 261.63, EndFreq: 130.81, Duration: 500 * time.Millisecond, Attack: 5 * time.Millisecond, Release: 350 * time.Millisecond, Gain: 0.5},
	},
}

// oscillator generates a finite raw wave with an optional pitch slide.
type oscillator struct {
	wave     Wave
	freq     float64
	endFreq  float64
	phase    float64
	position int
	duration int
	rate     beep.SampleRate
}

func newOscillator(n Note, rate beep.SampleRate) *oscillator {
	end := n.EndFreq
	if end == 0 {
		end = n.Freq
	}
	return &oscillator{wave: n.Wave, freq: n.Freq, endFreq: end, duration: rate.N(n.Duration), rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveSaw:
			val = 2 * (o.phase - 0.5)
		case WaveNoise:
			val = rand.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := o.freq + (o.endFreq-o.freq)*progress
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, n Note, rate beep.SampleRate) *envelope {
	return &envelope{streamer: s, attack: rate.N(n.Attack), release: rate.N(n.Release), total: rate.N(n.Duration)}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; e.release > 0 && remaining < e.release {
			vol = math.Max(0, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// withVolume scales a stream linearly; zero or less is silent.
func withVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Build renders a recipe into a finite streamer at the given volume.
func (r Recipe) Build(rate beep.SampleRate, volume float64) beep.Streamer {
	parts := make([]beep.Streamer, 0, len(r))
	for _, n := range r {
		gain := n.Gain
		if gain == 0 {
			gain = 1
		}
		parts = append(parts, withVolume(newEnvelope(newOscillator(n, rate), n, rate), gain))
	}
	return withVolume(beep.Seq(parts...), volume)
}

// Length returns the total recipe duration.
func (r Recipe) Length() time.Duration {
	var d time.Duration
	for _, n := range r {
		d += n.Duration
	}
	return d
}

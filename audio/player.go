// Package audio synthesizes short sound cues for game events.
package audio

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

// ErrClosed is returned when playing on a closed player
var ErrClosed = errors.New("audio player closed")

// Player plays cues without blocking the caller
type Player interface {
	Play(c Cue)
	Close()
}

// Silent discards every cue
type Silent struct{}

func (Silent) Play(Cue) {}
func (Silent) Close()   {}

// SpeakerPlayer mixes cues onto the system speaker
type SpeakerPlayer struct {
	mu     sync.Mutex
	rate   beep.SampleRate
	volume float64
	mixer  *beep.Mixer
	cache  [cueCount][][2]float64
	closed bool
}

// NewSpeakerPlayer opens the speaker. Cues are rendered once and replayed from buffers
func NewSpeakerPlayer(sampleRate int, volume float64) (*SpeakerPlayer, error) {
	rate := beep.SampleRate(sampleRate)
	if err := speaker.Init(rate, rate.N(100*time.Millisecond)); err != nil {
		return nil, fmt.Errorf("speaker init: %w", err)
	}

	p := &SpeakerPlayer{rate: rate, volume: volume, mixer: &beep.Mixer{}}
	for c := Cue(0); c < cueCount; c++ {
		p.cache[c] = Render(Build(c, rate, volume))
	}
	speaker.Play(p.mixer)
	return p, nil
}

// Play queues a cue onto the mixer
func (p *SpeakerPlayer) Play(c Cue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || c < 0 || c >= cueCount {
		return
	}
	speaker.Lock()
	p.mixer.Add(&bufferStreamer{data: p.cache[c]})
	speaker.Unlock()
}

// Close silences the mixer and releases the speaker
func (p *SpeakerPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
}

// Render drains a finite streamer into memory
func Render(s beep.Streamer) [][2]float64 {
	if s == nil {
		return nil
	}
	var out [][2]float64
	buf := make([][2]float64, 512)
	for {
		n, ok := s.Stream(buf)
		out = append(out, buf[:n]...)
		if !ok {
			return out
		}
	}
}

// bufferStreamer replays pre-rendered samples
type bufferStreamer struct {
	data [][2]float64
	pos  int
}

func (b *bufferStreamer) Stream(samples [][2]float64) (int, bool) {
	if b.pos >= len(b.data) {
		return 0, false
	}
	n := copy(samples, b.data[b.pos:])
	b.pos += n
	return n, true
}

func (b *bufferStreamer) Err() error { return nil }

package audio

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Wave selects an oscillator shape
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveSaw
	WaveTriangle
	WaveNoise
)

// oscillator returns a wave of length d. Periodic shapes come from beep's generators;
// a frequency at or above Nyquist yields silence
func oscillator(wave Wave, freq float64, d time.Duration, rate beep.SampleRate) beep.Streamer {
	n := rate.N(d)
	if wave == WaveNoise {
		return &noise{remaining: n}
	}

	var (
		gen beep.Streamer
		err error
	)
	switch wave {
	case WaveSquare:
		gen, err = generators.SquareTone(rate, freq)
	case WaveSaw:
		gen, err = generators.SawtoothTone(rate, freq)
	case WaveTriangle:
		gen, err = generators.TriangleTone(rate, freq)
	default:
		gen, err = generators.SineTone(rate, freq)
	}
	if err != nil {
		return generators.Silence(n)
	}
	return beep.Take(n, gen)
}

// noise is white noise, which beep does not generate
type noise struct {
	remaining int
}

func (z *noise) Stream(samples [][2]float64) (n int, ok bool) {
	if z.remaining <= 0 {
		return 0, false
	}
	n = min(len(samples), z.remaining)
	for i := 0; i < n; i++ {
		v := rand.Float64()*2 - 1
		samples[i][0], samples[i][1] = v, v
	}
	z.remaining -= n
	return n, true
}

func (z *noise) Err() error { return nil }

// voice is a shaped note: an oscillator under an attack and release envelope
func voice(wave Wave, freq float64, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return newEnvelope(oscillator(wave, freq, d, rate), d, attack, release, rate)
}

// envelope fades a stream in over attack and out over release
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{streamer: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		samples[i][0] *= e.gain()
		samples[i][1] *= e.gain()
		e.position++
	}
	return n, ok
}

func (e *envelope) gain() float64 {
	switch {
	case e.attack > 0 && e.position < e.attack:
		return float64(e.position) / float64(e.attack)
	case e.release > 0 && e.position >= e.total-e.release:
		return max(float64(e.total-e.position)/float64(e.release), 0)
	}
	return 1
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales linearly; zero is silent since log2(0) is -Inf
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

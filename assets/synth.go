package assets

import (
	"encoding/binary"
	"math"
	"math/rand"
)

// Waveform selects the oscillator used by Synth.
type Waveform int

const (
	Sine Waveform = iota
	Square
	Noise
)

// Synth renders a tone as 16-bit little-endian stereo PCM. Attack and release
// are short linear ramps so clips do not click.
func Synth(wave Waveform, freq, seconds, volume float64) []byte {
	n := int(seconds * SampleRate)
	if n <= 0 {
		return nil
	}
	out := make([]byte, n*4)
	ramp := int(0.01 * SampleRate)
	rng := rand.New(rand.NewSource(int64(freq*1000) + int64(n)))
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		var v float64
		switch wave {
		case Square:
			if math.Sin(2*math.Pi*freq*t) >= 0 {
				v = 1
			} else {
				v = -1
			}
		case Noise:
			v = rng.Float64()*2 - 1
		default:
			v = math.Sin(2 * math.Pi * freq * t)
		}
		env := 1.0
		if i < ramp {
			env = float64(i) / float64(ramp)
		} else if n-i < ramp {
			env = float64(n-i) / float64(ramp)
		}
		sample := int16(v * env * volume * math.MaxInt16)
		binary.LittleEndian.PutUint16(out[i*4:], uint16(sample))
		binary.LittleEndian.PutUint16(out[i*4+2:], uint16(sample))
	}
	return out
}

// Mix sums PCM clips sample by sample, clipping at full scale.
func Mix(clips ...[]byte) []byte {
	longest := 0
	for _, c := range clips {
		if len(c) > longest {
			longest = len(c)
		}
	}
	out := make([]byte, longest)
	for i := 0; i+1 < longest; i += 2 {
		sum := 0
		for _, c := range clips {
			if i+1 < len(c) {
				sum += int(int16(binary.LittleEndian.Uint16(c[i:])))
			}
		}
		sum = max(math.MinInt16, min(math.MaxInt16, sum))
		binary.LittleEndian.PutUint16(out[i:], uint16(int16(sum)))
	}
	return out
}

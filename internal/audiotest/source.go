// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// Source plays back fixed interleaved samples. It satisfies audio.Source
// without importing it.
type Source struct {
	sampleRate int
	channels   int
	data       []float32
	pos        int

	Closed bool
}

func NewSource(sampleRate, channels int, interleaved []float32) *Source {
	return &Source{sampleRate: sampleRate, channels: channels, data: interleaved}
}

func (s *Source) SampleRate() int { return s.sampleRate }
func (s *Source) Channels() int   { return s.channels }

func (s *Source) Close() error {
	s.Closed = true
	return nil
}

// Rewind restarts playback from the first sample.
func (s *Source) Rewind() { s.pos = 0 }

// ReadSamples copies whole frames only.
func (s *Source) ReadSamples(dst []float32) (int, error) {
	n := min(len(dst), len(s.data)-s.pos)
	n -= n % s.channels
	copy(dst, s.data[s.pos:s.pos+n])
	s.pos += n

	if s.pos >= len(s.data) {
		return n, io.EOF
	}
	return n, nil
}

// Duplicate interleaves mono onto channels identical channels.
func Duplicate(mono []float32, channels int) []float32 {
	out := make([]float32, 0, len(mono)*channels)
	for _, v := range mono {
		for range channels {
			out = append(out, v)
		}
	}
	return out
}

// Sine returns n samples of a unit sine at freq Hz.
func Sine(n, sampleRate int, freq float64) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate)))
	}
	return out
}

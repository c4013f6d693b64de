// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll drains src into a single slice of samples, reading bufSize
// values at a time. The returned slice holds interleaved samples when src
// has more than one channel.
func ReadAll(src Source, bufSize int) ([]float32, error) {
	if bufSize <= 0 {
		return nil, ErrInvalidBufSize
	}
	bufSize -= bufSize % src.Channels()
	if bufSize == 0 {
		bufSize = src.Channels()
	}

	out := make([]float32, 0, bufSize)
	buf := make([]float32, bufSize)

	for {
		n, err := src.ReadSamples(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read samples: %w", err)
		}
	}
}

// ToMono resamples src to rate and downmixes it to a single channel,
// collecting every sample.
//
// This builds the usual pipeline:
//  1. Resampler to rate (cubic interpolation, pass-through when equal)
//  2. MonoMixer averaging all channels
//  3. ReadAll collecting the mono stream
func ToMono(src Source, rate int, bufSize int) ([]float32, error) {
	if rate <= 0 {
		return nil, ErrInvalidRate
	}

	mono := NewMonoMixer(NewResampler(src, rate))

	samples, err := ReadAll(mono, bufSize)
	if err != nil {
		return nil, fmt.Errorf("to mono %d Hz: %w", rate, err)
	}
	return samples, nil
}

// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"fmt"
	"log/slog"
)

// DecodeFunc decodes the audio file at path into mono samples at
// sampleRate. It must return the same samples every time it is called
// with the same arguments.
type DecodeFunc func(path string, sampleRate int) ([]float32, error)

// Config describes one sampling pipeline.
type Config struct {
	// CatalogPath is the catalog file read by NewFromFile.
	CatalogPath string

	// WindowCount is the number of output windows per slice; it is also
	// the spacing of slice start positions within a buffer.
	WindowCount int
	// ReceptiveField is the number of input samples each window sees.
	ReceptiveField int

	BatchSize  int
	SampleRate int

	// FracUsePerm is the share of a buffer's permutation cycle consumed
	// before the buffer is replaced.
	FracUsePerm float64

	// BufferTimesteps is the requested buffer size in samples. The
	// permutation covers BufferTimesteps/WindowCount slice positions,
	// rounded down to a supported prime.
	BufferTimesteps int64

	Seed uint64
}

// SliceLen is the number of samples in every slice.
func (c Config) SliceLen() int {
	return c.WindowCount + c.ReceptiveField - 1
}

// Capacity returns the permutation size of every buffer.
func (c Config) Capacity() (int64, error) {
	if c.WindowCount <= 0 {
		return 0, fmt.Errorf("%w: window count %d", ErrInvalidConfig, c.WindowCount)
	}
	return ChooseCapacity(c.BufferTimesteps / int64(c.WindowCount))
}

// sliceLimit is the number of permutation positions drawn per buffer.
func (c Config) sliceLimit(capacity int64) int64 {
	return max(1, int64(float64(capacity)*c.FracUsePerm))
}

func (c Config) Validate() error {
	switch {
	case c.WindowCount <= 0:
		return fmt.Errorf("%w: window count %d", ErrInvalidConfig, c.WindowCount)
	case c.ReceptiveField <= 0:
		return fmt.Errorf("%w: receptive field %d", ErrInvalidConfig, c.ReceptiveField)
	case c.BatchSize <= 0:
		return fmt.Errorf("%w: batch size %d", ErrInvalidConfig, c.BatchSize)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case !(c.FracUsePerm > 0 && c.FracUsePerm <= 1):
		return fmt.Errorf("%w: got %v", ErrInvalidFraction, c.FracUsePerm)
	}

	if _, err := c.Capacity(); err != nil {
		return err
	}
	return nil
}

// Option configures the collaborators of a Pipeline.
type Option func(*Pipeline)

// WithDecoder replaces the decode function used to load catalog files.
func WithDecoder(fn DecodeFunc) Option {
	return func(p *Pipeline) {
		p.decode = fn
	}
}

// WithLogger sets the logger for buffer loads, epoch wraps and restores.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

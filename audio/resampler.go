// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples and preserves the channel
// count. When downsampling, frames pass through a one-pole low-pass filter
// before interpolation. Equal rates pass samples through untouched.
type Resampler struct {
	src      Source
	dstRate  int
	channels int
	step     float64 // source frames consumed per output frame

	// window[1] and window[2] bracket the current output position;
	// window[0] and window[3] are the outer Catmull-Rom control points.
	window [4][]float32
	filled [4]bool
	frac   float64

	frame   []float32
	started bool
	eof     bool

	lp *lowPass
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		channels: channels,
		step:     float64(src.SampleRate()) / float64(dstRate),
		frame:    make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}
	if r.step > 1.0 {
		r.lp = newLowPass(channels, 0.5)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("close resampler source: %w", err)
	}
	return nil
}

func (r *Resampler) passthrough() bool { return r.src.SampleRate() == r.dstRate }

// readFrame reads exactly one frame from src into dst.
// It reports false once the source is drained.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	if r.eof {
		return false, nil
	}

	var (
		n   int
		err error
	)
	for n == 0 && err == nil {
		n, err = r.src.ReadSamples(r.frame)
	}
	if err == io.EOF {
		r.eof = true
	} else if err != nil {
		return false, fmt.Errorf("read source frame: %w", err)
	}
	if n < r.channels {
		return false, nil
	}

	copy(dst, r.frame)
	if r.lp != nil {
		r.lp.apply(dst)
	}
	return true, nil
}

// prime loads the first frames; the first frame doubles as its own
// left control point.
func (r *Resampler) prime() error {
	r.started = true

	ok, err := r.readFrame(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.window[1])
	r.filled[0], r.filled[1] = true, true

	for i := 2; i < 4; i++ {
		if r.filled[i], err = r.readFrame(r.window[i]); err != nil {
			return err
		}
	}
	return nil
}

// advance shifts the window one source frame forward.
func (r *Resampler) advance() error {
	head := r.window[0]
	copy(r.window[:], r.window[1:])
	r.window[3] = head
	copy(r.filled[:], r.filled[1:])

	var err error
	if r.filled[3], err = r.readFrame(r.window[3]); err != nil {
		return err
	}
	if !r.filled[1] {
		return io.EOF
	}
	return nil
}

// ReadSamples produces dst samples at the target rate.
// dst length should be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.passthrough() {
		return r.src.ReadSamples(dst)
	}

	if !r.started {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	written := 0
	frames := len(dst) / r.channels
	for written < frames {
		for r.frac >= 1.0 {
			r.frac -= 1.0
			if err := r.advance(); err != nil {
				return r.partial(written, err)
			}
		}
		if !r.filled[2] && r.frac > 0 {
			return r.partial(written, io.EOF)
		}

		out := dst[written*r.channels : (written+1)*r.channels]
		r.interpolate(out, float32(r.frac))

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}

func (r *Resampler) partial(written int, err error) (int, error) {
	if written == 0 && err == io.EOF {
		return 0, io.EOF
	}
	return written * r.channels, err
}

func (r *Resampler) interpolate(out []float32, x float32) {
	for c := range r.channels {
		y1 := r.window[1][c]
		y0, y2 := y1, y1
		if r.filled[0] {
			y0 = r.window[0][c]
		}
		if r.filled[2] {
			y2 = r.window[2][c]
		}
		y3 := y2
		if r.filled[3] {
			y3 = r.window[3][c]
		}
		out[c] = cubic(y0, y1, y2, y3, x)
	}
}

// lowPass is a one-pole filter: y[n] = alpha*x[n] + (1-alpha)*y[n-1].
type lowPass struct {
	alpha  float32
	state  []float32
	primed bool
}

func newLowPass(channels int, alpha float32) *lowPass {
	return &lowPass{alpha: alpha, state: make([]float32, channels)}
}

func (f *lowPass) apply(frame []float32) {
	if !f.primed {
		copy(f.state, frame)
		f.primed = true
	}
	for c := range frame {
		frame[c] = f.alpha*frame[c] + (1-f.alpha)*f.state[c]
		f.state[c] = frame[c]
	}
}

// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ik5/audslice/catalog"
)

// feed is the endless, epoch-wrapping stream of decoded files that
// successive buffers are filled from. It shares the pipeline's generator.
type feed struct {
	rng        *Rand
	entries    catalog.Catalog
	decode     DecodeFunc
	sampleRate int
	log        *slog.Logger

	cur *cursor
}

func (f *feed) ensureCursor() {
	if f.cur == nil {
		f.cur = newCursor(f.rng, f.entries, f.decode, f.sampleRate, 0, 1)
	}
}

// snapshot captures the generator and cursor for a buffer about to fill.
func (f *feed) snapshot() Checkpoint {
	return Checkpoint{
		BufferRandState: f.rng.State(),
		CursorRandState: f.cur.seedState,
		CursorPos:       f.cur.pos,
		Epoch:           f.cur.epoch,
	}
}

// resume rebuilds the cursor described by c. The generator is left at
// c.BufferRandState.
func (f *feed) resume(c Checkpoint) error {
	if err := f.rng.Restore(c.CursorRandState); err != nil {
		return err
	}
	f.cur = newCursor(f.rng, f.entries, f.decode, f.sampleRate, c.CursorPos, c.Epoch)
	return f.rng.Restore(c.BufferRandState)
}

func (f *feed) next() (decodedFile, error) {
	f.ensureCursor()

	file, err := f.cur.next()
	if errors.Is(err, errEpochBoundary) {
		f.cur = newCursor(f.rng, f.entries, f.decode, f.sampleRate, 0, f.cur.epoch+1)
		f.log.Debug("epoch boundary", "epoch", f.cur.epoch)
		file, err = f.cur.next()
	}
	return file, err
}

// sliceBuffer is a run of whole files laid out on one virtual axis: file i
// owns the slice start positions [vstarts[i], vstarts[i+1]].
type sliceBuffer struct {
	start Checkpoint

	files   []decodedFile
	vstarts []int64

	// offset shifts the slice grid against file boundaries; last is the
	// largest virtual position the permutation can reach; end is the
	// largest position whose slice still fits in the final file.
	offset int64
	last   int64
	end    int64
}

// fillBuffer pulls files from f until the virtual axis reaches
// offset + (capacity-1)*windowCount. start must be f.snapshot() taken
// right before the call.
func fillBuffer(f *feed, start Checkpoint, windowCount, sliceLen int, capacity int64) (*sliceBuffer, error) {
	buf := &sliceBuffer{start: start}
	buf.offset = f.rng.Int64N(int64(windowCount))
	buf.last = buf.offset + (capacity-1)*int64(windowCount)

	var (
		vpos    int64
		stalled int
	)
	for vpos < buf.last {
		file, err := f.next()
		if err != nil {
			return nil, err
		}

		n := len(file.Samples)
		if n < sliceLen {
			return nil, fmt.Errorf("%w: id %d (%s) has %d samples, slice needs %d",
				ErrShortFile, file.ID, file.Path, n, sliceLen)
		}
		if n == sliceLen {
			// Only one slice start; it would share its position with the
			// next file. A run of 2*len(entries) covers at least one whole
			// epoch, and every epoch holds each entry once.
			stalled++
			if stalled >= 2*len(f.entries) {
				return nil, fmt.Errorf("%w: slice length %d", ErrNoProgress, sliceLen)
			}
			continue
		}
		stalled = 0

		buf.files = append(buf.files, file)
		buf.vstarts = append(buf.vstarts, vpos)
		vpos += int64(n - sliceLen)
	}
	buf.end = vpos

	return buf, nil
}

// locate returns the index of the file holding virtual position vpos.
func (b *sliceBuffer) locate(vpos int64) (int, bool) {
	if vpos > b.end {
		return 0, false
	}
	return greatestLowerBound(b.vstarts, vpos)
}

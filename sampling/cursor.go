// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"fmt"

	"github.com/ik5/audslice/catalog"
)

type cursorState int

const (
	cursorIdle cursorState = iota
	cursorStreaming
	cursorEpochBoundary
)

func (s cursorState) String() string {
	switch s {
	case cursorIdle:
		return "idle"
	case cursorStreaming:
		return "streaming"
	case cursorEpochBoundary:
		return "epoch-boundary"
	default:
		return fmt.Sprintf("cursorState(%d)", int(s))
	}
}

// decodedFile is one whole catalog file, decoded.
type decodedFile struct {
	ID      int
	Path    string
	Samples []float32
}

// cursor walks one epoch: a single shuffle of the whole catalog, decoding
// files on demand.
type cursor struct {
	entries    catalog.Catalog
	decode     DecodeFunc
	sampleRate int

	// seedState is the generator state order was drawn from.
	seedState []byte
	order     []int
	pos       int
	epoch     int
	state     cursorState
}

// newCursor shuffles entries with r and positions the cursor at pos of the
// shuffled order.
func newCursor(r *Rand, entries catalog.Catalog, decode DecodeFunc, sampleRate, pos, epoch int) *cursor {
	c := &cursor{
		entries:    entries,
		decode:     decode,
		sampleRate: sampleRate,
		seedState:  r.State(),
		order:      r.Perm(len(entries)),
		pos:        pos,
		epoch:      epoch,
	}
	if pos >= len(c.order) {
		c.state = cursorEpochBoundary
	}
	return c
}

// next decodes the file at the current position and advances. It returns
// errEpochBoundary once the shuffle is used up.
func (c *cursor) next() (decodedFile, error) {
	if c.pos >= len(c.order) {
		c.state = cursorEpochBoundary
		return decodedFile{}, errEpochBoundary
	}

	e := c.entries[c.order[c.pos]]
	samples, err := c.decode(e.Path, c.sampleRate)
	if err != nil {
		return decodedFile{}, fmt.Errorf("decode entry %d of epoch %d (id %d, %s): %w",
			c.pos, c.epoch, e.ID, e.Path, err)
	}

	c.pos++
	c.state = cursorStreaming
	return decodedFile{ID: e.ID, Path: e.Path, Samples: samples}, nil
}

// SPDX-License-Identifier: EPL-2.0

package sampling

import "fmt"

type samplerState int

const (
	samplerActive samplerState = iota
	samplerExhausted
)

// SliceRef is one slice drawn from the buffer.
type SliceRef struct {
	// FileIndex is the position of the source file within the buffer.
	FileIndex int
	// Offset is the first sample of the slice within that file.
	Offset int
	// Virtual is the permutation value the slice was drawn for.
	Virtual int64
	ID      int
	// Samples aliases the buffered file and must not be modified.
	Samples []float32
}

// sliceSampler draws the first limit positions of a permutation over one
// buffer, starting from pos.
type sliceSampler struct {
	buf         *sliceBuffer
	perm        Permutation
	windowCount int64
	sliceLen    int

	limit int64
	pos   int64
	state samplerState
}

func newSliceSampler(buf *sliceBuffer, perm Permutation, windowCount, sliceLen int, limit, pos int64) *sliceSampler {
	return &sliceSampler{
		buf:         buf,
		perm:        perm,
		windowCount: int64(windowCount),
		sliceLen:    sliceLen,
		limit:       limit,
		pos:         pos,
	}
}

func (s *sliceSampler) next() (SliceRef, bool) {
	if s.state == samplerExhausted {
		return SliceRef{}, false
	}

	v := s.perm.At(s.pos)
	vpos := s.buf.offset + v*s.windowCount
	i, ok := s.buf.locate(vpos)
	if !ok {
		panic(fmt.Sprintf("sampling: virtual position %d outside buffer [0, %d]", vpos, s.buf.end))
	}
	off := int(vpos - s.buf.vstarts[i])
	f := s.buf.files[i]

	s.pos++
	if s.pos >= s.limit {
		s.pos = 0
		s.state = samplerExhausted
	}

	return SliceRef{
		FileIndex: i,
		Offset:    off,
		Virtual:   v,
		ID:        f.ID,
		Samples:   f.Samples[off : off+s.sliceLen : off+s.sliceLen],
	}, true
}

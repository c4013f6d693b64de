// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"slices"
)

const (
	checkpointMagic   = "ASCK"
	checkpointVersion = 1
)

// Checkpoint is the state a Pipeline needs to reproduce every later batch.
// Buffer contents are not stored; they are rebuilt from the catalog.
type Checkpoint struct {
	// BufferRandState is the generator state right before the buffer
	// being sampled began to fill.
	BufferRandState []byte
	// CursorRandState is the generator state the file cursor live at that
	// moment drew its shuffle from.
	CursorRandState []byte
	// CursorPos is the next shuffled catalog position that cursor yields.
	CursorPos int
	// PermPos is the next permutation position the sampler yields.
	PermPos int64
	// Epoch is the epoch number of that cursor, starting at 1.
	Epoch int
}

func (c Checkpoint) clone() Checkpoint {
	c.BufferRandState = slices.Clone(c.BufferRandState)
	c.CursorRandState = slices.Clone(c.CursorRandState)
	return c
}

// Equal reports whether two checkpoints describe the same state.
func (c Checkpoint) Equal(o Checkpoint) bool {
	return bytes.Equal(c.BufferRandState, o.BufferRandState) &&
		bytes.Equal(c.CursorRandState, o.CursorRandState) &&
		c.CursorPos == o.CursorPos &&
		c.PermPos == o.PermPos &&
		c.Epoch == o.Epoch
}

func (c Checkpoint) String() string {
	return fmt.Sprintf("rand: %s, cursor: %s@%d, epoch: %d, perm: %d",
		digest(c.BufferRandState), digest(c.CursorRandState), c.CursorPos, c.Epoch, c.PermPos)
}

func digest(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:6])
}

// MarshalBinary encodes the checkpoint in a versioned binary layout.
func (c Checkpoint) MarshalBinary() ([]byte, error) {
	if c.CursorPos < 0 || c.PermPos < 0 || c.Epoch < 0 {
		return nil, fmt.Errorf("%w: negative position in %s", ErrInvalidCheckpoint, c)
	}

	buf := make([]byte, 0, len(checkpointMagic)+1+len(c.BufferRandState)+len(c.CursorRandState)+4*binary.MaxVarintLen64)
	buf = append(buf, checkpointMagic...)
	buf = append(buf, checkpointVersion)
	buf = binary.AppendUvarint(buf, uint64(len(c.BufferRandState)))
	buf = append(buf, c.BufferRandState...)
	buf = binary.AppendUvarint(buf, uint64(len(c.CursorRandState)))
	buf = append(buf, c.CursorRandState...)
	buf = binary.AppendUvarint(buf, uint64(c.CursorPos))
	buf = binary.AppendUvarint(buf, uint64(c.PermPos))
	buf = binary.AppendUvarint(buf, uint64(c.Epoch))

	return buf, nil
}

// UnmarshalBinary decodes a checkpoint written by MarshalBinary.
func (c *Checkpoint) UnmarshalBinary(data []byte) error {
	d := decoder{data: data}

	if string(d.take(len(checkpointMagic))) != checkpointMagic {
		return fmt.Errorf("%w: bad magic", ErrInvalidCheckpoint)
	}
	if v := d.take(1); len(v) != 1 || v[0] != checkpointVersion {
		return fmt.Errorf("%w: unsupported version", ErrInvalidCheckpoint)
	}

	var out Checkpoint
	out.BufferRandState = slices.Clone(d.bytes())
	out.CursorRandState = slices.Clone(d.bytes())
	out.CursorPos = int(d.uvarint())
	out.PermPos = int64(d.uvarint())
	out.Epoch = int(d.uvarint())

	if d.err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCheckpoint, d.err)
	}
	if len(d.data) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrInvalidCheckpoint, len(d.data))
	}
	if out.CursorPos < 0 || out.PermPos < 0 || out.Epoch < 0 {
		return fmt.Errorf("%w: position overflow", ErrInvalidCheckpoint)
	}

	*c = out
	return nil
}

// decoder reads fields off the front of data, keeping the first error.
type decoder struct {
	data []byte
	err  error
}

func (d *decoder) take(n int) []byte {
	if d.err != nil {
		return nil
	}
	if n < 0 || n > len(d.data) {
		d.err = fmt.Errorf("truncated: need %d bytes, have %d", n, len(d.data))
		return nil
	}
	b := d.data[:n]
	d.data = d.data[n:]
	return b
}

func (d *decoder) uvarint() uint64 {
	if d.err != nil {
		return 0
	}
	v, n := binary.Uvarint(d.data)
	if n <= 0 {
		d.err = errors.New("bad varint")
		return 0
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) bytes() []byte {
	n := d.uvarint()
	if n > uint64(len(d.data)) {
		if d.err == nil {
			d.err = fmt.Errorf("truncated: field of %d bytes, have %d", n, len(d.data))
		}
		return nil
	}
	return d.take(int(n))
}

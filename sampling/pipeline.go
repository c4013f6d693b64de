// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"fmt"
	"iter"
	"log/slog"
	"slices"

	"github.com/ik5/audslice"
	"github.com/ik5/audslice/catalog"
)

// Batch is a fixed number of slices with the catalog ids of their source
// files. A Batch owns its memory.
type Batch struct {
	IDs    []int
	Slices [][]float32
}

// Stats counts what a pipeline has produced so far.
type Stats struct {
	Buffers int
	Epoch   int
	Batches int64
	Slices  int64
}

// Pipeline is the endless stream of batches. It is not safe for concurrent
// use.
type Pipeline struct {
	cfg      Config
	capacity int64
	limit    int64
	sliceLen int

	decode DecodeFunc
	log    *slog.Logger

	rng     *Rand
	feed    *feed
	buf     *sliceBuffer
	sampler *sliceSampler

	// resumePos is where the next sampler starts.
	resumePos int64
	// pending is the start of a buffer that is yet to load, set by Restore
	// and by a failed load.
	pending *Checkpoint
	// err is sticky until the next Restore.
	err error

	stats Stats
}

// New builds a pipeline over entries. Files are decoded with
// audslice.DecodeFile unless WithDecoder says otherwise.
func New(cfg Config, entries catalog.Catalog, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrEmptyCatalog
	}

	capacity, err := cfg.Capacity()
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:      cfg,
		capacity: capacity,
		limit:    cfg.sliceLimit(capacity),
		sliceLen: cfg.SliceLen(),
		decode:   audslice.DecodeFile,
		log:      slog.New(slog.DiscardHandler),
		rng:      NewRand(cfg.Seed),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.feed = &feed{
		rng:        p.rng,
		entries:    slices.Clone(entries),
		decode:     p.decode,
		sampleRate: cfg.SampleRate,
		log:        p.log,
	}

	return p, nil
}

// NewFromFile loads cfg.CatalogPath and builds a pipeline over it.
func NewFromFile(cfg Config, opts ...Option) (*Pipeline, error) {
	entries, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return New(cfg, entries, opts...)
}

func (p *Pipeline) Config() Config { return p.cfg }

// Capacity is the permutation size of every buffer.
func (p *Pipeline) Capacity() int64 { return p.capacity }

// SlicesPerBuffer is the number of slices drawn before a buffer is replaced.
func (p *Pipeline) SlicesPerBuffer() int64 { return p.limit }

func (p *Pipeline) Stats() Stats {
	s := p.stats
	if p.feed.cur != nil {
		s.Epoch = p.feed.cur.epoch
	}
	return s
}

func (p *Pipeline) refill() error {
	p.feed.ensureCursor()
	start := p.feed.snapshot()

	fail := func(err error) error {
		pending := start.clone()
		pending.PermPos = p.resumePos
		p.pending = &pending
		p.buf, p.sampler = nil, nil
		return fmt.Errorf("fill buffer: %w", err)
	}

	buf, err := fillBuffer(p.feed, start, p.cfg.WindowCount, p.sliceLen, p.capacity)
	if err != nil {
		return fail(err)
	}
	perm, err := NewPermutation(p.rng, p.capacity)
	if err != nil {
		return fail(err)
	}

	p.buf = buf
	p.sampler = newSliceSampler(buf, perm, p.cfg.WindowCount, p.sliceLen, p.limit, p.resumePos)
	p.resumePos = 0
	p.pending = nil
	p.stats.Buffers++

	p.log.Debug("buffer loaded",
		"buffer", p.stats.Buffers,
		"files", len(buf.files),
		"offset", buf.offset,
		"positions", buf.end,
		"epoch", p.feed.cur.epoch,
		"capacity", perm.N())
	return nil
}

// NextSlice draws one slice, loading a new buffer first when the current
// one is used up. The returned samples alias the buffer.
func (p *Pipeline) NextSlice() (SliceRef, error) {
	if p.err != nil {
		return SliceRef{}, p.err
	}

	if p.sampler == nil || p.sampler.state == samplerExhausted {
		if err := p.refill(); err != nil {
			p.err = err
			return SliceRef{}, err
		}
	}

	ref, _ := p.sampler.next()
	p.stats.Slices++
	return ref, nil
}

// Next returns the next batch. The stream has no end: it only stops on an
// error, which is then returned by every call until Restore succeeds.
func (p *Pipeline) Next() (Batch, error) {
	b := Batch{
		IDs:    make([]int, 0, p.cfg.BatchSize),
		Slices: make([][]float32, 0, p.cfg.BatchSize),
	}

	for len(b.IDs) < p.cfg.BatchSize {
		ref, err := p.NextSlice()
		if err != nil {
			return Batch{}, err
		}
		b.IDs = append(b.IDs, ref.ID)
		b.Slices = append(b.Slices, slices.Clone(ref.Samples))
	}

	p.stats.Batches++
	return b, nil
}

// Batches ranges over Next. Iteration ends when the loop breaks or after
// the first error has been yielded.
func (p *Pipeline) Batches() iter.Seq2[Batch, error] {
	return func(yield func(Batch, error) bool) {
		for {
			b, err := p.Next()
			if !yield(b, err) || err != nil {
				return
			}
		}
	}
}

// Checkpoint describes the current position of the stream. ok is false
// until the first buffer has been loaded.
func (p *Pipeline) Checkpoint() (c Checkpoint, ok bool) {
	switch {
	case p.pending != nil:
		return p.pending.clone(), true
	case p.sampler == nil:
		return Checkpoint{}, false
	case p.sampler.state == samplerExhausted:
		return p.feed.snapshot().clone(), true
	default:
		c = p.buf.start.clone()
		c.PermPos = p.sampler.pos
		return c, true
	}
}

// Restore rewinds or fast-forwards the stream to c. The next batch is the
// one that followed c when it was taken. On error the pipeline is left
// untouched.
func (p *Pipeline) Restore(c Checkpoint) error {
	if err := p.validate(c); err != nil {
		return err
	}

	if err := p.feed.resume(c); err != nil {
		return err
	}

	pending := c.clone()
	p.buf, p.sampler = nil, nil
	p.resumePos = c.PermPos
	p.pending = &pending
	p.err = nil

	p.log.Info("checkpoint restored", "checkpoint", pending.String())
	return nil
}

func (p *Pipeline) validate(c Checkpoint) error {
	switch {
	case c.PermPos < 0 || c.PermPos >= p.limit:
		return fmt.Errorf("%w: permutation position %d outside [0, %d)",
			ErrInvalidCheckpoint, c.PermPos, p.limit)
	case c.CursorPos < 0 || c.CursorPos > len(p.feed.entries):
		return fmt.Errorf("%w: cursor position %d outside [0, %d]",
			ErrInvalidCheckpoint, c.CursorPos, len(p.feed.entries))
	case c.Epoch < 1:
		return fmt.Errorf("%w: epoch %d", ErrInvalidCheckpoint, c.Epoch)
	}

	probe := NewRand(0)
	if err := probe.Restore(c.BufferRandState); err != nil {
		return err
	}
	return probe.Restore(c.CursorRandState)
}

// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"fmt"
	"log/slog"
	"slices"
	"testing"

	"github.com/ik5/audslice/catalog"
	"github.com/ik5/audslice/internal/audiotest"
)

const (
	testWindowCount = 10
	testSliceLen    = 20
)

// testConfig has capacity 67 and draws 33 slices per buffer.
func testConfig() Config {
	return Config{
		WindowCount:     testWindowCount,
		ReceptiveField:  testSliceLen - testWindowCount + 1,
		BatchSize:       4,
		SampleRate:      16000,
		FracUsePerm:     0.5,
		BufferTimesteps: 1000,
		Seed:            1,
	}
}

// memCatalog names entry i "f<i>.wav" with id 100+i, matching
// audiotest.NewMemDecoder.
func memCatalog(n int) catalog.Catalog {
	c := make(catalog.Catalog, n)
	for i := range c {
		c[i] = catalog.Entry{ID: 100 + i, Path: fmt.Sprintf("f%d.wav", i)}
	}
	return c
}

func newTestPipeline(t *testing.T, cfg Config, lengths ...int) (*Pipeline, *audiotest.MemDecoder) {
	t.Helper()

	dec := audiotest.NewMemDecoder(lengths...)
	p, err := New(cfg, memCatalog(len(lengths)), WithDecoder(dec.Decode))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p, dec
}

func newTestFeed(seed uint64, lengths ...int) (*feed, *audiotest.MemDecoder) {
	dec := audiotest.NewMemDecoder(lengths...)
	return &feed{
		rng:        NewRand(seed),
		entries:    memCatalog(len(lengths)),
		decode:     dec.Decode,
		sampleRate: 16000,
		log:        slog.New(slog.DiscardHandler),
	}, dec
}

func fill(f *feed, capacity int64) (*sliceBuffer, error) {
	f.ensureCursor()
	return fillBuffer(f, f.snapshot(), testWindowCount, testSliceLen, capacity)
}

func takeBatches(t *testing.T, p *Pipeline, n int) []Batch {
	t.Helper()

	out := make([]Batch, 0, n)
	for i := range n {
		b, err := p.Next()
		if err != nil {
			t.Fatalf("Next() #%d error = %v", i, err)
		}
		out = append(out, b)
	}
	return out
}

func equalBatches(a, b []Batch) bool {
	return slices.EqualFunc(a, b, func(x, y Batch) bool {
		return slices.Equal(x.IDs, y.IDs) &&
			slices.EqualFunc(x.Slices, y.Slices, func(a, b []float32) bool { return slices.Equal(a, b) })
	})
}

// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ik5/audslice/formats/wav"
)

// Tone returns n samples that are exact multiples of 1/32768, so they
// survive a 16-bit WAV round trip unchanged. seed varies the pattern
// between files.
func Tone(n, seed int) []float32 {
	out := make([]float32, n)
	for i := range out {
		v := (i*37 + seed*1031) % 20001
		out[i] = float32(v-10000) / 32768
	}
	return out
}

// WriteWAV writes samples as a mono 16-bit WAV file under dir and returns
// its path.
func WriteWAV(tb testing.TB, dir, name string, sampleRate int, samples []float32) string {
	tb.Helper()

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		tb.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()

	if err := wav.WriteFloat(f, sampleRate, samples); err != nil {
		tb.Fatalf("write %s: %v", path, err)
	}
	return path
}

// CatalogLine is one id/path pair of a test catalog.
type CatalogLine struct {
	ID   int
	Path string
}

// WriteCatalog writes a tab-separated catalog file under dir and returns
// its path.
func WriteCatalog(tb testing.TB, dir string, lines ...CatalogLine) string {
	tb.Helper()

	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "%d\t%s\n", l.ID, l.Path)
	}

	path := filepath.Join(dir, "catalog.tsv")
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		tb.Fatalf("write catalog: %v", err)
	}
	return path
}

// MemDecoder serves pre-decoded samples by path and counts decodes.
// Its Decode method matches sampling.DecodeFunc.
type MemDecoder struct {
	Files map[string][]float32
	Calls int
}

// NewMemDecoder builds a decoder where file i of lengths is called
// "f<i>.wav" and holds Tone(lengths[i], i).
func NewMemDecoder(lengths ...int) *MemDecoder {
	d := &MemDecoder{Files: make(map[string][]float32, len(lengths))}
	for i, n := range lengths {
		d.Files[fmt.Sprintf("f%d.wav", i)] = Tone(n, i)
	}
	return d
}

func (d *MemDecoder) Decode(path string, _ int) ([]float32, error) {
	d.Calls++
	samples, ok := d.Files[path]
	if !ok {
		return nil, fmt.Errorf("open %s: %w", path, os.ErrNotExist)
	}
	return samples, nil
}

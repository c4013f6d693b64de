// SPDX-License-Identifier: EPL-2.0

package audslice

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ik5/audslice/audio"
	"github.com/ik5/audslice/internal/audiotest"
)

func TestDecodeFile_NativeRate(t *testing.T) {
	t.Parallel()

	want := audiotest.Tone(3000, 7)
	path := audiotest.WriteWAV(t, t.TempDir(), "tone.wav", 16000, want)

	got, err := DecodeFile(path, 16000)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("DecodeFile() = %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeFile_Resamples(t *testing.T) {
	t.Parallel()

	path := audiotest.WriteWAV(t, t.TempDir(), "tone.WAV", 32000, audiotest.Tone(32000, 1))

	got, err := DecodeFile(path, 16000)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if math.Abs(float64(len(got))-16000) > 8 {
		t.Errorf("DecodeFile() = %d samples, want ≈16000", len(got))
	}
}

func TestDecodeFile_Deterministic(t *testing.T) {
	t.Parallel()

	path := audiotest.WriteWAV(t, t.TempDir(), "tone.wav", 44100, audiotest.Tone(10000, 3))

	a, err := DecodeFile(path, 16000)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	b, err := DecodeFile(path, 16000)
	if err != nil {
		t.Fatalf("DecodeFile() error = %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("sample %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestDecodeFile_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	garbage := filepath.Join(dir, "garbage.wav")
	if err := os.WriteFile(garbage, []byte("definitely not audio"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		path string
		want error
	}{
		{"unknown extension", filepath.Join(dir, "x.flac"), ErrUnsupportedFormat},
		{"no extension", filepath.Join(dir, "x"), ErrUnsupportedFormat},
		{"missing file", filepath.Join(dir, "missing.wav"), os.ErrNotExist},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := DecodeFile(tt.path, 16000); !errors.Is(err, tt.want) {
				t.Errorf("DecodeFile() error = %v, want %v", err, tt.want)
			}
		})
	}

	if _, err := DecodeFile(garbage, 16000); err == nil {
		t.Error("DecodeFile(garbage) error = nil, want decode error")
	}
}

func TestDefaultRegistry(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	for _, ext := range []string{"wav", "mp3", "ogg", "aiff", "aif"} {
		if _, ok := reg.Get(ext); !ok {
			t.Errorf("DefaultRegistry() has no decoder for %q", ext)
		}
	}
	if DefaultRegistry() != reg {
		t.Error("DefaultRegistry() is not a singleton")
	}
}

func TestToMono_DuplicatedChannelsMatchMono(t *testing.T) {
	t.Parallel()

	want := audiotest.Tone(2500, 4)
	src := audiotest.NewSource(16000, 2, audiotest.Duplicate(want, 2))

	got, err := audio.ToMono(src, 16000, readBufSize)
	if err != nil {
		t.Fatalf("ToMono() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("ToMono() = %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}

	src.Rewind()
	again, err := audio.ToMono(src, 16000, 333)
	if err != nil {
		t.Fatalf("ToMono() after Rewind error = %v", err)
	}
	if len(again) != len(got) {
		t.Errorf("buffer size changed the output: %d vs %d samples", len(again), len(got))
	}
}

func TestToMono_DownsampledSine(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSource(44100, 2, audiotest.Duplicate(audiotest.Sine(44100, 44100, 440), 2))

	got, err := audio.ToMono(src, 16000, readBufSize)
	if err != nil {
		t.Fatalf("ToMono() error = %v", err)
	}
	if math.Abs(float64(len(got))-16000) > 8 {
		t.Errorf("ToMono() = %d samples, want ≈16000", len(got))
	}

	var peak float64
	for _, v := range got {
		peak = max(peak, math.Abs(float64(v)))
	}
	if peak < 0.5 || peak > 1.1 {
		t.Errorf("peak amplitude = %.3f, want a 440 Hz tone to survive", peak)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audslice

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/ik5/audslice/audio"
	"github.com/ik5/audslice/formats/aiff"
	"github.com/ik5/audslice/formats/mp3"
	"github.com/ik5/audslice/formats/vorbis"
	"github.com/ik5/audslice/formats/wav"
)

// ErrUnsupportedFormat is returned for a file whose extension has no
// registered decoder.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// readBufSize is the number of samples pulled per read while decoding.
const readBufSize = 4096

var (
	defaultRegistry     *audio.Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the registry of every decoder this module ships:
// wav, mp3, ogg (Vorbis), aiff/aif.
func DefaultRegistry() *audio.Registry {
	defaultRegistryOnce.Do(func() {
		reg := audio.NewRegistry()
		reg.Register(wav.Decoder{}, "wav", "wave")
		reg.Register(mp3.Decoder{}, "mp3")
		reg.Register(vorbis.Decoder{}, "ogg", "oga")
		reg.Register(aiff.Decoder{}, "aiff", "aif")
		defaultRegistry = reg
	})
	return defaultRegistry
}

// DecodeFile decodes the audio file at path into mono float32 samples at
// sampleRate, picking the decoder by file extension.
//
// The result depends only on the file contents and sampleRate, so a
// training run that decodes the same file twice sees identical samples.
func DecodeFile(path string, sampleRate int) ([]float32, error) {
	return DecodeFileWith(DefaultRegistry(), path, sampleRate)
}

// DecodeFileWith is DecodeFile with an explicit decoder registry.
func DecodeFileWith(reg *audio.Registry, path string, sampleRate int) ([]float32, error) {
	dec, ok := reg.ForPath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open audio: %w", err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	defer src.Close()

	samples, err := audio.ToMono(src, sampleRate, readBufSize)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return samples, nil
}

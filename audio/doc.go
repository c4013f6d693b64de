// SPDX-License-Identifier: EPL-2.0

// Package audio provides the low-level building blocks used to turn an
// encoded audio file into a flat slice of mono samples.
//
// # Source Interface
//
// Every decoder and processor implements Source:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    Close() error
//	}
//
// Sources chain: a decoder feeds a Resampler, which feeds a MonoMixer.
//
// # Resampling
//
// Resampler converts the sample rate with Catmull-Rom cubic interpolation.
// Downsampling runs frames through a one-pole low-pass filter first.
// When source and target rates match, samples pass through bit-exact.
//
//	resampler := audio.NewResampler(source, 16000)
//
// # Channel Mixing
//
// MonoMixer averages all channels of each frame:
//
//	mono := audio.NewMonoMixer(resampler)
//
// # Collecting Samples
//
// ReadAll drains a Source; ToMono wires the full resample, downmix and
// collect pipeline in one call:
//
//	samples, err := audio.ToMono(source, 16000, 4096)
//
// # Format Registry
//
// Registry maps file extensions to decoders:
//
//	registry := audio.NewRegistry()
//	registry.Register(aiff.Decoder{}, "aiff", "aif")
//	decoder, ok := registry.ForPath("/corpus/utt.aif")
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. Sources return io.EOF once drained;
// a read may return n > 0 together with io.EOF.
package audio

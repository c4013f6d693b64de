// SPDX-License-Identifier: EPL-2.0

// Package audslice turns a catalog of variable-length audio files into an
// endless, reproducible stream of fixed-length training slices.
//
// The module is split by concern:
//   - catalog reads the tab-separated id/path list of source files
//   - sampling is the engine: it buffers a bounded run of decoded files,
//     visits every slice position of the buffer in a pseudo-random order
//     without materializing it, and batches the slices; its exact state
//     can be captured and restored between any two batches
//   - ckptstore persists sampling checkpoints by training step in SQLite
//   - audio and formats/* decode, resample and downmix source files
//
// This package holds the glue between the two halves: DecodeFile is the
// decode function the sampler calls for every catalog entry.
//
// # Quick Start
//
//	cfg := sampling.Config{
//	    CatalogPath:     "train.tsv",
//	    WindowCount:     1000,
//	    ReceptiveField:  1021,
//	    BatchSize:       8,
//	    SampleRate:      16000,
//	    FracUsePerm:     0.1,
//	    BufferTimesteps: 10_000_000,
//	    Seed:            42,
//	}
//	p, err := sampling.NewFromFile(cfg)
//	if err != nil {
//	    return err
//	}
//	for batch, err := range p.Batches() {
//	    if err != nil {
//	        return err
//	    }
//	    train(batch.IDs, batch.Slices)
//	}
//
// # Decoding
//
// DecodeFile picks a decoder by extension (wav, mp3, ogg, aiff), resamples
// to the requested rate with audio.Resampler and downmixes with
// audio.MonoMixer. Files already at the target rate are passed through
// without interpolation.
package audslice

// SPDX-License-Identifier: EPL-2.0

// Package wav decodes integer PCM WAV files through github.com/go-audio/wav
// and writes mono 16-bit PCM WAV files.
//
// Decoder accepts 16, 24 and 32-bit PCM with any channel count and sample
// rate, and tolerates extra chunks (LIST, smpl, ...) before the data chunk.
// Samples come back as float32 in [-1, 1).
//
// WriteWAV16 and WriteFloat emit the canonical 44-byte header followed by
// little-endian samples:
//
//	f, _ := os.Create("slice.wav")
//	err := wav.WriteFloat(f, 16000, samples)
//
// Writing then decoding a file returns the same values exactly for any
// sample that is a multiple of 1/32768.
package wav

// SPDX-License-Identifier: EPL-2.0

// Package sampling streams fixed-length training slices out of a catalog of
// variable-length audio files, reproducibly and resumably.
//
// # Layout
//
// A Pipeline fills a buffer with whole decoded files, laid end to end on a
// virtual axis where every position is a possible slice start. A file of L
// samples contributes L - SliceLen positions. Files come from a cursor that
// walks one shuffle of the catalog per epoch; when it runs out, a new
// shuffle starts and the buffer keeps filling, so a buffer may span two
// epochs.
//
// Slices are drawn from a Permutation of N slice positions, spaced
// WindowCount apart behind a random offset in [0, WindowCount). N is the
// largest supported prime not above BufferTimesteps/WindowCount. Only the
// first FracUsePerm*N positions of each permutation are drawn, then the
// buffer is replaced.
//
// # Randomness
//
// One Rand drives everything: the catalog shuffles, the buffer offsets and
// the permutation parameters. A Checkpoint records the generator state as
// it was right before the current buffer filled, the cursor that buffer
// started from and the next permutation position. Restoring it rebuilds the
// buffer from the catalog and continues with exactly the batches that
// followed the checkpoint:
//
//	ckpt, ok := p.Checkpoint()
//	// ...
//	if err := fresh.Restore(ckpt); err != nil {
//	    return err
//	}
//
// A Checkpoint is available once the first buffer has loaded. It
// implements encoding.BinaryMarshaler for storage; see package ckptstore.
//
// # Concurrency
//
// A Pipeline must be driven by one goroutine. Loading a buffer blocks while
// its files are decoded.
package sampling

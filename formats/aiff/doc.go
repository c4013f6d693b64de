// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) files through
// github.com/go-audio/aiff.
//
// Signed PCM of 8, 16, 24 or 32 bits is supported, with any channel count
// and sample rate. Samples are normalized by the full scale of the bit
// depth, so they fall in [-1.0, 1.0).
//
// go-audio needs an io.ReadSeeker; other readers are buffered in memory
// first.
package aiff

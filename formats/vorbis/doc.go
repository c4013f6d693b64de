// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams through
// github.com/jfreymuth/oggvorbis, producing interleaved float32 samples
// with the stream's native rate and channel count.
package vorbis

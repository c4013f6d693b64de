// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III audio through
// github.com/hajimehoshi/go-mp3.
//
// go-mp3 always emits interleaved stereo, so every Source from this package
// reports two channels; wrap it in audio.MonoMixer for mono output. Odd
// byte counts returned by the underlying reader are carried over to the
// next read, so no sample is ever split.
package mp3

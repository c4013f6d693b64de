// SPDX-License-Identifier: EPL-2.0

package sampling

import "errors"

var (
	ErrInvalidFraction   = errors.New("permutation fraction must be in (0, 1]")
	ErrCapacityTooSmall  = errors.New("buffer capacity too small")
	ErrInvalidConfig     = errors.New("invalid sampling config")
	ErrEmptyCatalog      = errors.New("catalog has no entries")
	ErrShortFile         = errors.New("source file shorter than one slice")
	ErrNoProgress        = errors.New("no catalog file is longer than one slice")
	ErrInvalidCheckpoint = errors.New("invalid checkpoint")
)

// errEpochBoundary is returned by a cursor that has yielded every file of
// its shuffle.
var errEpochBoundary = errors.New("epoch boundary")

// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"fmt"
	"math/rand/v2"
)

// seedMix derives the second PCG word from the seed.
const seedMix = 0x9e3779b97f4a7c15

// Rand is the single random generator of a pipeline. Its complete state
// can be captured with State and put back with Restore; draws after a
// restore repeat the draws made after the capture, bit for bit.
type Rand struct {
	src *rand.PCG
	r   *rand.Rand
}

func NewRand(seed uint64) *Rand {
	src := rand.NewPCG(seed, seed^seedMix)
	return &Rand{src: src, r: rand.New(src)}
}

// State returns an exact snapshot of the generator.
func (r *Rand) State() []byte {
	b, err := r.src.MarshalBinary()
	if err != nil {
		panic(fmt.Sprintf("sampling: marshal pcg state: %v", err))
	}
	return b
}

// Restore resets the generator to a State snapshot.
func (r *Rand) Restore(state []byte) error {
	if err := r.src.UnmarshalBinary(state); err != nil {
		return fmt.Errorf("%w: random state: %v", ErrInvalidCheckpoint, err)
	}
	return nil
}

// Int64N returns a uniform value in [0, n). It panics if n <= 0.
func (r *Rand) Int64N(n int64) int64 {
	return r.r.Int64N(n)
}

// Perm returns a uniform permutation of [0, n).
func (r *Rand) Perm(n int) []int {
	return r.r.Perm(n)
}

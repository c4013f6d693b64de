// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"fmt"
	"iter"
	"math/bits"
	"sort"
)

// primes holds one prime close to each of 2^1 ... 2^40, ascending.
var primes = [...]int64{
	3, 5, 11, 17, 37, 67, 131, 257, 521, 1031, 2053, 4099, 8209,
	16411, 32771, 65537, 131101, 262147, 524309, 1048583, 2097169,
	4194319, 8388617, 16777259, 33554467, 67108879, 134217757,
	268435459, 536870923, 1073741827, 2147483659, 4294967311,
	8589934609, 17179869209, 34359738421, 68719476767, 137438953481,
	274877906951, 549755813911, 1099511627791,
}

// greatestLowerBound returns the index of the last element of the sorted
// xs that is <= v. ok is false when v is below every element.
func greatestLowerBound(xs []int64, v int64) (i int, ok bool) {
	i = sort.Search(len(xs), func(i int) bool { return xs[i] > v })
	if i == 0 {
		return 0, false
	}
	return i - 1, true
}

// ChooseCapacity returns the largest supported prime that is <= requested.
// The result may be well below requested; it is never above it.
func ChooseCapacity(requested int64) (int64, error) {
	i, ok := greatestLowerBound(primes[:], requested)
	if !ok {
		return 0, fmt.Errorf("%w: %d positions requested, minimum is %d",
			ErrCapacityTooSmall, requested, primes[0])
	}
	return primes[i], nil
}

// Permutation visits every value of [0, N) exactly once as the position
// runs over [0, N), in a scrambled order fixed by two random parameters:
//
//	At(pos) = (a + pos*b) mod N
//
// N is prime and 0 < b < N, so the map is a bijection. Nothing is stored
// beyond the three integers.
type Permutation struct {
	n, a, b int64
}

// NewPermutation sizes a permutation with ChooseCapacity(capacity) and
// draws its parameters from r: a in [0, N), b in [max(1, N/5), 4N/5).
func NewPermutation(r *Rand, capacity int64) (Permutation, error) {
	n, err := ChooseCapacity(capacity)
	if err != nil {
		return Permutation{}, err
	}

	a := r.Int64N(n)
	lo, hi := max(1, n/5), 4*n/5
	b := lo + r.Int64N(hi-lo)

	return Permutation{n: n, a: a, b: b}, nil
}

func (p Permutation) N() int64 { return p.n }

// At returns the value at position pos, for pos in [0, N).
func (p Permutation) At(pos int64) int64 {
	hi, lo := bits.Mul64(uint64(pos), uint64(p.b))
	lo, carry := bits.Add64(lo, uint64(p.a), 0)
	hi += carry
	return int64(bits.Rem64(hi, lo, uint64(p.n)))
}

// Range yields (position, value) for count positions starting at start.
// It panics unless 0 <= start, 0 <= count and start+count <= N.
func (p Permutation) Range(start, count int64) iter.Seq2[int64, int64] {
	if start < 0 || count < 0 || start+count > p.n {
		panic(fmt.Sprintf("sampling: permutation range [%d, %d) outside [0, %d)",
			start, start+count, p.n))
	}

	return func(yield func(int64, int64) bool) {
		for pos := start; pos < start+count; pos++ {
			if !yield(pos, p.At(pos)) {
				return
			}
		}
	}
}

// SPDX-License-Identifier: EPL-2.0

package sampling

import (
	"errors"
	"math/big"
	"testing"
)

func TestPrimes_Ascending(t *testing.T) {
	t.Parallel()

	for i := 1; i < len(primes); i++ {
		if primes[i] <= primes[i-1] {
			t.Fatalf("primes[%d] = %d not above primes[%d] = %d", i, primes[i], i-1, primes[i-1])
		}
	}
	for i, p := range primes {
		if !big.NewInt(p).ProbablyPrime(20) {
			t.Errorf("primes[%d] = %d is not prime", i, p)
		}
	}
}

func TestChooseCapacity(t *testing.T) {
	t.Parallel()

	tests := []struct {
		requested int64
		want      int64
	}{
		{3, 3},
		{4, 3},
		{5, 5},
		{10, 5},
		{100, 67},
		{1000, 521},
		{1031, 1031},
		{65536, 32771},
		{65537, 65537},
		{1099511627790, 549755813911},
		{1099511627791, 1099511627791},
		{1 << 62, 1099511627791},
	}

	for _, tt := range tests {
		got, err := ChooseCapacity(tt.requested)
		if err != nil {
			t.Errorf("ChooseCapacity(%d) error = %v", tt.requested, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ChooseCapacity(%d) = %d, want %d", tt.requested, got, tt.want)
		}
	}
}

func TestChooseCapacity_LargestAtMost(t *testing.T) {
	t.Parallel()

	for requested := int64(3); requested < 5000; requested++ {
		got, err := ChooseCapacity(requested)
		if err != nil {
			t.Fatalf("ChooseCapacity(%d) error = %v", requested, err)
		}
		if got > requested {
			t.Fatalf("ChooseCapacity(%d) = %d, above request", requested, got)
		}
		for _, p := range primes {
			if p > got && p <= requested {
				t.Fatalf("ChooseCapacity(%d) = %d, but %d also fits", requested, got, p)
			}
		}
	}
}

func TestChooseCapacity_TooSmall(t *testing.T) {
	t.Parallel()

	for _, requested := range []int64{2, 1, 0, -1, -1 << 40} {
		if _, err := ChooseCapacity(requested); !errors.Is(err, ErrCapacityTooSmall) {
			t.Errorf("ChooseCapacity(%d) error = %v, want %v", requested, err, ErrCapacityTooSmall)
		}
	}
}

func TestPermutation_Bijective(t *testing.T) {
	t.Parallel()

	for _, n := range []int64{3, 5, 11, 17, 37, 131, 1031, 4099} {
		bs := []int64{max(1, n/5), 4*n/5 - 1, n / 2}
		as := []int64{0, 1, n / 2, n - 1}

		for _, a := range as {
			for _, b := range bs {
				p := Permutation{n: n, a: a, b: b}
				seen := make([]bool, n)
				for pos := range n {
					v := p.At(pos)
					if v < 0 || v >= n {
						t.Fatalf("n=%d a=%d b=%d: At(%d) = %d out of range", n, a, b, pos, v)
					}
					if seen[v] {
						t.Fatalf("n=%d a=%d b=%d: value %d visited twice", n, a, b, v)
					}
					seen[v] = true
				}
			}
		}
	}
}

func TestNewPermutation_ParameterBounds(t *testing.T) {
	t.Parallel()

	r := NewRand(7)
	for _, capacity := range []int64{3, 5, 100, 1 << 20, 1 << 41} {
		for range 200 {
			p, err := NewPermutation(r, capacity)
			if err != nil {
				t.Fatalf("NewPermutation(%d) error = %v", capacity, err)
			}
			if want, _ := ChooseCapacity(capacity); p.N() != want {
				t.Fatalf("N() = %d, want %d", p.N(), want)
			}
			if p.a < 0 || p.a >= p.n {
				t.Fatalf("a = %d outside [0, %d)", p.a, p.n)
			}
			if p.b < max(1, p.n/5) || p.b >= 4*p.n/5 {
				t.Fatalf("b = %d outside [%d, %d)", p.b, max(1, p.n/5), 4*p.n/5)
			}
		}
	}

	if _, err := NewPermutation(r, 2); !errors.Is(err, ErrCapacityTooSmall) {
		t.Errorf("NewPermutation(2) error = %v, want %v", err, ErrCapacityTooSmall)
	}
}

func TestNewPermutation_SameStateSameParameters(t *testing.T) {
	t.Parallel()

	r := NewRand(99)
	state := r.State()
	p1, _ := NewPermutation(r, 1<<30)

	if err := r.Restore(state); err != nil {
		t.Fatal(err)
	}
	p2, _ := NewPermutation(r, 1<<30)

	if p1 != p2 {
		t.Errorf("parameters differ after restore: %+v vs %+v", p1, p2)
	}
}

func TestPermutation_AtLargeN(t *testing.T) {
	t.Parallel()

	n := primes[len(primes)-1]
	p := Permutation{n: n, a: n - 1, b: 4*n/5 - 1}

	for _, pos := range []int64{0, 1, n / 2, n - 2, n - 1} {
		want := new(big.Int).Mul(big.NewInt(pos), big.NewInt(p.b))
		want.Add(want, big.NewInt(p.a))
		want.Mod(want, big.NewInt(n))

		if got := p.At(pos); got != want.Int64() {
			t.Errorf("At(%d) = %d, want %d", pos, got, want.Int64())
		}
	}
}

func TestPermutation_Range(t *testing.T) {
	t.Parallel()

	p := Permutation{n: 37, a: 5, b: 11}

	var positions []int64
	for pos, v := range p.Range(10, 20) {
		if v != p.At(pos) {
			t.Errorf("Range value at %d = %d, want %d", pos, v, p.At(pos))
		}
		positions = append(positions, pos)
	}
	if len(positions) != 20 || positions[0] != 10 || positions[19] != 29 {
		t.Errorf("Range(10, 20) positions = %v", positions)
	}

	count := 0
	for range p.Range(0, 37) {
		count++
		if count == 3 {
			break
		}
	}
	if count != 3 {
		t.Errorf("early break yielded %d values", count)
	}

	for range p.Range(37, 0) {
		t.Error("Range(37, 0) yielded a value")
	}
}

func TestPermutation_RangeOutOfBounds(t *testing.T) {
	t.Parallel()

	p := Permutation{n: 11, a: 1, b: 3}
	for _, r := range [][2]int64{{-1, 2}, {0, -1}, {5, 7}, {12, 0}} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("Range(%d, %d) did not panic", r[0], r[1])
				}
			}()
			p.Range(r[0], r[1])
		}()
	}
}

func TestGreatestLowerBound(t *testing.T) {
	t.Parallel()

	xs := []int64{0, 10, 20, 35}
	tests := []struct {
		v      int64
		want   int
		wantOK bool
	}{
		{-1, 0, false},
		{0, 0, true},
		{9, 0, true},
		{10, 1, true},
		{34, 2, true},
		{35, 3, true},
		{1000, 3, true},
	}

	for _, tt := range tests {
		got, ok := greatestLowerBound(xs, tt.v)
		if ok != tt.wantOK || (ok && got != tt.want) {
			t.Errorf("greatestLowerBound(%d) = (%d, %v), want (%d, %v)", tt.v, got, ok, tt.want, tt.wantOK)
		}
	}

	if _, ok := greatestLowerBound(nil, 5); ok {
		t.Error("greatestLowerBound(nil) reported a match")
	}
}

func BenchmarkPermutation_At(b *testing.B) {
	p := Permutation{n: primes[30], a: 12345, b: primes[30] / 3}

	b.ReportAllocs()
	var sink int64
	for i := range b.N {
		sink ^= p.At(int64(i) % p.n)
	}
	_ = sink
}

func TestPermutation_AtDoesNotAllocate(t *testing.T) {
	p := Permutation{n: primes[20], a: 77, b: primes[20] / 2}
	var sink int64
	allocs := testing.AllocsPerRun(100, func() {
		for pos := range int64(64) {
			sink += p.At(pos)
		}
	})
	if allocs != 0 {
		t.Errorf("At allocates %.1f times per run", allocs)
	}
	_ = sink
}

package mask

import (
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// Set is an immutable set of pixel indices. Membership lives in a bitset;
// the sorted index view is built once for blending.
type Set struct {
	bits    *bitset.BitSet
	indices []int
}

func fromBits(b *bitset.BitSet) Set {
	idx := make([]int, 0, b.Count())
	for i, ok := b.NextSet(0); ok; i, ok = b.NextSet(i + 1) {
		idx = append(idx, int(i))
	}
	return Set{bits: b, indices: idx}
}

// All returns every index in [0, n).
func All(n int) Set {
	return Range(0, n, n)
}

// Range returns [start, end) clamped to [0, n).
func Range(start, end, n int) Set {
	if end < start {
		start, end = end, start
	}
	start = max(start, 0)
	end = min(end, n)
	b := bitset.New(uint(max(n, 0)))
	for i := start; i < end; i++ {
		b.Set(uint(i))
	}
	return fromBits(b)
}

// FromIndices drops indices outside [0, n). Input order and duplicates do
// not matter.
func FromIndices(indices []int, n int) Set {
	b := bitset.New(uint(max(n, 0)))
	for _, i := range indices {
		if i >= 0 && i < n {
			b.Set(uint(i))
		}
	}
	return fromBits(b)
}

func (s Set) members() *bitset.BitSet {
	if s.bits == nil {
		return bitset.New(0)
	}
	return s.bits
}

// Indices returns the members in ascending order. The slice is shared and
// must not be modified.
func (s Set) Indices() []int { return s.indices }

// Len returns the number of indices.
func (s Set) Len() int { return len(s.indices) }

// Contains reports whether i is a member.
func (s Set) Contains(i int) bool {
	return i >= 0 && s.bits != nil && s.bits.Test(uint(i))
}

// Covers reports whether s is exactly [0, n).
func (s Set) Covers(n int) bool {
	return len(s.indices) == n && (n == 0 || s.indices[n-1] == n-1)
}

// Equal reports whether both sets hold the same indices.
func (s Set) Equal(o Set) bool { return slices.Equal(s.indices, o.indices) }

// Union returns s ∪ o.
func (s Set) Union(o Set) Set { return fromBits(s.members().Union(o.members())) }

// Intersect returns s ∩ o.
func (s Set) Intersect(o Set) Set { return fromBits(s.members().Intersection(o.members())) }

// Subtract returns s \ o.
func (s Set) Subtract(o Set) Set { return fromBits(s.members().Difference(o.members())) }

// Xor returns the symmetric difference of s and o.
func (s Set) Xor(o Set) Set { return fromBits(s.members().SymmetricDifference(o.members())) }

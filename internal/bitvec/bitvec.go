// Copyright 2023 Gustavo C. Viegas. All rights reserved.

// Package bitvec defines a bit vector used to allocate
// contiguous ranges of handles (e.g., descriptor slots
// and resource IDs).
package bitvec

import "math/bits"

const nbit = 64

// V is a growable bit vector.
// A set bit represents a handle in use.
// The zero value is an empty vector ready for use.
type V struct {
	s   []uint64
	rem int
}

// Len returns the number of bits in the vector.
func (v *V) Len() int { return len(v.s) * nbit }

// Rem returns the number of unset bits in the vector.
func (v *V) Rem() int { return v.rem }

// Grow appends nplus words of unset bits to the vector.
// It returns the value of v.Len prior to growing.
func (v *V) Grow(nplus int) (index int) {
	index = v.Len()
	if nplus > 0 {
		v.rem += nplus * nbit
		v.s = append(v.s, make([]uint64, nplus)...)
	}
	return
}

// IsSet checks whether a given bit is set.
// It returns false if index is out of bounds.
func (v *V) IsSet(index int) bool {
	if index < 0 || index >= v.Len() {
		return false
	}
	return v.s[index/nbit]&(1<<(index%nbit)) != 0
}

func (v *V) set(index int) {
	i, b := index/nbit, uint64(1)<<(index%nbit)
	if v.s[i]&b == 0 {
		v.s[i] |= b
		v.rem--
	}
}

func (v *V) unset(index int) {
	i, b := index/nbit, uint64(1)<<(index%nbit)
	if v.s[i]&b != 0 {
		v.s[i] &^= b
		v.rem++
	}
}

// search locates the first range of n unset bits.
func (v *V) search(n int) (index int, ok bool) {
	if v.rem < n {
		return
	}
	cnt := 0
	for i, x := range v.s {
		if x == ^uint64(0) {
			cnt = 0
			continue
		}
		if x == 0 && cnt+nbit < n {
			if cnt == 0 {
				index = i * nbit
			}
			cnt += nbit
			continue
		}
		for b := range nbit {
			if x&(1<<b) != 0 {
				cnt = 0
				continue
			}
			if cnt == 0 {
				index = i*nbit + b
			}
			cnt++
			if cnt == n {
				return index, true
			}
		}
	}
	return 0, false
}

// Alloc sets a contiguous range of n bits and returns the
// index of the first one.
// The vector grows as needed, so Alloc only fails when
// n is less than 1.
func (v *V) Alloc(n int) (index int, ok bool) {
	if n < 1 {
		return
	}
	if index, ok = v.search(n); !ok {
		// The new words may extend a free run at the end.
		v.Grow((n + nbit - 1) / nbit)
		if index, ok = v.search(n); !ok {
			panic("bitvec: search failed after Grow")
		}
	}
	for i := index; i < index+n; i++ {
		v.set(i)
	}
	return
}

// Free unsets the range [index, index+n).
// Bits out of bounds are ignored.
func (v *V) Free(index, n int) {
	for i := max(index, 0); i < min(index+n, v.Len()); i++ {
		v.unset(i)
	}
}

// Count returns the number of set bits.
func (v *V) Count() (n int) {
	for _, x := range v.s {
		n += bits.OnesCount64(x)
	}
	return
}

// Clear unsets every bit in the vector.
func (v *V) Clear() {
	clear(v.s)
	v.rem = v.Len()
}

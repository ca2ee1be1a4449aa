package idio

import (
	"fmt"
	"math/bits"
)

// Bitsets are fixed-size bit arrays.  Bit i lives in word i/64 at bit
// position i%64.  Bits beyond size are indeterminate -- not is
// allowed to flip them -- so comparison masks the final word.

const bitsetWordBits = 64

type bitsetPayload struct {
	size  int
	words []uint64
}

func (p *bitsetPayload) children(buf []IDIO) []IDIO { return buf }

func (p *bitsetPayload) release() {
	p.words = nil
}

// MakeBitset allocates a bitset of size bits, all clear.
func MakeBitset(size int) IDIO {
	n := (size + bitsetWordBits - 1) / bitsetWordBits
	return alloc(TypeBitset, &bitsetPayload{size: size, words: make([]uint64, n)})
}

// IsBitset reports whether o is a bitset.
func IsBitset(o IDIO) bool {
	return Isa(o, TypeBitset)
}

func bitsetOf(o IDIO) *bitsetPayload {
	c := deref(o)
	if c.vtype != TypeBitset {
		panic(fmt.Sprintf("bitset: not a bitset: %s", c.vtype))
	}
	return c.payload.(*bitsetPayload)
}

// BitsetSize returns the declared size in bits.
func BitsetSize(o IDIO) int {
	return bitsetOf(o).size
}

func bitsetBounds(who string, p *bitsetPayload, bit int) error {
	if bit < 0 || bit >= p.size {
		return &BitsetBoundsError{
			Message:  fmt.Sprintf("%s: bounds error: %d >= size %d", who, bit, p.size),
			Location: who,
			Bit:      bit,
		}
	}
	return nil
}

// BitsetSet sets bit i.
func BitsetSet(o IDIO, i int) error {
	p := bitsetOf(o)
	if err := bitsetBounds("bitset-set!", p, i); err != nil {
		return err
	}
	p.words[i/bitsetWordBits] |= 1 << (i % bitsetWordBits)
	return nil
}

// BitsetClear clears bit i.
func BitsetClear(o IDIO, i int) error {
	p := bitsetOf(o)
	if err := bitsetBounds("bitset-clear!", p, i); err != nil {
		return err
	}
	p.words[i/bitsetWordBits] &^= 1 << (i % bitsetWordBits)
	return nil
}

// BitsetRef returns bit i.
func BitsetRef(o IDIO, i int) (bool, error) {
	p := bitsetOf(o)
	if err := bitsetBounds("bitset-ref", p, i); err != nil {
		return false, err
	}
	return p.words[i/bitsetWordBits]&(1<<(i%bitsetWordBits)) != 0, nil
}

func bitsetSizesMatch(who string, a, b *bitsetPayload) error {
	if a.size != b.size {
		return &BitsetSizeMismatchError{
			Message:  fmt.Sprintf("%s: bitset size mismatch", who),
			Location: who,
			Size1:    a.size,
			Size2:    b.size,
		}
	}
	return nil
}

func bitsetBinary(who string, args []IDIO, op func(a, b uint64) uint64) (IDIO, error) {
	if len(args) == 0 {
		return Nil, &BitsetSizeMismatchError{Message: who + ": no bitsets", Location: who}
	}
	p0 := bitsetOf(args[0])
	r := MakeBitset(p0.size)
	pr := bitsetOf(r)
	copy(pr.words, p0.words)
	for _, a := range args[1:] {
		pa := bitsetOf(a)
		if err := bitsetSizesMatch(who, p0, pa); err != nil {
			return Nil, err
		}
		for i := range pr.words {
			pr.words[i] = op(pr.words[i], pa.words[i])
		}
	}
	return r, nil
}

// BitsetMerge returns the union of its arguments.
func BitsetMerge(args ...IDIO) (IDIO, error) {
	return bitsetBinary("merge-bitset", args, func(a, b uint64) uint64 { return a | b })
}

// BitsetAnd returns the intersection of its arguments.
func BitsetAnd(args ...IDIO) (IDIO, error) {
	return bitsetBinary("and-bitset", args, func(a, b uint64) uint64 { return a & b })
}

// BitsetIor returns the inclusive or of its arguments.
func BitsetIor(args ...IDIO) (IDIO, error) {
	return bitsetBinary("ior-bitset", args, func(a, b uint64) uint64 { return a | b })
}

// BitsetXor returns the exclusive or of its arguments.
func BitsetXor(args ...IDIO) (IDIO, error) {
	return bitsetBinary("xor-bitset", args, func(a, b uint64) uint64 { return a ^ b })
}

// BitsetSubtract clears, in a copy of the first argument, every bit
// set in the rest.
func BitsetSubtract(args ...IDIO) (IDIO, error) {
	return bitsetBinary("subtract-bitset", args, func(a, b uint64) uint64 { return a &^ b })
}

// BitsetNot flips every bit including the padding beyond size.
func BitsetNot(o IDIO) IDIO {
	p := bitsetOf(o)
	r := MakeBitset(p.size)
	pr := bitsetOf(r)
	for i := range p.words {
		pr.words[i] = ^p.words[i]
	}
	return r
}

// BitsetEqualP compares two bitsets, masking the indeterminate bits
// in the final word.
func BitsetEqualP(a, b IDIO) bool {
	pa := bitsetOf(a)
	pb := bitsetOf(b)
	if pa.size != pb.size {
		return false
	}
	n := len(pa.words)
	if n == 0 {
		return true
	}
	for i := 0; i < n-1; i++ {
		if pa.words[i] != pb.words[i] {
			return false
		}
	}
	rem := pa.size % bitsetWordBits
	mask := ^uint64(0)
	if rem != 0 {
		mask = (1 << rem) - 1
	}
	return pa.words[n-1]&mask == pb.words[n-1]&mask
}

// BitsetCopy duplicates o.
func BitsetCopy(o IDIO) IDIO {
	p := bitsetOf(o)
	r := MakeBitset(p.size)
	copy(bitsetOf(r).words, p.words)
	return r
}

// BitsetForEachSet calls fn with the index of each set bit, in
// ascending order.
func BitsetForEachSet(o IDIO, fn func(bit int)) {
	p := bitsetOf(o)
	for wi, w := range p.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			bit := wi*bitsetWordBits + b
			if bit >= p.size {
				return
			}
			fn(bit)
			w &^= 1 << b
		}
	}
}

// BitsetFold folds fn over the set bits with an accumulator.
func BitsetFold(o IDIO, acc IDIO, fn func(bit int, acc IDIO) IDIO) IDIO {
	BitsetForEachSet(o, func(bit int) {
		acc = fn(bit, acc)
	})
	return acc
}

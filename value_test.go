package idio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixnumEncoding(t *testing.T) {
	tests := []struct {
		name string
		v    int
	}{
		{name: "zero", v: 0},
		{name: "one", v: 1},
		{name: "minus one", v: -1},
		{name: "max", v: FixnumMax},
		{name: "min", v: FixnumMin},
		{name: "arbitrary", v: 123456789},
		{name: "arbitrary negative", v: -987654321},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Fixnum(tt.v)
			assert.True(t, IsFixnum(o))
			assert.True(t, IsImmediate(o))
			assert.Equal(t, tt.v, FixnumVal(o))
			assert.Equal(t, TypeFixnum, TypeOf(o))
		})
	}
}

func TestFixnumPromotion(t *testing.T) {
	o := Integer(int64(FixnumMax) + 1)
	assert.True(t, IsBignum(o))
	assert.True(t, BignumIntegerP(o))

	u := UInteger(uint64(FixnumMax) + 1)
	assert.True(t, IsBignum(u))

	small := Integer(42)
	assert.True(t, IsFixnum(small))
}

func TestConstants(t *testing.T) {
	assert.True(t, IsConstant(Nil))
	assert.True(t, IsConstant(True))
	assert.True(t, IsConstant(False))
	assert.NotEqual(t, True, False)
	assert.Equal(t, "#t", ConstantName(True))
	assert.Equal(t, "#f", ConstantName(False))
	assert.Equal(t, "#n", ConstantName(Nil))
	assert.Equal(t, TypeConstantIdio, TypeOf(Nil))
}

func TestUnicodeImmediates(t *testing.T) {
	tests := []struct {
		name string
		cp   rune
	}{
		{name: "ascii", cp: 'a'},
		{name: "latin-1", cp: 0xA9},
		{name: "bmp", cp: 0x20AC},
		{name: "astral", cp: 0x1F600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Unicode(tt.cp)
			assert.True(t, IsUnicode(o))
			assert.Equal(t, tt.cp, UnicodeVal(o))
			assert.Equal(t, TypeUnicode, TypeOf(o))
		})
	}
}

func TestValidCodePoint(t *testing.T) {
	assert.True(t, ValidCodePoint('a'))
	assert.True(t, ValidCodePoint(0x10FFFF))
	assert.False(t, ValidCodePoint(0xD800))
	assert.False(t, ValidCodePoint(0xDFFF))
	assert.False(t, ValidCodePoint(0x110000))
	assert.False(t, ValidCodePoint(-1))
}

func TestIsaInspectsTagFirst(t *testing.T) {
	assert.True(t, Isa(Fixnum(1), TypeFixnum))
	assert.False(t, Isa(Fixnum(1), TypePair))

	p := Pair(Fixnum(1), Nil)
	assert.True(t, Isa(p, TypePair))
	assert.False(t, IsImmediate(p))
}

func TestEqSemantics(t *testing.T) {
	// a fixnum and a bignum for the same integer are not eq? but
	// are numerically =
	f := Fixnum(5)
	b := BignumInteger(5)
	assert.False(t, EqP(f, b))
	eq, err := NumberEq(f, b)
	assert.NoError(t, err)
	assert.True(t, eq)
}

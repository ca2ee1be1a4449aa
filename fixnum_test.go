package idio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverflowPromotion(t *testing.T) {
	// (+ FIXNUM-MAX 1) is a bignum; subtracting 1 shrinks back to
	// the fixnum FIXNUM-MAX
	sum, err := Add(Fixnum(FixnumMax), Fixnum(1))
	require.NoError(t, err)
	require.True(t, IsBignum(sum))
	assert.True(t, BignumIntegerP(sum))

	back, err := Subtract(sum, Fixnum(1))
	require.NoError(t, err)
	require.True(t, IsFixnum(back))
	assert.Equal(t, FixnumMax, FixnumVal(back))
}

func TestUnderflowPromotion(t *testing.T) {
	diff, err := Subtract(Fixnum(FixnumMin), Fixnum(1))
	require.NoError(t, err)
	require.True(t, IsBignum(diff))

	back, err := Add(diff, Fixnum(1))
	require.NoError(t, err)
	require.True(t, IsFixnum(back))
	assert.Equal(t, FixnumMin, FixnumVal(back))
}

func TestMultiplyPromotion(t *testing.T) {
	big, err := Multiply(Fixnum(FixnumMax), Fixnum(2))
	require.NoError(t, err)
	require.True(t, IsBignum(big))

	half, err := Quotient(big, Fixnum(2))
	require.NoError(t, err)
	require.True(t, IsFixnum(half))
	assert.Equal(t, FixnumMax, FixnumVal(half))
}

func TestDivideYieldsReals(t *testing.T) {
	// division always promotes: 1/3 and 9/2 are real bignums
	r, err := Divide(Fixnum(9), Fixnum(2))
	require.NoError(t, err)
	require.True(t, IsBignum(r))
	assert.True(t, BignumRealP(r))
	assert.Equal(t, "4.5", func() string {
		SetPrintConversionFormat('f')
		defer SetPrintConversionFormat(0)
		SetPrintConversionPrecision(1)
		defer SetPrintConversionPrecision(-1)
		return BignumToString(r)
	}())
}

func TestQuotientRemainder(t *testing.T) {
	tests := []struct {
		name string
		a    int
		b    int
		q    int
		rem  int
	}{
		{name: "exact", a: 12, b: 3, q: 4, rem: 0},
		{name: "truncating", a: 13, b: 4, q: 3, rem: 1},
		{name: "negative dividend", a: -13, b: 4, q: -3, rem: -1},
		{name: "negative divisor", a: 13, b: -4, q: -3, rem: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Quotient(Fixnum(tt.a), Fixnum(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.q, FixnumVal(q))

			rem, err := Remainder(Fixnum(tt.a), Fixnum(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.rem, FixnumVal(rem))
		})
	}
}

func TestDivideByZero(t *testing.T) {
	_, err := Quotient(Fixnum(1), Fixnum(0))
	assert.IsType(t, &DivideByZeroError{}, err)

	_, err = Remainder(Fixnum(1), Fixnum(0))
	assert.IsType(t, &DivideByZeroError{}, err)

	_, err = Divide(Fixnum(1), Fixnum(0))
	assert.IsType(t, &DivideByZeroError{}, err)
}

func TestComparisonsMixed(t *testing.T) {
	big, err := Add(Fixnum(FixnumMax), Fixnum(1))
	require.NoError(t, err)

	lt, err := NumberLt(Fixnum(1), Fixnum(2), big)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := NumberGt(big, Fixnum(2), Fixnum(1))
	require.NoError(t, err)
	assert.True(t, gt)

	le, err := NumberLe(Fixnum(2), Fixnum(2), big)
	require.NoError(t, err)
	assert.True(t, le)

	eq, err := NumberEq(Fixnum(3), BignumInteger(3))
	require.NoError(t, err)
	assert.True(t, eq)
}

func TestIntegerToUnicode(t *testing.T) {
	u, err := IntegerToUnicode(Fixnum(0x41))
	require.NoError(t, err)
	assert.Equal(t, 'A', UnicodeVal(u))

	_, err = IntegerToUnicode(Fixnum(0xD800))
	assert.IsType(t, &FixnumConversionError{}, err)

	_, err = IntegerToUnicode(Fixnum(0x110000))
	assert.IsType(t, &FixnumConversionError{}, err)
}

func TestExactness(t *testing.T) {
	e, err := ExactP(Fixnum(3))
	require.NoError(t, err)
	assert.True(t, e)

	inx, err := ExactToInexact(Fixnum(3))
	require.NoError(t, err)
	require.True(t, IsBignum(inx))
	assert.True(t, BignumRealP(inx))
	assert.True(t, BignumInexactP(inx))

	// exact->inexact then inexact->exact is the identity on exactly
	// representable numbers
	back, err := InexactToExact(inx)
	require.NoError(t, err)
	require.True(t, IsFixnum(back))
	assert.Equal(t, 3, FixnumVal(back))
}

func TestMantissaExponent(t *testing.T) {
	r, err := BignumC("1.5")
	require.NoError(t, err)

	m, err := Mantissa(r)
	require.NoError(t, err)
	assert.Equal(t, 15, FixnumVal(m))

	e, err := Exponent(r)
	require.NoError(t, err)
	assert.Equal(t, -1, FixnumVal(e))
}

func TestFloor(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "integral stays", in: "3.0", want: "3"},
		{name: "positive rounds down", in: "3.7", want: "3"},
		{name: "negative rounds down", in: "-3.2", want: "-4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := BignumC(tt.in)
			require.NoError(t, err)
			f, err := Floor(r)
			require.NoError(t, err)
			i, err := InexactToExact(f)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ToString(i))
		})
	}
}

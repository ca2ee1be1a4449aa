package idio

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBignumIntegerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "zero", in: "0"},
		{name: "small", in: "42"},
		{name: "negative", in: "-42"},
		{name: "one segment boundary", in: "999999999999999999"},
		{name: "two segments", in: "1000000000000000000"},
		{name: "large", in: "123456789012345678901234567890"},
		{name: "large negative", in: "-123456789012345678901234567890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := BignumIntegerC(tt.in, true)
			require.NoError(t, err)
			assert.Equal(t, tt.in, BignumToString(n))
		})
	}
}

func TestBignumAddSubtract(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		sum  string
	}{
		{name: "simple", a: "1", b: "2", sum: "3"},
		{name: "carry", a: "999999999999999999", b: "1", sum: "1000000000000000000"},
		{name: "mixed signs", a: "-5", b: "8", sum: "3"},
		{name: "both negative", a: "-5", b: "-8", sum: "-13"},
		{name: "multi segment", a: "123456789012345678901234567890", b: "987654321098765432109876543210", sum: "1111111110111111111011111111100"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := BignumIntegerC(tt.a, true)
			require.NoError(t, err)
			b, err := BignumIntegerC(tt.b, true)
			require.NoError(t, err)

			sum := BignumAdd(a, b)
			assert.Equal(t, tt.sum, BignumToString(sum))

			// and back again
			diff := BignumSubtract(sum, b)
			assert.True(t, BignumEqualP(diff, a))
		})
	}
}

func TestBignumMultiply(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want string
	}{
		{name: "simple", a: "6", b: "7", want: "42"},
		{name: "by zero", a: "123456789", b: "0", want: "0"},
		{name: "negative", a: "-12", b: "12", want: "-144"},
		{name: "segment crossing", a: "1000000000", b: "1000000000", want: "1000000000000000000"},
		{name: "big", a: "12345678901234567890", b: "98765432109876543210", want: "1219326311370217952237463801111263526900"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := BignumIntegerC(tt.a, true)
			require.NoError(t, err)
			b, err := BignumIntegerC(tt.b, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, BignumToString(BignumMultiply(a, b)))
		})
	}
}

func TestBignumDivide(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		q    string
		rem  string
	}{
		{name: "simple", a: "12345", b: "123", q: "100", rem: "45"},
		{name: "smaller dividend", a: "12", b: "123", q: "0", rem: "12"},
		{name: "exact", a: "144", b: "12", q: "12", rem: "0"},
		{name: "big", a: "1000000000000000000000", b: "3", q: "333333333333333333333", rem: "1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := BignumIntegerC(tt.a, true)
			require.NoError(t, err)
			b, err := BignumIntegerC(tt.b, true)
			require.NoError(t, err)
			q, rem, err := BignumDivide(a, b)
			require.NoError(t, err)
			assert.Equal(t, tt.q, BignumToString(q))
			assert.Equal(t, tt.rem, BignumToString(rem))
		})
	}
}

func TestBignumDivideByZero(t *testing.T) {
	a := BignumInteger(1)
	z := BignumInteger(0)
	_, _, err := BignumDivide(a, z)
	assert.IsType(t, &DivideByZeroError{}, err)
}

func TestBignumShrinkToFixnum(t *testing.T) {
	// an integer bignum in fixnum range shrinks
	small := BignumInteger(42)
	o := BignumToFixnum(small)
	require.True(t, IsFixnum(o))
	assert.Equal(t, 42, FixnumVal(o))

	// one outside does not
	big, err := BignumIntegerC("123456789012345678901234567890", true)
	require.NoError(t, err)
	assert.True(t, IsBignum(BignumToFixnum(big)))
}

func TestBignumLeadingZeroInvariant(t *testing.T) {
	// after subtraction the significand carries no leading zero
	// segments; the canonical zero is a single segment
	a, err := BignumIntegerC("1000000000000000000000", true)
	require.NoError(t, err)
	diff := BignumSubtract(a, a)
	assert.True(t, BignumZeroP(diff))
	assert.Equal(t, 1, bnOf(diff).sig.size())

	b, err := BignumIntegerC("1000000000000000000001", true)
	require.NoError(t, err)
	one := BignumSubtract(b, a)
	assert.Equal(t, 1, bnOf(one).sig.size())
	assert.Equal(t, "1", BignumToString(one))
}

func TestBignumRealParse(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		integer bool
		inexact bool
	}{
		{name: "plain integer", in: "123", integer: true},
		{name: "real", in: "1.5"},
		{name: "exponent", in: "15e-1"},
		{name: "inexact digits", in: "12#", inexact: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := BignumC(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.integer, BignumIntegerP(n))
			if !tt.integer {
				assert.Equal(t, tt.inexact, BignumInexactP(n))
			}
		})
	}
}

func TestBignumExponentOverflow(t *testing.T) {
	_, err := BignumC("10e2147483647")
	require.Error(t, err)
	var bce *BignumConversionError
	require.ErrorAs(t, err, &bce)
	assert.Contains(t, bce.Message, "exponent overflow")

	_, err = BignumC("1e2147483648")
	require.ErrorAs(t, err, &bce)
	assert.Contains(t, bce.Message, "exponent overflow")

	_, err = BignumC("1e-2147483649")
	require.ErrorAs(t, err, &bce)
	assert.Contains(t, bce.Message, "exponent underflow")
}

func TestBignumNormalization(t *testing.T) {
	// trailing zero digits raise the exponent
	n, err := BignumRealC("12300")
	require.NoError(t, err)
	p := bnOf(n)
	assert.Equal(t, int32(2), p.exp)
	assert.Equal(t, int64(123), p.sig.get(0))

	// excess precision is truncated with the exponent raised
	m, err := BignumRealC("1234567890123456789012345")
	require.NoError(t, err)
	assert.LessOrEqual(t, bsaCountDigits(bnOf(m).sig), bignumSigMaxDigits)
}

func TestBignumRealArithmetic(t *testing.T) {
	mustReal := func(s string) IDIO {
		n, err := BignumC(s)
		require.NoError(t, err)
		return n
	}

	sum, err := BignumRealAdd(mustReal("1.5"), mustReal("2.25"))
	require.NoError(t, err)
	assert.True(t, BignumRealEqualP(sum, mustReal("3.75")))

	diff, err := BignumRealSubtract(mustReal("1.5"), mustReal("2.25"))
	require.NoError(t, err)
	assert.True(t, BignumRealEqualP(diff, mustReal("-0.75")))

	prod, err := BignumRealMultiply(mustReal("1.5"), mustReal("2.0"))
	require.NoError(t, err)
	assert.True(t, BignumRealEqualP(prod, mustReal("3.0")))

	quot, err := BignumRealDivide(mustReal("1.0"), mustReal("8.0"))
	require.NoError(t, err)
	assert.True(t, BignumRealEqualP(quot, mustReal("0.125")))
}

func TestBignumRealComparison(t *testing.T) {
	mustReal := func(s string) IDIO {
		n, err := BignumC(s)
		require.NoError(t, err)
		return n
	}
	tests := []struct {
		name string
		a    string
		b    string
		lt   bool
	}{
		{name: "simple", a: "1.5", b: "2.5", lt: true},
		{name: "negative", a: "-2.5", b: "1.5", lt: true},
		{name: "equal", a: "1.5", b: "1.5", lt: false},
		{name: "different exponents", a: "0.15", b: "1.5", lt: true},
		{name: "zero left", a: "0.0", b: "1.5", lt: true},
		{name: "zero right", a: "1.5", b: "0.0", lt: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.lt, BignumRealLtP(mustReal(tt.a), mustReal(tt.b)))
		})
	}
}

func TestBignumPrintModes(t *testing.T) {
	n, err := BignumC("1.5")
	require.NoError(t, err)

	// Scheme-style engineering notation is the default
	s := BignumToString(n)
	assert.True(t, strings.HasPrefix(s, "1.5"), s)
	assert.Contains(t, s, "e+0")

	SetPrintConversionFormat('f')
	SetPrintConversionPrecision(2)
	assert.Equal(t, "1.50", BignumToString(n))

	SetPrintConversionFormat('e')
	assert.Equal(t, "1.50e+00", BignumToString(n))

	SetPrintConversionFormat(0)
	SetPrintConversionPrecision(-1)
}

func TestBignumNaN(t *testing.T) {
	n := BignumNaN()
	assert.True(t, BignumNaNP(n))
	assert.Equal(t, "NaN", BignumToString(n))
}

func TestSignificandSharing(t *testing.T) {
	n, err := BignumC("1.5")
	require.NoError(t, err)
	neg := BignumRealNegate(n)
	// negate of a real shares the significand
	assert.Same(t, bnOf(n).sig, bnOf(neg).sig)
	assert.True(t, bnOf(n).sig.refs >= 2)
}

func TestBignumDouble(t *testing.T) {
	d, err := BignumDouble(0.5)
	require.NoError(t, err)
	assert.True(t, BignumRealP(d))
	assert.True(t, BignumInexactP(d))

	nan, err := BignumDouble(nanFloat())
	require.NoError(t, err)
	assert.True(t, BignumNaNP(nan))
}

func nanFloat() float64 {
	z := 0.0
	return z / z
}

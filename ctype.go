package idio

import (
	"fmt"
	"math"
)

// Boxed C scalars: one heap type per C kind so the FFI layer can
// dispatch on the value type alone.  Pointers carry an optional type
// tag, a symbol list (name, members, index-fn), which the vtable
// system uses to dispatch methods.

type cScalarPayload struct {
	i int64
	u uint64
	f float64
}

func (p *cScalarPayload) children(buf []IDIO) []IDIO { return buf }
func (p *cScalarPayload) release()                   {}

type cPointerPayload struct {
	val     any
	typeTag IDIO
	freeMe  bool
	freeFn  func(any)
}

func (p *cPointerPayload) children(buf []IDIO) []IDIO {
	return append(buf, p.typeTag)
}

func (p *cPointerPayload) release() {
	p.val = nil
}

func cSigned(t ValueType, v int64) IDIO {
	return alloc(t, &cScalarPayload{i: v})
}

func cUnsigned(t ValueType, v uint64) IDIO {
	return alloc(t, &cScalarPayload{u: v})
}

// CChar boxes a C char.
func CChar(v byte) IDIO { return cUnsigned(TypeCChar, uint64(v)) }

// CSChar boxes a C signed char.
func CSChar(v int8) IDIO { return cSigned(TypeCSChar, int64(v)) }

// CUChar boxes a C unsigned char.
func CUChar(v uint8) IDIO { return cUnsigned(TypeCUChar, uint64(v)) }

// CShort boxes a C short.
func CShort(v int16) IDIO { return cSigned(TypeCShort, int64(v)) }

// CUShort boxes a C unsigned short.
func CUShort(v uint16) IDIO { return cUnsigned(TypeCUShort, uint64(v)) }

// CInt boxes a C int.
func CInt(v int32) IDIO { return cSigned(TypeCInt, int64(v)) }

// CUInt boxes a C unsigned int.
func CUInt(v uint32) IDIO { return cUnsigned(TypeCUInt, uint64(v)) }

// CLong boxes a C long.
func CLong(v int64) IDIO { return cSigned(TypeCLong, v) }

// CULong boxes a C unsigned long.
func CULong(v uint64) IDIO { return cUnsigned(TypeCULong, v) }

// CLongLong boxes a C long long.
func CLongLong(v int64) IDIO { return cSigned(TypeCLongLong, v) }

// CULongLong boxes a C unsigned long long.
func CULongLong(v uint64) IDIO { return cUnsigned(TypeCULongLong, v) }

// CFloat boxes a C float.
func CFloat(v float32) IDIO {
	return alloc(TypeCFloat, &cScalarPayload{f: float64(v)})
}

// CDouble boxes a C double.
func CDouble(v float64) IDIO {
	return alloc(TypeCDouble, &cScalarPayload{f: v})
}

// CPointer boxes a native pointer with no type tag.
func CPointer(val any) IDIO {
	return alloc(TypeCPointer, &cPointerPayload{val: val, typeTag: Nil})
}

// CPointerType boxes a native pointer carrying a type tag.
func CPointerType(typeTag IDIO, val any) IDIO {
	return alloc(TypeCPointer, &cPointerPayload{val: val, typeTag: typeTag})
}

// CPointerFree boxes a native pointer whose finalizer runs freeFn
// when the wrapper is collected.
func CPointerFree(val any, freeFn func(any)) IDIO {
	o := alloc(TypeCPointer, &cPointerPayload{val: val, freeMe: true, freeFn: freeFn, typeTag: Nil})
	RegisterFinalizer(o, func(p IDIO) {
		cp := deref(p).payload.(*cPointerPayload)
		if cp.freeMe && cp.freeFn != nil {
			cp.freeFn(cp.val)
			cp.freeMe = false
		}
	})
	return o
}

func isCType(t ValueType) bool {
	return t >= TypeCChar && t <= TypeCPointer
}

// IsCType reports whether o is any boxed C value.
func IsCType(o IDIO) bool {
	return isCType(TypeOf(o))
}

func cSignedType(t ValueType) bool {
	switch t {
	case TypeCSChar, TypeCShort, TypeCInt, TypeCLong, TypeCLongLong:
		return true
	}
	return false
}

func cUnsignedType(t ValueType) bool {
	switch t {
	case TypeCChar, TypeCUChar, TypeCUShort, TypeCUInt, TypeCULong, TypeCULongLong:
		return true
	}
	return false
}

func cScalarOf(o IDIO) (*cScalarPayload, ValueType) {
	c := deref(o)
	if !isCType(c.vtype) || c.vtype == TypeCPointer {
		panic(fmt.Sprintf("C-type: not a C scalar: %s", c.vtype))
	}
	return c.payload.(*cScalarPayload), c.vtype
}

// CPointerValue returns the boxed native value.
func CPointerValue(o IDIO) any {
	return deref(o).payload.(*cPointerPayload).val
}

// CPointerTypeTag returns the pointer's type tag list, Nil if
// untagged.
func CPointerTypeTag(o IDIO) IDIO {
	return deref(o).payload.(*cPointerPayload).typeTag
}

// CToNumber converts a boxed C value to a fixnum or bignum.
func CToNumber(o IDIO) (IDIO, error) {
	p, t := cScalarOf(o)
	switch {
	case cSignedType(t):
		return Integer(p.i), nil
	case cUnsignedType(t):
		return UInteger(p.u), nil
	case t == TypeCFloat:
		return BignumFloat(float32(p.f))
	case t == TypeCDouble:
		return BignumDouble(p.f)
	}
	return Nil, &CConversionError{
		Message:  "long double is unsupported",
		Location: "C->number",
		Number:   o,
	}
}

var cIntRanges = map[ValueType][2]int64{
	TypeCSChar:    {math.MinInt8, math.MaxInt8},
	TypeCShort:    {math.MinInt16, math.MaxInt16},
	TypeCInt:      {math.MinInt32, math.MaxInt32},
	TypeCLong:     {math.MinInt64, math.MaxInt64},
	TypeCLongLong: {math.MinInt64, math.MaxInt64},
}

var cUintRanges = map[ValueType]uint64{
	TypeCChar:      math.MaxUint8,
	TypeCUChar:     math.MaxUint8,
	TypeCUShort:    math.MaxUint16,
	TypeCUInt:      math.MaxUint32,
	TypeCULong:     math.MaxUint64,
	TypeCULongLong: math.MaxUint64,
}

// NumberToC boxes an integer as the requested C kind, range-checked.
func NumberToC(t ValueType, o IDIO) (IDIO, error) {
	var v int64
	switch {
	case IsFixnum(o):
		v = int64(FixnumVal(o))
	case IsBignum(o) && BignumIntegerP(o):
		var err error
		if v, err = bignumInt64Value(o); err != nil {
			return Nil, &CConversionError{
				Message:  fmt.Sprintf("out of range for %s", t),
				Location: "number->C",
				Number:   o,
			}
		}
	default:
		return Nil, &CConversionError{
			Message:  "not an integer",
			Location: "number->C",
			Number:   o,
		}
	}

	if r, ok := cIntRanges[t]; ok {
		if v < r[0] || v > r[1] {
			return Nil, &CConversionError{
				Message:  fmt.Sprintf("%d out of range for %s", v, t),
				Location: "number->C",
				Number:   o,
			}
		}
		return cSigned(t, v), nil
	}
	if maxv, ok := cUintRanges[t]; ok {
		if v < 0 || uint64(v) > maxv {
			return Nil, &CConversionError{
				Message:  fmt.Sprintf("%d out of range for %s", v, t),
				Location: "number->C",
				Number:   o,
			}
		}
		return cUnsigned(t, uint64(v)), nil
	}
	return Nil, &CConversionError{
		Message:  fmt.Sprintf("cannot convert to %s", t),
		Location: "number->C",
		Number:   o,
	}
}

// CEqP compares two boxed C values of the same kind.  long double
// comparison is refused.
func CEqP(a, b IDIO) (bool, error) {
	ta := TypeOf(a)
	tb := TypeOf(b)
	if ta != tb {
		return false, nil
	}
	if ta == TypeCLongDouble {
		return false, &CConversionError{
			Message:  "long double equality is unsupported",
			Location: "C/==",
			Number:   a,
		}
	}
	if ta == TypeCPointer {
		return CPointerValue(a) == CPointerValue(b), nil
	}
	pa, _ := cScalarOf(a)
	pb, _ := cScalarOf(b)
	switch {
	case cSignedType(ta):
		return pa.i == pb.i, nil
	case cUnsignedType(ta):
		return pa.u == pb.u, nil
	default:
		return pa.f == pb.f, nil
	}
}

// CValueString renders a boxed C value for the printer.
func CValueString(o IDIO) string {
	t := TypeOf(o)
	if t == TypeCPointer {
		return fmt.Sprintf("#<C/* %v>", CPointerValue(o))
	}
	if t == TypeCLongDouble {
		return "#<C/longdouble>"
	}
	p, _ := cScalarOf(o)
	switch {
	case cSignedType(t):
		return fmt.Sprintf("%d", p.i)
	case cUnsignedType(t):
		return fmt.Sprintf("%d", p.u)
	default:
		return fmt.Sprintf("%g", p.f)
	}
}

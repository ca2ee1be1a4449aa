package idio

import "fmt"

type arrayPayload struct {
	elems []IDIO
	dv    IDIO // default value for out-of-range refs and growth
}

func (p *arrayPayload) children(buf []IDIO) []IDIO {
	buf = append(buf, p.elems...)
	return append(buf, p.dv)
}

func (p *arrayPayload) release() {
	p.elems = nil
}

// Array allocates an array of size elements, each set to dv.
func Array(size int, dv IDIO) IDIO {
	elems := make([]IDIO, size)
	for i := range elems {
		elems[i] = dv
	}
	return alloc(TypeArray, &arrayPayload{elems: elems, dv: dv})
}

// IsArray reports whether o is an array.
func IsArray(o IDIO) bool {
	return Isa(o, TypeArray)
}

func arrayOf(o IDIO) *arrayPayload {
	c := deref(o)
	if c.vtype != TypeArray {
		panic(fmt.Sprintf("array: not an array: %s", c.vtype))
	}
	return c.payload.(*arrayPayload)
}

// ArrayLength returns the element count.
func ArrayLength(o IDIO) int {
	return len(arrayOf(o).elems)
}

// ArrayRef returns element i; negative indices count from the end.
// Out of range returns the array's default value.
func ArrayRef(o IDIO, i int) IDIO {
	p := arrayOf(o)
	if i < 0 {
		i += len(p.elems)
	}
	if i < 0 || i >= len(p.elems) {
		return p.dv
	}
	return p.elems[i]
}

// ArraySet replaces element i; negative indices count from the end.
func ArraySet(o IDIO, i int, v IDIO) {
	p := arrayOf(o)
	if i < 0 {
		i += len(p.elems)
	}
	if i < 0 || i >= len(p.elems) {
		panic(fmt.Sprintf("array: set: index %d out of range", i))
	}
	p.elems[i] = v
}

// ArrayPush appends v.
func ArrayPush(o IDIO, v IDIO) {
	p := arrayOf(o)
	p.elems = append(p.elems, v)
}

// ArrayPop removes and returns the last element, or the default value
// when the array is empty.
func ArrayPop(o IDIO) IDIO {
	p := arrayOf(o)
	if len(p.elems) == 0 {
		return p.dv
	}
	v := p.elems[len(p.elems)-1]
	p.elems = p.elems[:len(p.elems)-1]
	return v
}

// ArrayToList converts an array to a proper list.
func ArrayToList(o IDIO) IDIO {
	p := arrayOf(o)
	r := Nil
	for i := len(p.elems) - 1; i >= 0; i-- {
		r = Pair(p.elems[i], r)
	}
	return r
}

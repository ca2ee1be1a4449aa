package idio

import "fmt"

type pairPayload struct {
	h IDIO
	t IDIO
}

func (p *pairPayload) children(buf []IDIO) []IDIO {
	return append(buf, p.h, p.t)
}

func (p *pairPayload) release() {}

// Pair conses h onto t.
func Pair(h, t IDIO) IDIO {
	return alloc(TypePair, &pairPayload{h: h, t: t})
}

// IsPair reports whether o is a pair.
func IsPair(o IDIO) bool {
	return Isa(o, TypePair)
}

func pairOf(o IDIO) *pairPayload {
	c := deref(o)
	if c.vtype != TypePair {
		panic(fmt.Sprintf("pair: not a pair: %s", c.vtype))
	}
	return c.payload.(*pairPayload)
}

// Head returns the head of pair o.
func Head(o IDIO) IDIO {
	return pairOf(o).h
}

// Tail returns the tail of pair o.
func Tail(o IDIO) IDIO {
	return pairOf(o).t
}

// SetHead replaces the head of pair o.
func SetHead(o, v IDIO) {
	pairOf(o).h = v
}

// SetTail replaces the tail of pair o.
func SetTail(o, v IDIO) {
	pairOf(o).t = v
}

// List builds a proper list of its arguments.
func List(items ...IDIO) IDIO {
	r := Nil
	for i := len(items) - 1; i >= 0; i-- {
		r = Pair(items[i], r)
	}
	return r
}

// ListLength returns the number of pairs in a proper list, or -1 for
// an improper list.
func ListLength(o IDIO) int {
	n := 0
	for o != Nil {
		if !IsPair(o) {
			return -1
		}
		n++
		o = Tail(o)
	}
	return n
}

// Reverse reverses a proper list.
func Reverse(o IDIO) IDIO {
	r := Nil
	for o != Nil {
		r = Pair(Head(o), r)
		o = Tail(o)
	}
	return r
}

// ImproperReverse reverses a proper list, using its first element as
// the dangling tail of the result: (3 2 1) becomes (1 2 & 3).  The
// reader uses it to fix up pair-separator forms built backwards.
func ImproperReverse(o IDIO) IDIO {
	if o == Nil {
		return Nil
	}
	if !IsPair(o) {
		return o
	}
	r := Head(o)
	o = Tail(o)
	for o != Nil {
		r = Pair(Head(o), r)
		o = Tail(o)
	}
	return r
}

// Append appends proper list b to a copy of proper list a.
func Append(a, b IDIO) IDIO {
	if a == Nil {
		return b
	}
	return Pair(Head(a), Append(Tail(a), b))
}

// Nth returns element n (zero-based) of a list, or def when the list
// is too short.
func Nth(o IDIO, n int, def IDIO) IDIO {
	for ; n > 0 && IsPair(o); n-- {
		o = Tail(o)
	}
	if IsPair(o) {
		return Head(o)
	}
	return def
}

// Memq returns the first tail of the list whose head is eq? to k, or
// False.
func Memq(k, o IDIO) IDIO {
	for IsPair(o) {
		if Head(o) == k {
			return o
		}
		o = Tail(o)
	}
	return False
}

// Assq returns the first pair of the association list whose head is
// eq? to k, or False.
func Assq(k, o IDIO) IDIO {
	for IsPair(o) {
		p := Head(o)
		if IsPair(p) && Head(p) == k {
			return p
		}
		o = Tail(o)
	}
	return False
}

// ListElements flattens a proper list into a slice.
func ListElements(o IDIO) []IDIO {
	var r []IDIO
	for IsPair(o) {
		r = append(r, Head(o))
		o = Tail(o)
	}
	return r
}

// ListToArray converts a proper list to an array.
func ListToArray(o IDIO) IDIO {
	es := ListElements(o)
	a := Array(len(es), Nil)
	ap := arrayOf(a)
	ap.elems = ap.elems[:0]
	ap.elems = append(ap.elems, es...)
	return a
}

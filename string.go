package idio

import (
	"fmt"
	"unicode/utf8"
)

// Strings store code points at the narrowest width that fits: a
// literal whose largest code point fits 8 bits uses 1-byte storage,
// 16 bits 2-byte, else 4-byte.  Octet strings and pathnames are
// 1-byte variants with no Unicode interpretation; pathnames preserve
// the exact byte sequence including embedded non-UTF-8.

type stringVariant uint8

const (
	stringPlain stringVariant = iota
	stringOctet
	stringPathname
)

type stringPayload struct {
	variant stringVariant
	width   int // element width in bytes: 1, 2 or 4
	b1      []byte
	b2      []uint16
	b4      []rune
}

func (p *stringPayload) children(buf []IDIO) []IDIO { return buf }

func (p *stringPayload) release() {
	p.b1 = nil
	p.b2 = nil
	p.b4 = nil
}

func (p *stringPayload) length() int {
	switch p.width {
	case 1:
		return len(p.b1)
	case 2:
		return len(p.b2)
	default:
		return len(p.b4)
	}
}

func (p *stringPayload) ref(i int) rune {
	switch p.width {
	case 1:
		return rune(p.b1[i])
	case 2:
		return rune(p.b2[i])
	default:
		return p.b4[i]
	}
}

// substrings hold a parent reference and a byte range into the
// parent's buffer; the reference keeps the parent alive
type substringPayload struct {
	parent  IDIO
	byteOff int
	byteLen int
}

func (p *substringPayload) children(buf []IDIO) []IDIO {
	return append(buf, p.parent)
}

func (p *substringPayload) release() {}

// StringCLen decodes UTF-8 bytes into a string at the required width.
// Malformed sequences decode to U+FFFD.
func StringCLen(bs []byte) IDIO {
	cps := make([]rune, 0, len(bs))
	for i := 0; i < len(bs); {
		r, size := utf8.DecodeRune(bs[i:])
		cps = append(cps, r)
		i += size
	}
	return stringFromCodePoints(cps, stringPlain)
}

// StringC decodes the UTF-8 of a Go string.
func StringC(s string) IDIO {
	return StringCLen([]byte(s))
}

func stringFromCodePoints(cps []rune, variant stringVariant) IDIO {
	width := 1
	for _, cp := range cps {
		if cp > 0xFFFF {
			width = 4
			break
		}
		if cp > 0xFF && width < 2 {
			width = 2
		}
	}
	p := &stringPayload{variant: variant, width: width}
	switch width {
	case 1:
		p.b1 = make([]byte, len(cps))
		for i, cp := range cps {
			p.b1[i] = byte(cp)
		}
	case 2:
		p.b2 = make([]uint16, len(cps))
		for i, cp := range cps {
			p.b2[i] = uint16(cp)
		}
	default:
		p.b4 = make([]rune, len(cps))
		copy(p.b4, cps)
	}
	return alloc(TypeString, p)
}

// OctetStringCLen stores bytes verbatim as a binary string.
func OctetStringCLen(bs []byte) IDIO {
	p := &stringPayload{variant: stringOctet, width: 1, b1: append([]byte(nil), bs...)}
	return alloc(TypeString, p)
}

// PathnameCLen stores bytes verbatim with the pathname tag, so a
// filename containing non-UTF-8 round-trips exactly.
func PathnameCLen(bs []byte) IDIO {
	p := &stringPayload{variant: stringPathname, width: 1, b1: append([]byte(nil), bs...)}
	return alloc(TypeString, p)
}

// PathnameC stores the bytes of a Go string with the pathname tag.
func PathnameC(s string) IDIO {
	return PathnameCLen([]byte(s))
}

// IsString reports whether o is a string or substring of any variant.
func IsString(o IDIO) bool {
	t := TypeOf(o)
	return t == TypeString || t == TypeSubstring
}

// IsPathname reports whether o is a pathname string.
func IsPathname(o IDIO) bool {
	if TypeOf(o) != TypeString {
		return false
	}
	return deref(o).payload.(*stringPayload).variant == stringPathname
}

// IsOctetString reports whether o is an octet string.
func IsOctetString(o IDIO) bool {
	if TypeOf(o) != TypeString {
		return false
	}
	return deref(o).payload.(*stringPayload).variant == stringOctet
}

// stringParts resolves o to its backing payload plus the element
// range [off, off+n).
func stringParts(o IDIO) (*stringPayload, int, int) {
	c := deref(o)
	switch c.vtype {
	case TypeString:
		p := c.payload.(*stringPayload)
		return p, 0, p.length()
	case TypeSubstring:
		sp := c.payload.(*substringPayload)
		pp := deref(sp.parent).payload.(*stringPayload)
		return pp, sp.byteOff / pp.width, sp.byteLen / pp.width
	default:
		panic(fmt.Sprintf("string: not a string: %s", c.vtype))
	}
}

// StringLen returns the length in code points.
func StringLen(o IDIO) int {
	_, _, n := stringParts(o)
	return n
}

// StringByteLen returns the length of the storage buffer in bytes.
func StringByteLen(o IDIO) int {
	p, _, n := stringParts(o)
	return n * p.width
}

// StringWidth returns the element width in bytes: 1, 2 or 4.
func StringWidth(o IDIO) int {
	p, _, _ := stringParts(o)
	return p.width
}

// StringRef returns code point i of o.
func StringRef(o IDIO, i int) (rune, error) {
	p, off, n := stringParts(o)
	if i < 0 || i >= n {
		return 0, &FixnumError{
			Message:  fmt.Sprintf("string-ref: index %d out of range 0..%d", i, n-1),
			Location: "string-ref",
		}
	}
	return p.ref(off + i), nil
}

// StringCodePoints flattens o to a code-point slice.
func StringCodePoints(o IDIO) []rune {
	p, off, n := stringParts(o)
	cps := make([]rune, n)
	for i := 0; i < n; i++ {
		cps[i] = p.ref(off + i)
	}
	return cps
}

// Substring returns the substring of o covering code points
// [offset, offset+length).  The substring's range must lie within its
// parent.
func Substring(o IDIO, offset, length int) (IDIO, error) {
	c := deref(o)
	parent := o
	base := 0
	if c.vtype == TypeSubstring {
		sp := c.payload.(*substringPayload)
		parent = sp.parent
		pp := deref(parent).payload.(*stringPayload)
		base = sp.byteOff / pp.width
	}
	pp, _, n := stringParts(o)
	if offset < 0 || length < 0 || offset+length > n {
		return Nil, &FixnumError{
			Message:  fmt.Sprintf("substring: range %d..%d out of range 0..%d", offset, offset+length, n),
			Location: "substring",
		}
	}
	sp := &substringPayload{
		parent:  parent,
		byteOff: (base + offset) * pp.width,
		byteLen: length * pp.width,
	}
	return alloc(TypeSubstring, sp), nil
}

// StringValue renders o as a Go string.  Plain strings encode their
// code points as UTF-8; octet strings and pathnames return their
// bytes verbatim.
func StringValue(o IDIO) string {
	p, off, n := stringParts(o)
	if p.variant != stringPlain {
		return string(p.b1[off : off+n])
	}
	var b []byte
	for i := 0; i < n; i++ {
		b = utf8.AppendRune(b, p.ref(off+i))
	}
	return string(b)
}

// StringEqual compares code points element-wise across widths; the
// variants must match.
func StringEqual(a, b IDIO) bool {
	pa, offa, na := stringParts(a)
	pb, offb, nb := stringParts(b)
	if pa.variant != pb.variant || na != nb {
		return false
	}
	for i := 0; i < na; i++ {
		if pa.ref(offa+i) != pb.ref(offb+i) {
			return false
		}
	}
	return true
}

// StringAppend concatenates its arguments into a new string at the
// width the result requires.
func StringAppend(args ...IDIO) IDIO {
	var cps []rune
	variant := stringPlain
	for _, a := range args {
		p, off, n := stringParts(a)
		if p.variant != stringPlain {
			variant = p.variant
		}
		for i := 0; i < n; i++ {
			cps = append(cps, p.ref(off+i))
		}
	}
	if variant != stringPlain {
		bs := make([]byte, len(cps))
		for i, cp := range cps {
			bs[i] = byte(cp)
		}
		if variant == stringOctet {
			return OctetStringCLen(bs)
		}
		return PathnameCLen(bs)
	}
	return stringFromCodePoints(cps, stringPlain)
}

package idio

import (
	"fmt"
	"strings"
)

// ToString renders a value in its read syntax where one exists.
func ToString(o IDIO) string {
	var b strings.Builder
	writeValue(&b, o)
	return b.String()
}

func writeValue(b *strings.Builder, o IDIO) {
	switch TypeOf(o) {
	case TypeFixnum:
		fmt.Fprintf(b, "%d", FixnumVal(o))
	case TypeConstantIdio, TypeConstantToken, TypeConstantI:
		b.WriteString(ConstantName(o))
	case TypeUnicode:
		writeUnicode(b, UnicodeVal(o))
	case TypePlaceholder:
		b.WriteString("#<placeholder>")
	case TypeString, TypeSubstring:
		writeString(b, o)
	case TypeSymbol:
		b.WriteString(SymbolName(o))
	case TypeKeyword:
		b.WriteString(":" + KeywordName(o))
	case TypePair:
		writePair(b, o)
	case TypeArray:
		b.WriteString("#[ ")
		for i, n := 0, ArrayLength(o); i < n; i++ {
			writeValue(b, ArrayRef(o, i))
			b.WriteString(" ")
		}
		b.WriteString("]")
	case TypeHash:
		b.WriteString("#{ ")
		for _, e := range HashEntries(o) {
			b.WriteString("(")
			writeValue(b, e.key)
			b.WriteString(" & ")
			writeValue(b, e.value)
			b.WriteString(") ")
		}
		b.WriteString("}")
	case TypeBignum:
		b.WriteString(BignumToString(o))
	case TypeBitset:
		writeBitset(b, o)
	case TypeHandle:
		fmt.Fprintf(b, "#<handle %s>", HandleOf(o).Name())
	case TypeStructType:
		fmt.Fprintf(b, "#<st %s>", SymbolName(StructTypeName(o)))
	case TypeStructInstance:
		st := StructInstanceType(o)
		fmt.Fprintf(b, "#<si %s", SymbolName(StructTypeName(st)))
		p := deref(o).payload.(*structInstancePayload)
		for _, f := range p.fields {
			b.WriteString(" ")
			writeValue(b, f)
		}
		b.WriteString(">")
	default:
		if IsCType(o) {
			b.WriteString(CValueString(o))
			return
		}
		fmt.Fprintf(b, "#<%s>", TypeOf(o))
	}
}

func writeUnicode(b *strings.Builder, cp rune) {
	switch cp {
	case ' ':
		b.WriteString(`#\{space}`)
	case '\n':
		b.WriteString(`#\{newline}`)
	default:
		if cp > 0x20 && cp < 0x7f {
			fmt.Fprintf(b, `#\%c`, cp)
		} else {
			fmt.Fprintf(b, "#U+%04X", cp)
		}
	}
}

var stringEscapes = map[rune]string{
	0x07: `\a`,
	0x08: `\b`,
	0x1b: `\e`,
	0x0c: `\f`,
	0x0a: `\n`,
	0x0d: `\r`,
	0x09: `\t`,
	0x0b: `\v`,
	'"':  `\"`,
	'\\': `\\`,
}

func writeString(b *strings.Builder, o IDIO) {
	switch {
	case IsPathname(o):
		b.WriteString(`#P"`)
	case IsOctetString(o):
		b.WriteString(`%B"`)
	default:
		b.WriteString(`"`)
	}
	for _, cp := range StringCodePoints(o) {
		if esc, ok := stringEscapes[cp]; ok {
			b.WriteString(esc)
			continue
		}
		if cp < 0x20 {
			fmt.Fprintf(b, `\x%02x`, cp)
			continue
		}
		if cp >= 0x80 && IsPathname(o) {
			// pathname elements are raw bytes, written back verbatim
			b.WriteByte(byte(cp))
			continue
		}
		b.WriteRune(cp)
	}
	b.WriteString(`"`)
}

func writePair(b *strings.Builder, o IDIO) {
	b.WriteString("(")
	first := true
	for {
		if !first {
			b.WriteString(" ")
		}
		writeValue(b, Head(o))
		first = false
		t := Tail(o)
		if t == Nil {
			break
		}
		if !IsPair(t) {
			b.WriteString(" & ")
			writeValue(b, t)
			break
		}
		o = t
	}
	b.WriteString(")")
}

// writeBitset renders the #B{ size offset:bits ... } literal form,
// one block per byte that has any bits set.  Blocks are binary
// numerals, most significant bit first, the way the reader takes
// them.
func writeBitset(b *strings.Builder, o IDIO) {
	p := bitsetOf(o)
	fmt.Fprintf(b, "#B{ %d", p.size)
	for off := 0; off < p.size; off += 8 {
		n := p.size - off
		if n > 8 {
			n = 8
		}
		any := false
		var block strings.Builder
		for i := n - 1; i >= 0; i-- {
			set, _ := BitsetRef(o, off+i)
			if set {
				any = true
				block.WriteByte('1')
			} else {
				block.WriteByte('0')
			}
		}
		if any {
			fmt.Fprintf(b, " %x:%s", off, block.String())
		}
	}
	b.WriteString(" }")
}

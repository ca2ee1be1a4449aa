package idio

// Incremental UTF-8 decoding as a state machine: one code point per
// acceptance, malformed sequences rejected at the first offending
// byte.  This is Bjoern Hoehrmann's DFA, the usual choice for a
// byte-at-a-time decoder.

const (
	utf8Accept = 0
	utf8Reject = 12
)

var utf8Table = [...]uint8{
	// character class for each byte
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 00..1f
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 20..3f
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 40..5f
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 60..7f
	1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, // 80..9f
	7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, 7, // a0..bf
	8, 8, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // c0..df
	10, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 4, 3, 3, 11, 6, 6, 6, 5, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, 8, // e0..ff

	// transition table
	0, 12, 24, 36, 60, 96, 84, 12, 12, 12, 48, 72, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12,
	12, 0, 12, 12, 12, 12, 12, 0, 12, 0, 12, 12, 12, 24, 12, 12, 12, 12, 12, 24, 12, 24, 12, 12,
	12, 12, 12, 12, 12, 12, 12, 24, 12, 12, 12, 12, 12, 24, 12, 12, 12, 12, 12, 12, 12, 24, 12, 12,
	12, 12, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12, 12, 36, 12, 12, 12, 12, 12, 36, 12, 36, 12, 12,
	12, 36, 12, 12, 12, 12, 12, 12, 12, 12, 12, 12,
}

type utf8Decoder struct {
	state uint32
	codep rune
}

// step feeds one byte; the return is utf8Accept (codep holds a
// complete code point), utf8Reject, or an intermediate state.
func (d *utf8Decoder) step(b byte) uint32 {
	ctype := uint32(utf8Table[b])
	if d.state == utf8Accept {
		d.codep = rune(b) & rune(0xff>>ctype)
	} else {
		d.codep = rune(b)&0x3f | d.codep<<6
	}
	d.state = uint32(utf8Table[256+int(d.state)+int(ctype)])
	return d.state
}

func (d *utf8Decoder) reset() {
	d.state = utf8Accept
	d.codep = 0
}

// utf8Decode decodes one code point from bs starting at i.
// Returns the code point, the number of bytes consumed, and whether
// the sequence was well-formed.  A malformed sequence yields U+FFFD
// and consumes the bytes before the offending one (at least one).
func utf8Decode(bs []byte, i int) (rune, int, bool) {
	var d utf8Decoder
	n := 0
	for i+n < len(bs) {
		switch d.step(bs[i+n]) {
		case utf8Accept:
			return d.codep, n + 1, true
		case utf8Reject:
			return 0xFFFD, max(n, 1), false
		}
		n++
	}
	// truncated sequence at end of input
	return 0xFFFD, max(n, 1), false
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// utf8Append encodes cp as UTF-8 onto bs.
func utf8Append(bs []byte, cp rune) []byte {
	switch {
	case cp < 0x80:
		return append(bs, byte(cp))
	case cp < 0x800:
		return append(bs, byte(0xC0|cp>>6), byte(0x80|cp&0x3f))
	case cp < 0x10000:
		return append(bs, byte(0xE0|cp>>12), byte(0x80|cp>>6&0x3f), byte(0x80|cp&0x3f))
	default:
		return append(bs, byte(0xF0|cp>>18), byte(0x80|cp>>12&0x3f), byte(0x80|cp>>6&0x3f), byte(0x80|cp&0x3f))
	}
}

// utf8Len is the encoded length of cp.
func utf8Len(cp rune) int {
	switch {
	case cp < 0x80:
		return 1
	case cp < 0x800:
		return 2
	case cp < 0x10000:
		return 3
	default:
		return 4
	}
}

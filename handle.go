package idio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// A Handle feeds the reader Unicode code points and tracks the
// filename, line and position used for source attribution.  The eof
// sentinel follows the cursor convention: Getc returns eofRune once
// the input is exhausted and EofP reports true afterwards.
const eofRune = rune(-1)

// errMalformedUTF8 is returned by Getc for an invalid byte sequence.
// Getc returns U+FFFD alongside it; the reader raises it as a
// ^read-error.
var errMalformedUTF8 = errors.New("UTF-8 decode: not well-formed")

type Handle interface {
	// Getc decodes and consumes one code point, eofRune at end of
	// input.
	Getc() (rune, error)

	// Ungetc pushes cp back; the next Getc returns it.  Only code
	// points just read may be pushed back.
	Ungetc(cp rune)

	// Peek returns the next code point without consuming it.
	Peek() (rune, error)

	// Getb consumes one raw byte.
	Getb() (byte, error)

	// Putb appends one raw byte to the handle's output.
	Putb(b byte) error

	// EofP reports whether a Getc has hit end of input.
	EofP() bool

	Name() string
	Line() int
	Pos() int
	Tell() int64
	Seek(offset int64, whence int) (int64, error)
}

// bufferHandle is the common core of string and file handles: a byte
// buffer with position and line tracking.  Pushback re-encodes the
// code point into a pending byte queue so Getc and Getb compose.
type bufferHandle struct {
	name    string
	data    []byte
	pos     int
	line    int
	eof     bool
	pending []byte
	out     []byte
}

func (h *bufferHandle) Name() string { return h.name }
func (h *bufferHandle) Line() int    { return h.line }
func (h *bufferHandle) EofP() bool   { return h.eof }

// Pos reports the byte offset of the next byte to be served.
func (h *bufferHandle) Pos() int {
	return h.pos - len(h.pending)
}

func (h *bufferHandle) Tell() int64 {
	return int64(h.Pos())
}

func (h *bufferHandle) Getc() (rune, error) {
	if len(h.pending) > 0 {
		cp, size, ok := utf8Decode(h.pending, 0)
		h.pending = h.pending[size:]
		if !ok {
			return 0xFFFD, errMalformedUTF8
		}
		if cp == '\n' {
			h.line++
		}
		return cp, nil
	}
	if h.pos >= len(h.data) {
		h.eof = true
		return eofRune, nil
	}
	cp, size, ok := utf8Decode(h.data, h.pos)
	h.pos += size
	if !ok {
		return 0xFFFD, errMalformedUTF8
	}
	if cp == '\n' {
		h.line++
	}
	return cp, nil
}

func (h *bufferHandle) Ungetc(cp rune) {
	if cp == eofRune {
		return
	}
	if cp == '\n' {
		h.line--
	}
	h.pending = append(utf8Append(nil, cp), h.pending...)
	h.eof = false
}

func (h *bufferHandle) Peek() (rune, error) {
	cp, err := h.Getc()
	if err != nil {
		return cp, err
	}
	if cp == eofRune {
		h.eof = false
		return eofRune, nil
	}
	h.Ungetc(cp)
	return cp, nil
}

func (h *bufferHandle) Getb() (byte, error) {
	if len(h.pending) > 0 {
		b := h.pending[0]
		h.pending = h.pending[1:]
		if b == '\n' {
			h.line++
		}
		return b, nil
	}
	if h.pos >= len(h.data) {
		h.eof = true
		return 0, io.EOF
	}
	b := h.data[h.pos]
	h.pos++
	if b == '\n' {
		h.line++
	}
	return b, nil
}

func (h *bufferHandle) Putb(b byte) error {
	h.out = append(h.out, b)
	return nil
}

func (h *bufferHandle) Seek(offset int64, whence int) (int64, error) {
	var target int64
	switch whence {
	case io.SeekStart:
		target = offset
	case io.SeekCurrent:
		target = int64(h.Pos()) + offset
	case io.SeekEnd:
		target = int64(len(h.data)) + offset
	default:
		return 0, fmt.Errorf("handle: seek: bad whence %d", whence)
	}
	if target < 0 || target > int64(len(h.data)) {
		return 0, fmt.Errorf("handle: seek: %d out of range", target)
	}
	h.pos = int(target)
	h.pending = nil
	h.eof = false
	h.line = 1
	for _, b := range h.data[:h.pos] {
		if b == '\n' {
			h.line++
		}
	}
	return target, nil
}

// StringHandle is an input handle over in-memory text.
type StringHandle struct {
	bufferHandle
}

// NewStringHandle wraps s as an input handle named name.
func NewStringHandle(name, s string) *StringHandle {
	return &StringHandle{bufferHandle{name: name, data: []byte(s), line: 1}}
}

// Output returns the bytes written with Putb.
func (h *StringHandle) Output() []byte {
	return h.out
}

// FileHandle is an input handle over a file's contents.
type FileHandle struct {
	bufferHandle
	path string
}

// OpenFileHandle reads path and returns a handle over its contents.
func OpenFileHandle(path string) (*FileHandle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return &FileHandle{
		bufferHandle: bufferHandle{name: path, data: data, line: 1},
		path:         path,
	}, nil
}

// Close flushes any bytes written with Putb back to the file.
func (h *FileHandle) Close() error {
	if len(h.out) == 0 {
		return nil
	}
	return os.WriteFile(h.path, h.out, 0644)
}

// PipeHandle is an input handle over a stream: the reader's
// lookahead discipline wants the whole input, so the stream is
// drained at construction.
type PipeHandle struct {
	bufferHandle
}

// NewPipeHandle drains rd and returns a handle over its contents.
func NewPipeHandle(name string, rd io.Reader) (*PipeHandle, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, err
	}
	return &PipeHandle{bufferHandle{name: name, data: data, line: 1}}, nil
}

// handlePayload boxes a Handle as a heap value so handles can sit in
// thread and continuation slots.
type handlePayload struct {
	h Handle
}

func (p *handlePayload) children(buf []IDIO) []IDIO { return buf }
func (p *handlePayload) release()                   { p.h = nil }

// HandleValue boxes h.
func HandleValue(h Handle) IDIO {
	return alloc(TypeHandle, &handlePayload{h: h})
}

// HandleOf unboxes a handle value.
func HandleOf(o IDIO) Handle {
	return deref(o).payload.(*handlePayload).h
}

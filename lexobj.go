package idio

import "fmt"

// Struct types and instances, enough machinery for the lexical-object
// type the reader hands out with every expression.

type structTypePayload struct {
	name   IDIO // symbol
	parent IDIO // struct type or Nil
	fields []IDIO
}

func (p *structTypePayload) children(buf []IDIO) []IDIO {
	buf = append(buf, p.name, p.parent)
	return append(buf, p.fields...)
}

func (p *structTypePayload) release() {
	p.fields = nil
}

type structInstancePayload struct {
	stype  IDIO
	fields []IDIO
}

func (p *structInstancePayload) children(buf []IDIO) []IDIO {
	buf = append(buf, p.stype)
	return append(buf, p.fields...)
}

func (p *structInstancePayload) release() {
	p.fields = nil
}

// StructType defines a struct type with the given name, parent and
// field names.
func StructType(name, parent IDIO, fields []IDIO) IDIO {
	return alloc(TypeStructType, &structTypePayload{name: name, parent: parent, fields: fields})
}

// StructInstance instantiates st with field values.
func StructInstance(st IDIO, fields []IDIO) IDIO {
	stp := deref(st).payload.(*structTypePayload)
	if len(fields) != len(stp.fields) {
		panic(fmt.Sprintf("struct-instance: %s expects %d fields, got %d",
			SymbolName(stp.name), len(stp.fields), len(fields)))
	}
	return alloc(TypeStructInstance, &structInstancePayload{stype: st, fields: fields})
}

// IsStructInstance reports whether o is a struct instance, optionally
// of struct type st.
func IsStructInstance(o IDIO, st IDIO) bool {
	if !Isa(o, TypeStructInstance) {
		return false
	}
	return st == Nil || deref(o).payload.(*structInstancePayload).stype == st
}

// StructInstanceType returns the instance's struct type.
func StructInstanceType(o IDIO) IDIO {
	return deref(o).payload.(*structInstancePayload).stype
}

// StructInstanceRef returns field i of the instance.
func StructInstanceRef(o IDIO, i int) IDIO {
	return deref(o).payload.(*structInstancePayload).fields[i]
}

// StructInstanceSet replaces field i of the instance.
func StructInstanceSet(o IDIO, i int, v IDIO) {
	deref(o).payload.(*structInstancePayload).fields[i] = v
}

// StructTypeName returns the type's name symbol.
func StructTypeName(o IDIO) IDIO {
	return deref(o).payload.(*structTypePayload).name
}

// StructTypeFields returns the type's field name symbols.
func StructTypeFields(o IDIO) []IDIO {
	return deref(o).payload.(*structTypePayload).fields
}

// ---- lexical objects ----

// Every reader step yields a lexical object: the handle name, the
// line and position the expression started at, and the expression.
const (
	lexobjName = iota
	lexobjLine
	lexobjPos
	lexobjExpr
)

var (
	lexobjType    IDIO
	srcProperties IDIO
)

func initLexObj() {
	lexobjType = StructType(Symbol("%idio-lexical-object"), Nil, []IDIO{
		Symbol("name"),
		Symbol("line"),
		Symbol("pos"),
		Symbol("expr"),
	})
	ProtectAuto(lexobjType)

	// keyed by the pairs the reader builds; entries must not keep
	// an otherwise-dead expression alive
	srcProperties = HashEqP(64)
	HashSetWeakKeys(srcProperties)
	ProtectAuto(srcProperties)
}

// LexObjType returns the lexical-object struct type.
func LexObjType() IDIO {
	return lexobjType
}

// NewLexObj builds a lexical object for expr at name:line:pos.
func NewLexObj(name IDIO, line, pos int, expr IDIO) IDIO {
	return StructInstance(lexobjType, []IDIO{name, Fixnum(line), Fixnum(pos), expr})
}

// LexObjExpr returns the expression a lexical object carries.
func LexObjExpr(lo IDIO) IDIO {
	return StructInstanceRef(lo, lexobjExpr)
}

// SrcProperties returns the weak expr→lexobj map the reader
// populates.
func SrcProperties() IDIO {
	return srcProperties
}

// SetSrcProperty records the lexical object for a composite reader
// product.
func SetSrcProperty(expr, lo IDIO) {
	HashSet(srcProperties, expr, lo)
}

// SrcProperty recovers the lexical object attributed to expr.
func SrcProperty(expr IDIO) (IDIO, bool) {
	return HashRef(srcProperties, expr)
}

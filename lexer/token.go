package lexer

import (
	"fmt"
	"strconv"
)

// Position tracks a source location for error messages.
type Position struct {
	File   string
	Offset int // 0-based byte offset into source
	Line   int // 1-based line number
	Column int // 1-based column number
}

func (p Position) String() string {
	file := p.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, p.Line, p.Column)
}

// Kind identifies the type of a classified token.
type Kind int

const (
	KindWord Kind = iota
	KindNumber
	KindString
	KindNamedPointer
	KindValuePointer
)

var kindNames = map[Kind]string{
	KindWord:         "word",
	KindNumber:       "number",
	KindString:       "string",
	KindNamedPointer: "named-pointer",
	KindValuePointer: "value-pointer",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Radix is the base a Number literal was written in.
type Radix int

const (
	Decimal Radix = 10
	Hex     Radix = 16
)

func (r Radix) String() string {
	switch r {
	case Decimal:
		return "dec"
	case Hex:
		return "hex"
	}
	return "radix(" + strconv.Itoa(int(r)) + ")"
}

// Token is a single classified lexical unit. The set of implementations is
// closed: Word, Number, StringLiteral, NamedPointer and ValuePointer.
type Token interface {
	Kind() Kind
	Position() Position
	// Payload renders the token's value the way the trace output prints it.
	Payload() string

	token()
}

// Word is an opcode or identifier that matches no other shape.
type Word struct {
	Text string
	Pos  Position
}

// Number is a decimal or 0x-prefixed hexadecimal literal.
type Number struct {
	Value uint32
	Radix Radix
	Pos   Position
}

// StringLiteral is the verbatim content between two quote characters.
type StringLiteral struct {
	Text string
	Pos  Position
}

// NamedPointer is a symbolic @name reference, resolved later by a symbol table.
type NamedPointer struct {
	Name string
	Pos  Position
}

// ValuePointer is a literal @hex address reference.
type ValuePointer struct {
	Value uint32
	Pos   Position
}

func (Word) Kind() Kind          { return KindWord }
func (Number) Kind() Kind        { return KindNumber }
func (StringLiteral) Kind() Kind { return KindString }
func (NamedPointer) Kind() Kind  { return KindNamedPointer }
func (ValuePointer) Kind() Kind  { return KindValuePointer }

func (t Word) Position() Position          { return t.Pos }
func (t Number) Position() Position        { return t.Pos }
func (t StringLiteral) Position() Position { return t.Pos }
func (t NamedPointer) Position() Position  { return t.Pos }
func (t ValuePointer) Position() Position  { return t.Pos }

func (t Word) Payload() string { return t.Text }

func (t Number) Payload() string {
	if t.Radix == Hex {
		return fmt.Sprintf("0x%X", t.Value)
	}
	return strconv.FormatUint(uint64(t.Value), 10)
}

func (t StringLiteral) Payload() string { return strconv.Quote(t.Text) }
func (t NamedPointer) Payload() string  { return "@" + t.Name }
func (t ValuePointer) Payload() string  { return fmt.Sprintf("@0x%X", t.Value) }

func (Word) token()          {}
func (Number) token()        {}
func (StringLiteral) token() {}
func (NamedPointer) token()  {}
func (ValuePointer) token()  {}

// Format renders a token as "<kind> <payload>".
func Format(tok Token) string {
	return tok.Kind().String() + " " + tok.Payload()
}

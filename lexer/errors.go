package lexer

import "fmt"

// LexError is the base error type for all lexer errors.
type LexError struct {
	Message string
	Pos     Position
	Cause   error
}

func (e *LexError) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s (offset %d): %s", e.Pos, e.Pos.Offset, e.Message)
	}
	return e.Message
}

func (e *LexError) Unwrap() error { return e.Cause }

// UnterminatedStringError reports end of input inside a string literal.
// Pos is the opening quote.
type UnterminatedStringError struct{ LexError }

// TokenTooLongError reports a lexeme that outgrew the scanner's buffer.
type TokenTooLongError struct {
	LexError
	Limit int
}

// InvalidNumberError reports a numeric-shaped lexeme that could not be
// decoded (bad digits or out of uint32 range).
type InvalidNumberError struct {
	LexError
	Lexeme string
}

package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	hexPrefix     = "0x"
	pointerPrefix = "@"
)

// Classify turns a word-like lexeme into its final token. The checks run in a
// fixed order and the first one that matches wins, so "0x10" is always a hex
// Number and never a Word, and "@1A" is a ValuePointer rather than a name.
func Classify(lexeme string, pos Position) (Token, error) {
	switch {
	case strings.HasPrefix(lexeme, hexPrefix):
		digits := lexeme[len(hexPrefix):]
		if digits == "" || !allHex(digits) {
			return nil, invalidNumber(lexeme, pos, "hexadecimal literal needs hex digits after 0x", nil)
		}
		n, err := parseUint32(lexeme, digits, 16, pos)
		if err != nil {
			return nil, err
		}
		return Number{Value: n, Radix: Hex, Pos: pos}, nil

	case lexeme != "" && allDecimal(lexeme):
		n, err := parseUint32(lexeme, lexeme, 10, pos)
		if err != nil {
			return nil, err
		}
		return Number{Value: n, Radix: Decimal, Pos: pos}, nil

	case strings.HasPrefix(lexeme, pointerPrefix):
		rest := lexeme[len(pointerPrefix):]
		if rest != "" && allHex(rest) {
			n, err := parseUint32(lexeme, rest, 16, pos)
			if err != nil {
				return nil, err
			}
			return ValuePointer{Value: n, Pos: pos}, nil
		}
		return NamedPointer{Name: rest, Pos: pos}, nil

	default:
		return Word{Text: lexeme, Pos: pos}, nil
	}
}

func parseUint32(lexeme, digits string, base int, pos Position) (uint32, error) {
	n, err := strconv.ParseUint(digits, base, 32)
	if err != nil {
		return 0, invalidNumber(lexeme, pos, fmt.Sprintf("invalid number %q: does not fit in 32 bits", lexeme), err)
	}
	return uint32(n), nil
}

func invalidNumber(lexeme string, pos Position, msg string, cause error) error {
	return &InvalidNumberError{
		LexError: LexError{Message: msg, Pos: pos, Cause: cause},
		Lexeme:   lexeme,
	}
}

func allDecimal(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func allHex(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

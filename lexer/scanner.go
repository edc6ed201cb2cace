package lexer

import (
	"bufio"
	"io"
	"iter"
	"strings"
)

const (
	commentChar = '#'
	quoteChar   = '"'

	// DefaultMaxTokenLength matches the fixed token buffer of the original
	// saispe assembler.
	DefaultMaxTokenLength = 256
)

// Mode is the scanner's current interpretation context.
type Mode int

const (
	ModeCode Mode = iota
	ModeString
	ModeComment
)

var modeNames = map[Mode]string{
	ModeCode:    "code",
	ModeString:  "string",
	ModeComment: "comment",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return "unknown"
}

// Surface tells whether a raw lexeme still needs classification.
type Surface int

const (
	WordLike Surface = iota
	StringLike
)

// Lexeme is a raw, unclassified substring cut out by the scanner.
type Lexeme struct {
	Text    string
	Surface Surface
	Pos     Position // first character, or the opening quote for strings
}

// Config holds scanner limits.
type Config struct {
	// MaxTokenLength is the largest lexeme, in bytes, the scanner will
	// buffer. Zero or negative means DefaultMaxTokenLength.
	MaxTokenLength int
}

// DefaultConfig returns the configuration used by the saispe command.
func DefaultConfig() Config {
	return Config{MaxTokenLength: DefaultMaxTokenLength}
}

func (c Config) maxTokenLength() int {
	if c.MaxTokenLength <= 0 {
		return DefaultMaxTokenLength
	}
	return c.MaxTokenLength
}

// Scanner reads source text one byte at a time and produces tokens. It never
// looks ahead or pushes back; all state lives in the mode and the buffer.
// Bytes outside ASCII are copied through untouched, so UTF-8 text inside
// words and strings survives verbatim.
type Scanner struct {
	r     *bufio.Reader
	file  string
	limit int

	mode  Mode
	buf   strings.Builder
	start Position

	pos  int // current byte offset
	line int // current line (1-based)
	col  int // current column (1-based)

	err error // sticky; set once the stream has ended or failed
}

// NewScanner creates a Scanner over r. file is only used in positions.
func NewScanner(r io.Reader, file string, cfg Config) *Scanner {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Scanner{
		r:     br,
		file:  file,
		limit: cfg.maxTokenLength(),
		line:  1,
		col:   1,
	}
}

// Mode reports the scanner's current mode.
func (s *Scanner) Mode() Mode { return s.mode }

// Next returns the next classified token. It returns io.EOF once the input
// is exhausted cleanly; any other error is a *LexError variant and ends the
// stream.
func (s *Scanner) Next() (Token, error) {
	lx, err := s.NextLexeme()
	if err != nil {
		return nil, err
	}
	if lx.Surface == StringLike {
		return StringLiteral{Text: lx.Text, Pos: lx.Pos}, nil
	}
	tok, err := Classify(lx.Text, lx.Pos)
	if err != nil {
		s.err = err
		return nil, err
	}
	return tok, nil
}

// All returns an iterator over the remaining tokens. Iteration stops after
// the first error, which is yielded with a nil token.
func (s *Scanner) All() iter.Seq2[Token, error] {
	return func(yield func(Token, error) bool) {
		for {
			tok, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

// NextLexeme returns the next raw lexeme without classifying it.
func (s *Scanner) NextLexeme() (Lexeme, error) {
	if s.err != nil {
		return Lexeme{}, s.err
	}

	for {
		pos := s.currentPos()
		ch, err := s.r.ReadByte()
		if err == io.EOF {
			return s.finish()
		}
		if err != nil {
			s.err = &LexError{Message: "read failed", Pos: pos, Cause: err}
			return Lexeme{}, s.err
		}
		s.advance(ch)

		switch s.mode {
		case ModeCode:
			switch {
			case isSpace(ch):
				if s.buf.Len() > 0 {
					return s.flush(WordLike), nil
				}
			case ch == commentChar:
				// Anything already buffered is dropped, not emitted.
				s.buf.Reset()
				s.mode = ModeComment
			case ch == quoteChar:
				s.buf.Reset()
				s.mode = ModeString
				s.start = pos
			default:
				if s.buf.Len() == 0 {
					s.start = pos
				}
				if err := s.append(ch, pos); err != nil {
					return Lexeme{}, err
				}
			}

		case ModeComment:
			if ch == '\n' {
				s.mode = ModeCode
			}

		case ModeString:
			if ch == quoteChar {
				s.mode = ModeCode
				return s.flush(StringLike), nil
			}
			if err := s.append(ch, pos); err != nil {
				return Lexeme{}, err
			}
		}
	}
}

func (s *Scanner) finish() (Lexeme, error) {
	switch s.mode {
	case ModeString:
		s.err = &UnterminatedStringError{LexError{
			Message: "unterminated string",
			Pos:     s.start,
		}}
		return Lexeme{}, s.err
	case ModeCode:
		if s.buf.Len() > 0 {
			return s.flush(WordLike), nil
		}
	}
	s.err = io.EOF
	return Lexeme{}, io.EOF
}

func (s *Scanner) append(ch byte, pos Position) error {
	if s.buf.Len()+1 > s.limit {
		s.buf.Reset()
		s.err = &TokenTooLongError{
			LexError: LexError{
				Message: "token exceeds maximum length",
				Pos:     pos,
			},
			Limit: s.limit,
		}
		return s.err
	}
	s.buf.WriteByte(ch)
	return nil
}

func (s *Scanner) flush(surface Surface) Lexeme {
	lx := Lexeme{Text: s.buf.String(), Surface: surface, Pos: s.start}
	s.buf.Reset()
	return lx
}

func (s *Scanner) currentPos() Position {
	return Position{File: s.file, Offset: s.pos, Line: s.line, Column: s.col}
}

func (s *Scanner) advance(ch byte) {
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

// isSpace reports token separators in code mode. '\r' is not one: it is
// kept as part of the word it follows.
func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n'
}

package lexer

import (
	"io"
	"sync"
)

// Sink receives tokens one at a time as the scanner produces them. Returning
// an error stops tokenization and is passed back to the caller unchanged.
type Sink interface {
	Accept(tok Token) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(tok Token) error

func (f SinkFunc) Accept(tok Token) error { return f(tok) }

// Tokenize scans r to the end and hands every token to sink.
func Tokenize(r io.Reader, file string, cfg Config, sink Sink) error {
	sc := NewScanner(r, file, cfg)
	for tok, err := range sc.All() {
		if err != nil {
			return err
		}
		if err := sink.Accept(tok); err != nil {
			return err
		}
	}
	return nil
}

// Collector is a Sink that keeps every token it receives.
type Collector struct {
	mu     sync.Mutex
	tokens []Token
}

func (c *Collector) Accept(tok Token) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = append(c.tokens, tok)
	return nil
}

// Tokens returns a copy of the collected tokens.
func (c *Collector) Tokens() []Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Token, len(c.tokens))
	copy(out, c.tokens)
	return out
}

// Reset drops everything collected so far.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = nil
}

// MultiSink delivers each token to every sink in order, stopping at the
// first error.
func MultiSink(sinks ...Sink) Sink {
	all := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			all = append(all, s)
		}
	}
	return SinkFunc(func(tok Token) error {
		for _, s := range all {
			if err := s.Accept(tok); err != nil {
				return err
			}
		}
		return nil
	})
}

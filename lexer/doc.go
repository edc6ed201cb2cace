// Package lexer implements the lexical front end of the saispe assembler.
//
// Source text is consumed one character at a time by a three-mode scanner
// (code, string, comment). Whitespace separates lexemes in code mode, '#'
// starts a comment that runs to the end of the line, and '"' opens a string
// literal that runs to the next '"' with no escape processing.
//
// Word-like lexemes are then classified, first match wins:
//
//   - 0x<hex>   hexadecimal Number
//   - <digits>  decimal Number
//   - @<hex>    ValuePointer
//   - @<other>  NamedPointer
//   - anything else is a Word
//
// Usage:
//
//	sc := lexer.NewScanner(f, "boot.s", lexer.DefaultConfig())
//	for tok, err := range sc.All() {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(tok)
//	}
//
// Numeric literals and value pointers decode to uint32; anything wider is an
// InvalidNumberError rather than a truncated value.
package lexer

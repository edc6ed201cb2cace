// Package assembler drives the saispe front end over a list of source files.
//
// Files are scanned strictly in the order given, one at a time. The first
// file that cannot be opened or fails to lex aborts the run. Each file handle
// is closed before Run moves on or returns, whichever way the scan ended.
//
// Code generation is not implemented yet: the output file is created and
// closed so the path is validated, but nothing is written to it.
package assembler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/deveah/saispe/lexer"
	"github.com/deveah/saispe/logs"
	"github.com/google/uuid"
)

// DefaultOutput is the output path used when none is given.
const DefaultOutput = "output.com"

// ErrNoInputs is returned by Run when Config.Inputs is empty.
var ErrNoInputs = errors.New("no input files")

// FileOpenError reports an input or output file that could not be opened.
type FileOpenError struct {
	Path  string
	Cause error
}

func (e *FileOpenError) Error() string {
	return fmt.Sprintf("cannot open %s: %v", e.Path, e.Cause)
}

func (e *FileOpenError) Unwrap() error { return e.Cause }

// Config configures an assembly run.
type Config struct {
	// Inputs are source paths, scanned in order.
	Inputs []string

	// Output is the object file path. Empty means DefaultOutput.
	Output string

	// Lexer carries scanner limits.
	Lexer lexer.Config

	// Sink receives every token of every file. May be nil.
	Sink lexer.Sink

	// EventEmitter receives run and file lifecycle events. May be nil.
	EventEmitter *EventEmitter

	// Logger receives progress records. Nil discards them.
	Logger *slog.Logger

	// Open opens an input file. If nil, os.Open is used.
	// Tests inject this to observe handle release.
	Open func(path string) (io.ReadCloser, error)
}

// FileResult summarizes one scanned input.
type FileResult struct {
	Path     string
	Tokens   int
	Duration time.Duration
}

// Result contains the outcome of a run.
type Result struct {
	RunID  string
	Output string
	Files  []FileResult
}

// Tokens returns the total token count across all files.
func (r *Result) Tokens() int {
	n := 0
	for _, f := range r.Files {
		n += f.Tokens
	}
	return n
}

// Run scans every input in order. On error the partial Result describes the
// files that completed before the failure.
func Run(ctx context.Context, config *Config) (*Result, error) {
	if config == nil {
		config = &Config{}
	}
	if len(config.Inputs) == 0 {
		return nil, ErrNoInputs
	}

	logger := config.Logger
	if logger == nil {
		logger = logs.Discard()
	}
	emitter := config.EventEmitter
	if emitter == nil {
		emitter = NewEventEmitter()
	}
	open := config.Open
	if open == nil {
		open = func(path string) (io.ReadCloser, error) { return os.Open(path) }
	}
	output := config.Output
	if output == "" {
		output = DefaultOutput
	}

	result := &Result{RunID: uuid.NewString(), Output: output}
	logger = logger.With("run", result.RunID)
	startTime := time.Now()

	fail := func(err error) (*Result, error) {
		emitter.Emit(RunFailedEvent(result.RunID, err.Error(), time.Since(startTime)))
		logger.Debug("run failed", "error", err)
		return result, err
	}

	emitter.Emit(RunStartedEvent(result.RunID, len(config.Inputs), output))
	logger.Debug("run started", "files", len(config.Inputs), "output", output)

	out, err := os.Create(output)
	if err != nil {
		return fail(&FileOpenError{Path: output, Cause: err})
	}
	defer out.Close()

	for i, path := range config.Inputs {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}

		emitter.Emit(FileStartedEvent(result.RunID, path, i))
		fr, err := scanFile(path, open, config.Lexer, config.Sink, logger)
		if err != nil {
			emitter.Emit(FileFailedEvent(result.RunID, path, err.Error()))
			return fail(err)
		}
		result.Files = append(result.Files, fr)
		emitter.Emit(FileCompletedEvent(result.RunID, path, fr.Tokens, fr.Duration))
		logger.Info("scanned", "file", path, "tokens", fr.Tokens)
	}

	if err := out.Close(); err != nil {
		return fail(fmt.Errorf("closing output: %w", err))
	}

	emitter.Emit(RunCompletedEvent(result.RunID, time.Since(startTime), result.Tokens()))
	return result, nil
}

func scanFile(
	path string,
	open func(string) (io.ReadCloser, error),
	cfg lexer.Config,
	sink lexer.Sink,
	logger *slog.Logger,
) (FileResult, error) {
	start := time.Now()
	f, err := open(path)
	if err != nil {
		return FileResult{}, &FileOpenError{Path: path, Cause: err}
	}
	defer f.Close()

	fr := FileResult{Path: path}
	err = lexer.Tokenize(f, path, cfg, lexer.SinkFunc(func(tok lexer.Token) error {
		fr.Tokens++
		logger.Debug("token",
			"kind", tok.Kind().String(),
			"payload", tok.Payload(),
			"offset", tok.Position().Offset,
		)
		if sink != nil {
			return sink.Accept(tok)
		}
		return nil
	}))
	if err != nil {
		return FileResult{}, err
	}
	fr.Duration = time.Since(start)
	return fr, nil
}

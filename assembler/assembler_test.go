package assembler

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/deveah/saispe/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSource(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

// trackingOpener records which files were opened and whether each was closed.
type trackingOpener struct {
	opened []string
	open   map[string]int
}

type trackedFile struct {
	io.ReadCloser
	path   string
	opener *trackingOpener
}

func (f *trackedFile) Close() error {
	f.opener.open[f.path]--
	return f.ReadCloser.Close()
}

func (o *trackingOpener) Open(path string) (io.ReadCloser, error) {
	if o.open == nil {
		o.open = make(map[string]int)
	}
	o.opened = append(o.opened, path)
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	o.open[path]++
	return &trackedFile{ReadCloser: f, path: path, opener: o}, nil
}

func (o *trackingOpener) leaked() []string {
	var out []string
	for path, n := range o.open {
		if n != 0 {
			out = append(out, path)
		}
	}
	return out
}

func TestRunScansFilesInOrder(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.s", "mov ax 0x10\n")
	b := writeSource(t, dir, "b.s", "# only a comment\n@loop \"hi\"")

	var sink lexer.Collector
	opener := &trackingOpener{}
	result, err := Run(context.Background(), &Config{
		Inputs: []string{b, a},
		Output: filepath.Join(dir, "out.com"),
		Sink:   &sink,
		Open:   opener.Open,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{b, a}, opener.opened)
	assert.Empty(t, opener.leaked())

	require.Len(t, result.Files, 2)
	assert.Equal(t, b, result.Files[0].Path)
	assert.Equal(t, 2, result.Files[0].Tokens)
	assert.Equal(t, 3, result.Files[1].Tokens)
	assert.Equal(t, 5, result.Tokens())
	assert.NotEmpty(t, result.RunID)

	tokens := sink.Tokens()
	require.Len(t, tokens, 5)
	assert.Equal(t, lexer.NamedPointer{Name: "loop", Pos: tokens[0].Position()}, tokens[0])
	assert.Equal(t, b, tokens[0].Position().File)
	assert.Equal(t, a, tokens[2].Position().File)
}

func TestRunCreatesEmptyOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "nop")
	out := filepath.Join(dir, "prog.com")

	_, err := Run(context.Background(), &Config{Inputs: []string{src}, Output: out})
	require.NoError(t, err)

	info, err := os.Stat(out)
	require.NoError(t, err)
	assert.Equal(t, int64(0), info.Size())
}

func TestRunDefaultOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "nop")
	t.Chdir(dir)

	result, err := Run(context.Background(), &Config{Inputs: []string{src}})
	require.NoError(t, err)
	assert.Equal(t, DefaultOutput, result.Output)
	assert.FileExists(t, filepath.Join(dir, DefaultOutput))
}

func TestRunNoInputs(t *testing.T) {
	_, err := Run(context.Background(), &Config{})
	assert.ErrorIs(t, err, ErrNoInputs)

	_, err = Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoInputs)
}

func TestRunMissingFileFailsFast(t *testing.T) {
	dir := t.TempDir()
	good := writeSource(t, dir, "good.s", "nop")
	missing := filepath.Join(dir, "missing.s")

	opener := &trackingOpener{}
	result, err := Run(context.Background(), &Config{
		Inputs: []string{good, missing, good},
		Output: filepath.Join(dir, "out.com"),
		Open:   opener.Open,
	})
	require.Error(t, err)

	var openErr *FileOpenError
	require.True(t, errors.As(err, &openErr))
	assert.Equal(t, missing, openErr.Path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	assert.Equal(t, []string{good, missing}, opener.opened)
	assert.Empty(t, opener.leaked())
	require.Len(t, result.Files, 1)
}

func TestRunLexErrorClosesFileAndAborts(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "bad.s", "db \"unterminated")
	next := writeSource(t, dir, "next.s", "nop")

	var sink lexer.Collector
	opener := &trackingOpener{}
	result, err := Run(context.Background(), &Config{
		Inputs: []string{bad, next},
		Output: filepath.Join(dir, "out.com"),
		Sink:   &sink,
		Open:   opener.Open,
	})
	require.Error(t, err)

	var unterminated *lexer.UnterminatedStringError
	require.True(t, errors.As(err, &unterminated))
	assert.Equal(t, bad, unterminated.Pos.File)
	assert.Equal(t, 3, unterminated.Pos.Offset)

	assert.Equal(t, []string{bad}, opener.opened)
	assert.Empty(t, opener.leaked())
	assert.Empty(t, result.Files)
}

func TestRunTokenTooLong(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "nop verylongword")

	_, err := Run(context.Background(), &Config{
		Inputs: []string{src},
		Output: filepath.Join(dir, "out.com"),
		Lexer:  lexer.Config{MaxTokenLength: 4},
	})
	var tooLong *lexer.TokenTooLongError
	require.True(t, errors.As(err, &tooLong))
	assert.Equal(t, src, tooLong.Pos.File)
}

func TestRunUnwritableOutput(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "nop")

	_, err := Run(context.Background(), &Config{
		Inputs: []string{src},
		Output: filepath.Join(dir, "no-such-dir", "out.com"),
	})
	var openErr *FileOpenError
	require.True(t, errors.As(err, &openErr))
}

func TestRunCancelledContext(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "nop")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opener := &trackingOpener{}
	_, err := Run(ctx, &Config{
		Inputs: []string{src},
		Output: filepath.Join(dir, "out.com"),
		Open:   opener.Open,
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, opener.opened)
}

func TestRunEmitsEvents(t *testing.T) {
	dir := t.TempDir()
	a := writeSource(t, dir, "a.s", "nop ret")
	b := writeSource(t, dir, "b.s", "\"oops")

	emitter := NewEventEmitter()
	var events []Event
	emitter.On(func(e Event) { events = append(events, e) })

	_, err := Run(context.Background(), &Config{
		Inputs:       []string{a, b},
		Output:       filepath.Join(dir, "out.com"),
		EventEmitter: emitter,
	})
	require.Error(t, err)

	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{
		EventRunStarted,
		EventFileStarted,
		EventFileCompleted,
		EventFileStarted,
		EventFileFailed,
		EventRunFailed,
	}, types)

	runID := events[0].RunID
	for _, e := range events {
		assert.Equal(t, runID, e.RunID)
	}
	assert.Equal(t, 2, events[2].Data["tokens"])
	assert.Equal(t, b, events[4].Data["path"])
}

func TestRunLogsTokensAtDebug(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "@loop")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	_, err := Run(context.Background(), &Config{
		Inputs: []string{src},
		Output: filepath.Join(dir, "out.com"),
		Logger: logger,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "kind=named-pointer")
	assert.Contains(t, buf.String(), "payload=@loop")
	assert.Contains(t, buf.String(), "msg=scanned")
}

func TestFileOpenErrorMessage(t *testing.T) {
	err := &FileOpenError{Path: "x.s", Cause: os.ErrNotExist}
	assert.Equal(t, "cannot open x.s: file does not exist", err.Error())
}

func TestRunFailureLoggedBelowWarn(t *testing.T) {
	dir := t.TempDir()
	src := writeSource(t, dir, "a.s", "\"open")

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}))
	_, err := Run(context.Background(), &Config{
		Inputs: []string{src},
		Output: filepath.Join(dir, "out.com"),
		Logger: logger,
	})
	require.Error(t, err)
	assert.Empty(t, buf.String())
}

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deveah/saispe/assembler"
	"github.com/deveah/saispe/lexer"
	"github.com/deveah/saispe/logs"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func runAssemble(cmd *cobra.Command, v *viper.Viper, args []string) error {
	maxTokenLength := v.GetInt("max_token_length")
	if maxTokenLength < 1 {
		return fmt.Errorf("%w: got %d", errInvalidTokenLength, maxTokenLength)
	}
	verbose := v.GetBool("verbose")
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()

	var logFile io.Writer
	if path := v.GetString("log_file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		logFile = f
	}
	logger := logs.New(logs.Options{Terminal: stderr, File: logFile, Verbose: verbose})

	var sink lexer.Sink
	if v.GetBool("dump_tokens") {
		sink = dumpSink(stdout)
	}

	emitter := assembler.NewEventEmitter()
	emitter.On(terminalEventListener(stderr, verbose))

	config := &assembler.Config{
		Inputs:       args,
		Output:       v.GetString("output"),
		Lexer:        lexer.Config{MaxTokenLength: maxTokenLength},
		Sink:         sink,
		EventEmitter: emitter,
		Logger:       logger,
	}

	_, err := assembler.Run(cmd.Context(), config)
	return err
}

// dumpSink prints tokens in the assembler's trace format, one per line.
func dumpSink(w io.Writer) lexer.Sink {
	return lexer.SinkFunc(func(tok lexer.Token) error {
		_, err := fmt.Fprintf(w, ":: %s\n", lexer.Format(tok))
		return err
	})
}

// terminalEventListener returns an event listener that prints run progress.
func terminalEventListener(w io.Writer, verbose bool) func(assembler.Event) {
	return func(e assembler.Event) {
		if !verbose {
			return
		}
		switch e.Type {
		case assembler.EventRunStarted:
			files, _ := e.Data["files"].(int)
			output, _ := e.Data["output"].(string)
			fmt.Fprintf(w, "[saispe] %d file(s) -> %s\n", files, output)

		case assembler.EventFileStarted:
			path, _ := e.Data["path"].(string)
			index, _ := e.Data["index"].(int)
			fmt.Fprintf(w, "[file %d] %s\n", index+1, path)

		case assembler.EventFileCompleted:
			tokens, _ := e.Data["tokens"].(int)
			durationMs, _ := e.Data["duration_ms"].(int64)
			duration := time.Duration(durationMs) * time.Millisecond
			path, _ := e.Data["path"].(string)
			fmt.Fprintf(w, "[file] %s done (%d tokens, %.1fs)\n", path, tokens, duration.Seconds())

		case assembler.EventFileFailed:
			path, _ := e.Data["path"].(string)
			fmt.Fprintf(w, "[file] %s failed\n", path)

		case assembler.EventRunCompleted:
			tokens, _ := e.Data["tokens"].(int)
			fmt.Fprintf(w, "[saispe] Completed: %d tokens\n", tokens)
		}
	}
}

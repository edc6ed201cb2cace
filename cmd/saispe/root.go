package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/deveah/saispe/assembler"
	"github.com/deveah/saispe/lexer"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const version = "01"

var (
	errNoInputFiles  = errors.New("no input files")
	errMissingOutput = errors.New("-o needs an output file name")

	errInvalidTokenLength = errors.New("--max-token-length must be at least 1")
)

func newRootCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "saispe <input>... [flags]",
		Short:   "The saispe assembler",
		Long:    "saispe assembles source files, in the order given, into a COM-format binary.",
		Version: version,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errNoInputFiles
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssemble(cmd, v, args)
		},
	}
	cmd.SetVersionTemplate("saispe v{{.Version}} - http://github.com/deveah/saispe\n")
	cmd.SetFlagErrorFunc(flagError)

	flags := cmd.Flags()
	flags.StringP("output", "o", assembler.DefaultOutput, "Output file name")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Int("max-token-length", lexer.DefaultMaxTokenLength, "Longest token, in bytes, the scanner accepts")
	flags.Bool("dump-tokens", false, "Print every token to stdout")
	flags.String("log-file", "", "Append JSON logs to this file")
	flags.String("config", "", "Read settings from a YAML config file")

	_ = v.BindPFlag("output", flags.Lookup("output"))
	_ = v.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("max_token_length", flags.Lookup("max-token-length"))
	_ = v.BindPFlag("dump_tokens", flags.Lookup("dump-tokens"))
	_ = v.BindPFlag("log_file", flags.Lookup("log-file"))
	_ = v.BindPFlag("config", flags.Lookup("config"))

	return cmd
}

func initConfig(v *viper.Viper) error {
	v.SetEnvPrefix("SAISPE")
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// flagError maps pflag's missing-value error for -o onto errMissingOutput.
func flagError(cmd *cobra.Command, err error) error {
	msg := err.Error()
	if strings.Contains(msg, "needs an argument") &&
		(strings.Contains(msg, "'o'") || strings.Contains(msg, "--output")) {
		return fmt.Errorf("%w: %v", errMissingOutput, err)
	}
	return err
}

func isUsageError(err error) bool {
	return errors.Is(err, errNoInputFiles) ||
		errors.Is(err, errMissingOutput) ||
		errors.Is(err, errInvalidTokenLength)
}

// execute runs the command with args and returns the process exit code.
func execute(v *viper.Viper, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(v)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "saispe: %v\n", err)
		if isUsageError(err) {
			fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
		}
		return 1
	}
	return 0
}

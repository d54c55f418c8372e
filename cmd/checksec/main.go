// Package main provides the checksec command. It decodes ELF binaries and
// reports their stack canary, NX, RELRO and PIE hardening.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errCheckFailed signals exit status 1 after the report was already written.
var errCheckFailed = errors.New("check failed")

// globalParams holds the flags shared by every subcommand.
type globalParams struct {
	configPath string
	format     string
	color      string
	logLevel   string
	logFile    string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	if err := root.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errCheckFailed) {
			_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}
	return 0
}

func rootCommand() *cobra.Command {
	var params globalParams
	root := &cobra.Command{
		Use:           "checksec [command]",
		Short:         "Report security hardening of ELF binaries",
		Long:          "checksec decodes ELF32/ELF64 binaries and reports stack canary, NX, RELRO and PIE status.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pflags := root.PersistentFlags()
	pflags.StringVarP(&params.configPath, "config", "c", "", "path to a TOML configuration file")
	pflags.StringVarP(&params.format, "format", "o", "", "output format: text, json or yaml")
	pflags.StringVar(&params.color, "color", "", "colorize text output: auto, always or never")
	pflags.StringVar(&params.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pflags.StringVar(&params.logFile, "log-file", "", "also write JSON logs to this file")

	root.AddCommand(checkCommand(&params), infoCommand(&params))
	return root
}

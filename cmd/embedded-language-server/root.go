package main

import (
	"fmt"
	"os"

	"bennypowers.dev/embedls/internal/log"
	"bennypowers.dev/embedls/internal/version"
	"bennypowers.dev/embedls/lsp"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type options struct {
	stdio    bool
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:           lsp.Name,
		Short:         "Language server for CSS and JavaScript embedded in HTML",
		Long:          `A language server that finds the style blocks, style attributes, scripts and event handlers of HTML documents and provides hover, colors, links, symbols, folding and diagnostics for them.`,
		Version:       version.GetFullVersion(),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts)
		},
	}
	cmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Editors commonly pass --stdio; stdio is the only transport
	cmd.Flags().BoolVar(&opts.stdio, "stdio", true, "communicate over stdin and stdout")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "initial log level (debug, info, warn, error)")

	return cmd
}

func run(opts *options) error {
	if opts.logLevel != "" {
		level, err := log.ParseLevel(opts.logLevel)
		if err != nil {
			return err
		}
		log.SetLevel(level)
	}

	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		log.Warn("stdin is a terminal; %s expects an LSP client on stdio", lsp.Name)
	}

	server, err := lsp.NewServer()
	if err != nil {
		return fmt.Errorf("failed to create LSP server: %w", err)
	}
	defer func() { _ = server.Close() }()

	log.Info("Starting %s %s", lsp.Name, version.GetFullVersion())
	if err := server.RunStdio(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

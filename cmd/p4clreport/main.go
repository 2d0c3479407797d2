//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

// Command p4clreport writes the submitted changelists of one Perforce
// stream for one month into an xlsx report.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type rootOptions struct {
	configPath string
	stream     string
	outputDir  string
	period     string
	strict     bool
	noWait     bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "p4clreport",
		Short: "Report a month of Perforce changelists for one stream as an xlsx file",
		Long: `p4clreport lists every changelist submitted during a month from a
workspace of the given stream, together with its files, and saves the table
in <output-dir>/<stream>-CLs-for-<month>-<year>.xlsx.

Without --period the month is read interactively in the form "Mar 2020".`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "Path to a YAML config file.")
	flags.StringVar(&opts.stream, "stream", "", "Stream whose workspaces are reported.")
	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory receiving the xlsx report.")
	flags.StringVar(&opts.period, "period", "", `Month to report, e.g. "Mar 2020". Prompts when empty.`)
	flags.BoolVar(&opts.strict, "strict", false, "Fail when a p4 command fails instead of reporting what was read.")
	flags.BoolVar(&opts.noWait, "no-wait", false, "Do not wait for Enter before exiting.")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging.")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "p4clreport %s\n", version)
		},
	})
	return cmd
}

func main() {
	// A missing .env file is fine.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

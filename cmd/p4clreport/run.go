//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"trpc.group/trpc-go/p4clreport/internal/changes"
	"trpc.group/trpc-go/p4clreport/internal/config"
	"trpc.group/trpc-go/p4clreport/internal/p4"
	"trpc.group/trpc-go/p4clreport/internal/period"
	"trpc.group/trpc-go/p4clreport/internal/report"
	"trpc.group/trpc-go/p4clreport/log"
)

var now = time.Now

var newRunner = func(cfg *config.Config) p4.Runner {
	return p4.NewExecRunner(cfg.P4.Bin, p4.GlobalArgs(cfg.P4.Port, cfg.P4.User, cfg.P4.Client, cfg.P4.Charset)...)
}

func loadConfig(cmd *cobra.Command, opts *rootOptions) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("stream") {
		cfg.Stream = opts.stream
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = opts.outputDir
	}
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if opts.verbose {
		cfg.LogLevel = log.LevelDebug
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(cmd *cobra.Command, opts *rootOptions) error {
	ctx := cmd.Context()
	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}
	log.SetLevel(cfg.LogLevel)

	out := cmd.OutOrStdout()
	con := newConsole(cmd.InOrStdin(), out)
	wait := func() {
		if !opts.noWait {
			con.waitForEnter(ctx)
		}
	}

	var p period.Period
	if strings.TrimSpace(opts.period) != "" {
		if p, err = period.Parse(opts.period, now()); err != nil {
			return err
		}
	} else {
		printBanner(out, cfg.Stream)
		if p, err = con.promptPeriod(ctx, now); err != nil {
			return err
		}
	}

	client := p4.NewClient(newRunner(cfg), p4.WithStrict(cfg.Strict), p4.WithTimeout(cfg.GetP4Timeout()))
	collector, err := changes.NewCollector(client, cfg.EffectiveFilePrefix(),
		changes.WithDepotPath(cfg.DepotPath),
		changes.WithFileMode(changes.FileMode(cfg.Files.Mode)),
		changes.WithBatchSize(cfg.Files.BatchSize),
		changes.WithParallelism(cfg.Files.Parallelism),
		changes.WithExclude(cfg.Files.Exclude...),
		changes.WithProgress(out),
	)
	if err != nil {
		return err
	}

	records, err := collector.Collect(ctx, cfg.Stream, p)
	if err != nil && !errors.Is(err, changes.ErrNoChanges) {
		return err
	}
	fmt.Fprintf(out, "Number of CLs: %d\n", len(records))
	fmt.Fprintln(out, "==============================================")
	if errors.Is(err, changes.ErrNoChanges) {
		fmt.Fprintln(out, "There are NO CLs to display")
		wait()
		return err
	}

	path := report.Path(cfg.OutputDir, cfg.Stream, p)
	if err := report.Export(records, report.Options{OutputPath: path, SheetName: p.SheetName()}); err != nil {
		return fmt.Errorf("export report: %w", err)
	}
	log.Debugf("wrote %d changes to %s", len(records), path)
	fmt.Fprintf(out, "Results file created in %s\n", path)
	wait()
	return nil
}

func printBanner(out io.Writer, stream string) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, "This program displays info of all P4V CLs from a given month")
	fmt.Fprintf(out, "for %s ONLY - and saves the data table in an Excel file.\n", stream)
	fmt.Fprintln(out, "Please enter month and year in this format: <month> <year>")
	fmt.Fprintln(out, "Example: Mar 2020")
	fmt.Fprintln(out)
}

//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

// Package p4 runs the Perforce command line client and returns its text output.
package p4

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBin is the p4 executable looked up on PATH.
const DefaultBin = "p4"

// Runner executes one p4 command and returns its full standard output.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// ExecRunner runs the p4 binary as a subprocess.
type ExecRunner struct {
	// Bin is the executable, p4 when empty.
	Bin string
	// GlobalArgs go before the command name, e.g. -p host:1666 -u alice.
	GlobalArgs []string
	// Env is appended to the inherited environment.
	Env []string
	// Dir is the working directory, the current one when empty.
	Dir string
}

// NewExecRunner returns an ExecRunner for bin with the given global args.
func NewExecRunner(bin string, globalArgs ...string) *ExecRunner {
	if strings.TrimSpace(bin) == "" {
		bin = DefaultBin
	}
	return &ExecRunner{Bin: bin, GlobalArgs: globalArgs}
}

// Run blocks until the subprocess exits and its stdout is drained.
func (e *ExecRunner) Run(ctx context.Context, args ...string) (string, error) {
	full := make([]string, 0, len(e.GlobalArgs)+len(args))
	full = append(full, e.GlobalArgs...)
	full = append(full, args...)

	cmd := exec.CommandContext(ctx, e.Bin, full...)
	if e.Dir != "" {
		cmd.Dir = e.Dir
	}
	if len(e.Env) > 0 {
		cmd.Env = append(cmd.Environ(), e.Env...)
	}
	var out, errb bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errb
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(errb.String())
		if msg == "" {
			msg = err.Error()
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return out.String(), fmt.Errorf("%s %s: exit %d: %s", e.Bin, commandName(args), exitErr.ExitCode(), msg)
		}
		return out.String(), fmt.Errorf("%s %s: %s", e.Bin, commandName(args), msg)
	}
	return out.String(), nil
}

// GlobalArgs builds the p4 global options for the non-empty values.
func GlobalArgs(port, user, client, charset string) []string {
	var args []string
	for _, kv := range [][2]string{{"-p", port}, {"-u", user}, {"-c", client}, {"-C", charset}} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			args = append(args, kv[0], v)
		}
	}
	return args
}

// commandName keeps error messages short: the first non-flag argument.
func commandName(args []string) string {
	for _, a := range args {
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return "<no-command>"
}

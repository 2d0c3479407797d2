//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"trpc.group/trpc-go/p4clreport/internal/changes"
	"trpc.group/trpc-go/p4clreport/internal/config"
	"trpc.group/trpc-go/p4clreport/internal/p4"
)

type scriptedRunner struct {
	outputs map[string]string
	err     error
	calls   [][]string
}

func (r *scriptedRunner) Run(_ context.Context, args ...string) (string, error) {
	r.calls = append(r.calls, args)
	if r.err != nil {
		return "", r.err
	}
	return r.outputs[args[0]], nil
}

func streamRunner() *scriptedRunner {
	return &scriptedRunner{outputs: map[string]string{
		"clients": "Client ws1 2020/01/10 root /w1 'x '\nClient ws2 2020/01/11 root /w2 'y '\n",
		"changes": "Change 12 on 2020/03/09 by bob@ws3\n\n\tnot ours\n\n" +
			"Change 11 on 2020/03/05 by alice@ws1\n\n\tSecond change\n\tBug #: 3\n\n" +
			"Change 10 on 2020/03/01 by alice@ws2\n\n\tFirst change\n\tBug #: 2\n",
		"files": "//depot/main/a.go#2 - edit change 10 (text)\n" +
			"//depot/main/b.go#1 - add change 11 (text)\n" +
			"//depot/main/c.go#5 - edit change 11 (text)\n",
	}}
}

func useRunner(t *testing.T, r p4.Runner) {
	t.Helper()
	orig := newRunner
	newRunner = func(*config.Config) p4.Runner { return r }
	t.Cleanup(func() { newRunner = orig })
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvStream, config.EnvOutputDir, config.EnvP4Bin, config.EnvStrict,
		config.EnvP4Port, config.EnvP4User, config.EnvP4Client, config.EnvP4Charset} {
		t.Setenv(k, "")
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRunWritesReport(t *testing.T) {
	clearEnv(t)
	r := streamRunner()
	useRunner(t, r)
	dir := t.TempDir()

	out, err := execute(t, "", "--stream", "main", "--output-dir", dir, "--period", "Mar 2020", "--no-wait")
	require.NoError(t, err)
	assert.Contains(t, out, "Number of CLs: 2")

	path := filepath.Join(dir, "main-CLs-for-Mar-2020.xlsx")
	assert.Contains(t, out, "Results file created in "+path)

	file, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() {
		_ = file.Close()
	}()
	rows, err := file.GetRows("Mar 2020")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"10", "alice", "2020/03/01", "First change", "a.go#2"}, rows[2])
	assert.Equal(t, []string{"11", "alice", "2020/03/05", "Second change", "b.go#1"}, rows[3])
	assert.Equal(t, []string{"", "", "", "", "c.go#5"}, rows[4])

	require.Len(t, r.calls, 3)
	assert.Equal(t, []string{"clients", "-S", "main"}, r.calls[0])
	assert.Equal(t, []string{"files", "//...@=10", "//...@=11"}, r.calls[2])
}

func TestRunInteractivePrompt(t *testing.T) {
	clearEnv(t)
	useRunner(t, streamRunner())
	dir := t.TempDir()

	out, err := execute(t, "March 20\nmar 2999\nmar 2020\n\n", "--stream", "main", "--output-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "for main ONLY")
	assert.Equal(t, 2, strings.Count(out, wrongInputMsg))
	assert.Contains(t, out, pressEnterMsg)
	_, statErr := os.Stat(filepath.Join(dir, "main-CLs-for-mar-2020.xlsx"))
	assert.NoError(t, statErr)
}

func TestRunPromptInputClosed(t *testing.T) {
	clearEnv(t)
	useRunner(t, streamRunner())

	_, err := execute(t, "nonsense\n", "--stream", "main", "--output-dir", t.TempDir())
	assert.ErrorIs(t, err, errInputClosed)
}

func TestRunNoChanges(t *testing.T) {
	clearEnv(t)
	r := streamRunner()
	r.outputs["clients"] = "Client unrelated ...\n"
	useRunner(t, r)
	dir := t.TempDir()

	out, err := execute(t, "\n", "--stream", "main", "--output-dir", dir, "--period", "Mar 2020")
	assert.ErrorIs(t, err, changes.ErrNoChanges)
	assert.Contains(t, out, "Number of CLs: 0")
	assert.Contains(t, out, "There are NO CLs to display")
	assert.Contains(t, out, pressEnterMsg)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunLenientP4Failure(t *testing.T) {
	clearEnv(t)
	useRunner(t, &scriptedRunner{err: errors.New("Perforce client error: connect failed")})

	out, err := execute(t, "", "--stream", "main", "--output-dir", t.TempDir(), "--period", "Mar 2020", "--no-wait")
	assert.ErrorIs(t, err, changes.ErrNoChanges)
	assert.Contains(t, out, "There are NO CLs to display")
}

func TestRunStrictP4Failure(t *testing.T) {
	clearEnv(t)
	useRunner(t, &scriptedRunner{err: errors.New("Perforce client error: connect failed")})

	_, err := execute(t, "", "--stream", "main", "--output-dir", t.TempDir(), "--period", "Mar 2020", "--no-wait", "--strict")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect failed")
}

func TestRunInvalidPeriodFlag(t *testing.T) {
	clearEnv(t)
	useRunner(t, streamRunner())
	_, err := execute(t, "", "--stream", "main", "--period", "Mar 3020", "--no-wait")
	assert.Error(t, err)
}

func TestRunRequiresStream(t *testing.T) {
	clearEnv(t)
	useRunner(t, streamRunner())
	_, err := execute(t, "", "--period", "Mar 2020", "--no-wait")
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestRunConfigFile(t *testing.T) {
	clearEnv(t)
	r := streamRunner()
	useRunner(t, r)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "p4clreport.yaml")
	cfgYAML := "stream: main\noutput_dir: " + dir + "\ndepot_path: //depot/main/...\nfiles:\n  mode: per-change\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	_, err := execute(t, "", "--config", cfgPath, "--period", "Mar 2020", "--no-wait")
	require.NoError(t, err)
	require.Len(t, r.calls, 4)
	assert.Equal(t, "//depot/main/...@2020/03/01:00:00:01,@2020/03/31:23:59:59", r.calls[1][4])
	assert.Equal(t, []string{"files", "//depot/main/...@=10"}, r.calls[2])
	assert.Equal(t, []string{"files", "//depot/main/...@=11"}, r.calls[3])
}

func TestRunStreamFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	r := streamRunner()
	useRunner(t, r)
	dir := t.TempDir()
	t.Setenv(config.EnvStream, "//Proj/release")
	t.Setenv(config.EnvOutputDir, filepath.Join(dir, "from-env"))

	_, err := execute(t, "", "--stream", "//Proj/main", "--output-dir", dir, "--period", "Mar 2020", "--no-wait")
	require.NoError(t, err)
	require.NotEmpty(t, r.calls)
	assert.Equal(t, []string{"clients", "-S", "//Proj/main"}, r.calls[0])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Proj-main-CLs-for-Mar-2020.xlsx", entries[0].Name())
}

func TestRunStreamFromEnv(t *testing.T) {
	clearEnv(t)
	r := streamRunner()
	useRunner(t, r)
	t.Setenv(config.EnvStream, "//Proj/release")

	_, err := execute(t, "", "--output-dir", t.TempDir(), "--period", "Mar 2020", "--no-wait")
	require.NoError(t, err)
	assert.Equal(t, []string{"clients", "-S", "//Proj/release"}, r.calls[0])
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Equal(t, "p4clreport dev\n", out)
}

func TestReadLineCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pr, pw := io.Pipe()
	defer pw.Close()
	_, err := newConsole(pr, &bytes.Buffer{}).readLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPromptPeriodUsesClock(t *testing.T) {
	c := newConsole(strings.NewReader("Jan 2031\r\n"), &bytes.Buffer{})
	p, err := c.promptPeriod(context.Background(), func() time.Time {
		return time.Date(2031, time.June, 1, 0, 0, 0, 0, time.UTC)
	})
	require.NoError(t, err)
	assert.Equal(t, 2031, p.Year)
	assert.Equal(t, time.January, p.Month)
}

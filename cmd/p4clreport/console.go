//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"trpc.group/trpc-go/p4clreport/internal/period"
)

const (
	wrongInputMsg = "Wrong input. Please enter valid month and year: (i.e Mar 2020)"
	pressEnterMsg = "Press Enter to exit..."
)

// errInputClosed ends the prompt loop when stdin is exhausted.
var errInputClosed = errors.New("input closed before a valid month was entered")

type console struct {
	in  *bufio.Reader
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer) *console {
	return &console{in: bufio.NewReader(in), out: out}
}

// readLine returns one line without its line ending. A final line without
// a newline is still returned.
func (c *console) readLine(ctx context.Context) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := c.in.ReadString('\n')
		ch <- result{line: line, err: err}
	}()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-ch:
		if r.err != nil && !(errors.Is(r.err, io.EOF) && r.line != "") {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	}
}

// promptPeriod asks until a valid "<month> <year>" is entered.
func (c *console) promptPeriod(ctx context.Context, now func() time.Time) (period.Period, error) {
	for {
		line, err := c.readLine(ctx)
		if errors.Is(err, io.EOF) {
			return period.Period{}, errInputClosed
		}
		if err != nil {
			return period.Period{}, err
		}
		p, err := period.Parse(line, now())
		if err == nil {
			return p, nil
		}
		fmt.Fprintln(c.out, wrongInputMsg)
	}
}

// waitForEnter blocks until a line is read, the input ends or ctx is done.
func (c *console) waitForEnter(ctx context.Context) {
	fmt.Fprintln(c.out, pressEnterMsg)
	_, _ = c.readLine(ctx)
}

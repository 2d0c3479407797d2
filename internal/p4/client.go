//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package p4

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"trpc.group/trpc-go/p4clreport/log"
)

// Client issues the three queries the report needs.
type Client struct {
	runner  Runner
	strict  bool
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithStrict makes command failures propagate instead of yielding empty output.
func WithStrict(strict bool) Option {
	return func(c *Client) { c.strict = strict }
}

// WithTimeout bounds every command. Zero means no limit.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// NewClient wraps r.
func NewClient(r Runner, opt ...Option) *Client {
	c := &Client{runner: r}
	for _, o := range opt {
		o(c)
	}
	return c
}

// Clients lists the workspaces bound to stream: p4 clients -S <stream>.
func (c *Client) Clients(ctx context.Context, stream string) (string, error) {
	if stream == "" {
		return "", errors.New("p4: stream is required")
	}
	return c.run(ctx, "clients", "-S", stream)
}

// Changes lists submitted changes with full descriptions for revision,
// e.g. //...@2020/03/01:00:00:01,@2020/03/31:23:59:59.
func (c *Client) Changes(ctx context.Context, revision string) (string, error) {
	return c.run(ctx, "changes", "-l", "-s", "submitted", revision)
}

// Files lists the files of the given changes in one call:
// p4 files //...@=101 //...@=102.
func (c *Client) Files(ctx context.Context, depotPath string, ids ...int) (string, error) {
	if len(ids) == 0 {
		return "", nil
	}
	args := make([]string, 0, len(ids)+1)
	args = append(args, "files")
	for _, id := range ids {
		args = append(args, depotPath+"@="+strconv.Itoa(id))
	}
	return c.run(ctx, args...)
}

func (c *Client) run(ctx context.Context, args ...string) (string, error) {
	if c.runner == nil {
		return "", errors.New("p4: runner is nil")
	}
	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	out, err := c.runner.Run(runCtx, args...)
	if err == nil {
		return out, nil
	}
	// A cancelled caller always wins over lenient mode.
	if c.strict || ctx.Err() != nil {
		return "", fmt.Errorf("p4 %s: %w", args[0], err)
	}
	log.Warnf("p4 %s failed, continuing with the output captured so far: %v", args[0], err)
	return out, nil
}

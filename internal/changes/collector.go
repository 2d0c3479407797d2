//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package changes

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"trpc.group/trpc-go/p4clreport/internal/period"
	"trpc.group/trpc-go/p4clreport/log"
)

// Source runs the p4 queries. *p4.Client implements it.
type Source interface {
	Clients(ctx context.Context, stream string) (string, error)
	Changes(ctx context.Context, revision string) (string, error)
	Files(ctx context.Context, depotPath string, ids ...int) (string, error)
}

// FileMode selects how file lists are fetched.
type FileMode string

const (
	// FileModeBatch lists files for many changes per p4 call.
	FileModeBatch FileMode = "batch"
	// FileModePerChange issues one p4 call per change.
	FileModePerChange FileMode = "per-change"
)

const (
	defaultDepotPath = "//..."
	defaultBatchSize = 50
)

// Collector fetches, parses and filters the changes of one stream.
type Collector struct {
	source      Source
	parser      Parser
	depotPath   string
	fileMode    FileMode
	batchSize   int
	parallelism int
	exclude     []string
	progress    io.Writer
}

// Option configures a Collector.
type Option func(*Collector)

// WithParser replaces the default TextParser.
func WithParser(p Parser) Option {
	return func(c *Collector) { c.parser = p }
}

// WithDepotPath limits the queries to a depot path, //... by default.
func WithDepotPath(path string) Option {
	return func(c *Collector) { c.depotPath = path }
}

// WithFileMode selects batch or per-change file listing.
func WithFileMode(mode FileMode) Option {
	return func(c *Collector) { c.fileMode = mode }
}

// WithBatchSize sets the number of changes listed per p4 files call.
func WithBatchSize(n int) Option {
	return func(c *Collector) { c.batchSize = n }
}

// WithParallelism sets how many per-change listings may run at once.
func WithParallelism(n int) Option {
	return func(c *Collector) { c.parallelism = n }
}

// WithExclude drops files matching any of the doublestar patterns.
func WithExclude(patterns ...string) Option {
	return func(c *Collector) { c.exclude = append(c.exclude, patterns...) }
}

// WithProgress receives the human readable progress lines.
func WithProgress(w io.Writer) Option {
	return func(c *Collector) { c.progress = w }
}

// NewCollector returns a Collector reading from source. Without WithParser
// it parses text output with filePrefix as the file path marker.
func NewCollector(source Source, filePrefix string, opt ...Option) (*Collector, error) {
	c := &Collector{
		source:    source,
		depotPath: defaultDepotPath,
		fileMode:  FileModeBatch,
		batchSize: defaultBatchSize,
		progress:  io.Discard,
	}
	for _, o := range opt {
		o(c)
	}
	if c.source == nil {
		return nil, errors.New("changes: source is nil")
	}
	if c.parser == nil {
		c.parser = NewTextParser(filePrefix)
	}
	if c.depotPath == "" {
		c.depotPath = defaultDepotPath
	}
	switch c.fileMode {
	case FileModeBatch, FileModePerChange:
	default:
		return nil, fmt.Errorf("changes: unknown file mode %q", c.fileMode)
	}
	if c.batchSize <= 0 {
		return nil, errors.New("changes: batch size must be greater than 0")
	}
	for _, pattern := range c.exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("changes: bad exclude pattern %q", pattern)
		}
	}
	return c, nil
}

// Collect returns the changes submitted to stream during p, earliest first,
// with their files. It returns ErrNoChanges when nothing matches.
func (c *Collector) Collect(ctx context.Context, stream string, p period.Period) ([]ChangeRecord, error) {
	fmt.Fprintf(c.progress, "\nGetting all %s %s clients (workspaces)...\n", p, stream)
	rawClients, err := c.source.Clients(ctx, stream)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	clients := make(map[string]struct{})
	for _, name := range c.parser.ParseClients(rawClients) {
		clients[name] = struct{}{}
	}
	log.Debugf("stream %s has %d clients", stream, len(clients))

	fmt.Fprintf(c.progress, "\nGetting P4V CLs info...\n\n")
	rawChanges, err := c.source.Changes(ctx, p.Revision(c.depotPath))
	if err != nil {
		return nil, fmt.Errorf("list changes: %w", err)
	}
	records := Filter(c.parser.ParseChanges(rawChanges), clients)
	if len(records) == 0 {
		return nil, ErrNoChanges
	}

	if err := c.attachFiles(ctx, records); err != nil {
		return nil, err
	}
	return records, nil
}

// Filter keeps the records whose client is in clients, preserving order.
func Filter(records []ChangeRecord, clients map[string]struct{}) []ChangeRecord {
	kept := records[:0:0]
	for _, rec := range records {
		if _, ok := clients[rec.Client]; ok {
			kept = append(kept, rec)
			continue
		}
		log.Debugf("skip change %d from client %s outside the stream", rec.ID, rec.Client)
	}
	return kept
}

func (c *Collector) attachFiles(ctx context.Context, records []ChangeRecord) error {
	if c.fileMode == FileModePerChange {
		return c.attachFilesPerChange(ctx, records)
	}
	return c.attachFilesBatched(ctx, records)
}

func (c *Collector) attachFilesBatched(ctx context.Context, records []ChangeRecord) error {
	for start := 0; start < len(records); start += c.batchSize {
		end := min(start+c.batchSize, len(records))
		batch := records[start:end]
		ids := make([]int, len(batch))
		for i, rec := range batch {
			ids[i] = rec.ID
		}
		raw, err := c.source.Files(ctx, c.depotPath, ids...)
		if err != nil {
			return fmt.Errorf("list files of changes %d..%d: %w", ids[0], ids[len(ids)-1], err)
		}
		byChange := make(map[int][]string, len(batch))
		for _, entry := range c.parser.ParseFiles(raw) {
			id := entry.Change
			if id == 0 {
				// Without a change token the line can only be attributed
				// when the call covered a single change.
				if len(ids) != 1 {
					log.Debugf("drop file line %s without change id in a batch of %d", entry.Path, len(ids))
					continue
				}
				id = ids[0]
			}
			byChange[id] = append(byChange[id], entry.Path)
		}
		for i := range batch {
			batch[i].Files = c.keep(byChange[batch[i].ID])
		}
	}
	return nil
}

func (c *Collector) filesOf(ctx context.Context, id int) ([]string, error) {
	raw, err := c.source.Files(ctx, c.depotPath, id)
	if err != nil {
		return nil, fmt.Errorf("list files of change %d: %w", id, err)
	}
	entries := c.parser.ParseFiles(raw)
	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.Change != 0 && entry.Change != id {
			continue
		}
		paths = append(paths, entry.Path)
	}
	return c.keep(paths), nil
}

// keep applies the exclude patterns to report paths. Revision suffixes such
// as "#3" are ignored when matching.
func (c *Collector) keep(paths []string) []string {
	if len(c.exclude) == 0 {
		return paths
	}
	kept := paths[:0:0]
	for _, path := range paths {
		name, _, _ := strings.Cut(path, "#")
		if c.excluded(name) {
			log.Debugf("exclude file %s", path)
			continue
		}
		kept = append(kept, path)
	}
	return kept
}

func (c *Collector) excluded(name string) bool {
	for _, pattern := range c.exclude {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}

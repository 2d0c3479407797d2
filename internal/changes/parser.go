//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package changes

import (
	"slices"
	"strconv"
	"strings"

	"trpc.group/trpc-go/p4clreport/log"
)

const (
	clientDelimiter = "Client "
	changeDelimiter = "\nChange "
	fileDelimiter   = " - "
)

// Parser extracts records from raw p4 output. Swapping the implementation
// lets the upstream output format change without touching filtering or
// reporting.
type Parser interface {
	// ParseClients returns the workspace names of `p4 clients -S` output.
	ParseClients(raw string) []string
	// ParseChanges returns the well formed records of `p4 changes -l`
	// output, earliest first. Files are not filled in.
	ParseChanges(raw string) []ChangeRecord
	// ParseFiles returns the file lines of `p4 files` output in order.
	ParseFiles(raw string) []FileEntry
}

// TextParser parses the default human readable p4 output.
type TextParser struct {
	// FilePrefix marks where the reported part of a depot path starts,
	// usually "<stream>/".
	FilePrefix string
}

// NewTextParser returns a TextParser for the given file prefix.
func NewTextParser(filePrefix string) *TextParser {
	return &TextParser{FilePrefix: filePrefix}
}

// ParseClients implements Parser.
func (p *TextParser) ParseClients(raw string) []string {
	var names []string
	for _, frag := range strings.Split(raw, clientDelimiter) {
		name, _, _ := strings.Cut(frag, " ")
		if name = strings.TrimSpace(name); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// ParseChanges implements Parser.
func (p *TextParser) ParseChanges(raw string) []ChangeRecord {
	text := strings.ReplaceAll(raw, "\r\n", "\n")
	// The first record is not preceded by a newline; add one so every
	// record splits the same way.
	if strings.HasPrefix(text, "Change ") {
		text = "\n" + text
	}
	frags := strings.Split(text, changeDelimiter)
	if len(frags) > 0 && strings.TrimSpace(frags[0]) == "" {
		frags = frags[1:]
	}
	// p4 lists the newest change first.
	slices.Reverse(frags)

	records := make([]ChangeRecord, 0, len(frags))
	for _, frag := range frags {
		rec, ok := parseChange(frag)
		if !ok {
			log.Debugf("skip malformed change record %q", firstLine(frag))
			continue
		}
		records = append(records, rec)
	}
	return records
}

// parseChange reads "<id> on <date> by <user>@<client> [*status*]\n\n\t<description>".
func parseChange(frag string) (ChangeRecord, bool) {
	tokens := strings.Fields(frag)
	if len(tokens) < 5 {
		return ChangeRecord{}, false
	}
	id, err := strconv.Atoi(tokens[0])
	if err != nil {
		return ChangeRecord{}, false
	}
	user, client, ok := strings.Cut(tokens[4], "@")
	if !ok || client == "" {
		return ChangeRecord{}, false
	}
	rec := ChangeRecord{
		ID:          id,
		User:        user,
		Date:        tokens[2],
		Client:      client,
		Description: Description(frag, client),
	}
	if len(tokens) > 5 && isStatusMarker(tokens[5]) {
		rec.Status = strings.Trim(tokens[5], "*")
	}
	return rec, true
}

func isStatusMarker(tok string) bool {
	return len(tok) > 2 && strings.HasPrefix(tok, "*") && strings.HasSuffix(tok, "*")
}

// ParseFiles implements Parser. Each line keeps the text between FilePrefix
// and " - ", so "//depot/main/src/a.go#3 - edit change 7 (text)" with prefix
// "main/" yields "src/a.go#3" for change 7.
func (p *TextParser) ParseFiles(raw string) []FileEntry {
	var entries []FileEntry
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimRight(line, "\r")
		path := ExtractBetween(line, p.FilePrefix, fileDelimiter)
		if path == "" {
			continue
		}
		entries = append(entries, FileEntry{Change: changeOf(line), Path: path})
	}
	return entries
}

// changeOf finds the id in "... - edit change 123 (text)".
func changeOf(line string) int {
	_, action, ok := strings.Cut(line, fileDelimiter)
	if !ok {
		return 0
	}
	tokens := strings.Fields(action)
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] != "change" {
			continue
		}
		if id, err := strconv.Atoi(tokens[i+1]); err == nil {
			return id
		}
	}
	return 0
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return line
}

//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

package changes

import "strings"

// ExtractBetween returns the text strictly between the first occurrence of
// first and the next occurrence of second after it. It returns "" when
// either marker is missing.
func ExtractBetween(text, first, second string) string {
	i := strings.Index(text, first)
	if i < 0 {
		return ""
	}
	rest := text[i+len(first):]
	j := strings.Index(rest, second)
	if j < 0 {
		return ""
	}
	return rest[:j]
}

var fieldReplacer = strings.NewReplacer("\r", " ", "\n", " ", "\t", " ", ",", " ")

// CleanField flattens free text for a single spreadsheet cell: line breaks,
// tabs and commas become spaces, whitespace runs collapse and the ends are
// trimmed.
func CleanField(s string) string {
	return strings.Join(strings.Fields(fieldReplacer.Replace(s)), " ")
}

// Description recovers a change description from one record of
// `p4 changes -l` output. The marker pairs are tried in a fixed order and
// the first non-empty result wins.
func Description(record, client string) string {
	at := "@" + client
	for _, markers := range [][2]string{
		{at, "Bug #:"},
		{at, "lastreview="},
		{"\n", "Bug #:"},
	} {
		if d := CleanField(ExtractBetween(record, markers[0], markers[1])); d != "" {
			return d
		}
	}
	rest := record
	if i := strings.Index(record, "@"); i >= 0 {
		rest = record[i+1:]
	}
	if client != "" {
		rest = strings.ReplaceAll(rest, client, "")
	}
	return CleanField(rest)
}

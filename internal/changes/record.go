//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

// Package changes turns p4 text output into change records filtered to one
// stream.
package changes

import "errors"

// ErrNoChanges is returned when no change of the stream falls in the period.
var ErrNoChanges = errors.New("there are NO CLs to display")

// ChangeRecord is one submitted changelist as shown in the report.
type ChangeRecord struct {
	ID          int
	User        string
	Date        string
	Client      string
	Description string
	Files       []string
	// Status is the marker p4 prints after the client, e.g. "pending".
	// Submitted changes carry none.
	Status string
}

// FileEntry is one line of `p4 files` output reduced to the report path.
type FileEntry struct {
	// Change is the change id found in the line, 0 when absent.
	Change int
	Path   string
}

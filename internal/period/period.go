//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

// Package period validates "<month> <year>" input and turns it into the
// date range queried on the Perforce server.
package period

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// p4DateLayout is the Perforce date revision layout, e.g. 2020/03/31:23:59:59.
const p4DateLayout = "2006/01/02:15:04:05"

// ErrInvalidInput is returned when a line does not look like "Mar 2020".
var ErrInvalidInput = errors.New("period: invalid input, expected <month> <year> such as Mar 2020")

var months = []string{"jan", "feb", "mar", "apr", "may", "jun", "jul", "aug", "sep", "oct", "nov", "dec"}

// Period is one calendar month of one year.
type Period struct {
	// Month is the calendar month.
	Month time.Month
	// MonthText is the month as the user typed it. Sheet and file names keep it.
	MonthText string
	// Year is the four digit year.
	Year int
}

// Valid reports whether line is a valid "<month> <year>" string at time now.
// The line must be exactly 8 runes with a single whitespace rune, a three
// letter month abbreviation in any case and a four digit year not after
// now's year.
func Valid(line string, now time.Time) bool {
	_, err := Parse(line, now)
	return err == nil
}

// Parse validates line and returns the period it names.
func Parse(line string, now time.Time) (Period, error) {
	if utf8.RuneCountInString(line) != 8 || countSpaces(line) != 1 {
		return Period{}, ErrInvalidInput
	}
	tokens := strings.Fields(line)
	if len(tokens) != 2 {
		return Period{}, ErrInvalidInput
	}
	monthText, yearText := tokens[0], tokens[1]
	if utf8.RuneCountInString(monthText) != 3 || len(yearText) != 4 {
		return Period{}, ErrInvalidInput
	}
	year, err := parseYear(yearText)
	if err != nil {
		return Period{}, ErrInvalidInput
	}
	month, err := MonthNumber(monthText)
	if err != nil {
		return Period{}, ErrInvalidInput
	}
	if year > now.Year() {
		return Period{}, ErrInvalidInput
	}
	return Period{Month: month, MonthText: monthText, Year: year}, nil
}

// MonthNumber converts a three letter month abbreviation to its month.
// Jan => 1, Feb => 2 and so on, ignoring case.
func MonthNumber(abbrev string) (time.Month, error) {
	if utf8.RuneCountInString(abbrev) != 3 {
		return 0, fmt.Errorf("period: month %q must be 3 characters long", abbrev)
	}
	for i := 0; i < len(abbrev); i++ {
		if abbrev[i] >= utf8.RuneSelf {
			return 0, fmt.Errorf("period: unknown month %q", abbrev)
		}
	}
	// Casers keep state, so one is built per call.
	key := cases.Fold().String(abbrev)
	for i, m := range months {
		if key == m {
			return time.Month(i + 1), nil
		}
	}
	return 0, fmt.Errorf("period: unknown month %q", abbrev)
}

// Bounds returns the first and last second queried for the period:
// the first day at 00:00:01 and the last day at 23:59:59.
func (p Period) Bounds() (time.Time, time.Time) {
	from := time.Date(p.Year, p.Month, 1, 0, 0, 1, 0, time.UTC)
	// Day 0 of the next month is the last day of this one.
	to := time.Date(p.Year, p.Month+1, 0, 23, 59, 59, 0, time.UTC)
	return from, to
}

// Revision renders the date range as a p4 file revision argument,
// e.g. //...@2020/03/01:00:00:01,@2020/03/31:23:59:59.
func (p Period) Revision(depotPath string) string {
	if depotPath == "" {
		depotPath = "//..."
	}
	from, to := p.Bounds()
	return fmt.Sprintf("%s@%s,@%s", depotPath, from.Format(p4DateLayout), to.Format(p4DateLayout))
}

// SheetName is "<month> <year>" using the month as typed.
func (p Period) SheetName() string {
	return fmt.Sprintf("%s %d", p.MonthText, p.Year)
}

// String implements fmt.Stringer.
func (p Period) String() string {
	return p.SheetName()
}

func countSpaces(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func parseYear(s string) (int, error) {
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, ErrInvalidInput
		}
	}
	return strconv.Atoi(s)
}

//
// Tencent is pleased to support the open source community by making p4clreport available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// p4clreport is licensed under the Apache License Version 2.0.
//

// Package report renders change records into an xlsx workbook.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"trpc.group/trpc-go/p4clreport/internal/changes"
	"trpc.group/trpc-go/p4clreport/internal/period"
)

const (
	descriptionCol   = 4
	filesCol         = 5
	descriptionWidth = 60
	filesWidth       = 120
	maxAutoWidth     = 50
	firstDataRow     = 3
)

var (
	header    = []string{"CL#", "User name", "Date submitted", "Description", "List of files", "Status"}
	separator = []string{"-----", "---------------", "-------------------", "-----------------", "---------------", "---------"}
)

// Options controls where and how the report is written.
type Options struct {
	// OutputPath is the xlsx file to create. An existing file is replaced.
	OutputPath string
	// SheetName names the only sheet, "<month> <year>".
	SheetName string
}

// Path returns <outputDir>/<stream>-CLs-for-<month>-<year>.xlsx. Depot
// syntax streams are flattened, so //Proj/main becomes Proj-main.
func Path(outputDir, stream string, p period.Period) string {
	return filepath.Join(outputDir, fmt.Sprintf("%s-CLs-for-%s-%d.xlsx", fileStem(stream), p.MonthText, p.Year))
}

// fileStem turns a stream into a single file name element.
func fileStem(stream string) string {
	stem := strings.Trim(stream, "/\\")
	return strings.NewReplacer("/", "-", "\\", "-").Replace(stem)
}

// Rows lays records out as sheet rows. A record takes one row carrying its
// first file; each further file gets a row of its own with only the file
// column set.
func Rows(records []changes.ChangeRecord) [][]any {
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		first := ""
		if len(rec.Files) > 0 {
			first = rec.Files[0]
		}
		rows = append(rows, []any{rec.ID, rec.User, rec.Date, rec.Description, first, rec.Status})
		for _, file := range rec.Files[min(1, len(rec.Files)):] {
			row := make([]any, len(header))
			row[filesCol-1] = file
			rows = append(rows, row)
		}
	}
	return rows
}

// Export writes records to opts.OutputPath.
func Export(records []changes.ChangeRecord, opts Options) error {
	if opts.OutputPath == "" {
		return errors.New("output path is required")
	}
	if opts.SheetName == "" {
		return errors.New("sheet name is required")
	}
	if err := os.MkdirAll(filepath.Dir(opts.OutputPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return fmt.Errorf("create output directory: %w", err)
	}

	file := excelize.NewFile()
	defer func() {
		_ = file.Close()
	}()

	sheet := opts.SheetName
	if err := file.SetSheetName(file.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	widths := make([]int, len(header))
	write := func(row int, values []any) error {
		for idx, value := range values {
			if value == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(idx+1, row)
			if err != nil {
				return fmt.Errorf("convert cell: %w", err)
			}
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("write %s: %w", cell, err)
			}
			widths[idx] = max(widths[idx], utf8.RuneCountInString(fmt.Sprint(value)))
		}
		return nil
	}

	if err := write(1, toAny(header)); err != nil {
		return err
	}
	if err := write(2, toAny(separator)); err != nil {
		return err
	}
	rows := Rows(records)
	for i, values := range rows {
		if err := write(firstDataRow+i, values); err != nil {
			return err
		}
	}
	lastRow := firstDataRow + len(rows) - 1
	if len(rows) == 0 {
		lastRow = firstDataRow - 1
	}

	if err := setColumnWidths(file, sheet, widths); err != nil {
		return err
	}
	if err := setStyles(file, sheet, lastRow); err != nil {
		return err
	}

	// An existing report for the same month is replaced.
	if err := os.Remove(opts.OutputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove previous report: %w", err)
	}
	if err := file.SaveAs(opts.OutputPath); err != nil {
		return fmt.Errorf("save xlsx: %w", err)
	}
	return nil
}

// setColumnWidths fixes the description and file columns and sizes the
// others to their longest value.
func setColumnWidths(file *excelize.File, sheet string, widths []int) error {
	for idx, w := range widths {
		col, err := excelize.ColumnNumberToName(idx + 1)
		if err != nil {
			return fmt.Errorf("convert column: %w", err)
		}
		width := float64(min(w+2, maxAutoWidth))
		switch idx + 1 {
		case descriptionCol:
			width = descriptionWidth
		case filesCol:
			width = filesWidth
		}
		if err := file.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("set width for %s: %w", col, err)
		}
	}
	return nil
}

// setStyles left aligns every used cell and wraps the description and file
// columns.
func setStyles(file *excelize.File, sheet string, lastRow int) error {
	left, err := file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top"},
	})
	if err != nil {
		return fmt.Errorf("create left style: %w", err)
	}
	wrap, err := file.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "top", WrapText: true},
	})
	if err != nil {
		return fmt.Errorf("create wrap style: %w", err)
	}
	lastCell, err := excelize.CoordinatesToCellName(len(header), lastRow)
	if err != nil {
		return fmt.Errorf("convert cell: %w", err)
	}
	if err := file.SetCellStyle(sheet, "A1", lastCell, left); err != nil {
		return fmt.Errorf("set left style: %w", err)
	}
	wrapEnd, err := excelize.CoordinatesToCellName(filesCol, lastRow)
	if err != nil {
		return fmt.Errorf("convert cell: %w", err)
	}
	if err := file.SetCellStyle(sheet, "D1", wrapEnd, wrap); err != nil {
		return fmt.Errorf("set wrap style: %w", err)
	}
	return nil
}

func toAny(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

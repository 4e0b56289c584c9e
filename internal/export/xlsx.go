// Package export writes table views to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kailas-cloud/resultgrid/internal/usecase/table"
)

// Sheet names of an exported workbook.
const (
	RowsSheet  = "Results"
	QuerySheet = "Query"
)

// XLSX writes v as a workbook: the visible rows on RowsSheet and the table
// state (search text, sort, pagination) on QuerySheet.
func XLSX(w io.Writer, v table.View) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", RowsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRows(f, v); err != nil {
		return err
	}
	if _, err := f.NewSheet(QuerySheet); err != nil {
		return fmt.Errorf("new sheet: %w", err)
	}
	if err := writeQuery(f, v); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, v table.View) error {
	header := make([]any, len(v.Columns))
	for i, c := range v.Columns {
		header[i] = c.Title
	}
	if err := f.SetSheetRow(RowsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	if len(v.Columns) > 0 {
		bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
		if err != nil {
			return fmt.Errorf("header style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(len(v.Columns), 1)
		if err != nil {
			return fmt.Errorf("header range: %w", err)
		}
		if err := f.SetCellStyle(RowsSheet, "A1", last, bold); err != nil {
			return fmt.Errorf("apply header style: %w", err)
		}
	}

	for i, r := range v.Rows {
		cells := make([]any, len(r.Cells))
		for j, c := range r.Cells {
			cells[j] = c.String()
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		if err := f.SetSheetRow(RowsSheet, cell, &cells); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	return nil
}

func writeQuery(f *excelize.File, v table.View) error {
	sort := make([]string, len(v.Sort))
	for i, d := range v.Sort {
		sort[i] = d.Key + " " + d.Direction.String()
	}
	rows := [][]any{
		{"search", v.SearchText},
		{"sort", strings.Join(sort, ", ")},
		{"mode", v.Mode.String()},
		{"page", strconv.Itoa(v.Pagination.Page)},
		{"page_size", strconv.Itoa(v.Pagination.PageSize)},
		{"total", strconv.Itoa(v.Pagination.Total)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(QuerySheet, cell, &row); err != nil {
			return fmt.Errorf("write query row %d: %w", i, err)
		}
	}
	return nil
}

// Package report renders a processed document result as an xlsx workbook
// for download: one sheet of accepted entities, one audit sheet of
// excluded pages.
package report

import (
	"fmt"
	"io"
	"sort"

	"github.com/xuri/excelize/v2"

	"kycdocs/internal/domain"
)

const (
	entitiesSheet = "Entities"
	excludedSheet = "Excluded Pages"
)

// entityColumns defines the header row of the entities sheet.
var entityColumns = []string{
	"Page",
	"Class",
	"Class Score",
	"Page Status",
	"Entity Name",
	"Backend Key",
	"Value",
	"Source Model",
	"Checked",
	"Manual Check",
}

// excludedColumns defines the header row of the audit sheet.
var excludedColumns = []string{
	"Page",
	"Class",
	"Status",
	"Entity Count",
}

// Write renders the result for one document as an xlsx workbook.
func Write(w io.Writer, filename string, result *domain.DocumentResult) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", entitiesSheet)
	if _, err := f.NewSheet(excludedSheet); err != nil {
		return fmt.Errorf("creating audit sheet: %w", err)
	}

	if err := writeEntities(f, result.Included); err != nil {
		return err
	}
	if err := writeExcluded(f, result.Excluded); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook for %s: %w", filename, err)
	}
	return nil
}

func writeEntities(f *excelize.File, included map[int]domain.PageRecord) error {
	if err := writeRow(f, entitiesSheet, 1, headerCells(entityColumns)); err != nil {
		return err
	}

	rowNum := 2
	for _, page := range sortedPages(included) {
		record := included[page]
		if len(record.Extraction) == 0 {
			// Placeholder row so page coverage stays visible.
			cells := []interface{}{page, record.Classification.ClassName, record.Classification.Score, record.Status}
			if err := writeRow(f, entitiesSheet, rowNum, cells); err != nil {
				return err
			}
			rowNum++
			continue
		}
		for _, e := range record.Extraction {
			cells := []interface{}{
				page,
				record.Classification.ClassName,
				record.Classification.Score,
				record.Status,
				e.EntityName,
				e.BackendEntityKey,
				e.EntityValue.Raw,
				e.SourceModel,
				e.Checked,
				e.EntityValue.ManualCheck || e.ManualCheck,
			}
			if err := writeRow(f, entitiesSheet, rowNum, cells); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func writeExcluded(f *excelize.File, excluded map[int]domain.PageRecord) error {
	if err := writeRow(f, excludedSheet, 1, headerCells(excludedColumns)); err != nil {
		return err
	}

	rowNum := 2
	for _, page := range sortedPages(excluded) {
		record := excluded[page]
		cells := []interface{}{page, record.Classification.ClassName, record.Status, len(record.Extraction)}
		if err := writeRow(f, excludedSheet, rowNum, cells); err != nil {
			return err
		}
		rowNum++
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("writing %s row %d: %w", sheet, rowNum, err)
	}
	return nil
}

func headerCells(columns []string) []interface{} {
	cells := make([]interface{}, len(columns))
	for i, c := range columns {
		cells[i] = c
	}
	return cells
}

func sortedPages(records map[int]domain.PageRecord) []int {
	pages := make([]int, 0, len(records))
	for page := range records {
		pages = append(pages, page)
	}
	sort.Ints(pages)
	return pages
}

// Package workbook records card identifiers in an xlsx roster: one user per
// row, the identifier written into the first row that has none yet.
package workbook

import (
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrNoMoreUsers means an empty user cell was reached before a free row.
	ErrNoMoreUsers = errors.New("no more users available")
	// ErrNoFreeRow means every scanned row already holds an identifier.
	ErrNoFreeRow = errors.New("no row without an identifier")
)

// Writer describes where identifiers go. Columns and rows are 1-based.
type Writer struct {
	Path       string
	Sheet      string
	UserColumn int
	IDColumn   int
	MaxRows    int
}

// Assignment is a row that received an identifier.
type Assignment struct {
	Row  int
	User string
}

// Write stores id next to the first user that has no identifier and saves
// the workbook in place.
func (w Writer) Write(id string) (Assignment, error) {
	f, err := excelize.OpenFile(w.Path)
	if err != nil {
		return Assignment{}, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if idx, err := f.GetSheetIndex(w.Sheet); err != nil || idx < 0 {
		return Assignment{}, fmt.Errorf("sheet %q not found in %s", w.Sheet, w.Path)
	}

	a, err := w.nextFree(f)
	if err != nil {
		return Assignment{}, err
	}

	cell, err := excelize.CoordinatesToCellName(w.IDColumn, a.Row)
	if err != nil {
		return Assignment{}, err
	}
	if err := f.SetCellValue(w.Sheet, cell, id); err != nil {
		return Assignment{}, fmt.Errorf("writing %s: %w", cell, err)
	}
	if err := f.Save(); err != nil {
		return Assignment{}, fmt.Errorf("saving workbook: %w", err)
	}

	return a, nil
}

func (w Writer) nextFree(f *excelize.File) (Assignment, error) {
	for row := 1; row <= w.MaxRows; row++ {
		user, err := w.cell(f, w.UserColumn, row)
		if err != nil {
			return Assignment{}, err
		}
		if user == "" {
			return Assignment{}, ErrNoMoreUsers
		}

		id, err := w.cell(f, w.IDColumn, row)
		if err != nil {
			return Assignment{}, err
		}
		if id == "" {
			return Assignment{Row: row, User: user}, nil
		}
	}
	return Assignment{}, ErrNoFreeRow
}

func (w Writer) cell(f *excelize.File, col, row int) (string, error) {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	v, err := f.GetCellValue(w.Sheet, name)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", name, err)
	}
	return v, nil
}

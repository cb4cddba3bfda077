package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/HuyDinhdmm/Japanese-language-portal/internal/domain"
)

// ReadFile loads records from an .xlsx or .csv file. Each row holds kanji,
// romaji and vietnamese, optionally followed by the JLPT level. A first row
// whose first cell is "kanji" is treated as a header.
func ReadFile(path string) ([]Record, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSX(path)
	case ".csv":
		rows, err = readCSV(path)
	default:
		return nil, domain.NewValidationError("file", "unsupported file type "+filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return recordsFromRows(rows), nil
}

// ImportFile reads path and imports its records into category.
func (im *Importer) ImportFile(path, category string) (*Result, error) {
	records, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return im.Import(records, category)
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse csv: %w", err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func recordsFromRows(rows [][]string) []Record {
	cell := func(row []string, i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && strings.EqualFold(cell(row, 0), "kanji") {
			continue
		}
		kanji := cell(row, 0)
		if kanji == "" {
			continue
		}
		records = append(records, Record{
			Kanji:      kanji,
			Romaji:     cell(row, 1),
			Vietnamese: cell(row, 2),
			JLPTLevel:  strings.ToUpper(cell(row, 3)),
		})
	}
	return records
}

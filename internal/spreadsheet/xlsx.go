// Package spreadsheet turns XLSX cost lists into the delimited text the
// cost-list parser reads.
package spreadsheet

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Delimiter written between cells. Commas are common inside product names.
const Delimiter = ';'

var zipMagic = []byte("PK\x03\x04")

// cellCleaner keeps every cell on one line and free of the delimiter.
var cellCleaner = strings.NewReplacer(";", ",", "\r\n", " ", "\n", " ", "\r", " ")

// IsXLSX reports whether an upload should go through ToDelimitedText, by
// extension first and by the zip signature otherwise.
func IsXLSX(filename string, head []byte) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return true
	case ".csv", ".txt":
		return false
	}
	return bytes.HasPrefix(head, zipMagic)
}

// ToDelimitedText converts the first sheet of an XLSX workbook to
// ';'-delimited text, one line per row.
func ToDelimitedText(r io.Reader) (string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("xlsx has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.Rows(sheet)
	if err != nil {
		return "", fmt.Errorf("failed to read rows from sheet %s: %w", sheet, err)
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		record, err := rows.Columns()
		if err != nil {
			return "", fmt.Errorf("failed to read row from sheet %s: %w", sheet, err)
		}
		if len(record) == 0 {
			continue
		}
		for i, cell := range record {
			record[i] = cellCleaner.Replace(cell)
		}
		b.WriteString(strings.Join(record, string(Delimiter)))
		b.WriteByte('\n')
	}
	if err := rows.Error(); err != nil {
		return "", fmt.Errorf("error iterating rows in sheet %s: %w", sheet, err)
	}
	return b.String(), nil
}

package spreadsheet

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf
}

func TestToDelimitedText(t *testing.T) {
	t.Parallel()

	buf := workbook(t, [][]any{
		{"Nombre", "Costo", "Codigo EXT"},
		{"HELADERA TOKYO 2P BLANCO", "2494800", "5652561025395"},
		{"SILLA GAMER, NEGRA", "1.234,50", "SG-1"},
	})

	got, err := ToDelimitedText(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "Nombre;Costo;Codigo EXT\nHELADERA TOKYO 2P BLANCO;2494800;5652561025395\nSILLA GAMER, NEGRA;1.234,50;SG-1\n"
	if got != want {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestToDelimitedText_CellsStayOnOneField(t *testing.T) {
	t.Parallel()

	buf := workbook(t, [][]any{
		{"MESA; VIDRIO\nTEMPLADO", "350000", "MV-2"},
	})

	got, err := ToDelimitedText(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "MESA, VIDRIO TEMPLADO;350000;MV-2\n"
	if got != want {
		t.Fatalf("want=%q got=%q", want, got)
	}
}

func TestToDelimitedText_NotAWorkbook(t *testing.T) {
	t.Parallel()

	if _, err := ToDelimitedText(bytes.NewBufferString("Nombre;Costo;Codigo")); err == nil {
		t.Fatalf("expected error for plain text")
	}
}

func TestIsXLSX(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		head []byte
		want bool
	}{
		{"lista.xlsx", nil, true},
		{"LISTA.XLSX", nil, true},
		{"lista.csv", []byte("PK\x03\x04"), false},
		{"upload", []byte("PK\x03\x04rest"), true},
		{"upload", []byte("Nombre;Costo"), false},
	}
	for _, tc := range cases {
		if got := IsXLSX(tc.name, tc.head); got != tc.want {
			t.Fatalf("IsXLSX(%q) want=%v got=%v", tc.name, tc.want, got)
		}
	}
}

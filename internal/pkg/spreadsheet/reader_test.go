package spreadsheet

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildXLSX(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestReadRows_XLSX(t *testing.T) {
	buf := buildXLSX(t, [][]any{
		{"Username", "Email", "Full Name", "Role"},
		{"dewi", "dewi@example.com", "Dewi Lestari", "office_employee"},
	})

	rows, err := ReadRows(buf, "Roster.XLSX")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"dewi", "dewi@example.com", "Dewi Lestari", "office_employee"}, rows[1])
}

func TestReadRows_UnsupportedExtension(t *testing.T) {
	_, err := ReadRows(strings.NewReader("a,b"), "roster.csv")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestReadRows_CorruptXLSX(t *testing.T) {
	_, err := ReadRows(strings.NewReader("not a zip"), "roster.xlsx")
	assert.Error(t, err)
}

func TestHeaderIndex(t *testing.T) {
	index := HeaderIndex([]string{" Username ", "E-mail", "Full   Name", "", "username"})

	assert.Equal(t, 0, index["username"])
	assert.Equal(t, 1, index["e-mail"])
	assert.Equal(t, 2, index["full_name"])
	assert.Len(t, index, 3)
}

func TestCell(t *testing.T) {
	row := []string{" a ", "b"}

	assert.Equal(t, "a", Cell(row, 0))
	assert.Equal(t, "", Cell(row, 5))
	assert.Equal(t, "", Cell(row, -1))
}

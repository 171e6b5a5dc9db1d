package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Arupreza/ScholarScout/internal/common"
	"github.com/Arupreza/ScholarScout/internal/entity"
)

const header = "author_name,email,department,institution,country,paper_name\n"

func sampleResult() entity.BatchResult {
	return entity.BatchResult{
		Records: []entity.AffiliationRecord{
			{AuthorName: "Alice Smith", Email: "alice@mit.edu", Department: "EECS", Institution: "MIT", Country: "USA", PaperName: "a_paper"},
			{AuthorName: "José Núñez", Institution: "Universidad de Chile, Santiago", Country: "Chile", PaperName: "a_paper"},
			{AuthorName: `Bob "BJ" Jones`, Department: "Line1\nLine2", PaperName: "b_paper"},
		},
	}
}

func TestAssemble(t *testing.T) {
	tbl := Assemble(sampleResult())

	assert.Equal(t, []string{"author_name", "email", "department", "institution", "country", "paper_name"}, tbl.Header)
	want := [][]string{
		{"Alice Smith", "alice@mit.edu", "EECS", "MIT", "USA", "a_paper"},
		{"José Núñez", "", "", "Universidad de Chile, Santiago", "Chile", "a_paper"},
		{`Bob "BJ" Jones`, "", "Line1\nLine2", "", "", "b_paper"},
	}
	if diff := cmp.Diff(want, tbl.Rows); diff != "" {
		t.Errorf("Assemble() rows mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemble_NoRecordsIsHeaderOnly(t *testing.T) {
	data, err := Encode(Assemble(entity.BatchResult{}), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, header, string(data))
}

func TestWriteCSV_Quoting(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, Assemble(sampleResult()), true))

	want := header +
		"Alice Smith,alice@mit.edu,EECS,MIT,USA,a_paper\n" +
		"José Núñez,,,\"Universidad de Chile, Santiago\",Chile,a_paper\n" +
		"\"Bob \"\"BJ\"\" Jones\",,\"Line1\nLine2\",,,b_paper\n"
	assert.Equal(t, want, buf.String())

	rows, err := csv.NewReader(bytes.NewReader(buf.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "Universidad de Chile, Santiago", rows[2][3])
	assert.Equal(t, "Line1\nLine2", rows[3][2])
}

func TestWrite_OverwriteCreatesParentsAndReplaces(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "out", "nested", "table.csv")
	svc := NewService(nil)

	require.NoError(t, svc.Write(Assemble(sampleResult()), dest, common.WriteModeOverwrite))
	require.NoError(t, svc.Write(Assemble(entity.BatchResult{}), dest, common.WriteModeOverwrite))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, header, string(data))

	entries, err := os.ReadDir(filepath.Dir(dest))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestWrite_CreateRefusesExisting(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(dest, []byte("keep me"), 0o644))

	err := NewService(nil).Write(Assemble(sampleResult()), dest, common.WriteModeCreate)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOutput)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "keep me", string(data))
}

func TestWrite_AppendWritesHeaderOnce(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.csv")
	svc := NewService(nil)
	tbl := Table{Header: Assemble(entity.BatchResult{}).Header, Rows: [][]string{{"A", "", "", "X", "", "p1"}}}

	require.NoError(t, svc.Write(tbl, dest, common.WriteModeAppend))
	require.NoError(t, svc.Write(tbl, dest, common.WriteModeAppend))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, header+"A,,,X,,p1\nA,,,X,,p1\n", string(data))
}

func TestWrite_AppendRejectsXLSX(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.xlsx")
	err := NewService(nil).Write(Assemble(sampleResult()), dest, common.WriteModeAppend)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrOutput)
	assert.NoFileExists(t, dest)
}

func TestWrite_UnknownMode(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.csv")
	err := NewService(nil).Write(Assemble(sampleResult()), dest, "truncate")
	assert.ErrorIs(t, err, common.ErrOutput)
}

func TestWrite_XLSX(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "table.XLSX")
	require.NoError(t, NewService(nil).Write(Assemble(sampleResult()), dest, common.WriteModeOverwrite))

	f, err := excelize.OpenFile(dest)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())
	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"author_name", "email", "department", "institution", "country", "paper_name"}, rows[0])
	assert.Equal(t, []string{"Alice Smith", "alice@mit.edu", "EECS", "MIT", "USA", "a_paper"}, rows[1])
}

func TestFormatFor(t *testing.T) {
	assert.Equal(t, FormatCSV, FormatFor("out.csv"))
	assert.Equal(t, FormatCSV, FormatFor("out"))
	assert.Equal(t, FormatXLSX, FormatFor("dir/out.xlsx"))
}

package source

import (
	"errors"
	"testing"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestReadCSV_PreservesOrderAndTrimsHeaders(t *testing.T) {
	data := []byte("\xEF\xBB\xBFDate, Description ,Amount\n2024-01-05,Salary,50000\n2024-01-06,Rent,-20000\n")

	records, err := ReadCSV(data)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "2024-01-05", records[0]["Date"])
	assert.Equal(t, "Salary", records[0]["Description"])
	assert.Equal(t, "-20000", records[1]["Amount"])
}

func TestReadCSV_Malformed(t *testing.T) {
	_, err := ReadCSV([]byte("Date,Description\n\"2024-01-05,Salary\n"))

	var unreadable *common.UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.Equal(t, "could not parse CSV", unreadable.Reason)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestReadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Narrative", "Value"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]any{"05/01/2024", "Airtime", "-100.00"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A3", &[]any{"06/01/2024", "Salary"}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	records, err := ReadXLSX(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Airtime", records[0]["Narrative"])
	assert.Equal(t, "-100.00", records[0]["Value"])
	assert.Equal(t, "", records[1]["Value"])
}

func TestReadXLSX_NotAWorkbook(t *testing.T) {
	_, err := ReadXLSX([]byte("plain text"))

	var unreadable *common.UnreadableError
	assert.ErrorAs(t, err, &unreadable)
}

func TestReadPDFText_NotAPDF(t *testing.T) {
	_, err := ReadPDFText([]byte("not a valid pdf"))

	var unreadable *common.UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.Equal(t, "not a PDF document", unreadable.Reason)
}

func TestReadPDFText_Corrupt(t *testing.T) {
	_, err := ReadPDFText([]byte("%PDF-1.4\n1 0 obj\ngarbage\n"))

	var unreadable *common.UnreadableError
	assert.ErrorAs(t, err, &unreadable)
}

func TestReadPDFText_PasswordProtected(t *testing.T) {
	_, err := ReadPDFText([]byte("%PDF-1.7\ntrailer\n<< /Encrypt 5 0 R >>\n%%EOF\n"))

	var unreadable *common.UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.Equal(t, "PDF is password-protected", unreadable.Reason)
}

func TestKindOf(t *testing.T) {
	cases := []struct {
		declared string
		filename string
		want     Kind
	}{
		{"application/pdf", "a.bin", KindPDF},
		{"text/csv; charset=utf-8", "a.bin", KindCSV},
		{"application/vnd.ms-excel", "export.csv", KindCSV},
		{MIMEXLSX, "book.xlsx", KindXLSX},
		{"", "statement.PDF", KindPDF},
		{"application/octet-stream", "export.csv", KindCSV},
	}

	for _, c := range cases {
		kind, err := KindOf(c.declared, c.filename, nil)
		if assert.NoError(t, err, c.declared) {
			assert.Equal(t, c.want, kind, c.declared)
		}
	}
}

func TestKindOf_Unsupported(t *testing.T) {
	_, err := KindOf("image/png", "receipt.png", nil)

	var unsupported *common.UnsupportedContentTypeError
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, "image/png", unsupported.ContentType)
}

func TestKindOf_BinaryExcelIsUnreadable(t *testing.T) {
	data := append([]byte("\xD0\xCF\x11\xE0\xA1\xB1\x1A\xE1"), make([]byte, 1024)...)

	_, err := KindOf("application/vnd.ms-excel", "statement.xls", data)

	var unreadable *common.UnreadableError
	require.ErrorAs(t, err, &unreadable)
	assert.Contains(t, unreadable.Reason, "binary Excel")
}

func TestKindOf_ExcelTypeCarryingWorkbook(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Date"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	kind, err := KindOf("application/vnd.ms-excel", "statement.xlsx", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, KindXLSX, kind)
}

func TestKindOf_ExcelTypeCarryingCSV(t *testing.T) {
	kind, err := KindOf("application/vnd.ms-excel", "export.csv", []byte("Date,Description,Amount\n05/01/2024,Salary,100.00\n"))
	require.NoError(t, err)
	assert.Equal(t, KindCSV, kind)
}

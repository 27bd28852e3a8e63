package source

import (
	"mime"
	"path/filepath"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/gabriel-vasile/mimetype"
)

// Kind is the reader a document is routed to.
type Kind int

const (
	KindPDF Kind = iota + 1
	KindCSV
	KindXLSX
)

const (
	MIMEPDF      = "application/pdf"
	MIMECSV      = "text/csv"
	MIMEExcelCSV = "application/vnd.ms-excel"
	MIMEXLSX     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	oleStorage = "application/x-ole-storage"
	zipArchive = "application/zip"
)

var kinds = map[string]Kind{
	MIMEPDF:           KindPDF,
	MIMECSV:           KindCSV,
	"application/csv": KindCSV,
	MIMEExcelCSV:      KindCSV,
	MIMEXLSX:          KindXLSX,
}

var extensions = map[string]string{
	".pdf":  MIMEPDF,
	".csv":  MIMECSV,
	".xlsx": MIMEXLSX,
}

// ContentType returns the media type of a document. A missing or generic
// declared type is resolved from the file extension, then by sniffing.
func ContentType(declared, filename string, data []byte) string {
	mediaType := declared
	if parsed, _, err := mime.ParseMediaType(declared); err == nil {
		mediaType = parsed
	}
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))

	if mediaType == "" || mediaType == "application/octet-stream" {
		if byExt, ok := extensions[strings.ToLower(filepath.Ext(filename))]; ok {
			return byExt
		}
		sniffed, _, _ := mime.ParseMediaType(mimetype.Detect(data).String())
		return sniffed
	}
	return mediaType
}

// KindOf maps a content type to a reader.
func KindOf(declared, filename string, data []byte) (Kind, error) {
	contentType := ContentType(declared, filename, data)
	if contentType == MIMEExcelCSV {
		return excelKind(data)
	}
	if kind, ok := kinds[contentType]; ok {
		return kind, nil
	}
	return 0, &common.UnsupportedContentTypeError{ContentType: contentType}
}

// excelKind resolves the Excel media type, which browsers send for CSV files
// as well as for workbooks, by looking at the bytes.
func excelKind(data []byte) (Kind, error) {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		switch {
		case m.Is(oleStorage):
			return 0, common.Unreadable("binary Excel workbooks are not supported, export as CSV or XLSX", nil)
		case m.Is(MIMEXLSX), m.Is(zipArchive):
			return KindXLSX, nil
		}
	}
	return KindCSV, nil
}

package source

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/dslipak/pdf"
	plainpdf "github.com/ledongthuc/pdf"
	log "github.com/sirupsen/logrus"
)

var (
	pdfMagic      = []byte("%PDF")
	encryptMarker = []byte("/Encrypt")
)

// ReadPDFText linearizes the text of a PDF document, one visual row per line.
// The row-wise reader runs first; the plain-text reader is tried when it
// yields nothing.
func ReadPDFText(data []byte) (string, error) {
	if !bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), pdfMagic) {
		return "", common.Unreadable("not a PDF document", nil)
	}

	rows, rowErr := readRows(data)
	if rowErr == nil && len(rows) > 0 {
		return strings.Join(rows, "\n"), nil
	}

	text, plainErr := readPlainText(data)
	if plainErr == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	if bytes.Contains(data, encryptMarker) {
		return "", common.Unreadable("PDF is password-protected", firstErr(rowErr, plainErr))
	}
	if err := firstErr(rowErr, plainErr); err != nil {
		return "", common.Unreadable("could not read PDF", err)
	}
	return "", common.Unreadable("no extractable text in PDF", nil)
}

// readRows collects page text row by row.
func readRows(data []byte) (rows []string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	numPages := r.NumPage()
	rows = make([]string, 0, numPages*100)

	for no := 1; no <= numPages; no++ {
		page := r.Page(no)
		if page.V.IsNull() {
			continue
		}
		pageRows, err := page.GetTextByRow()
		if err != nil {
			log.WithField("page", no).Warnf("error getting text from page: %v", err)
			continue
		}

		for _, row := range pageRows {
			var builder strings.Builder
			for i, text := range row.Content {
				builder.WriteString(text.S)
				if i < len(row.Content)-1 {
					builder.WriteByte(' ')
				}
			}

			if line := strings.TrimSpace(builder.String()); line != "" {
				rows = append(rows, line)
			}
		}
	}

	return rows, nil
}

func readPlainText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("pdf parser panic: %v", r)
		}
	}()

	r, err := plainpdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := r.GetPlainText()
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(plain)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

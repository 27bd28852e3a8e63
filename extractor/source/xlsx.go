package source

import (
	"bytes"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first worksheet of a workbook. The first non-empty row is
// the header.
func ReadXLSX(data []byte) ([]Record, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, common.Unreadable("could not open spreadsheet", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, common.Unreadable("spreadsheet has no sheets", nil)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, common.Unreadable("could not read sheet "+sheets[0], err)
	}

	var header []string
	records := []Record{}
	for _, row := range rows {
		if isBlank(row) {
			continue
		}
		if header == nil {
			header = make([]string, len(row))
			for i, cell := range row {
				header[i] = strings.TrimSpace(cell)
			}
			continue
		}

		record := make(Record, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(row) {
				record[key] = row[i]
			} else {
				record[key] = ""
			}
		}
		records = append(records, record)
	}

	return records, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

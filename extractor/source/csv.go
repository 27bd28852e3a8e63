package source

import (
	"bytes"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/gocarina/gocsv"
)

// Record is one tabular row keyed by its header cell.
type Record map[string]string

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV parses a header-led CSV document into records in source order.
func ReadCSV(data []byte) ([]Record, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	rows, err := gocsv.CSVToMaps(bytes.NewReader(data))
	if err != nil {
		return nil, common.Unreadable("could not parse CSV", err)
	}

	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		records = append(records, trimKeys(row))
	}
	return records, nil
}

func trimKeys(row map[string]string) Record {
	record := make(Record, len(row))
	for k, v := range row {
		record[strings.TrimSpace(k)] = v
	}
	return record
}

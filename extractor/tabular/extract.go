// Package tabular turns CSV and spreadsheet records into transaction
// candidates by resolving column-name synonyms.
package tabular

import (
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/aqlanhadi/stmtsense/extractor/source"
)

// Columns lists, per logical field, the header names tried in order.
type Columns struct {
	Date        []string `mapstructure:"date"`
	Description []string `mapstructure:"description"`
	Amount      []string `mapstructure:"amount"`
	Currency    []string `mapstructure:"currency"`
}

func DefaultColumns() Columns {
	return Columns{
		Date:        []string{"Date", "Transaction Date", "Posting Date"},
		Description: []string{"Description", "Merchant", "Narrative"},
		Amount:      []string{"Amount", "Transaction Amount", "Value"},
		Currency:    []string{"Currency"},
	}
}

type Extractor struct {
	columns Columns
}

func New(columns Columns) *Extractor {
	return &Extractor{columns: columns}
}

// Extract emits one unsigned candidate per record. Records without a usable
// date column are dropped.
func (e *Extractor) Extract(records []source.Record) []common.Candidate {
	candidates := []common.Candidate{}

	for _, record := range records {
		date := lookup(record, e.columns.Date)
		if date == "" {
			continue
		}

		candidates = append(candidates, common.Candidate{
			DateText:        date,
			DescriptionText: lookup(record, e.columns.Description),
			AmountText:      lookup(record, e.columns.Amount),
			CurrencyText:    lookup(record, e.columns.Currency),
			Direction:       common.Unsigned,
		})
	}

	return candidates
}

// lookup returns the first synonym that is present and non-empty.
func lookup(record source.Record, names []string) string {
	for _, name := range names {
		if v, ok := record[name]; ok && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

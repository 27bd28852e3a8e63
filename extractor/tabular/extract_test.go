package tabular

import (
	"testing"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/aqlanhadi/stmtsense/extractor/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_SynonymPriority(t *testing.T) {
	e := New(DefaultColumns())

	candidates := e.Extract([]source.Record{
		{"Date": "2024-01-05", "Transaction Date": "2023-12-31", "Description": "Salary", "Amount": "50000"},
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, "2024-01-05", candidates[0].DateText)
	assert.Equal(t, "Salary", candidates[0].DescriptionText)
	assert.Equal(t, "50000", candidates[0].AmountText)
	assert.Equal(t, common.Unsigned, candidates[0].Direction)
}

func TestExtract_EmptyFieldFallsThrough(t *testing.T) {
	e := New(DefaultColumns())

	candidates := e.Extract([]source.Record{
		{"Date": " ", "Posting Date": "05/01/2024", "Merchant": "", "Narrative": "Airtime", "Value": "-100.00", "Currency": "kes"},
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, "05/01/2024", candidates[0].DateText)
	assert.Equal(t, "Airtime", candidates[0].DescriptionText)
	assert.Equal(t, "-100.00", candidates[0].AmountText)
	assert.Equal(t, "kes", candidates[0].CurrencyText)
}

func TestExtract_DropsUndatedRecords(t *testing.T) {
	e := New(DefaultColumns())

	candidates := e.Extract([]source.Record{
		{"Description": "Opening balance", "Amount": "100"},
		{"Date": "2024-01-06", "Description": "Rent", "Amount": "-20000"},
		{"Date": "", "Description": "Closing balance", "Amount": "80100"},
	})

	require.Len(t, candidates, 1)
	assert.Equal(t, "Rent", candidates[0].DescriptionText)
}

func TestExtract_NoRecords(t *testing.T) {
	assert.Empty(t, New(DefaultColumns()).Extract(nil))
}

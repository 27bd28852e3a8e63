package common

import (
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts are JSON numbers for downstream consumers.
	decimal.MarshalJSONWithoutQuotes = true
}

// Direction decides the sign applied to a candidate amount during normalization.
type Direction int

const (
	// Unsigned keeps whatever sign the raw amount text carries.
	Unsigned Direction = iota
	PaidIn
	PaidOut
)

func (d Direction) String() string {
	switch d {
	case PaidIn:
		return "PAID_IN"
	case PaidOut:
		return "PAID_OUT"
	default:
		return "UNSIGNED"
	}
}

// Candidate is a transaction as captured from the source, before normalization.
type Candidate struct {
	DateText        string
	DescriptionText string
	AmountText      string
	CurrencyText    string
	Type            string
	Direction       Direction
}

// Document is one uploaded or on-disk statement.
type Document struct {
	Data        []byte
	ContentType string
	Filename    string
	// Profile skips detection when set.
	Profile ProfileID
}

type Transaction struct {
	Sequence    int             `json:"sequence"`
	Date        *string         `json:"date"`
	Description string          `json:"description"`
	Type        string          `json:"type,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
}

type Statement struct {
	Source       string          `json:"source"`
	Profile      ProfileID       `json:"profile"`
	Currency     string          `json:"currency"`
	Transactions []Transaction   `json:"transactions"`
	TotalCredit  decimal.Decimal `json:"total_credit"`
	TotalDebit   decimal.Decimal `json:"total_debit"`
	Nett         decimal.Decimal `json:"nett"`
}

// Found reports whether the extraction produced at least one transaction.
func (s Statement) Found() bool {
	return len(s.Transactions) > 0
}

// Tally recomputes the credit, debit and nett totals from the transactions.
func (s *Statement) Tally() {
	s.TotalCredit = decimal.Zero
	s.TotalDebit = decimal.Zero
	for _, tx := range s.Transactions {
		if tx.Amount.IsPositive() {
			s.TotalCredit = s.TotalCredit.Add(tx.Amount)
		} else {
			s.TotalDebit = s.TotalDebit.Add(tx.Amount)
		}
	}
	s.Nett = s.TotalCredit.Add(s.TotalDebit)
}

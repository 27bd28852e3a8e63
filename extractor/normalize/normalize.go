// Package normalize turns raw candidates into canonical transactions. It never
// fails: malformed fields degrade to a null date or a zero amount.
package normalize

import (
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/shopspring/decimal"
)

type rules struct {
	currency  string
	dateOrder common.DateOrder
}

type Normalizer struct {
	profiles        map[common.ProfileID]rules
	defaultCurrency string
}

// New indexes the profiles by id. Unknown profile ids normalize with the
// default currency and day-first dates.
func New(profiles []common.Profile, defaultCurrency string) *Normalizer {
	n := &Normalizer{
		profiles:        make(map[common.ProfileID]rules, len(profiles)),
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
	for _, p := range profiles {
		n.profiles[p.ID] = rules{currency: strings.ToUpper(p.Currency), dateOrder: p.DateOrder}
	}
	return n
}

func (n *Normalizer) Normalize(c common.Candidate, profile common.ProfileID) common.Transaction {
	r := n.profiles[profile]

	tx := common.Transaction{
		Description: strings.TrimSpace(c.DescriptionText),
		Type:        c.Type,
		Amount:      Amount(c.AmountText, c.Direction),
		Currency:    n.currency(r, c.CurrencyText),
	}
	if date, ok := common.ISODate(c.DateText, r.dateOrder); ok {
		tx.Date = &date
	}
	return tx
}

// All normalizes candidates in order and numbers them from 1.
func (n *Normalizer) All(candidates []common.Candidate, profile common.ProfileID) []common.Transaction {
	transactions := make([]common.Transaction, 0, len(candidates))
	for i, c := range candidates {
		tx := n.Normalize(c, profile)
		tx.Sequence = i + 1
		transactions = append(transactions, tx)
	}
	return transactions
}

// Amount parses the amount text and applies the direction's sign. Unparsable
// text is zero.
func Amount(text string, direction common.Direction) decimal.Decimal {
	value, err := common.CleanDecimal(text)
	if err != nil {
		return decimal.Zero
	}

	switch direction {
	case common.PaidOut:
		return value.Abs().Neg()
	case common.PaidIn:
		return value.Abs()
	default:
		return value
	}
}

// currency prefers the profile's pinned code, then a captured code go-money
// recognises, then the default.
func (n *Normalizer) currency(r rules, captured string) string {
	if r.currency != "" {
		return r.currency
	}
	code := strings.ToUpper(strings.TrimSpace(captured))
	if code != "" && money.GetCurrency(code) != nil {
		return code
	}
	return n.defaultCurrency
}

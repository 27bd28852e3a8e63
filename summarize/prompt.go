// Package summarize turns extracted transactions into language-model prompts
// and sends them to a completion API.
package summarize

import (
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
)

const (
	summaryInstruction  = "Summarize the following transactions:"
	insightsInstruction = "Categorize and analyze the following transactions. Report total inflow, total outflow, net balance, the top 3 spending categories and any unusual or suspicious activity:"
)

// FormatTransactions renders one "description: signed-amount currency" line
// per transaction.
func FormatTransactions(transactions []common.Transaction) string {
	var b strings.Builder
	for i, tx := range transactions {
		if i > 0 {
			b.WriteByte('\n')
		}
		sign := "+"
		if tx.Amount.IsNegative() {
			sign = "-"
		}
		b.WriteString(tx.Description)
		b.WriteString(": ")
		b.WriteString(sign)
		b.WriteString(tx.Amount.Abs().StringFixed(2))
		b.WriteByte(' ')
		b.WriteString(tx.Currency)
	}
	return b.String()
}

func BuildSummaryPrompt(transactions []common.Transaction) string {
	return summaryInstruction + "\n" + FormatTransactions(transactions)
}

func BuildInsightsPrompt(transactions []common.Transaction) string {
	return insightsInstruction + "\n" + FormatTransactions(transactions)
}

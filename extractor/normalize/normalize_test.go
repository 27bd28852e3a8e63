package normalize

import (
	"testing"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNormalizer() *Normalizer {
	return New([]common.Profile{
		{ID: common.ProfileMpesa, Currency: "KES", DateOrder: common.DayFirst},
		{ID: common.ProfileGeneric, DateOrder: common.DayFirst},
		{ID: common.ProfileKCB, DateOrder: common.MonthFirst},
	}, "USD")
}

func TestAmount_StripsSeparators(t *testing.T) {
	assert.True(t, decimal.RequireFromString("1234.56").Equal(Amount("1,234.56", common.Unsigned)))
	assert.True(t, decimal.RequireFromString("-1234.56").Equal(Amount("-1,234.56", common.Unsigned)))
	assert.True(t, decimal.RequireFromString("50").Equal(Amount("KES 50", common.Unsigned)))
}

func TestAmount_Unparsable(t *testing.T) {
	assert.True(t, Amount("--", common.Unsigned).IsZero())
	assert.True(t, Amount("1.2.3", common.PaidOut).IsZero())
	assert.True(t, Amount("", common.PaidIn).IsZero())
}

func TestAmount_SignFollowsDirection(t *testing.T) {
	for _, text := range []string{"2,000.00", "-2,000.00", "0.00"} {
		out := Amount(text, common.PaidOut)
		in := Amount(text, common.PaidIn)
		assert.False(t, out.IsPositive(), "paid out %s", text)
		assert.False(t, in.IsNegative(), "paid in %s", text)
		assert.True(t, out.Abs().Equal(in), text)
	}
}

func TestNormalize_PinnedCurrency(t *testing.T) {
	tx := testNormalizer().Normalize(common.Candidate{
		DescriptionText: " John Doe ",
		AmountText:      "2,000.00",
		CurrencyText:    "USD",
		Type:            "Send Money",
		Direction:       common.PaidOut,
	}, common.ProfileMpesa)

	assert.Nil(t, tx.Date)
	assert.Equal(t, "John Doe", tx.Description)
	assert.Equal(t, "Send Money", tx.Type)
	assert.True(t, decimal.NewFromInt(-2000).Equal(tx.Amount))
	assert.Equal(t, "KES", tx.Currency)
}

func TestNormalize_CapturedCurrency(t *testing.T) {
	n := testNormalizer()

	tx := n.Normalize(common.Candidate{DateText: "05/01/2024", AmountText: "10.00", CurrencyText: "eur"}, common.ProfileGeneric)
	assert.Equal(t, "EUR", tx.Currency)

	tx = n.Normalize(common.Candidate{DateText: "05/01/2024", AmountText: "10.00", CurrencyText: "XYZ"}, common.ProfileGeneric)
	assert.Equal(t, "USD", tx.Currency)
}

func TestNormalize_DateOrderPerProfile(t *testing.T) {
	n := testNormalizer()
	c := common.Candidate{DateText: "01/05/2024", AmountText: "1.00"}

	generic := n.Normalize(c, common.ProfileGeneric)
	kcb := n.Normalize(c, common.ProfileKCB)

	require.NotNil(t, generic.Date)
	require.NotNil(t, kcb.Date)
	assert.Equal(t, "2024-05-01", *generic.Date)
	assert.Equal(t, "2024-01-05", *kcb.Date)
}

func TestNormalize_Idempotent(t *testing.T) {
	n := testNormalizer()
	c := common.Candidate{DateText: "2024-01-05", DescriptionText: "Salary", AmountText: "-50000.25", CurrencyText: "USD"}

	first := n.Normalize(c, common.ProfileGeneric)
	second := n.Normalize(common.Candidate{
		DateText:        *first.Date,
		DescriptionText: first.Description,
		AmountText:      first.Amount.String(),
		CurrencyText:    first.Currency,
	}, common.ProfileGeneric)

	assert.Equal(t, first, second)
}

func TestNormalize_BadFieldsDegrade(t *testing.T) {
	tx := testNormalizer().Normalize(common.Candidate{DateText: "someday", AmountText: "n/a"}, common.ProfileGeneric)

	assert.Nil(t, tx.Date)
	assert.Equal(t, "", tx.Description)
	assert.True(t, tx.Amount.IsZero())
	assert.Equal(t, "USD", tx.Currency)
}

func TestAll_KeepsOrder(t *testing.T) {
	txs := testNormalizer().All([]common.Candidate{
		{DescriptionText: "b", AmountText: "1.00"},
		{DescriptionText: "a", AmountText: "2.00"},
	}, common.ProfileGeneric)

	require.Len(t, txs, 2)
	assert.Equal(t, 1, txs[0].Sequence)
	assert.Equal(t, "b", txs[0].Description)
	assert.Equal(t, 2, txs[1].Sequence)
}

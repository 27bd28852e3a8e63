package extractor

import (
	"bytes"
	"testing"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadYAML(t *testing.T, doc string) (Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(bytes.NewBufferString(doc)))
	return LoadConfig(v)
}

func TestDefaultConfig(t *testing.T) {
	cfg, err := DefaultConfig()
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, []string{"Date", "Transaction Date", "Posting Date"}, cfg.Columns.Date)

	var ids []common.ProfileID
	for _, p := range cfg.Profiles {
		ids = append(ids, p.ID)
	}
	assert.Equal(t, []common.ProfileID{common.ProfileMpesa, common.ProfileEquity, common.ProfileKCB, common.ProfileGeneric}, ids)

	mpesa := cfg.Profiles[0]
	assert.True(t, mpesa.MobileMoney())
	assert.Equal(t, "KES", mpesa.Currency)
	assert.Equal(t, "DETAILED STATEMENT", mpesa.SectionHeader)
	assert.Contains(t, mpesa.Labels, "Cash Out")

	generic := cfg.Profiles[3]
	assert.False(t, generic.MobileMoney())
	assert.Len(t, generic.Patterns, 4)
	assert.NotNil(t, generic.FallbackDate)
	assert.Equal(t, common.DayFirst, generic.DateOrder)
}

func TestLoadConfig_RequiresGeneric(t *testing.T) {
	_, err := loadYAML(t, `
extraction:
  profiles:
    - id: kcb
      markers: [kcb]
      fallback:
        date: '\d{2}/\d{2}/\d{4}'
        amount: '[\d,]+\.\d{2}'
`)
	assert.ErrorContains(t, err, `"generic" is required`)
}

func TestLoadConfig_RejectsUnknownProfile(t *testing.T) {
	_, err := loadYAML(t, `
extraction:
  profiles:
    - id: barclays
      patterns: ['(?P<date>x)(?P<description>y)(?P<amount>z)']
`)
	assert.ErrorContains(t, err, "unknown profile id")
}

func TestLoadConfig_PatternNeedsNamedGroups(t *testing.T) {
	_, err := loadYAML(t, `
extraction:
  profiles:
    - id: generic
      patterns: ['(\d{2}/\d{2}/\d{4})\s+(.+?)\s+([\d,]+\.\d{2})']
`)
	assert.ErrorContains(t, err, `missing named group "date"`)
}

func TestLoadConfig_LabelsNeedSectionHeader(t *testing.T) {
	_, err := loadYAML(t, `
extraction:
  profiles:
    - id: mpesa
      labels: [Send Money]
    - id: generic
      fallback:
        date: '\d{4}-\d{2}-\d{2}'
        amount: '[\d,]+\.\d{2}'
`)
	assert.ErrorContains(t, err, "section_header and labels")
}

func TestLoadConfig_UnknownCurrency(t *testing.T) {
	_, err := loadYAML(t, `
extraction:
  default_currency: ZZZ
  profiles:
    - id: generic
      fallback:
        date: '\d{4}-\d{2}-\d{2}'
        amount: '[\d,]+\.\d{2}'
`)
	assert.ErrorContains(t, err, "unknown default currency")
}

func TestLoadConfig_Minimal(t *testing.T) {
	cfg, err := loadYAML(t, `
extraction:
  profiles:
    - id: generic
      date_order: MDY
      fallback:
        date: '\d{4}-\d{2}-\d{2}'
        amount: '[\d,]+\.\d{2}'
`)
	require.NoError(t, err)

	assert.Equal(t, "USD", cfg.DefaultCurrency)
	assert.Equal(t, []string{"Amount", "Transaction Amount", "Value"}, cfg.Columns.Amount)
	require.Len(t, cfg.Profiles, 1)
	assert.Equal(t, common.MonthFirst, cfg.Profiles[0].DateOrder)
}

package extractor

import (
	"bytes"
	_ "embed"
	"fmt"
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/aqlanhadi/stmtsense/extractor/generic"
	"github.com/aqlanhadi/stmtsense/extractor/tabular"
	"github.com/spf13/viper"
)

// DefaultConfigYAML holds the built-in profiles.
//
//go:embed defaults.yaml
var DefaultConfigYAML []byte

// Config is the validated, compiled extraction configuration.
type Config struct {
	DefaultCurrency string
	Columns         tabular.Columns
	// Profiles are in detection priority order.
	Profiles []common.Profile
}

type profileConfig struct {
	ID            string   `mapstructure:"id"`
	Markers       []string `mapstructure:"markers"`
	Currency      string   `mapstructure:"currency"`
	DateOrder     string   `mapstructure:"date_order"`
	SectionHeader string   `mapstructure:"section_header"`
	ColumnHeader  string   `mapstructure:"column_header"`
	Labels        []string `mapstructure:"labels"`
	Patterns      []string `mapstructure:"patterns"`
	Fallback      struct {
		Date   string `mapstructure:"date"`
		Amount string `mapstructure:"amount"`
	} `mapstructure:"fallback"`
}

// DefaultConfig compiles the built-in profiles.
func DefaultConfig() (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(DefaultConfigYAML)); err != nil {
		return Config{}, fmt.Errorf("failed to read default config: %w", err)
	}
	return LoadConfig(v)
}

// LoadConfig reads the `extraction` block from v and compiles every profile.
func LoadConfig(v *viper.Viper) (Config, error) {
	cfg := Config{
		DefaultCurrency: strings.ToUpper(v.GetString("extraction.default_currency")),
		Columns:         tabular.DefaultColumns(),
	}
	if cfg.DefaultCurrency == "" {
		cfg.DefaultCurrency = "USD"
	}
	if money.GetCurrency(cfg.DefaultCurrency) == nil {
		return Config{}, fmt.Errorf("unknown default currency %q", cfg.DefaultCurrency)
	}

	if v.IsSet("extraction.columns") {
		if err := v.UnmarshalKey("extraction.columns", &cfg.Columns); err != nil {
			return Config{}, fmt.Errorf("failed to decode columns: %w", err)
		}
	}

	var raw []profileConfig
	if err := v.UnmarshalKey("extraction.profiles", &raw); err != nil {
		return Config{}, fmt.Errorf("failed to decode profiles: %w", err)
	}

	seen := map[common.ProfileID]bool{}
	for _, pc := range raw {
		p, err := compileProfile(pc)
		if err != nil {
			return Config{}, fmt.Errorf("profile %q: %w", pc.ID, err)
		}
		if seen[p.ID] {
			return Config{}, fmt.Errorf("profile %q declared twice", p.ID)
		}
		seen[p.ID] = true
		cfg.Profiles = append(cfg.Profiles, p)
	}

	if !seen[common.ProfileGeneric] {
		return Config{}, fmt.Errorf("profile %q is required", common.ProfileGeneric)
	}

	return cfg, nil
}

func compileProfile(pc profileConfig) (common.Profile, error) {
	p := common.Profile{
		ID:            common.ProfileID(strings.ToLower(strings.TrimSpace(pc.ID))),
		Markers:       pc.Markers,
		Currency:      strings.ToUpper(pc.Currency),
		DateOrder:     common.DateOrder(strings.ToLower(pc.DateOrder)),
		SectionHeader: strings.TrimSpace(pc.SectionHeader),
		ColumnHeader:  strings.TrimSpace(pc.ColumnHeader),
		Labels:        pc.Labels,
	}

	if !common.IsKnownProfile(p.ID) {
		return p, fmt.Errorf("unknown profile id")
	}

	switch p.DateOrder {
	case "":
		p.DateOrder = common.DayFirst
	case common.DayFirst, common.MonthFirst:
	default:
		return p, fmt.Errorf("date_order must be %q or %q", common.DayFirst, common.MonthFirst)
	}

	if p.Currency != "" && money.GetCurrency(p.Currency) == nil {
		return p, fmt.Errorf("unknown currency %q", p.Currency)
	}

	if (p.SectionHeader == "") != (len(p.Labels) == 0) {
		return p, fmt.Errorf("section_header and labels must be set together")
	}

	for i, expr := range pc.Patterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return p, fmt.Errorf("pattern %d: %w", i, err)
		}
		for _, name := range []string{generic.GroupDate, generic.GroupDescription, generic.GroupAmount} {
			if re.SubexpIndex(name) < 0 {
				return p, fmt.Errorf("pattern %d: missing named group %q", i, name)
			}
		}
		p.Patterns = append(p.Patterns, re)
	}

	if pc.Fallback.Date != "" || pc.Fallback.Amount != "" {
		var err error
		if p.FallbackDate, err = regexp.Compile(pc.Fallback.Date); err != nil || pc.Fallback.Date == "" {
			return p, fmt.Errorf("fallback date: %v", orMissing(err))
		}
		if p.FallbackAmount, err = regexp.Compile(pc.Fallback.Amount); err != nil || pc.Fallback.Amount == "" {
			return p, fmt.Errorf("fallback amount: %v", orMissing(err))
		}
	}

	if !p.MobileMoney() && len(p.Patterns) == 0 && p.FallbackDate == nil {
		return p, fmt.Errorf("needs labels, patterns or a fallback")
	}

	return p, nil
}

func orMissing(err error) error {
	if err != nil {
		return err
	}
	return fmt.Errorf("expression is empty")
}

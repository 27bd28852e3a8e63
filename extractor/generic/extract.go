// Package generic reads dated statements with an ordered list of regular
// expressions and a line scanner behind them.
package generic

import (
	"regexp"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	log "github.com/sirupsen/logrus"
)

// Named groups every pattern provides. currency is optional.
const (
	GroupDate        = "date"
	GroupDescription = "description"
	GroupAmount      = "amount"
	GroupCurrency    = "currency"
)

type Extractor struct {
	profile        common.ProfileID
	patterns       []*regexp.Regexp
	fallbackDate   *regexp.Regexp
	fallbackAmount *regexp.Regexp
}

func New(p common.Profile) *Extractor {
	return &Extractor{
		profile:        p.ID,
		patterns:       append([]*regexp.Regexp(nil), p.Patterns...),
		fallbackDate:   p.FallbackDate,
		fallbackAmount: p.FallbackAmount,
	}
}

// Extract tries each pattern over the whole text in order. The first pattern
// with any match supplies every one of its non-overlapping matches. When none
// match, lines holding a date followed by an amount are used instead.
func (e *Extractor) Extract(text string) []common.Candidate {
	for i, pattern := range e.patterns {
		matches := pattern.FindAllStringSubmatch(text, -1)
		if len(matches) == 0 {
			continue
		}

		log.WithFields(log.Fields{"profile": e.profile, "pattern": i, "matches": len(matches)}).Debug("pattern matched")
		candidates := make([]common.Candidate, 0, len(matches))
		for _, m := range matches {
			candidates = append(candidates, common.Candidate{
				DateText:        group(pattern, m, GroupDate),
				DescriptionText: common.CollapseSpaces(group(pattern, m, GroupDescription)),
				AmountText:      group(pattern, m, GroupAmount),
				CurrencyText:    group(pattern, m, GroupCurrency),
				Direction:       common.Unsigned,
			})
		}
		return candidates
	}

	return e.scanLines(text)
}

// scanLines takes, per line, the first date and the first amount after it; the
// text between them is the description.
func (e *Extractor) scanLines(text string) []common.Candidate {
	candidates := []common.Candidate{}
	if e.fallbackDate == nil || e.fallbackAmount == nil {
		return candidates
	}

	for _, line := range strings.Split(text, "\n") {
		dateLoc := e.fallbackDate.FindStringIndex(line)
		if dateLoc == nil {
			continue
		}
		rest := line[dateLoc[1]:]
		amountLoc := e.fallbackAmount.FindStringIndex(rest)
		if amountLoc == nil {
			continue
		}

		candidates = append(candidates, common.Candidate{
			DateText:        line[dateLoc[0]:dateLoc[1]],
			DescriptionText: common.CollapseSpaces(rest[:amountLoc[0]]),
			AmountText:      rest[amountLoc[0]:amountLoc[1]],
			Direction:       common.Unsigned,
		})
	}

	if len(candidates) > 0 {
		log.WithFields(log.Fields{"profile": e.profile, "lines": len(candidates)}).Debug("line scan fallback matched")
	}
	return candidates
}

func group(re *regexp.Regexp, match []string, name string) string {
	if idx := re.SubexpIndex(name); idx > 0 && idx < len(match) {
		return match[idx]
	}
	return ""
}

// Package mpesa reads mobile-money statements where every transaction sits on
// one line under a labelled section, led by its transaction type and followed
// by paid-in and paid-out columns with no delimiter between them.
package mpesa

import (
	"regexp"
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	log "github.com/sirupsen/logrus"
)

var decimalToken = regexp.MustCompile(`[\d,]+\.\d{2}`)

type Extractor struct {
	profile common.ProfileID
	section *regexp.Regexp
	column  string
	labels  []string
}

// New builds an extractor from a mobile-money profile.
func New(p common.Profile) *Extractor {
	return &Extractor{
		profile: p.ID,
		section: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(p.SectionHeader)),
		column:  p.ColumnHeader,
		labels:  append([]string(nil), p.Labels...),
	}
}

// Extract returns the candidates found after the section header. A document
// without the header yields none.
func (e *Extractor) Extract(text string) []common.Candidate {
	candidates := []common.Candidate{}

	loc := e.section.FindStringIndex(text)
	if loc == nil {
		log.WithField("profile", e.profile).Debug("section header not found")
		return candidates
	}

	for _, line := range strings.Split(text[loc[1]:], "\n") {
		line = strings.TrimSpace(line)
		if line == "" || hasPrefixFold(line, e.column) {
			continue
		}

		label := e.matchLabel(line)
		if label == "" {
			continue
		}

		candidates = append(candidates, e.parseLine(label, line[len(label):])...)
	}

	return candidates
}

// matchLabel returns the longest label that prefixes the line. Ties go to the
// label listed first.
func (e *Extractor) matchLabel(line string) string {
	best := ""
	for _, label := range e.labels {
		if len(label) > len(best) && hasPrefixFold(line, label) {
			best = label
		}
	}
	return best
}

// parseLine reads the columns after the label. Two amounts are paid-in then
// paid-out; a lone amount is the paid-out column. Further amounts, such as the
// balance, are dropped from the description.
func (e *Extractor) parseLine(label, rest string) []common.Candidate {
	tokens := decimalToken.FindAllStringIndex(rest, -1)
	if len(tokens) == 0 {
		return nil
	}

	var paidIn, paidOut []int
	if len(tokens) == 1 {
		paidOut = tokens[0]
	} else {
		paidIn, paidOut = tokens[0], tokens[1]
	}

	description := common.CollapseSpaces(cut(rest, tokens...))
	if description == "" {
		description = label
	}

	var out []common.Candidate
	if amount := span(rest, paidIn); positive(amount) {
		out = append(out, common.Candidate{
			DescriptionText: description,
			AmountText:      amount,
			Type:            label,
			Direction:       common.PaidIn,
		})
	}
	if amount := span(rest, paidOut); positive(amount) {
		out = append(out, common.Candidate{
			DescriptionText: description,
			AmountText:      amount,
			Type:            label,
			Direction:       common.PaidOut,
		})
	}
	return out
}

func span(s string, loc []int) string {
	if loc == nil {
		return ""
	}
	return s[loc[0]:loc[1]]
}

// cut removes the given spans from s. Spans are ordered and do not overlap.
func cut(s string, spans ...[]int) string {
	var b strings.Builder
	last := 0
	for _, loc := range spans {
		if loc == nil {
			continue
		}
		b.WriteString(s[last:loc[0]])
		b.WriteByte(' ')
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func positive(amount string) bool {
	if amount == "" {
		return false
	}
	value, err := common.CleanDecimal(amount)
	return err == nil && value.IsPositive()
}

func hasPrefixFold(s, prefix string) bool {
	return prefix != "" && len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

package common

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	nonNumericRegex = regexp.MustCompile(`[^0-9.\-]`)

	// A date may be followed by a time, either space or T separated.
	slashDateRegex = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{4})(?:$|[T\s])`)
	isoDateRegex   = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})(?:$|[T\s])`)
)

// CleanDecimal parses a string into a decimal.Decimal after dropping every
// character that is not a digit, a dot or a minus sign.
func CleanDecimal(text string) (decimal.Decimal, error) {

	cleanText := nonNumericRegex.ReplaceAllString(text, "")
	if cleanText == "" {
		return decimal.Zero, nil
	}
	amount, err := decimal.NewFromString(cleanText)
	if err != nil {
		return decimal.Zero, err
	}

	return amount, nil
}

// ISODate converts D/M/YYYY, D-M-YYYY (read in the given order) or an ISO
// date, optionally followed by a time, into YYYY-MM-DD.
func ISODate(text string, order DateOrder) (string, bool) {
	text = strings.TrimSpace(text)

	var year, month, day string
	if m := isoDateRegex.FindStringSubmatch(text); m != nil {
		year, month, day = m[1], m[2], m[3]
	} else if m := slashDateRegex.FindStringSubmatch(text); m != nil {
		year = m[3]
		if order == MonthFirst {
			month, day = m[1], m[2]
		} else {
			day, month = m[1], m[2]
		}
	} else {
		return "", false
	}

	y, _ := strconv.Atoi(year)
	mo, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)

	// time.Date rolls 31/02 over into March; reject instead.
	t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
	if t.Year() != y || int(t.Month()) != mo || t.Day() != d {
		return "", false
	}

	return fmt.Sprintf("%04d-%02d-%02d", y, mo, d), true
}

// CollapseSpaces trims the text and folds whitespace runs into single spaces.
func CollapseSpaces(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

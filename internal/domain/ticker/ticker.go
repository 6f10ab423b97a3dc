// Package ticker converts between VIX futures symbol notations and resolves
// single-digit contract years against a reference date.
package ticker

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"VixNav/internal/domain/errs"
)

const prefix = "VX"

var (
	rawPattern        = regexp.MustCompile(`^VX([A-Z])(\d+)$`)
	normalizedPattern = regexp.MustCompile(`^VX([A-Z])(\d)$`)
)

// Contract is a resolved futures contract.
type Contract struct {
	Month time.Month
	Year  int
}

// Code renders the charting-site notation, e.g. VXM2025.
func (c Contract) Code() string {
	code, _ := CodeForMonth(c.Month)
	return fmt.Sprintf("%s%c%04d", prefix, code, c.Year)
}

// Normalized renders the single-digit notation, e.g. VXM5.
func (c Contract) Normalized() string {
	code, _ := CodeForMonth(c.Month)
	return fmt.Sprintf("%s%c%d", prefix, code, c.Year%10)
}

// Before reports whether c expires in an earlier month than o.
func (c Contract) Before(o Contract) bool {
	if c.Year != o.Year {
		return c.Year < o.Year
	}
	return c.Month < o.Month
}

// Normalize reduces a raw ticker to VX<month code><last year digit>.
// Known source prefixes (CBOE:, /, YAHOO:, PCF:, SIMPLEX:) are stripped first.
func Normalize(t string) (string, error) {
	_, body, err := splitSource(t)
	if err != nil {
		return "", err
	}
	return normalizeBody(body)
}

// NormalizePtr is Normalize for optional input; nil is rejected like "".
func NormalizePtr(t *string) (string, error) {
	if t == nil {
		return "", errs.InvalidInput("normalize", "ticker is nil")
	}
	return Normalize(*t)
}

func normalizeBody(body string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(body))
	if s == "" {
		return "", errs.InvalidInput("normalize", "ticker is empty")
	}
	m := rawPattern.FindStringSubmatch(s)
	if m == nil {
		return "", errs.InvalidInput("normalize", "ticker %q does not match VX<month><digits>", body)
	}
	if _, ok := MonthFromCode(m[1][0]); !ok {
		return "", errs.InvalidInput("normalize", "ticker %q has unknown month code %q", body, m[1])
	}
	year := m[2]
	return prefix + m[1] + year[len(year)-1:], nil
}

// parseNormalized splits a normalized ticker into month and year digit.
func parseNormalized(t string) (time.Month, int, error) {
	m := normalizedPattern.FindStringSubmatch(t)
	if m == nil {
		return 0, 0, errs.InvalidInput("resolve", "ticker %q is not in normalized VX<month><digit> form", t)
	}
	month, ok := MonthFromCode(m[1][0])
	if !ok {
		return 0, 0, errs.InvalidInput("resolve", "ticker %q has unknown month code %q", t, m[1])
	}
	return month, int(m[2][0] - '0'), nil
}

// Resolve picks the nearest contract, current or future relative to ref,
// whose month and last year digit match the normalized ticker.
func Resolve(normalized string, ref time.Time) (Contract, error) {
	month, digit, err := parseNormalized(normalized)
	if err != nil {
		return Contract{}, err
	}
	base := ref.Year() / 10 * 10
	for k := 0; ; k++ {
		year := base + 10*k + digit
		if year > ref.Year() || (year == ref.Year() && month >= ref.Month()) {
			return Contract{Month: month, Year: year}, nil
		}
	}
}

// ResolveContractYear returns the charting-site code for a normalized ticker.
func ResolveContractYear(normalized string, ref time.Time) (string, error) {
	c, err := Resolve(normalized, ref)
	if err != nil {
		return "", err
	}
	return c.Code(), nil
}

// ToRawNotation returns the bare exchange symbol, e.g. VXM5.
func ToRawNotation(normalized string) (string, error) {
	if _, _, err := parseNormalized(normalized); err != nil {
		return "", err
	}
	return normalized, nil
}

// ToBrokerNotation returns the front-slash form, e.g. /VXM5.
func ToBrokerNotation(normalized string) (string, error) {
	if _, _, err := parseNormalized(normalized); err != nil {
		return "", err
	}
	return "/" + normalized, nil
}

// ToExchangeNotation returns the exchange-qualified form, e.g. CBOE:VXM5.
func ToExchangeNotation(normalized string) (string, error) {
	if _, _, err := parseNormalized(normalized); err != nil {
		return "", err
	}
	return string(SourceCBOE) + ":" + normalized, nil
}

// YahooSymbol maps a normalized ticker to the Yahoo Finance chart symbol,
// e.g. VXM5 at 2025-01 becomes ^VIX06.2025.
func YahooSymbol(normalized string, ref time.Time) (string, error) {
	c, err := Resolve(normalized, ref)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("^VIX%02d.%d", int(c.Month), c.Year), nil
}

package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"VixNav/internal/domain/pricelimit"
)

// Valuation is a basket value together with the inputs that produced it.
type Valuation struct {
	At    time.Time               `json:"at"`
	Value float64                 `json:"value"` // JPY
	Legs  map[string]FuturesQuote `json:"legs"`
	FX    FXQuote                 `json:"fx"`
}

// Alert is raised when the basket's move exceeds the fund's limit band.
type Alert struct {
	ID          string              `json:"id"`
	Time        time.Time           `json:"time"`
	Fund        string              `json:"fund"`
	FundName    string              `json:"fund_name,omitempty"`
	Closing     ClosingPrice        `json:"closing"`
	Band        pricelimit.Band     `json:"band"`
	Decision    pricelimit.Decision `json:"decision"`
	Initial     Valuation           `json:"initial"`
	Current     Valuation           `json:"current"`
	NAVPerShare float64             `json:"nav_per_share,omitempty"`
}

// Summary is a one-paragraph description suitable for chat notifications.
func (a *Alert) Summary() string {
	return fmt.Sprintf(
		"PRICE LIMIT ALERT %s\nBasket changed by %s, allowed %s to %s\nCurrent %s JPY, initial %s JPY",
		a.Fund,
		pct(a.Decision.ChangePct),
		pct(a.Decision.AllowedLowerPct),
		pct(a.Decision.AllowedUpperPct),
		money(a.Current.Value),
		money(a.Initial.Value),
	)
}

// Report renders the detailed alert log body.
func (a *Alert) Report() string {
	var b strings.Builder
	name := a.Fund
	if a.FundName != "" {
		name = fmt.Sprintf("%s (%s)", a.Fund, a.FundName)
	}

	b.WriteString("PRICE LIMIT ALERT\n")
	fmt.Fprintf(&b, "Alert ID: %s\n", a.ID)
	fmt.Fprintf(&b, "Alert Time: %s\n\n", a.Time.Format(time.RFC3339))

	b.WriteString("=== ETF Information ===\n")
	fmt.Fprintf(&b, "ETF: %s\n", name)
	fmt.Fprintf(&b, "Closing Price: %.2f JPY\n", a.Closing.Price)
	fmt.Fprintf(&b, "Price Limits: %.2f JPY to %.2f JPY\n", a.Band.Lower, a.Band.Upper)
	fmt.Fprintf(&b, "Allowed Range: %s to %s\n\n", pct(a.Decision.AllowedLowerPct), pct(a.Decision.AllowedUpperPct))

	b.WriteString("=== Basket Value Change ===\n")
	fmt.Fprintf(&b, "Initial Basket Value: %s JPY\n", money(a.Initial.Value))
	fmt.Fprintf(&b, "Current Basket Value: %s JPY\n", money(a.Current.Value))
	fmt.Fprintf(&b, "Change: %s (%s JPY)\n", pct(a.Decision.ChangePct), money(a.Current.Value-a.Initial.Value))
	if a.NAVPerShare > 0 {
		fmt.Fprintf(&b, "Estimated NAV per share: %.2f JPY\n\n", a.NAVPerShare)
	} else {
		b.WriteString("Estimated NAV per share: Not available\n\n")
	}

	writeLegs(&b, "Initial", a.Initial)
	writeLegs(&b, "Current", a.Current)

	b.WriteString("=== Exchange Rates ===\n")
	fmt.Fprintf(&b, "Initial Rate: %.2f JPY/USD (from %s at %s)\n", a.Initial.FX.Rate, a.Initial.FX.Source, a.Initial.FX.Time.Format(time.RFC3339))
	fmt.Fprintf(&b, "Current Rate: %.2f JPY/USD (from %s at %s)\n", a.Current.FX.Rate, a.Current.FX.Source, a.Current.FX.Time.Format(time.RFC3339))
	return b.String()
}

func writeLegs(b *strings.Builder, label string, v Valuation) {
	fmt.Fprintf(b, "=== %s Futures Prices ===\n", label)
	fmt.Fprintf(b, "%s Reference Time: %s\n", label, v.At.Format(time.RFC3339))
	keys := make([]string, 0, len(v.Legs))
	for k := range v.Legs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		q := v.Legs[k]
		fmt.Fprintf(b, "  %s: %.4f (from %s at %s)\n", k, q.Price, q.Source, q.Time.Format(time.RFC3339))
	}
	b.WriteString("\n")
}

func pct(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

// money formats with thousands separators and two decimals.
func money(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac := s[:len(s)-3], s[len(s)-3:]
	var out []byte
	for i := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, intPart[i])
	}
	if neg {
		return "-" + string(out) + frac
	}
	return string(out) + frac
}

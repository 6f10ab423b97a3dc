package ticker

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"VixNav/internal/domain/errs"
)

var (
	pcfCodePattern   = regexp.MustCompile(`VX([A-Z])(\d{1,2})`)
	pcfCBOEPattern   = regexp.MustCompile(`CBOEVIX\s*(\d{4})`)
	pcfFuturePattern = regexp.MustCompile(`VIX\s*(?:FUT|FUTURE)\s*([A-Z]{3})[-\s]*(\d{2})`)
)

// ExtractFromPCF finds the VIX futures contract referenced by a PCF holding
// row and returns it normalized. The code column is tried before the name.
func ExtractFromPCF(code, name string) (string, error) {
	code = strings.ToUpper(code)
	name = strings.ToUpper(name)

	for _, s := range []string{code, name} {
		if m := pcfCodePattern.FindStringSubmatch(s); m != nil {
			if n, err := normalizeBody(prefix + m[1] + m[2]); err == nil {
				return n, nil
			}
		}
	}

	for _, s := range []string{code, name} {
		if m := pcfCBOEPattern.FindStringSubmatch(s); m != nil {
			yy, _ := strconv.Atoi(m[1][:2])
			mm, _ := strconv.Atoi(m[1][2:])
			if n, ok := fromMonthYear(time.Month(mm), yy); ok {
				return n, nil
			}
		}
	}

	for _, s := range []string{name, code} {
		if m := pcfFuturePattern.FindStringSubmatch(s); m != nil {
			month, ok := monthAbbrev[m[1]]
			if !ok {
				continue
			}
			yy, _ := strconv.Atoi(m[2])
			if n, ok := fromMonthYear(month, yy); ok {
				return n, nil
			}
		}
	}

	return "", errs.MissingData("pcf", "no VIX futures contract in code=%q name=%q", code, name)
}

func fromMonthYear(m time.Month, year int) (string, bool) {
	c, ok := CodeForMonth(m)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("%s%c%d", prefix, c, year%10), true
}

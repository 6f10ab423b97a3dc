package ticker

import "time"

// monthCodes holds the CBOE futures month letters, January first.
const monthCodes = "FGHJKMNQUVXZ"

// MonthFromCode maps a month letter to its calendar month.
func MonthFromCode(code byte) (time.Month, bool) {
	for i := 0; i < len(monthCodes); i++ {
		if monthCodes[i] == code {
			return time.Month(i + 1), true
		}
	}
	return 0, false
}

// CodeForMonth maps a calendar month to its letter.
func CodeForMonth(m time.Month) (byte, bool) {
	if m < time.January || m > time.December {
		return 0, false
	}
	return monthCodes[m-1], true
}

var monthAbbrev = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

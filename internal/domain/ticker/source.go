package ticker

import (
	"strings"

	"VixNav/internal/domain/errs"
)

// Source identifies where a price sample key came from.
type Source string

const (
	SourceRaw     Source = "RAW"
	SourceCBOE    Source = "CBOE"
	SourceBroker  Source = "BROKER"
	SourceYahoo   Source = "YAHOO"
	SourcePCF     Source = "PCF"
	SourceSimplex Source = "SIMPLEX"
)

var knownSources = map[string]Source{
	"CBOE":    SourceCBOE,
	"YAHOO":   SourceYahoo,
	"PCF":     SourcePCF,
	"SIMPLEX": SourceSimplex,
}

// splitSource separates a "SOURCE:" or "/" prefix from the symbol body.
// Yahoo keys may carry a space between root and month ("VX H5").
func splitSource(key string) (Source, string, error) {
	s := strings.ToUpper(strings.TrimSpace(key))
	if s == "" {
		return "", "", errs.InvalidInput("normalize", "ticker is empty")
	}
	if strings.HasPrefix(s, "/") {
		return SourceBroker, s[1:], nil
	}
	if i := strings.IndexByte(s, ':'); i >= 0 {
		src, ok := knownSources[s[:i]]
		if !ok {
			return "", "", errs.InvalidInput("normalize", "unknown source prefix %q", s[:i])
		}
		body := s[i+1:]
		if src == SourceYahoo {
			body = strings.ReplaceAll(body, " ", "")
		}
		return src, body, nil
	}
	return SourceRaw, s, nil
}

// ParseSourceKey splits a source-prefixed sample key into its source and
// normalized ticker, e.g. "YAHOO:VX H5" -> (YAHOO, VXH5).
func ParseSourceKey(key string) (Source, string, error) {
	src, body, err := splitSource(key)
	if err != nil {
		return "", "", err
	}
	n, err := normalizeBody(body)
	if err != nil {
		return "", "", err
	}
	return src, n, nil
}

// SourceKey renders the canonical key for a normalized ticker from src.
func SourceKey(src Source, normalized string) string {
	switch src {
	case SourceBroker:
		return "/" + normalized
	case SourceRaw, "":
		return normalized
	default:
		return string(src) + ":" + normalized
	}
}

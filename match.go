package finboard

import "strings"

// MatchStrategy identifies which rule matched a quote to a holding symbol.
type MatchStrategy int

const (
	// MatchExact is a case-insensitive equality between the quote symbol and
	// the holding symbol.
	MatchExact MatchStrategy = iota
	// MatchSubstring is the permissive fallback: either symbol contains the
	// other, case-insensitive. It tolerates exchange-suffix variants (a bare
	// ticker returned for a suffixed local symbol) at the cost of ambiguity:
	// when several quotes satisfy it, the first in parser order wins.
	MatchSubstring
)

func (s MatchStrategy) String() string {
	switch s {
	case MatchExact:
		return "exact"
	case MatchSubstring:
		return "substring"
	default:
		return "unknown"
	}
}

// MatchQuote resolves a quote for holdingSymbol among quotes, trying the
// exact rule over the whole list before falling back to substring
// containment in parser order. It returns false when no quote matches;
// the holding is then left untouched.
func MatchQuote(quotes []Quote, holdingSymbol string) (Quote, MatchStrategy, bool) {
	symbol := strings.ToLower(holdingSymbol)

	for _, q := range quotes {
		if strings.ToLower(q.Symbol) == symbol {
			return q, MatchExact, true
		}
	}
	for _, q := range quotes {
		candidate := strings.ToLower(q.Symbol)
		if candidate == "" {
			continue
		}
		if strings.Contains(symbol, candidate) || strings.Contains(candidate, symbol) {
			return q, MatchSubstring, true
		}
	}
	return Quote{}, 0, false
}

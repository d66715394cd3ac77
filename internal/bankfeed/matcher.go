package bankfeed

import (
	"strings"
	"unicode"

	"github.com/clearbooks-io/clearbooks/internal/accounts"
)

// DefaultMatchThreshold is the minimum token overlap for a category
// suggestion. Below it the line falls back to the uncategorized
// income or expense account.
const DefaultMatchThreshold = 0.70

// Matcher suggests a ledger account for a feed line by comparing its
// description against candidate account names.
type Matcher struct {
	Threshold float64
}

// NewMatcher builds a matcher with the default threshold.
func NewMatcher() Matcher {
	return Matcher{Threshold: DefaultMatchThreshold}
}

// tokenize lowercases and splits on non-alphanumeric runes, dropping
// tokens too short to be discriminating.
func tokenize(s string) map[string]bool {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make(map[string]bool, len(fields))
	for _, f := range fields {
		if len(f) >= 3 {
			out[f] = true
		}
	}
	return out
}

// score is the fraction of the account name's tokens present in the
// description.
func score(descTokens map[string]bool, name string) float64 {
	nameTokens := tokenize(name)
	if len(nameTokens) == 0 {
		return 0
	}
	hits := 0
	for tok := range nameTokens {
		if descTokens[tok] {
			hits++
		}
	}
	return float64(hits) / float64(len(nameTokens))
}

// Match returns the best-scoring candidate at or above the threshold.
// The boolean is false when no candidate qualifies and the caller
// should use the uncategorized fallback account.
func (m Matcher) Match(description string, candidates []accounts.Account) (accounts.Account, bool) {
	descTokens := tokenize(description)
	var best accounts.Account
	bestScore := 0.0
	for _, c := range candidates {
		if s := score(descTokens, c.Name); s > bestScore {
			best, bestScore = c, s
		}
	}
	if bestScore >= m.Threshold && m.Threshold > 0 {
		return best, true
	}
	return accounts.Account{}, false
}

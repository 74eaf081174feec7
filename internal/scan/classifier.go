package scan

import (
	"path/filepath"
	"strings"

	"pwsweep/internal/config"
)

// Ruleset decides whether a path is protected from removal. Every candidate
// passes through here before it is sized or deleted, with no exceptions.
//
// Matching is a literal string-prefix check: a rule for /a shields /a, /a/b,
// and also /ab. The over-match is deliberate. A rule that protects slightly
// too much costs a stale cache entry; one that protects too little costs
// user data.
type Ruleset struct {
	rules []config.Rule
}

// NewRuleset builds a Ruleset from configured rules. Empty prefixes are
// dropped so a misconfigured rule cannot shadow the whole filesystem.
func NewRuleset(rules []config.Rule) Ruleset {
	rs := Ruleset{rules: make([]config.Rule, 0, len(rules))}
	for _, r := range rules {
		r.Prefix = filepath.Clean(r.Prefix)
		if r.Prefix == "" || r.Prefix == "." {
			continue
		}
		rs.rules = append(rs.rules, r)
	}
	return rs
}

// Match returns the first rule shielding path, if any.
func (rs Ruleset) Match(path string) (config.Rule, bool) {
	cleaned := filepath.Clean(path)
	for _, r := range rs.rules {
		if strings.HasPrefix(cleaned, r.Prefix) {
			return r, true
		}
	}
	return config.Rule{}, false
}

// Excludes reports whether path is shielded by any rule.
func (rs Ruleset) Excludes(path string) bool {
	_, ok := rs.Match(path)
	return ok
}

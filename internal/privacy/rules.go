package privacy

import (
	"regexp"
)

// RuleType identifies how a rule's pattern is interpreted. LITERAL and REGEX
// use the user-supplied pattern; the remaining types are named presets with a
// built-in pattern that a non-empty user pattern may override.
type RuleType string

const (
	TypeLiteral RuleType = "LITERAL"
	TypeRegex   RuleType = "REGEX"
	TypeEmail   RuleType = "EMAIL"
	TypeIBAN    RuleType = "IBAN"
	TypeIPv4    RuleType = "IPV4"
	TypePhone   RuleType = "PHONE"
)

// Rule is a single redaction rule as the engine consumes it. Inactive rules
// are skipped entirely.
type Rule struct {
	ID          int64
	Type        RuleType
	Pattern     string
	Replacement string
	Active      bool
}

// Built-in preset patterns. PHONE is the German-style variant without a
// label prefix ("phone:"/"tel:" is not required to precede the number).
var presets = map[RuleType]string{
	TypeEmail: `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`,
	TypeIBAN:  `[A-Z]{2}\d{2}[A-Z0-9]{4}\d{7}([A-Z0-9]?){0,16}`,
	TypeIPv4:  `\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`,
	TypePhone: `(?:\+?49|0)(?:\s*\d{2,5}\s*)(?:\d{3,9})`,
}

// Resolve turns a (type, pattern) pair into a case-insensitive regular
// expression. Precedence: an explicit pattern wins for REGEX and preset
// types, then the preset's built-in pattern, then literal escaping. Unknown
// types degrade to literal escaping rather than failing.
func Resolve(ruleType RuleType, pattern string) (*regexp.Regexp, error) {
	preset, isPreset := presets[ruleType]

	switch {
	case (ruleType == TypeRegex || isPreset) && pattern != "":
		return regexp.Compile("(?i)" + pattern)
	case isPreset:
		return regexp.Compile("(?i)" + preset)
	default:
		return regexp.Compile("(?i)" + regexp.QuoteMeta(pattern))
	}
}

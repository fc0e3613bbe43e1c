package privacy

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// redactedStyle is the fixed inline style marking redacted spans in HTML output.
const redactedStyle = `color: #228be6; font-weight: bold; background: rgba(34, 139, 230, 0.1); padding: 0 2px; border-radius: 2px; border: 1px solid rgba(34, 139, 230, 0.2);`

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML escapes the five characters that are unsafe to embed in HTML.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

// RuleSource supplies a profile's rules in their stored order.
type RuleSource interface {
	RulesForProfile(ctx context.Context, profileID int64) ([]Rule, error)
}

// Engine applies ordered redaction rules across one or more profiles.
type Engine struct {
	rules RuleSource
}

func NewEngine(rules RuleSource) *Engine {
	return &Engine{rules: rules}
}

// Redact applies each profile's active rules, in profile order then rule
// order, to text. The output of one rule feeds the next, so ordering is
// semantically significant. With asHTML set, the input is HTML-escaped first
// and every replacement is wrapped in a highlight span. A rule whose pattern
// fails to compile is logged and skipped; it never aborts the pass.
func (e *Engine) Redact(ctx context.Context, text string, profileIDs []int64, asHTML bool) (string, error) {
	result := text
	if asHTML {
		result = EscapeHTML(text)
	}
	if len(profileIDs) == 0 {
		return result, nil
	}

	for _, profileID := range profileIDs {
		rules, err := e.rules.RulesForProfile(ctx, profileID)
		if err != nil {
			return "", fmt.Errorf("load rules for profile %d: %w", profileID, err)
		}

		for _, rule := range rules {
			if !rule.Active {
				continue
			}

			re, err := Resolve(rule.Type, rule.Pattern)
			if err != nil {
				log.Printf("[Privacy] Error applying rule %d: %v", rule.ID, err)
				continue
			}

			replacement := rule.Replacement
			if asHTML {
				replacement = `<span style="` + redactedStyle + `">` + EscapeHTML(rule.Replacement) + `</span>`
			}

			// Literal insertion: user replacement text is never expanded.
			result = re.ReplaceAllLiteralString(result, replacement)
		}
	}

	return result, nil
}

// RedactText is the single-profile form of Redact.
func (e *Engine) RedactText(ctx context.Context, text string, profileID int64, asHTML bool) (string, error) {
	return e.Redact(ctx, text, []int64{profileID}, asHTML)
}

// Package redact strips common personally identifiable information from
// text before it is sent to an external model provider.
package redact

import (
	"regexp"
)

// Kind labels a category of detected PII
type Kind string

const (
	KindEmail      Kind = "email"
	KindPhone      Kind = "phone"
	KindCreditCard Kind = "credit_card"
	KindIPAddress  Kind = "ip_address"
)

type pattern struct {
	kind        Kind
	re          *regexp.Regexp
	replacement string
}

var patterns = []pattern{
	{
		kind:        KindEmail,
		re:          regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`),
		replacement: "[email]",
	},
	{
		kind:        KindCreditCard,
		re:          regexp.MustCompile(`\b(?:4[0-9]{12}(?:[0-9]{3})?|5[1-5][0-9]{14}|3[47][0-9]{13}|6(?:011|5[0-9]{2})[0-9]{12})\b`),
		replacement: "[card]",
	},
	{
		kind:        KindPhone,
		re:          regexp.MustCompile(`\b(\+?1[-.]?)?\(?[0-9]{3}\)?[-.][0-9]{3}[-.][0-9]{4}\b`),
		replacement: "[phone]",
	},
	{
		kind:        KindIPAddress,
		re:          regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`),
		replacement: "[ip]",
	},
}

// Scrub replaces detected PII with type placeholders. It returns the
// cleaned text and the kinds that were found, in pattern order.
func Scrub(text string) (string, []Kind) {
	var found []Kind
	for _, p := range patterns {
		if !p.re.MatchString(text) {
			continue
		}
		text = p.re.ReplaceAllString(text, p.replacement)
		found = append(found, p.kind)
	}
	return text, found
}

// Contains reports whether the text holds any recognizable PII
func Contains(text string) bool {
	for _, p := range patterns {
		if p.re.MatchString(text) {
			return true
		}
	}
	return false
}

package ratelimit

import (
	"regexp"
	"strings"
)

// linkPattern matches external links commonly smuggled into inquiry
// bodies to route buyers off-platform.
var linkPattern = regexp.MustCompile(`(?i)\b(?:https?://|www\.)\S+`)

// defaultBlocklist holds phrases that mark an inquiry as spam outright.
var defaultBlocklist = []string{
	"wire transfer only",
	"western union",
	"pay outside the platform",
	"contact me on whatsapp",
	"telegram me",
	"guaranteed investment",
	"crypto giveaway",
}

// ContentFilter rejects inquiry bodies before they reach the counter.
// It is a cheap pre-filter, independent of rate state.
type ContentFilter struct {
	blocklist []string
}

// NewContentFilter builds a filter. Extra phrases extend the default
// blocklist; matching is case-insensitive.
func NewContentFilter(extra ...string) *ContentFilter {
	blocklist := make([]string, 0, len(defaultBlocklist)+len(extra))
	for _, phrase := range defaultBlocklist {
		blocklist = append(blocklist, strings.ToLower(phrase))
	}
	for _, phrase := range extra {
		if phrase = strings.ToLower(strings.TrimSpace(phrase)); phrase != "" {
			blocklist = append(blocklist, phrase)
		}
	}
	return &ContentFilter{blocklist: blocklist}
}

// FilterResult explains a rejection.
type FilterResult struct {
	Blocked bool
	Reason  string
}

// Check scans a message body for disallowed links and blocklisted
// phrases.
func (f *ContentFilter) Check(body string) FilterResult {
	if linkPattern.MatchString(body) {
		return FilterResult{Blocked: true, Reason: "external links are not allowed in inquiries"}
	}
	lower := strings.ToLower(body)
	for _, phrase := range f.blocklist {
		if strings.Contains(lower, phrase) {
			return FilterResult{Blocked: true, Reason: "message contains a blocked phrase"}
		}
	}
	return FilterResult{}
}

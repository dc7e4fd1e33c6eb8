package security

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"loglens/internal/config"
)

const maxPIIMappings = 1000

var htmlTagPattern = regexp.MustCompile(`<[^>]+>`)

// Sanitizer cleans pasted log text before it leaves the process:
// HTML tags are stripped and, when enabled, PII is replaced with
// placeholders that can be restored in the analysis output.
type Sanitizer struct {
	mu        sync.RWMutex
	filters   []piiFilter
	mappings  map[string]string // placeholder → original value
	counter   map[string]int
	stripHTML bool
	pii       bool
}

type piiFilter struct {
	name    string
	pattern *regexp.Regexp
	prefix  string
}

var defaultFilters = []struct {
	name    string
	pattern string
	prefix  string
}{
	{"email", `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, "EMAIL"},
	{"phone", `(?:\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}`, "PHONE"},
	{"card", `\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`, "CARD"},
	{"ip", `\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`, "IP"},
	{"ssn", `\b\d{3}-\d{2}-\d{4}\b`, "SSN"},
}

// NewSanitizer creates a log sanitizer from config.
func NewSanitizer(cfg config.SecurityConfig) *Sanitizer {
	s := &Sanitizer{
		mappings:  make(map[string]string),
		counter:   make(map[string]int),
		stripHTML: cfg.StripHTML,
		pii:       cfg.PIIFiltering.Enabled,
	}

	enableMap := map[string]bool{
		"email": cfg.PIIFiltering.FilterEmails,
		"phone": cfg.PIIFiltering.FilterPhones,
		"card":  cfg.PIIFiltering.FilterCards,
		"ip":    cfg.PIIFiltering.FilterIPs,
		"ssn":   cfg.PIIFiltering.FilterSSN,
	}

	for _, f := range defaultFilters {
		if enableMap[f.name] {
			s.filters = append(s.filters, piiFilter{
				name:    f.name,
				pattern: regexp.MustCompile(f.pattern),
				prefix:  f.prefix,
			})
		}
	}

	return s
}

// CleanLog prepares raw pasted log text for prompting: strips HTML tags
// and applies PII redaction. The log is otherwise passed through
// untouched — no parsing, no structural validation.
func (s *Sanitizer) CleanLog(text string) string {
	if s.stripHTML {
		text = htmlTagPattern.ReplaceAllString(text, "")
	}
	return s.Sanitize(text)
}

// Sanitize replaces PII in text with placeholders.
func (s *Sanitizer) Sanitize(text string) string {
	if !s.pii || len(s.filters) == 0 {
		return text
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Evict old mappings if limit reached to prevent unbounded growth
	if len(s.mappings) >= maxPIIMappings {
		s.mappings = make(map[string]string)
		s.counter = make(map[string]int)
	}

	result := text
	for _, f := range s.filters {
		result = f.pattern.ReplaceAllStringFunc(result, func(match string) string {
			for placeholder, original := range s.mappings {
				if original == match {
					return placeholder
				}
			}
			s.counter[f.prefix]++
			placeholder := fmt.Sprintf("[%s_%d]", f.prefix, s.counter[f.prefix])
			s.mappings[placeholder] = match
			return placeholder
		})
	}
	return result
}

// Restore replaces placeholders back with original values, so the
// analysis shown to the user references the real addresses.
func (s *Sanitizer) Restore(text string) string {
	if !s.pii {
		return text
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	result := text
	for placeholder, original := range s.mappings {
		result = strings.ReplaceAll(result, placeholder, original)
	}
	return result
}

// Reset clears all stored mappings (e.g., between requests).
func (s *Sanitizer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mappings = make(map[string]string)
	s.counter = make(map[string]int)
}

// Package safety screens topics and generated drafts with keyword and heuristic
// checks. It is a lightweight filter, not a real content-moderation system.
package safety

import (
	"fmt"
	"strings"
	"unicode"

	goaway "github.com/TwiN/go-away"
)

// Severity levels reported by the checker, in increasing order.
const (
	SeverityNone    = "none"
	SeverityWarning = "warning"
	SeverityBlocked = "blocked"
)

// Report is the outcome of one safety check. Text with warning severity is still
// safe to use in its sanitized form; blocked text must be discarded.
type Report struct {
	Safe          bool     `json:"safe"`
	Severity      string   `json:"severity"`
	Issues        []string `json:"issues"`
	SanitizedText string   `json:"sanitized_text"`
}

// RejectionError is returned by the orchestrators when text fails the safety check.
type RejectionError struct {
	Report Report
}

func (e *RejectionError) Error() string {
	return "content failed the safety check: " + strings.Join(e.Report.Issues, "; ")
}

// defaultBlockedKeywords always trip the blocked severity.
var defaultBlockedKeywords = []string{
	"violence",
	"hate speech",
	"self-harm",
	"illegal activities",
	"discrimination",
}

var spamPhrases = []string{"click here", "buy now", "free money"}

// Checker screens text. Results are deterministic for a fixed configuration.
type Checker struct {
	detector  *goaway.ProfanityDetector
	blocked   []string
	maxLength int
}

// New creates a Checker. Extra blocked keywords extend the built-in list, and
// maxLength bounds the accepted text length (0 disables the bound).
func New(maxLength int, extraBlocked []string) *Checker {
	blocked := make([]string, 0, len(defaultBlockedKeywords)+len(extraBlocked))
	blocked = append(blocked, defaultBlockedKeywords...)
	for _, keyword := range extraBlocked {
		keyword = strings.TrimSpace(strings.ToLower(keyword))
		if keyword != "" {
			blocked = append(blocked, keyword)
		}
	}

	return &Checker{
		detector:  goaway.NewProfanityDetector(),
		blocked:   blocked,
		maxLength: maxLength,
	}
}

// Check screens the text and reports the most severe finding. The sanitized text
// has profanity censored and is otherwise unchanged.
func (c *Checker) Check(text string) Report {
	report := Report{
		Safe:          true,
		Severity:      SeverityNone,
		Issues:        []string{},
		SanitizedText: text,
	}
	lowered := strings.ToLower(text)

	if c.detector.IsProfane(text) {
		report.Severity = escalate(report.Severity, SeverityWarning)
		report.Issues = append(report.Issues, "contains inappropriate language")
		report.SanitizedText = c.detector.Censor(text)
	}

	if c.maxLength > 0 && len(text) > c.maxLength {
		report.Severity = escalate(report.Severity, SeverityWarning)
		report.Issues = append(report.Issues, fmt.Sprintf("content too long (max %d characters)", c.maxLength))
	}

	if issues := spamIndicators(text, lowered); len(issues) > 0 {
		report.Severity = escalate(report.Severity, SeverityWarning)
		report.Issues = append(report.Issues, issues...)
	}

	for _, keyword := range c.blocked {
		if strings.Contains(lowered, keyword) {
			report.Severity = SeverityBlocked
			report.Issues = append(report.Issues, fmt.Sprintf("contains potentially harmful content: %s", keyword))
		}
	}

	report.Safe = report.Severity != SeverityBlocked
	return report
}

// spamIndicators applies the spam heuristics: excessive punctuation, shouting,
// low vocabulary diversity, and known spam phrases.
func spamIndicators(text, lowered string) []string {
	var issues []string

	if strings.Count(text, "!") > 5 {
		issues = append(issues, "excessive exclamation marks")
	}

	shouted := 0
	for _, word := range strings.Fields(text) {
		if isShoutedWord(word) {
			shouted++
		}
	}
	if shouted > 3 {
		issues = append(issues, "excessive capitalization")
	}

	words := strings.Fields(lowered)
	if len(words) >= 10 {
		unique := make(map[string]struct{}, len(words))
		for _, word := range words {
			unique[word] = struct{}{}
		}
		if float64(len(unique)) < 0.5*float64(len(words)) {
			issues = append(issues, "repetitive content")
		}
	}

	for _, phrase := range spamPhrases {
		if strings.Contains(lowered, phrase) {
			issues = append(issues, fmt.Sprintf("spam phrase: %s", phrase))
		}
	}

	return issues
}

// isShoutedWord reports whether a word is three or more letters, all uppercase.
func isShoutedWord(word string) bool {
	letters := 0
	for _, r := range word {
		if unicode.IsLetter(r) {
			if !unicode.IsUpper(r) {
				return false
			}
			letters++
		}
	}
	return letters >= 3
}

// escalate raises the severity, never lowers it.
func escalate(current, next string) string {
	if current == SeverityBlocked || next == SeverityBlocked {
		return SeverityBlocked
	}
	if current == SeverityWarning || next == SeverityWarning {
		return SeverityWarning
	}
	return SeverityNone
}

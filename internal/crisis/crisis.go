// Package crisis provides lexical crisis detection for incoming messages.
//
// Classification is a fixed-list substring match, not a semantic model: it
// case-folds the text and tests membership against hard-coded term lists.
// It is deterministic, total, and has no side effects.
package crisis

import "strings"

// Severity is the coarse crisis signal attached to a message. It gates
// routing; it is not a clinical assessment.
type Severity string

const (
	// SeverityNone means no configured term matched.
	SeverityNone Severity = "none"
	// SeverityLow means the message contains distress language short of
	// explicit self-harm. It does not suppress provider delegation.
	SeverityLow Severity = "low"
	// SeverityHigh means the message contains self-harm or emergency
	// language. It always short-circuits provider delegation.
	SeverityHigh Severity = "high"
)

// Signal is the result of classifying one message. Keyword is the first
// matched term and is diagnostic only; it is never persisted.
type Signal struct {
	Severity Severity
	Keyword  string
}

// IsCrisis reports whether the signal requires the fixed crisis reply.
func (s Signal) IsCrisis() bool {
	return s.Severity == SeverityHigh
}

// highTerms is the hard-coded set of terms denoting suicidal ideation,
// self-harm, or explicit requests for emergency help.
var highTerms = []string{
	"suicide",
	"kill myself",
	"end my life",
	"end it all",
	"don't want to live",
	"do not want to live",
	"want to die",
	"hurt myself",
	"harm myself",
	"self-harm",
	"cut myself",
	"overdose",
	"no reason to go on",
}

// lowTerms denote acute distress that deserves crisis resources alongside the
// normal response.
var lowTerms = []string{
	"can't take it anymore",
	"cannot take it anymore",
	"can't cope",
	"breaking down",
	"falling apart",
	"hopeless",
	"emergency",
	"save me",
}

// Classify scans text against the configured term lists and returns the
// resulting signal. High terms win over low terms when both match.
func Classify(text string) Signal {
	folded := strings.ToLower(text)

	for _, term := range highTerms {
		if strings.Contains(folded, term) {
			return Signal{Severity: SeverityHigh, Keyword: term}
		}
	}
	for _, term := range lowTerms {
		if strings.Contains(folded, term) {
			return Signal{Severity: SeverityLow, Keyword: term}
		}
	}
	return Signal{Severity: SeverityNone}
}

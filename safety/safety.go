package safety

import (
	"strings"

	"github.com/healthlang/ilera/schema"
)

// Classifier matches tiered trigger phrases against query and answer
// text. Matching is plain lowercase substring containment; phrase lists
// are small enough that a scan per tier is fine.
type Classifier struct {
	emergency []string
	urgent    []string
	caution   []string
}

// NewClassifier builds a classifier with the default trigger phrases.
func NewClassifier() *Classifier {
	return &Classifier{
		emergency: []string{
			"chest pain", "heart attack", "stroke", "severe bleeding",
			"unconscious", "difficulty breathing", "severe injury",
			"poisoning", "overdose", "suicidal", "homicidal",
		},
		urgent: []string{
			"high fever", "severe pain", "sudden onset", "worsening",
			"cannot function", "severe symptoms", "rapid deterioration",
		},
		caution: []string{
			"persistent", "chronic", "recurring", "unusual",
			"new symptoms", "changes", "concerned",
		},
	}
}

// Classify returns the highest tier matched anywhere in the combined
// query and answer text, with every matched phrase across all tiers.
func (c *Classifier) Classify(query, answer string) schema.SafetyAssessment {
	text := strings.ToLower(query + " " + answer)

	level := schema.SafetyNone
	var matched []string

	for _, tier := range []struct {
		level   schema.SafetyLevel
		phrases []string
	}{
		{schema.SafetyEmergency, c.emergency},
		{schema.SafetyUrgent, c.urgent},
		{schema.SafetyCaution, c.caution},
	} {
		for _, p := range tier.phrases {
			if strings.Contains(text, p) {
				matched = append(matched, p)
				if tier.level > level {
					level = tier.level
				}
			}
		}
	}

	return schema.SafetyAssessment{Level: level, Matched: matched}
}

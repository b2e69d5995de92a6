package websearch

import "strings"

// recencyIndicators mark queries whose answers change over time, where
// stored documents alone are likely stale.
var recencyIndicators = []string{
	"latest", "recent", "news", "current", "today", "this year",
	"outbreak", "epidemic", "new guideline", "new guidelines",
	"update", "updated", "just announced", "breakthrough",
	"new treatment", "new vaccine", "new study",
}

// medicalIndicators mark queries the document corpus and medical tools
// can answer. A query matching none of these is general knowledge and
// goes to live search instead.
var medicalIndicators = []string{
	// conditions
	"diabetes", "hypertension", "asthma", "depression", "anxiety",
	"cholesterol", "obesity", "malaria", "tuberculosis", "anemia",
	"covid", "coronavirus", "ulcer", "cancer", "disease", "condition",
	"syndrome", "infection", "virus", "bacteria",
	// symptoms
	"symptom", "pain", "ache", "fever", "nausea", "dizzy", "tired",
	"headache", "cough", "rash", "swelling", "bleeding", "vomiting",
	"diarrhea", "constipation", "shortness of breath",
	// clinical terms
	"diagnos", "treatment", "medication", "medicine", "drug", "dose",
	"prescription", "doctor", "physician", "hospital", "clinic",
	"blood pressure", "blood sugar", "surgery", "therapy", "vaccine",
	"sick", "illness", "injury", "health",
	// yoruba
	"àtọ̀gbẹ", "ibà", "ẹ̀jẹ̀ ríru", "oogun", "àìsàn", "ìlera", "dókítà",
}

// NeedsLiveSearch decides deterministically whether the orchestrator
// should fan out to live web search: queries implying recency or
// current events, and queries with no medical vocabulary at all, need
// general knowledge the stored corpus cannot supply. Same query, same
// answer.
func NeedsLiveSearch(query string) bool {
	q := strings.ToLower(query)
	for _, ind := range recencyIndicators {
		if strings.Contains(q, ind) {
			return true
		}
	}
	for _, ind := range medicalIndicators {
		if strings.Contains(q, ind) {
			return false
		}
	}
	return true
}

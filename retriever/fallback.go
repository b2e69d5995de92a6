package retriever

import (
	"strings"

	"github.com/healthlang/ilera/schema"
)

// fallbackEntry is a curated guideline pointer used when the store
// returns nothing usable, so the assembler is not starved and the
// answer still cites an authority.
type fallbackEntry struct {
	keywords []string
	item     schema.ContextItem
}

var fallbackCorpus = []fallbackEntry{
	{
		keywords: []string{"diabetes", "blood sugar", "insulin", "àtọ̀gbẹ"},
		item: schema.ContextItem{
			Content: "Diabetes is a chronic disease that occurs when the pancreas does not produce enough insulin or the body cannot effectively use the insulin it produces. Common symptoms include excessive thirst, frequent urination, and fatigue.",
			Source:  "World Health Organization: Diabetes",
			URL:     "https://www.who.int/health-topics/diabetes",
			Score:   0.5,
			Origin:  schema.OriginDocumentStore,
		},
	},
	{
		keywords: []string{"malaria", "ibà"},
		item: schema.ContextItem{
			Content: "Malaria is a life-threatening disease spread to humans by some types of mosquitoes. Symptoms can be mild or life-threatening, and include fever, chills and headache. Severe symptoms include fatigue, confusion, seizures, and difficulty breathing.",
			Source:  "World Health Organization: Malaria",
			URL:     "https://www.who.int/health-topics/malaria",
			Score:   0.5,
			Origin:  schema.OriginDocumentStore,
		},
	},
	{
		keywords: []string{"hypertension", "blood pressure", "ẹ̀jẹ̀ ríru"},
		item: schema.ContextItem{
			Content: "Hypertension (high blood pressure) is when the pressure in your blood vessels is too high (140/90 mmHg or higher). It is common but can be serious if not treated. Many people with hypertension do not notice symptoms.",
			Source:  "World Health Organization: Hypertension",
			URL:     "https://www.who.int/health-topics/hypertension",
			Score:   0.5,
			Origin:  schema.OriginDocumentStore,
		},
	},
}

func (r *DocumentRetriever) fallback(query string) []schema.ContextItem {
	q := strings.ToLower(query)
	for _, e := range fallbackCorpus {
		for _, kw := range e.keywords {
			if strings.Contains(q, kw) {
				return []schema.ContextItem{e.item}
			}
		}
	}
	return nil
}

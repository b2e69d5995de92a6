package llm

import (
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// systemPrompt instructs the model for medical answering in either
// supported language.
const systemPrompt = `You are a careful bilingual medical information assistant serving English and Yoruba speakers.
Answer the user's health question using the provided context where relevant.
Be accurate, plain-spoken, and concise. Explain medical terms when you use them.
You provide educational information only: do not diagnose, do not prescribe, and
recommend consulting a healthcare professional for personal medical decisions.
If the question is in Yoruba, answer in Yoruba.`

// contextTokenBudget caps how much retrieved context goes into the
// prompt, independently of the assembler's character budget.
const contextTokenBudget = 1500

// BuildPrompt renders the user prompt from assembled context and the
// question. Context is trimmed to the token budget before inclusion.
func BuildPrompt(contextText, query string) (system, prompt string) {
	contextText = trimToTokens(contextText, contextTokenBudget)
	var b strings.Builder
	if contextText != "" {
		b.WriteString("Context:\n")
		b.WriteString(contextText)
		b.WriteString("\n\n")
	}
	b.WriteString("Question: ")
	b.WriteString(query)
	return systemPrompt, b.String()
}

// trimToTokens cuts text to at most n tokens using the cl100k_base
// encoding. Falls back to a rough 4-chars-per-token cut if the encoder
// is unavailable.
func trimToTokens(text string, n int) string {
	if text == "" {
		return ""
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		if len(text) > n*4 {
			return text[:n*4]
		}
		return text
	}
	tokens := enc.Encode(text, nil, nil)
	if len(tokens) <= n {
		return text
	}
	return enc.Decode(tokens[:n])
}

package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/healthlang/ilera/llm"
)

// Translator converts text between the supported languages.
type Translator interface {
	Translate(ctx context.Context, text, from, to string) (string, error)
}

var languageNames = map[string]string{
	"en": "English",
	"yo": "Yoruba",
}

// LLMTranslator translates through the generation gateway. Callers
// fall back to the untranslated text when it errors.
type LLMTranslator struct {
	Gateway *llm.Gateway
}

func (t *LLMTranslator) Translate(ctx context.Context, text, from, to string) (string, error) {
	if strings.TrimSpace(text) == "" || from == to {
		return text, nil
	}
	fromName, ok := languageNames[from]
	if !ok {
		return "", fmt.Errorf("unsupported source language %q", from)
	}
	toName, ok := languageNames[to]
	if !ok {
		return "", fmt.Errorf("unsupported target language %q", to)
	}

	system := "You are a professional medical translator between English and Yoruba. " +
		"Translate the user's text faithfully, keeping medical meaning, formatting, and section structure intact. " +
		"Return ONLY the translated text."
	prompt := fmt.Sprintf("Translate the following %s text to %s:\n\n%s", fromName, toName, text)

	res, ok := t.Gateway.Generate(ctx, llm.Request{System: system, Prompt: prompt, Temperature: 0.1})
	if !ok {
		return "", fmt.Errorf("translation generation failed")
	}
	out := strings.TrimSpace(res.Text)
	if out == "" {
		return "", fmt.Errorf("translation came back empty")
	}
	return out, nil
}

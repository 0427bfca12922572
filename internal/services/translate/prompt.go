package translate

import (
	"fmt"
	"strings"

	"subweave/internal/language"
)

// systemPrompt instructs the model to behave as a bare translation function:
// translated text only, no commentary, no added formatting.
const systemPrompt = `You are a subtitle translator. Translate the user's text from %s to %s.
Respond with only the translated text. Do not add commentary, explanations, quotation marks, or formatting. Preserve line breaks. If the text is empty, respond with nothing.`

func buildSystemPrompt(sourceLang, targetLang string) string {
	return fmt.Sprintf(systemPrompt, promptLanguage(sourceLang), promptLanguage(targetLang))
}

// promptLanguage prefers a display name ("German") over a raw tag ("de") so
// the instruction reads naturally, but unrecognized tags pass through as-is.
func promptLanguage(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "the source language"
	}
	return language.DisplayName(trimmed)
}

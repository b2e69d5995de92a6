package formatter

import (
	"context"
	"strings"

	"github.com/healthlang/ilera/common/logger"
	"github.com/healthlang/ilera/schema"
	"github.com/healthlang/ilera/translate"
)

// Formatter renders the final response text: answer, sources section,
// and safety-tier disclaimer, followed by an optional whole-text
// translation.
type Formatter struct {
	Translator translate.Translator
	Log        logger.Logger
}

var sourcesHeader = map[string]string{
	"en": "Sources",
	"yo": "Oríṣun",
}

// safetyMessages are the tier-keyed disclaimers. The emergency line is
// always appended verbatim at emergency level.
var safetyMessages = map[string]map[schema.SafetyLevel]string{
	"en": {
		schema.SafetyCaution:   "Please exercise caution and consider consulting a healthcare provider.",
		schema.SafetyUrgent:    "This situation may require prompt medical attention.",
		schema.SafetyEmergency: "This may be an emergency situation. Seek immediate medical attention.",
	},
	"yo": {
		schema.SafetyCaution:   "Jọ̀ọ́ ṣe ìṣọ̀ra kí o sì ronú láti bá oníṣègùn sọ̀rọ̀.",
		schema.SafetyUrgent:    "Ìpò yí lè nilo ìtọ́jú ìṣègùn lẹ́sẹ̀kẹ̀sẹ̀.",
		schema.SafetyEmergency: "Eyi lè jẹ́ ìpò ìṣẹ́lẹ̀. Wa ìtọ́jú ìṣègùn lẹ́sẹ̀kẹ̀sẹ̀.",
	},
}

var educationalDisclaimer = map[string]string{
	"en": "Note: This is educational information, not a medical diagnosis. For personal advice, please consult a licensed clinician.",
	"yo": "Àkíyèsí: Ìmọ̀ràn ẹ̀kọ́ ni èyí, kì í ṣe àyẹ̀wò ìṣègùn. Fún ìmọ̀ràn ti ara ẹni, jọ̀ọ́ kàn sí oníṣègùn tí ó ní ìwé àṣẹ.",
}

// Format builds the user-facing text. Translation, when requested,
// runs once over the whole formatted output; if it fails the
// untranslated text is returned.
func (f *Formatter) Format(ctx context.Context, answer string, sources []string, assessment schema.SafetyAssessment, targetLang string, doTranslate bool, sourceLang string) string {
	lang := targetLang
	if _, ok := sourcesHeader[lang]; !ok {
		lang = "en"
	}

	var b strings.Builder
	b.WriteString(strings.TrimSpace(answer))

	if len(sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourcesHeader[lang])
		b.WriteString(":\n")
		for _, s := range sources {
			b.WriteString("• ")
			b.WriteString(s)
			b.WriteString("\n")
		}
	}

	if msg, ok := safetyMessages[lang][assessment.Level]; ok {
		b.WriteString("\n")
		if assessment.Level == schema.SafetyEmergency {
			b.WriteString("🚨 ")
		} else {
			b.WriteString("⚠️ ")
		}
		b.WriteString(msg)
	}

	b.WriteString("\n\n")
	b.WriteString(educationalDisclaimer[lang])

	text := b.String()
	if doTranslate && f.Translator != nil && sourceLang != targetLang {
		translated, err := f.Translator.Translate(ctx, text, sourceLang, targetLang)
		if err != nil {
			if f.Log != nil {
				f.Log.Warnf("translation failed, returning untranslated text: %v", err)
			}
			return text
		}
		return translated
	}
	return text
}

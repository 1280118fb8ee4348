package translate

import (
	"context"
	"strings"
)

// StaticTranslator is the offline fallback tier. It serves a small
// dictionary of common phrases and prefixes everything else with the target
// language code, so the relay always has a best-effort result to broadcast.
// It never returns an error.
type StaticTranslator struct {
	dictionary map[string]map[string]string // [targetLang][lowercased source text]
}

func NewStaticTranslator() *StaticTranslator {
	return &StaticTranslator{
		dictionary: map[string]map[string]string{
			"es": {
				"hello":        "Hola",
				"good morning": "Buenos días",
				"thank you":    "Gracias",
				"goodbye":      "Adiós",
				"how are you?": "¿Cómo estás?",
				"yes":          "Sí",
				"no":           "No",
			},
			"fr": {
				"hello":        "Bonjour",
				"good morning": "Bonjour",
				"thank you":    "Merci",
				"goodbye":      "Au revoir",
				"how are you?": "Comment allez-vous ?",
				"yes":          "Oui",
				"no":           "Non",
			},
			"de": {
				"hello":        "Hallo",
				"good morning": "Guten Morgen",
				"thank you":    "Danke",
				"goodbye":      "Auf Wiedersehen",
				"yes":          "Ja",
				"no":           "Nein",
			},
			"en": {
				"hola":    "Hello",
				"gracias": "Thank you",
				"bonjour": "Hello",
				"merci":   "Thank you",
				"adiós":   "Goodbye",
			},
		},
	}
}

func (t *StaticTranslator) Translate(_ context.Context, text, source, target string) (Translation, error) {
	detected := source
	if detected == "" || detected == AutoLanguage {
		detected = guessLanguage(text)
	}

	if detected == target {
		return Translation{TranslatedText: text, DetectedLanguage: detected}, nil
	}

	if langDict, ok := t.dictionary[target]; ok {
		if translated, ok := langDict[strings.ToLower(strings.TrimSpace(text))]; ok {
			return Translation{TranslatedText: translated, DetectedLanguage: detected}, nil
		}
	}

	return Translation{
		TranslatedText:   "[" + target + "] " + text,
		DetectedLanguage: detected,
	}, nil
}

func (t *StaticTranslator) Detect(_ context.Context, text string) (Detection, error) {
	return Detection{Language: guessLanguage(text), Confidence: 0.5}, nil
}

var languageMarkers = map[string][]string{
	"es": {"hola", "gracias", "buenos", "cómo", "qué", "adiós", "por favor"},
	"fr": {"bonjour", "merci", "oui", "comment", "au revoir", "s'il"},
	"de": {"hallo", "danke", "guten", "bitte", "wie", "nein"},
}

// guessLanguage is a tiny stopword heuristic, good enough for the fallback
// tier where the real detection service is unavailable.
func guessLanguage(text string) string {
	lowered := " " + strings.ToLower(text) + " "
	for lang, markers := range languageMarkers {
		for _, marker := range markers {
			if strings.Contains(lowered, " "+marker+" ") || strings.Contains(lowered, " "+marker) {
				return lang
			}
		}
	}
	return "en"
}

package translate

import "context"

// Translation is the result of translating one utterance.
type Translation struct {
	TranslatedText   string `json:"translatedText"`
	DetectedLanguage string `json:"detectedLanguage,omitempty"`
}

// Detection is the result of identifying an utterance's language.
type Detection struct {
	Language   string  `json:"language"`
	Confidence float64 `json:"confidence"`
}

// AutoLanguage is the source value that asks the backend to detect the
// language itself.
const AutoLanguage = "auto"

// Translator converts text between languages and identifies source
// languages. The router only ever depends on this single capability; which
// backend served a request is not observable through it.
type Translator interface {
	// Translate converts text from source (possibly AutoLanguage) to target.
	Translate(ctx context.Context, text, source, target string) (Translation, error)

	// Detect identifies the language of text.
	Detect(ctx context.Context, text string) (Detection, error)
}

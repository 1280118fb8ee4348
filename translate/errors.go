package translate

import "errors"

// ErrNoTranslator is returned when neither a primary nor a fallback
// translator is configured.
var ErrNoTranslator = errors.New("no translator configured")

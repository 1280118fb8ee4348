package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type scriptedTranslator struct {
	translation Translation
	detection   Detection
	err         error
	calls       int
}

func (s *scriptedTranslator) Translate(context.Context, string, string, string) (Translation, error) {
	s.calls++
	return s.translation, s.err
}

func (s *scriptedTranslator) Detect(context.Context, string) (Detection, error) {
	s.calls++
	return s.detection, s.err
}

func TestCompositePrefersPrimary(t *testing.T) {
	primary := &scriptedTranslator{translation: Translation{TranslatedText: "Hola"}}
	fallback := &scriptedTranslator{translation: Translation{TranslatedText: "[es] Hello"}}
	c := NewComposite(primary, fallback, zaptest.NewLogger(t).Sugar())

	result, err := c.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	require.Equal(t, "Hola", result.TranslatedText)
	require.Zero(t, fallback.calls)
}

func TestCompositeFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &scriptedTranslator{err: errors.New("boom")}
	fallback := &scriptedTranslator{translation: Translation{TranslatedText: "[es] Hello"}}
	c := NewComposite(primary, fallback, zaptest.NewLogger(t).Sugar())

	result, err := c.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	require.Equal(t, "[es] Hello", result.TranslatedText)
	require.Equal(t, 1, primary.calls)
	require.Equal(t, 1, fallback.calls)
}

func TestCompositePropagatesErrorWithoutFallback(t *testing.T) {
	primary := &scriptedTranslator{err: errors.New("boom")}
	c := NewComposite(primary, nil, zaptest.NewLogger(t).Sugar())

	_, err := c.Translate(context.Background(), "Hello", "en", "es")
	require.Error(t, err)
}

func TestCompositeWithNoTiers(t *testing.T) {
	c := NewComposite(nil, nil, zaptest.NewLogger(t).Sugar())

	_, err := c.Translate(context.Background(), "Hello", "en", "es")
	require.ErrorIs(t, err, ErrNoTranslator)

	_, err = c.Detect(context.Background(), "Hello")
	require.ErrorIs(t, err, ErrNoTranslator)
}

func TestCompositeDetectFallsBack(t *testing.T) {
	primary := &scriptedTranslator{err: errors.New("boom")}
	fallback := &scriptedTranslator{detection: Detection{Language: "es", Confidence: 0.5}}
	c := NewComposite(primary, fallback, zaptest.NewLogger(t).Sugar())

	detection, err := c.Detect(context.Background(), "hola")
	require.NoError(t, err)
	require.Equal(t, "es", detection.Language)
}

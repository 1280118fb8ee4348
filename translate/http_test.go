package translate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestHTTPTranslator(t *testing.T, handler http.Handler, maxRetries int) (*HTTPTranslator, *httptest.Server) {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	tr := NewHTTPTranslator(srv.URL, "/translate", "/detect", 2*time.Second, maxRetries, zaptest.NewLogger(t).Sugar())
	return tr, srv
}

func TestHTTPTranslatorTranslate(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		var req translateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Hello", req.Text)
		require.Equal(t, "en", req.Source)
		require.Equal(t, "es", req.Target)

		json.NewEncoder(w).Encode(Translation{TranslatedText: "Hola", DetectedLanguage: "en"})
	})

	tr, _ := newTestHTTPTranslator(t, mux, 0)

	result, err := tr.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	require.Equal(t, "Hola", result.TranslatedText)
	require.Equal(t, "en", result.DetectedLanguage)
}

func TestHTTPTranslatorDetect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/detect", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Detection{Language: "es", Confidence: 0.97})
	})

	tr, _ := newTestHTTPTranslator(t, mux, 0)

	detection, err := tr.Detect(context.Background(), "hola")
	require.NoError(t, err)
	require.Equal(t, "es", detection.Language)
	require.InDelta(t, 0.97, detection.Confidence, 0.001)
}

func TestHTTPTranslatorRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			http.Error(w, "flaky", http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(Translation{TranslatedText: "Hola"})
	})

	tr, _ := newTestHTTPTranslator(t, mux, 2)

	result, err := tr.Translate(context.Background(), "Hello", "en", "es")
	require.NoError(t, err)
	require.Equal(t, "Hola", result.TranslatedText)
	require.Equal(t, int64(2), attempts.Load())
}

func TestHTTPTranslatorGivesUpAfterRetries(t *testing.T) {
	var attempts atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "down", http.StatusServiceUnavailable)
	})

	tr, _ := newTestHTTPTranslator(t, mux, 1)

	_, err := tr.Translate(context.Background(), "Hello", "en", "es")
	require.Error(t, err)
	require.Equal(t, int64(2), attempts.Load())
}

func TestHTTPTranslatorRejectsEmptyTranslation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/translate", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(Translation{})
	})

	tr, _ := newTestHTTPTranslator(t, mux, 0)

	_, err := tr.Translate(context.Background(), "Hello", "en", "es")
	require.Error(t, err)
}

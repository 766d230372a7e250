package translit_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mahalaxmi/dairybook/translit"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// newClient points both endpoints at local test servers.
func newClient(transliterate, translate http.HandlerFunc) (*translit.Client, func()) {
	ts1 := httptest.NewServer(transliterate)
	ts2 := httptest.NewServer(translate)
	c := translit.New(nil,
		translit.WithEndpoints(ts1.URL, ts2.URL),
		translit.WithTimeout(2*time.Second))
	return c, func() { ts1.Close(); ts2.Close() }
}

func serve(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}
}

func serveStatus(code int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(code)
	}
}

// =============================================================================
// SCRIPT ROUTING
// =============================================================================

func TestTransform_LatinInputUsesTransliteration(t *testing.T) {
	// GIVEN: Latin input "doodh"
	// THEN: The input-tools response's first candidate comes back

	c, done := newClient(
		serve(`["SUCCESS",[["doodh",["दूध"]]]]`),
		serveStatus(http.StatusInternalServerError),
	)
	defer done()

	assert.Equal(t, "दूध", c.Transform(context.Background(), "doodh"))
}

func TestTransform_NonLatinInputUsesTranslation(t *testing.T) {
	// GIVEN: Devanagari input
	// THEN: The translate response's first segment comes back

	c, done := newClient(
		serveStatus(http.StatusInternalServerError),
		serve(`[[["milk","दूध",null,null]],null,"hi"]`),
	)
	defer done()

	assert.Equal(t, "milk", c.Transform(context.Background(), "दूध"))
}

func TestTransform_EmptyInput(t *testing.T) {
	c, done := newClient(serve(`[]`), serve(`[]`))
	defer done()
	assert.Equal(t, "", c.Transform(context.Background(), ""))
}

// =============================================================================
// FALLBACK BEHAVIOR - a failure is never an error, just the input back
// =============================================================================

func TestTransform_ServiceErrorFallsBackToInput(t *testing.T) {
	c, done := newClient(
		serveStatus(http.StatusBadGateway),
		serveStatus(http.StatusBadGateway),
	)
	defer done()

	assert.Equal(t, "doodh", c.Transform(context.Background(), "doodh"))
	assert.Equal(t, "दूध", c.Transform(context.Background(), "दूध"))
}

func TestTransform_MalformedResponseFallsBackToInput(t *testing.T) {
	c, done := newClient(serve(`not json at all`), serve(`{"wrong":"shape"}`))
	defer done()

	assert.Equal(t, "doodh", c.Transform(context.Background(), "doodh"))
	assert.Equal(t, "दूध", c.Transform(context.Background(), "दूध"))
}

func TestTransform_UnexpectedShapeFallsBackToInput(t *testing.T) {
	// Valid JSON but the candidate path is missing.
	c, done := newClient(serve(`["SUCCESS",[]]`), serve(`[[]]`))
	defer done()

	assert.Equal(t, "doodh", c.Transform(context.Background(), "doodh"))
}

func TestTransform_UnreachableServiceFallsBackToInput(t *testing.T) {
	// Endpoints that refuse connections entirely.
	ts := httptest.NewServer(serve(`[]`))
	ts.Close()

	c := translit.New(nil,
		translit.WithEndpoints(ts.URL, ts.URL),
		translit.WithTimeout(500*time.Millisecond))

	assert.Equal(t, "doodh", c.Transform(context.Background(), "doodh"))
}

package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"assetprice/internal/httpx"
)

func TestDo_FillsDefaultsWithoutOverriding(t *testing.T) {
	t.Parallel()

	var gotUA, gotAccept, gotTrace string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		gotTrace = r.Header.Get("X-Trace")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := httpx.New(2 * time.Second)
	c.Headers = map[string]string{"Accept": "application/json", "X-Trace": "default"}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("X-Trace", "caller")

	res, err := c.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	require.Equal(t, http.StatusNoContent, res.StatusCode)
	require.Equal(t, "assetprice/1.0", gotUA)
	require.Equal(t, "application/json", gotAccept)
	require.Equal(t, "caller", gotTrace)
}

func TestDo_TimeoutIsPerCall(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(500 * time.Millisecond):
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()

	c := httpx.New(50 * time.Millisecond)
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)

	res, err := c.Do(req)
	if res != nil {
		res.Body.Close()
	}
	require.Error(t, err)
}

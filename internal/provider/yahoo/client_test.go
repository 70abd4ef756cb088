package yahoo_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"assetprice/internal/provider"
	"assetprice/internal/provider/yahoo"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func TestNewClient(t *testing.T) {
	t.Parallel()

	// Assert: no options should still return a client.
	client, err := yahoo.NewClient()
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestQuote(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "/v7/finance/quote", req.URL.Path)
			require.Equal(t, "AAPL,MSFT", req.URL.Query().Get("symbols"))

			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[
				{"symbol":"AAPL","currency":"USD","regularMarketPrice":150.0,"regularMarketTime":1700000000,"marketState":"REGULAR","exchange":"NMS","shortName":"Apple Inc.","longName":"Apple Inc."},
				{"symbol":"MSFT","currency":"USD"}
			],"error":null}}`), nil
		}).
		Times(1)

	// Arrange: setup a new client
	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act: call Quote
	quotes, err := client.Quote(t.Context(), []string{"AAPL", "MSFT"})
	require.NoError(t, err)

	// Assert: both quotes decoded, missing fields stay nil
	require.Len(t, quotes, 2)
	require.Equal(t, "AAPL", quotes[0].Symbol)
	require.NotNil(t, quotes[0].RegularMarketPrice)
	require.InEpsilon(t, 150.0, *quotes[0].RegularMarketPrice, 0.0001)
	require.NotNil(t, quotes[0].RegularMarketTime)
	require.Equal(t, int64(1700000000), *quotes[0].RegularMarketTime)
	require.Equal(t, "Apple Inc.", quotes[0].LongName)
	require.Nil(t, quotes[1].RegularMarketPrice)
	require.Nil(t, quotes[1].RegularMarketVolume)
}

func TestWithBaseURLHeaderAndCrumb(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := NewMockHTTPClient(ctrl)

	// Arrange: define a base url
	baseURL := "http://localhost:8080"

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Truef(t, strings.HasPrefix(req.URL.String(), baseURL), "expected url to start with base url, received: %s", req.URL.String())
			require.Equal(t, "bar", req.Header.Get("foo"))
			require.Equal(t, "B=abc", req.Header.Get("Cookie"))
			require.Equal(t, "xyz", req.URL.Query().Get("crumb"))
			require.Equal(t, "US", req.URL.Query().Get("region"))

			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[],"error":null}}`), nil
		}).
		Times(1)

	// Arrange: create a new client with every option
	client, err := yahoo.NewClient(
		yahoo.WithHTTPClient(httpClient),
		yahoo.WithBaseURL(baseURL),
		yahoo.WithHeader(http.Header{"foo": []string{"bar"}}),
		yahoo.WithQuery(url.Values{"region": []string{"US"}}),
		yahoo.WithCrumb("xyz", "B=abc"),
	)
	require.NoError(t, err)

	// Act: call Quote
	quotes, err := client.Quote(t.Context(), []string{"AAPL"})
	require.NoError(t, err)
	require.Empty(t, quotes)
}

func TestQuote_PerCallOptionsDoNotLeak(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	var hosts []string
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			hosts = append(hosts, req.URL.Host)
			return jsonResponse(http.StatusOK, `{"quoteResponse":{"result":[]}}`), nil
		}).
		Times(2)

	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient), yahoo.WithBaseURL("http://primary"))
	require.NoError(t, err)

	_, err = client.Quote(t.Context(), []string{"AAPL"}, yahoo.WithBaseURL("http://other"))
	require.NoError(t, err)
	_, err = client.Quote(t.Context(), []string{"AAPL"})
	require.NoError(t, err)

	require.Equal(t, []string{"other", "primary"}, hosts)
}

func TestQuote_ErrCreatingRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	// Assert: the request never reaches the transport
	httpClient.EXPECT().Do(gomock.Any()).Times(0)

	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	quotes, err := client.Quote(t.Context(), []string{"AAPL"}, yahoo.WithBaseURL(string([]rune{0x7f})))
	require.ErrorIs(t, err, provider.ErrUnavailable)
	require.Nil(t, quotes)
}

func TestQuote_ErrPerformingRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)

	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("i/o timeout")
		}).
		Times(1)

	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	quotes, err := client.Quote(t.Context(), []string{"AAPL"})
	require.ErrorIs(t, err, provider.ErrUnavailable)
	require.NotErrorIs(t, err, provider.ErrNotFound)
	require.Nil(t, quotes)
}

func TestQuote_StatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		status int
		want   error
	}{
		{http.StatusNotFound, provider.ErrNotFound},
		{http.StatusUnauthorized, provider.ErrUnavailable},
		{http.StatusTooManyRequests, provider.ErrUnavailable},
		{http.StatusInternalServerError, provider.ErrUnavailable},
		{http.StatusBadGateway, provider.ErrUnavailable},
	}
	for _, tc := range cases {
		t.Run(http.StatusText(tc.status), func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().
				Do(gomock.Any()).
				Return(jsonResponse(tc.status, ""), nil).
				Times(1)

			client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
			require.NoError(t, err)

			quotes, err := client.Quote(t.Context(), []string{"AAPL"})
			require.ErrorIs(t, err, tc.want)
			require.Nil(t, quotes)
		})
	}
}

func TestQuote_ErrDecodingResponse(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, "invalid json"), nil).
		Times(1)

	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	quotes, err := client.Quote(t.Context(), []string{"AAPL"})
	require.ErrorIs(t, err, provider.ErrUnavailable)
	require.Nil(t, quotes)
}

func TestQuote_ErrorEnvelope(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(http.StatusOK, `{"quoteResponse":{"result":null,"error":{"code":"Bad Request","description":"Missing value for the \"symbols\" argument"}}}`), nil).
		Times(1)

	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	_, err = client.Quote(t.Context(), []string{""})
	require.ErrorIs(t, err, provider.ErrUnavailable)
	require.Contains(t, err.Error(), "Bad Request")
}

func TestScreener(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v1/finance/screener/predefined/saved", req.URL.Path)
			require.Equal(t, "most_actives", req.URL.Query().Get("scrIds"))
			require.Equal(t, "3", req.URL.Query().Get("count"))

			return jsonResponse(http.StatusOK, `{"finance":{"result":[{"quotes":[
				{"symbol":"NVDA"},{"symbol":"TSLA"},{"symbol":""},{"symbol":"AAPL"},{"symbol":"AMD"}
			]}],"error":null}}`), nil
		}).
		Times(1)

	client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
	require.NoError(t, err)

	symbols, err := client.Screener(t.Context(), "most_actives", 3)
	require.NoError(t, err)
	require.Equal(t, []string{"NVDA", "TSLA", "AAPL"}, symbols)
}

func TestScreener_Failures(t *testing.T) {
	t.Parallel()

	bodies := map[string]*http.Response{
		"not found":      jsonResponse(http.StatusNotFound, `{"finance":{"result":null,"error":{"code":"Not Found","description":"No screener"}}}`),
		"server error":   jsonResponse(http.StatusInternalServerError, ""),
		"error envelope": jsonResponse(http.StatusOK, `{"finance":{"result":null,"error":{"code":"Bad Request","description":"bad scrIds"}}}`),
		"bad json":       jsonResponse(http.StatusOK, "{"),
	}
	for name, res := range bodies {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := NewMockHTTPClient(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(res, nil).Times(1)

			client, err := yahoo.NewClient(yahoo.WithHTTPClient(httpClient))
			require.NoError(t, err)

			symbols, err := client.Screener(t.Context(), "day_gainers", 10)
			require.ErrorIs(t, err, provider.ErrUnavailable)
			require.NotErrorIs(t, err, provider.ErrNotFound)
			require.Nil(t, symbols)
		})
	}
}

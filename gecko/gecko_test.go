package gecko

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chartServer(t *testing.T, points ...[2]float64) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"prices":[`)
		for i, p := range points {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, "[%f,%f]", p[0], p[1])
		}
		fmt.Fprint(w, `],"market_caps":[],"total_volumes":[]}`)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ms(t time.Time) float64 { return float64(t.UnixMilli()) }

func TestService_Rate_PicksNearestPoint(t *testing.T) {
	at := time.Date(2021, 6, 15, 12, 0, 0, 0, time.UTC)
	srv := chartServer(t,
		[2]float64{ms(at.Add(-36 * time.Hour)), 10},
		[2]float64{ms(at.Add(-2 * time.Hour)), 20},
		[2]float64{ms(at.Add(30 * time.Hour)), 30},
	)

	s := &Service{BaseURL: srv.URL, Cached: srv.Client()}
	rate, staleness, err := s.Rate(at, "XXBT", "USD", false)
	require.NoError(t, err)
	assert.Equal(t, "20", rate.String())
	assert.Equal(t, 2*time.Hour, staleness)
}

func TestService_Rate_EqualCurrenciesNeedNoCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no API call expected for a fiat-to-fiat rate")
	}))
	t.Cleanup(srv.Close)

	s := &Service{BaseURL: srv.URL, Cached: srv.Client()}
	rate, staleness, err := s.Rate(time.Now(), "USD", "USD", false)
	require.NoError(t, err)
	assert.Equal(t, "1", rate.String())
	assert.Zero(t, staleness)
}

func TestService_Rate_UnknownCurrency(t *testing.T) {
	s := &Service{}
	_, _, err := s.Rate(time.Now(), "DOGE", "USD", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DOGE")
}

// cannedTransport answers every request with the same body, standing in for a
// client that serves stale cached responses.
type cannedTransport struct{ body string }

func (c cannedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(c.body)),
		Request:    req,
	}, nil
}

func TestService_Rate_ForceLiveBypassesCachedClient(t *testing.T) {
	at := time.Date(2022, 1, 10, 0, 0, 0, 0, time.UTC)
	stale := fmt.Sprintf(`{"prices":[[%f,100]]}`, ms(at))
	live := chartServer(t, [2]float64{ms(at), 200})

	s := &Service{
		BaseURL: live.URL,
		Cached:  &http.Client{Transport: cannedTransport{body: stale}},
		Live:    live.Client(),
	}

	rate, _, err := s.Rate(at, "ADA", "USD", false)
	require.NoError(t, err)
	assert.Equal(t, "100", rate.String())

	rate, _, err = s.Rate(at, "ADA", "USD", true)
	require.NoError(t, err)
	assert.Equal(t, "200", rate.String())
}

func TestService_Rate_EmptyChartFails(t *testing.T) {
	srv := chartServer(t)
	s := &Service{BaseURL: srv.URL, Cached: srv.Client()}
	_, _, err := s.Rate(time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC), "SOL", "USD", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no chart points")
}

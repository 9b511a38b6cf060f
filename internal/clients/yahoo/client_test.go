package yahoo

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(
		WithBaseURL(server.URL),
		WithRateLimit(1000),
		WithClock(func() time.Time {
			return time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
		}),
	)
}

func TestGetChart(t *testing.T) {
	t.Run("decodes nulls and reference price", func(t *testing.T) {
		var gotPath string
		var gotQuery map[string][]string
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotQuery = r.URL.Query()
			assert.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte(`{"chart":{"result":[{
				"meta":{"regularMarketPrice":103.5,"currency":"GBP"},
				"timestamp":[1000,2000,3000],
				"indicators":{"quote":[{"close":[100.0,null,103.0]}]}
			}],"error":null}}`))
		})

		series, reference, err := client.GetChart(context.Background(), "VOD.L")
		require.NoError(t, err)

		assert.Equal(t, "/v8/finance/chart/VOD.L", gotPath)
		assert.Equal(t, []string{"1d"}, gotQuery["interval"])
		assert.Equal(t, []string{"div"}, gotQuery["events"])

		// 13 months of history requested relative to the injected clock.
		p1, _ := strconv.ParseInt(gotQuery["period1"][0], 10, 64)
		p2, _ := strconv.ParseInt(gotQuery["period2"][0], 10, 64)
		assert.Equal(t, time.Date(2025, 5, 15, 12, 0, 0, 0, time.UTC).Unix(), p1)
		assert.Equal(t, time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC).Unix(), p2)

		assert.Equal(t, "VOD.L", series.Symbol)
		assert.Equal(t, "GBP", series.Currency)
		assert.Equal(t, []int64{1000, 2000, 3000}, series.Timestamps)
		require.Len(t, series.Closes, 3)
		assert.Equal(t, 100.0, *series.Closes[0])
		assert.Nil(t, series.Closes[1])
		assert.Equal(t, 103.0, *series.Closes[2])
		assert.Equal(t, 103.5, reference)
	})

	t.Run("prefers adjusted closes when aligned", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":[{
				"meta":{"currency":"EUR"},
				"timestamp":[1000,2000],
				"indicators":{
					"quote":[{"close":[100.0,101.0]}],
					"adjclose":[{"adjclose":[98.5,99.4]}]
				}
			}],"error":null}}`))
		})

		series, reference, err := client.GetChart(context.Background(), "ORA.PA")
		require.NoError(t, err)
		assert.Equal(t, 98.5, *series.Closes[0])
		assert.Equal(t, 99.4, *series.Closes[1])
		assert.True(t, math.IsNaN(reference), "missing meta price yields NaN")
	})

	t.Run("misaligned adjclose falls back to quote closes", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":[{
				"meta":{"currency":"EUR"},
				"timestamp":[1000,2000],
				"indicators":{
					"quote":[{"close":[100.0,101.0]}],
					"adjclose":[{"adjclose":[98.5]}]
				}
			}],"error":null}}`))
		})

		series, _, err := client.GetChart(context.Background(), "ORA.PA")
		require.NoError(t, err)
		assert.Equal(t, 100.0, *series.Closes[0])
	})

	t.Run("payload error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found"}}}`))
		})

		_, _, err := client.GetChart(context.Background(), "NOPE")
		require.Error(t, err)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "No data found", apiErr.Message)
	})

	t.Run("http error status", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
		})

		_, _, err := client.GetChart(context.Background(), "VOD.L")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	})

	t.Run("mismatched close length", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"chart":{"result":[{
				"meta":{"currency":"EUR"},
				"timestamp":[1000,2000,3000],
				"indicators":{"quote":[{"close":[100.0]}]}
			}],"error":null}}`))
		})

		_, _, err := client.GetChart(context.Background(), "ORA.PA")
		assert.Error(t, err)
	})
}

func TestGetFundamentals(t *testing.T) {
	t.Run("decodes raw values", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v10/finance/quoteSummary/ORA.PA", r.URL.Path)
			assert.Equal(t, "summaryDetail,defaultKeyStatistics", r.URL.Query().Get("modules"))
			w.Write([]byte(`{"quoteSummary":{"result":[{
				"summaryDetail":{
					"trailingPE":{"raw":12.4,"fmt":"12.40"},
					"beta":{},
					"dividendRate":{"raw":0.72}
				},
				"defaultKeyStatistics":{
					"forwardPE":{"raw":11.1},
					"beta":{"raw":0.65},
					"lastDividendValue":{"raw":0.36}
				}
			}],"error":null}}`))
		})

		got, err := client.GetFundamentals(context.Background(), "ORA.PA")
		require.NoError(t, err)

		require.NotNil(t, got.TrailingPE)
		assert.Equal(t, 12.4, *got.TrailingPE)
		require.NotNil(t, got.ForwardPE)
		assert.Equal(t, 11.1, *got.ForwardPE)
		// summaryDetail beta is an empty object, so the key-statistics
		// beta backfills it.
		require.NotNil(t, got.Beta)
		assert.Equal(t, 0.65, *got.Beta)
		assert.Equal(t, 0.72, *got.DividendRate)
		assert.Nil(t, got.TrailingAnnualDividendRate)
		assert.Equal(t, 0.36, *got.LastDividendValue)
	})

	t.Run("payload error", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"quoteSummary":{"result":null,"error":{"code":"Not Found","description":"Quote not found"}}}`))
		})

		_, err := client.GetFundamentals(context.Background(), "NOPE")
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Quote not found", apiErr.Message)
	})
}

func TestSearch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		assert.Equal(t, "orange", r.URL.Query().Get("q"))
		w.Write([]byte(`{"quotes":[
			{"symbol":"ORA.PA","shortname":"Orange","exchange":"PAR","exchDisp":"Paris","quoteType":"EQUITY"},
			{"symbol":"ORAN","longname":"Orange S.A.","exchange":"NYQ","exchDisp":"NYSE","quoteType":"EQUITY"},
			{"symbol":"ORA=F","shortname":"Orange Juice Futures","quoteType":"FUTURE"},
			{"symbol":"BARE","quoteType":"EQUITY"}
		]}`))
	})

	got, err := client.Search(context.Background(), "orange")
	require.NoError(t, err)

	require.Len(t, got, 3, "non-equity quotes are dropped")
	assert.Equal(t, "ORA.PA", got[0].Symbol)
	assert.Equal(t, "Orange", got[0].Name)
	assert.Equal(t, "Orange S.A.", got[1].Name, "longname backfills shortname")
	assert.Equal(t, "BARE", got[2].Name, "symbol backfills both names")
}

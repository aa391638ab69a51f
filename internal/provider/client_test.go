// internal/provider/client_test.go
package provider

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainfolio/internal/util"
)

var testChainMap = map[string]string{
	"ethereum":            "eth",
	"binance-smart-chain": "bsc",
	"polygon":             "polygon",
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMapChain(t *testing.T) {
	client := NewClient("http://localhost", "key", time.Second, testChainMap, testLogger())

	assert.Equal(t, "eth", client.MapChain("ethereum"))
	assert.Equal(t, "eth", client.MapChain("Ethereum"))
	assert.Equal(t, "bsc", client.MapChain("binance-smart-chain"))
	// unknown names pass through so callers can use provider ids directly
	assert.Equal(t, "base", client.MapChain("base"))
}

func TestMapChainOwnsItsMapping(t *testing.T) {
	chainMap := map[string]string{"ethereum": "eth"}
	client := NewClient("http://localhost", "key", time.Second, chainMap, testLogger())

	chainMap["ethereum"] = "mutated"

	assert.Equal(t, "eth", client.MapChain("ethereum"))
}

func TestOptionalDecimalUnmarshal(t *testing.T) {
	cases := []struct {
		name  string
		input string
		valid bool
		want  string
	}{
		{"Number", `12.5`, true, "12.5"},
		{"NumericString", `"0.000000000000000001"`, true, "0.000000000000000001"},
		{"Null", `null`, false, ""},
		{"Garbage", `"not-a-number"`, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var d OptionalDecimal
			err := json.Unmarshal([]byte(tc.input), &d)
			require.NoError(t, err)
			assert.Equal(t, tc.valid, d.Valid)
			if tc.valid {
				assert.Equal(t, tc.want, d.Decimal.String())
			}
		})
	}
}

func TestFetchTokens(t *testing.T) {
	ctx := context.Background()
	address := "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

	t.Run("Success", func(t *testing.T) {
		var gotPath, gotAPIKey, gotChain, gotSpam, gotUnverified string
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAPIKey = r.Header.Get("X-API-Key")
			gotChain = r.URL.Query().Get("chain")
			gotSpam = r.URL.Query().Get("exclude_spam")
			gotUnverified = r.URL.Query().Get("exclude_unverified_contracts")
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{
				"result": [
					{
						"token_address": "0xdac17f958d2ee523a2206206994597c13d831ec7",
						"symbol": "USDT",
						"name": "Tether USD",
						"logo": "https://img.example/usdt.png",
						"usd_price": 1.001,
						"usd_price_24hr_percent_change": "-0.02",
						"balance_formatted": "150.5",
						"usd_value": 150.65
					},
					{
						"token_address": "0x0000000000000000000000000000000000001010",
						"symbol": "MATIC",
						"usd_value": "broken"
					}
				]
			}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "secret-key", time.Second, testChainMap, testLogger())

		items, err := client.FetchTokens(ctx, address, "ethereum", DefaultFetchOptions())

		require.NoError(t, err)
		assert.Equal(t, "/wallets/"+address+"/tokens", gotPath)
		assert.Equal(t, "secret-key", gotAPIKey)
		assert.Equal(t, "eth", gotChain)
		assert.Equal(t, "true", gotSpam)
		assert.Equal(t, "true", gotUnverified)

		require.Len(t, items, 2)
		assert.Equal(t, "USDT", items[0].Symbol)
		require.NotNil(t, items[0].Logo)
		assert.Equal(t, "https://img.example/usdt.png", *items[0].Logo)
		assert.True(t, items[0].USDPrice.Valid)
		assert.Equal(t, "1.001", items[0].USDPrice.Decimal.String())
		assert.True(t, items[0].BalanceFormatted.Valid)
		assert.Nil(t, items[0].Thumbnail)

		// bad numeric value decodes as not-present, not a payload failure
		assert.Equal(t, "MATIC", items[1].Symbol)
		assert.False(t, items[1].USDValue.Valid)
	})

	t.Run("NoChainQueriesAllChains", func(t *testing.T) {
		var hasChain bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasChain = r.URL.Query().Has("chain")
			_, _ = w.Write([]byte(`{"result": []}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", time.Second, testChainMap, testLogger())

		items, err := client.FetchTokens(ctx, address, "", DefaultFetchOptions())

		require.NoError(t, err)
		assert.Empty(t, items)
		assert.False(t, hasChain)
	})

	t.Run("ErrorStatusWrapsProviderError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "wrong-key", time.Second, testChainMap, testLogger())

		items, err := client.FetchTokens(ctx, address, "ethereum", DefaultFetchOptions())

		assert.Nil(t, items)
		require.ErrorIs(t, err, util.ErrProvider)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "invalid api key")
	})

	t.Run("MalformedBodyWrapsProviderError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>gateway error</html>`))
		}))
		defer server.Close()

		client := NewClient(server.URL, "key", time.Second, testChainMap, testLogger())

		items, err := client.FetchTokens(ctx, address, "ethereum", DefaultFetchOptions())

		assert.Nil(t, items)
		assert.ErrorIs(t, err, util.ErrProvider)
	})

	t.Run("UnreachableHostWrapsProviderError", func(t *testing.T) {
		client := NewClient("http://127.0.0.1:1", "key", 200*time.Millisecond, testChainMap, testLogger())

		items, err := client.FetchTokens(ctx, address, "ethereum", DefaultFetchOptions())

		assert.Nil(t, items)
		assert.ErrorIs(t, err, util.ErrProvider)
	})
}

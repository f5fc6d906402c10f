package network

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup_LiveKeys(t *testing.T) {
	testnet, err := Lookup("testnet")
	require.NoError(t, err)
	assert.Equal(t, "testnet", testnet.Key)
	assert.NotEmpty(t, testnet.RPCURL)
	assert.NotEmpty(t, testnet.Passphrase)
	assert.True(t, testnet.HasFaucet())

	mainnet, err := Lookup("mainnet")
	require.NoError(t, err)
	assert.Equal(t, "mainnet", mainnet.Key)
	assert.False(t, mainnet.HasFaucet())

	assert.NotEqual(t, testnet.Passphrase, mainnet.Passphrase)
}

func TestLookup_LegacyAliasResolvesToSameEntry(t *testing.T) {
	testnet, err := Lookup("testnet")
	require.NoError(t, err)

	sepolia, err := Lookup("sepolia")
	require.NoError(t, err)

	// Aliases must hand back the identical record, not a copy.
	assert.Same(t, testnet, sepolia)
}

func TestLookup_UnknownKeyFallsBackToDefault(t *testing.T) {
	def, err := Default()
	require.NoError(t, err)

	got, err := Lookup("ropsten-classic")
	require.NoError(t, err)
	assert.Same(t, def, got)
}

func TestExplorerTxURL(t *testing.T) {
	cfg := &Config{ExplorerURL: "https://explorer.example.org"}
	assert.Equal(t, "https://explorer.example.org/tx/abc123", cfg.ExplorerTxURL("abc123"))

	bare := &Config{}
	assert.Empty(t, bare.ExplorerTxURL("abc123"))
}

func TestFaucet_Fund(t *testing.T) {
	var gotAddr string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAddr = r.URL.Query().Get("addr")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := &Config{Key: "testnet", FriendbotURL: srv.URL}
	err := NewFaucet().Fund(context.Background(), cfg, "GABC")
	require.NoError(t, err)
	assert.Equal(t, "GABC", gotAddr)
}

func TestFaucet_Fund_NoFaucet(t *testing.T) {
	cfg := &Config{Key: "mainnet"}
	err := NewFaucet().Fund(context.Background(), cfg, "GABC")
	assert.ErrorContains(t, err, "no faucet")
}

func TestFaucet_Fund_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	cfg := &Config{Key: "testnet", FriendbotURL: srv.URL}
	err := NewFaucet().Fund(context.Background(), cfg, "GABC")
	assert.ErrorContains(t, err, "status 502")
}

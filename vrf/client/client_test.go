package client

import (
	"context"
	"math/big"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/GPTx-global/vrf-consumer/vrf/client/rpctest"
)

func TestConnect_ResolvesChainID(t *testing.T) {
	srv := rpctest.NewServer(t, 42161)

	c, err := Connect(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer c.Close()

	require.Equal(t, int64(42161), c.ChainID().Int64())
	require.Equal(t, srv.URL, c.Endpoint())
	require.NotNil(t, c.Backend())
	require.Equal(t, 1, srv.Calls("eth_chainId"))

	// ChainID hands out a copy
	c.ChainID().SetInt64(1)
	require.Equal(t, int64(42161), c.ChainID().Int64())
}

func TestConnect_ConfiguredChainID(t *testing.T) {
	srv := rpctest.NewServer(t, 42161)

	c, err := Connect(context.Background(), srv.URL, big.NewInt(42161))
	require.NoError(t, err)
	c.Close()

	_, err = Connect(context.Background(), srv.URL, big.NewInt(421614))
	require.Error(t, err)
	require.Contains(t, err.Error(), "chain id mismatch")
}

func TestConnect_UnavailableNodeFailsOnFirstCall(t *testing.T) {
	srv := rpctest.NewServer(t, 42161)
	srv.FailWith(http.StatusServiceUnavailable)

	_, err := Connect(context.Background(), srv.URL, nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to query chain id")
	require.Equal(t, 1, srv.Total())
}

func TestConnect_BadEndpoint(t *testing.T) {
	_, err := Connect(context.Background(), "ftp://localhost:1", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "failed to dial")
}

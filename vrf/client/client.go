package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"

	"github.com/GPTx-global/vrf-consumer/vrf/log"
)

// Backend is everything the contract bindings need from a node.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type Client struct {
	endpoint string
	eth      *ethclient.Client
	chainID  *big.Int
}

// Connect dials endpoint. A nil chainID is resolved with eth_chainId.
func Connect(ctx context.Context, endpoint string, chainID *big.Int) (*Client, error) {
	log.Debugf("connecting to %s", endpoint)

	eth, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", endpoint, err)
	}

	remoteID, err := eth.ChainID(ctx)
	if err != nil {
		eth.Close()
		return nil, fmt.Errorf("failed to query chain id: %w", err)
	}

	c := &Client{
		endpoint: endpoint,
		eth:      eth,
		chainID:  chainID,
	}

	if c.chainID == nil {
		c.chainID = remoteID
	} else if c.chainID.Cmp(remoteID) != 0 {
		eth.Close()
		return nil, fmt.Errorf("chain id mismatch: configured %s, node reports %s", c.chainID, remoteID)
	}

	log.Debugf("connected to %s, chain id %s", endpoint, c.chainID)
	return c, nil
}

func (c *Client) Close() {
	if c.eth != nil {
		c.eth.Close()
		c.eth = nil
	}
}

func (c *Client) Backend() Backend {
	return c.eth
}

func (c *Client) ChainID() *big.Int {
	return new(big.Int).Set(c.chainID)
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

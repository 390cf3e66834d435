package deploy

import (
	"context"
	"fmt"
	"io"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/params"

	"github.com/GPTx-global/vrf-consumer/vrf/account"
	"github.com/GPTx-global/vrf-consumer/vrf/contract"
	"github.com/GPTx-global/vrf-consumer/vrf/log"
	"github.com/GPTx-global/vrf-consumer/vrf/types"
)

// Deployer submits a creation transaction and returns the mined consumer.
type Deployer interface {
	Deploy(ctx context.Context, opts *bind.TransactOpts, params ...interface{}) (*contract.Consumer, error)
}

type BalanceReader interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
}

type Procedure struct {
	deployer Deployer
	balances BalanceReader
	out      io.Writer
}

func New(deployer Deployer, balances BalanceReader, out io.Writer) *Procedure {
	return &Procedure{
		deployer: deployer,
		balances: balances,
		out:      out,
	}
}

// Run prints the deployer balance and deploys a consumer configured with p.
func (d *Procedure) Run(ctx context.Context, identity *account.Identity, opts *bind.TransactOpts, p types.ConsumerParams) (*contract.Consumer, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("invalid consumer params: %w", err)
	}

	balance, err := d.balances.BalanceAt(ctx, identity.Address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get balance of %s: %w", identity.Address.Hex(), err)
	}
	fmt.Fprintf(d.out, "%s balance: %s ETH\n", identity.Address.Hex(), FormatEther(balance))

	log.Debugf("deploying with %s", p)
	consumer, err := d.deployer.Deploy(ctx, opts, p.Args()...)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy consumer: %w", err)
	}

	fmt.Fprintf(d.out, "SubscriptionConsumer deployed at %s\n", consumer.Address().Hex())
	return consumer, nil
}

// FormatEther renders wei as a decimal ether amount without trailing zeros.
func FormatEther(wei *big.Int) string {
	if wei == nil {
		return "0"
	}

	ether := new(big.Float).SetPrec(256).SetInt(wei)
	ether.Quo(ether, new(big.Float).SetInt64(params.Ether))

	return ether.Text('f', -1)
}

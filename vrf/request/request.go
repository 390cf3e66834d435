package request

import (
	"context"
	"fmt"
	"io"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/GPTx-global/vrf-consumer/vrf/log"
	"github.com/GPTx-global/vrf-consumer/vrf/types"
)

const (
	CountdownSteps    = 5
	CountdownInterval = time.Second
)

// Consumer is the subset of a deployed consumer the request flow drives.
type Consumer interface {
	RequestRandomWords(ctx context.Context, opts *bind.TransactOpts, nativePayment bool) (*ethtypes.Receipt, error)
	LastRequestID(ctx context.Context) (*big.Int, error)
	Requests(ctx context.Context, requestID *big.Int) (*types.RequestStatus, error)
}

type Procedure struct {
	consumer Consumer
	out      io.Writer
	sleep    func(context.Context, time.Duration) error
}

func New(consumer Consumer, out io.Writer) *Procedure {
	return &Procedure{
		consumer: consumer,
		out:      out,
		sleep:    sleepContext,
	}
}

// WithSleep replaces the countdown sleeper. A sleeper returns early with an
// error when ctx is done.
func (p *Procedure) WithSleep(sleep func(context.Context, time.Duration) error) *Procedure {
	p.sleep = sleep
	return p
}

// Run requests randomness once, waits out the fixed countdown and reads the
// record back a single time. An unfulfilled record is not an error.
func (p *Procedure) Run(ctx context.Context, opts *bind.TransactOpts, nativePayment bool) (*big.Int, *types.RequestStatus, error) {
	receipt, err := p.consumer.RequestRandomWords(ctx, opts, nativePayment)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to request random words: %w", err)
	}
	log.Debugf("request mined in block %s, gas used %d", receipt.BlockNumber, receipt.GasUsed)

	requestID, err := p.consumer.LastRequestID(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read request id: %w", err)
	}
	fmt.Fprintf(p.out, "Request ID: %s\n", requestID)

	if err := p.countdown(ctx); err != nil {
		return requestID, nil, err
	}

	status, err := p.Status(ctx, requestID)
	if err != nil {
		return requestID, nil, err
	}

	return requestID, status, nil
}

// Status reads and prints the record of requestID.
func (p *Procedure) Status(ctx context.Context, requestID *big.Int) (*types.RequestStatus, error) {
	status, err := p.consumer.Requests(ctx, requestID)
	if err != nil {
		return nil, fmt.Errorf("failed to read request %s: %w", requestID, err)
	}

	for _, line := range status.Lines() {
		fmt.Fprintln(p.out, line)
	}

	return status, nil
}

func (p *Procedure) countdown(ctx context.Context) error {
	for i := 0; i < CountdownSteps; i++ {
		fmt.Fprintf(p.out, "\t Waiting for %d seconds...\n", CountdownSteps-i)
		if err := p.sleep(ctx, CountdownInterval); err != nil {
			return fmt.Errorf("countdown interrupted: %w", err)
		}
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package types

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

const (
	MethodRequestRandomWords = "request_random_words"
	MethodLastRequestID      = "last_request_id"
	MethodLatestRequestID    = "latest_request_id"
	MethodRequests           = "requests"
)

// ConsumerParams are the constructor arguments of the subscription consumer.
type ConsumerParams struct {
	Coordinator          common.Address
	SubscriptionID       *big.Int
	KeyHash              common.Hash
	CallbackGasLimit     uint32
	RequestConfirmations uint16
	NumWords             uint32
}

// Args returns the constructor arguments in declaration order, typed the way
// the ABI encoder expects them.
func (p ConsumerParams) Args() []interface{} {
	return []interface{}{
		p.Coordinator,
		p.SubscriptionID,
		[32]byte(p.KeyHash),
		p.CallbackGasLimit,
		p.RequestConfirmations,
		p.NumWords,
	}
}

func (p ConsumerParams) Validate() error {
	if p.Coordinator == (common.Address{}) {
		return fmt.Errorf("coordinator address is required")
	}
	if p.SubscriptionID == nil || p.SubscriptionID.Sign() <= 0 {
		return fmt.Errorf("subscription id must be positive")
	}
	if p.SubscriptionID.BitLen() > 256 {
		return fmt.Errorf("subscription id overflows uint256")
	}
	if p.KeyHash == (common.Hash{}) {
		return fmt.Errorf("key hash is required")
	}
	if p.CallbackGasLimit == 0 {
		return fmt.Errorf("callback gas limit is required")
	}
	if p.NumWords == 0 {
		return fmt.Errorf("num words is required")
	}

	return nil
}

func (p ConsumerParams) String() string {
	return fmt.Sprintf("coordinator=%s subscription=%s keyHash=%s gasLimit=%d confirmations=%d words=%d",
		p.Coordinator.Hex(), p.SubscriptionID, p.KeyHash.Hex(), p.CallbackGasLimit, p.RequestConfirmations, p.NumWords)
}

// ParseUint256 accepts a decimal or 0x-prefixed unsigned 256-bit integer,
// the encoding of subscription and request ids.
func ParseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}

	v, ok := new(big.Int).SetString(s, 0)
	if !ok {
		return nil, fmt.Errorf("invalid integer: %q", s)
	}
	if v.Sign() < 0 || v.BitLen() > 256 {
		return nil, fmt.Errorf("out of uint256 range: %s", s)
	}

	return v, nil
}

func ParseKeyHash(s string) (common.Hash, error) {
	b, err := hexutil.Decode(strings.TrimSpace(s))
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid key hash %q: %w", s, err)
	}
	if len(b) != common.HashLength {
		return common.Hash{}, fmt.Errorf("key hash must be %d bytes, got %d", common.HashLength, len(b))
	}

	return common.BytesToHash(b), nil
}

func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address: %q", s)
	}

	return common.HexToAddress(s), nil
}

// RequestStatus is the on-chain record of a randomness request.
type RequestStatus struct {
	Fulfilled   bool
	RandomWords []*big.Int
	Exists      bool
}

// Lines renders the record in the fixed order fulfilled, randomWords, exists.
func (r RequestStatus) Lines() []string {
	return []string{
		fmt.Sprintf("Request status: %t", r.Fulfilled),
		fmt.Sprintf("Request random words: [%s]", joinWords(r.RandomWords)),
		fmt.Sprintf("Request exists: %t", r.Exists),
	}
}

func joinWords(words []*big.Int) string {
	parts := make([]string, len(words))
	for i, w := range words {
		parts[i] = w.String()
	}

	return strings.Join(parts, ", ")
}

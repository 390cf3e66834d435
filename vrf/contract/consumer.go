package contract

import (
	"context"
	"math/big"
	"reflect"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"

	"github.com/GPTx-global/vrf-consumer/vrf/log"
	"github.com/GPTx-global/vrf-consumer/vrf/types"
)

// Backend is the node access a bound consumer needs.
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
}

var ErrReverted = errors.New("transaction reverted")

// Methods names the consumer entry points in the contract ABI.
type Methods struct {
	Request   string
	RequestID string
	Status    string
}

func DefaultMethods() Methods {
	return Methods{
		Request:   types.MethodRequestRandomWords,
		RequestID: types.MethodLastRequestID,
		Status:    types.MethodRequests,
	}
}

// Resolve checks every method exists in parsed. The request id getter falls
// back to the other last/latest spelling when the configured one is absent.
func (m Methods) Resolve(parsed abi.ABI) (Methods, error) {
	if _, ok := parsed.Methods[m.Request]; !ok {
		return m, errors.Errorf("abi has no method %q", m.Request)
	}
	if _, ok := parsed.Methods[m.Status]; !ok {
		return m, errors.Errorf("abi has no method %q", m.Status)
	}

	if _, ok := parsed.Methods[m.RequestID]; !ok {
		alt := alternateRequestID(m.RequestID)
		if _, ok := parsed.Methods[alt]; alt == "" || !ok {
			return m, errors.Errorf("abi has no method %q", m.RequestID)
		}
		log.Debugf("abi has no %s, using %s", m.RequestID, alt)
		m.RequestID = alt
	}

	return m, nil
}

func alternateRequestID(name string) string {
	switch {
	case strings.Contains(name, "latest"):
		return strings.Replace(name, "latest", "last", 1)
	case strings.Contains(name, "Latest"):
		return strings.Replace(name, "Latest", "Last", 1)
	case strings.Contains(name, "last"):
		return strings.Replace(name, "last", "latest", 1)
	case strings.Contains(name, "Last"):
		return strings.Replace(name, "Last", "Latest", 1)
	}

	return ""
}

// Consumer is a handle on a deployed subscription consumer.
type Consumer struct {
	address  common.Address
	abi      abi.ABI
	methods  Methods
	backend  Backend
	contract *bind.BoundContract
	deployTx common.Hash
}

func NewConsumer(address common.Address, parsed abi.ABI, methods Methods, backend Backend) (*Consumer, error) {
	resolved, err := methods.Resolve(parsed)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		address:  address,
		abi:      parsed,
		methods:  resolved,
		backend:  backend,
		contract: bind.NewBoundContract(address, parsed, backend, backend, backend),
	}, nil
}

func (c *Consumer) Address() common.Address {
	return c.address
}

// DeployTx is the creation transaction when the consumer came from a Factory.
func (c *Consumer) DeployTx() common.Hash {
	return c.deployTx
}

func (c *Consumer) Methods() Methods {
	return c.methods
}

// RequestRandomWords submits the request transaction and waits for it to be mined.
func (c *Consumer) RequestRandomWords(ctx context.Context, opts *bind.TransactOpts, nativePayment bool) (*ethtypes.Receipt, error) {
	tx, err := c.contract.Transact(opts, c.methods.Request, nativePayment)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to send %s", c.methods.Request)
	}
	log.Debugf("%s sent: %s", c.methods.Request, tx.Hash().Hex())

	receipt, err := bind.WaitMined(ctx, c.backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed waiting for %s", tx.Hash().Hex())
	}
	log.Debugf("receipt: %s", spew.Sdump(receipt))

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, errors.Wrapf(ErrReverted, "%s in block %s", tx.Hash().Hex(), receipt.BlockNumber)
	}

	return receipt, nil
}

func (c *Consumer) LastRequestID(ctx context.Context) (*big.Int, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, c.methods.RequestID); err != nil {
		return nil, errors.Wrapf(err, "failed to call %s", c.methods.RequestID)
	}
	if len(out) != 1 {
		return nil, errors.Errorf("%s returned %d values", c.methods.RequestID, len(out))
	}

	id, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("%s returned %T, want uint256", c.methods.RequestID, out[0])
	}

	return id, nil
}

func (c *Consumer) Requests(ctx context.Context, requestID *big.Int) (*types.RequestStatus, error) {
	var out []interface{}
	if err := c.contract.Call(&bind.CallOpts{Context: ctx}, &out, c.methods.Status, requestID); err != nil {
		return nil, errors.Wrapf(err, "failed to call %s(%s)", c.methods.Status, requestID)
	}
	log.Debugf("%s(%s): %s", c.methods.Status, requestID, spew.Sdump(out))

	status, err := DecodeStatus(c.abi.Methods[c.methods.Status], out)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode %s", c.methods.Status)
	}

	return status, nil
}

// DecodeStatus accepts either a single tuple output or flat outputs. Flat
// outputs are matched by name; unnamed ones are taken positionally as
// (fulfilled, randomWords, exists). A getter may omit randomWords.
func DecodeStatus(method abi.Method, out []interface{}) (*types.RequestStatus, error) {
	fields := make(map[string]interface{})

	switch {
	case len(out) == 1 && reflect.ValueOf(out[0]).Kind() == reflect.Struct:
		v := reflect.ValueOf(out[0])
		for i := 0; i < v.NumField(); i++ {
			fields[normalize(v.Type().Field(i).Name)] = v.Field(i).Interface()
		}

	case len(out) == len(method.Outputs) && hasNames(method.Outputs):
		for i, arg := range method.Outputs {
			fields[normalize(arg.Name)] = out[i]
		}

	case len(out) == 3:
		fields["fulfilled"] = out[0]
		fields["randomwords"] = out[1]
		fields["exists"] = out[2]

	default:
		return nil, errors.Errorf("unexpected output shape: %d values", len(out))
	}

	status := new(types.RequestStatus)
	var ok bool

	if status.Fulfilled, ok = fields["fulfilled"].(bool); !ok {
		return nil, errors.Errorf("fulfilled missing or not bool: %T", fields["fulfilled"])
	}
	if status.Exists, ok = fields["exists"].(bool); !ok {
		return nil, errors.Errorf("exists missing or not bool: %T", fields["exists"])
	}
	if words, present := fields["randomwords"]; present {
		if status.RandomWords, ok = words.([]*big.Int); !ok {
			return nil, errors.Errorf("randomWords is %T, want uint256[]", words)
		}
	}
	if status.RandomWords == nil {
		status.RandomWords = []*big.Int{}
	}

	return status, nil
}

func hasNames(args abi.Arguments) bool {
	for _, arg := range args {
		if arg.Name == "" {
			return false
		}
	}

	return len(args) > 0
}

func normalize(name string) string {
	name = strings.TrimPrefix(name, "s_")
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

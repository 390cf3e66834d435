package contract

import (
	"context"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/pkg/errors"

	"github.com/GPTx-global/vrf-consumer/vrf/log"
)

// Factory deploys new consumers from a compiled artifact.
type Factory struct {
	artifact *Artifact
	methods  Methods
	backend  Backend
}

func NewFactory(artifact *Artifact, methods Methods, backend Backend) (*Factory, error) {
	if err := artifact.Deployable(); err != nil {
		return nil, err
	}

	resolved, err := methods.Resolve(artifact.ABI)
	if err != nil {
		return nil, errors.Wrapf(err, "artifact %s", artifact.Name)
	}

	return &Factory{
		artifact: artifact,
		methods:  resolved,
		backend:  backend,
	}, nil
}

func (f *Factory) Name() string {
	return f.artifact.Name
}

// Deploy sends the creation transaction and blocks until code is present at
// the new address.
func (f *Factory) Deploy(ctx context.Context, opts *bind.TransactOpts, params ...interface{}) (*Consumer, error) {
	if want := len(f.artifact.ABI.Constructor.Inputs); want != len(params) {
		return nil, errors.Errorf("constructor of %s takes %d arguments, got %d", f.artifact.Name, want, len(params))
	}

	address, tx, _, err := bind.DeployContract(opts, f.artifact.ABI, f.artifact.Bytecode, f.backend, params...)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to deploy %s", f.artifact.Name)
	}
	log.Infof("deploying %s at %s, tx %s", f.artifact.Name, address.Hex(), tx.Hash().Hex())

	deployed, err := bind.WaitDeployed(ctx, f.backend, tx)
	if err != nil {
		return nil, errors.Wrapf(err, "deployment %s failed", tx.Hash().Hex())
	}
	if deployed != address {
		return nil, errors.Errorf("deployed at %s, expected %s", deployed.Hex(), address.Hex())
	}

	consumer, err := NewConsumer(address, f.artifact.ABI, f.methods, f.backend)
	if err != nil {
		return nil, err
	}
	consumer.deployTx = tx.Hash()

	return consumer, nil
}

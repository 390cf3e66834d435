package request_test

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	ethtypes "github.com/ethereum/go-ethereum/core/types"

	"github.com/GPTx-global/vrf-consumer/vrf/request"
	"github.com/GPTx-global/vrf-consumer/vrf/types"

	ginkgo "github.com/onsi/ginkgo/v2"
	gomega "github.com/onsi/gomega"
)

func TestRequest(t *testing.T) {
	gomega.RegisterFailHandler(ginkgo.Fail)
	ginkgo.RunSpecs(t, "request procedure test suite")
}

// fakeConsumer records every call in the order it was made.
type fakeConsumer struct {
	calls []string

	nativePayment []bool
	requestedID   *big.Int

	requestErr error
	idErr      error
	statusErr  error

	id     *big.Int
	status *types.RequestStatus

	onRequest func()
}

func (f *fakeConsumer) RequestRandomWords(_ context.Context, _ *bind.TransactOpts, nativePayment bool) (*ethtypes.Receipt, error) {
	f.calls = append(f.calls, "request")
	f.nativePayment = append(f.nativePayment, nativePayment)
	if f.onRequest != nil {
		f.onRequest()
	}
	if f.requestErr != nil {
		return nil, f.requestErr
	}
	return &ethtypes.Receipt{Status: ethtypes.ReceiptStatusSuccessful, BlockNumber: big.NewInt(10), GasUsed: 21000}, nil
}

func (f *fakeConsumer) LastRequestID(context.Context) (*big.Int, error) {
	f.calls = append(f.calls, "id")
	if f.idErr != nil {
		return nil, f.idErr
	}
	return f.id, nil
}

func (f *fakeConsumer) Requests(_ context.Context, requestID *big.Int) (*types.RequestStatus, error) {
	f.calls = append(f.calls, "status")
	f.requestedID = requestID
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	return f.status, nil
}

var _ = ginkgo.Describe("Procedure", func() {
	var (
		consumer  *fakeConsumer
		out       *bytes.Buffer
		sleeps    []time.Duration
		proc      *request.Procedure
		requestID *big.Int
	)

	ginkgo.BeforeEach(func() {
		requestID, _ = new(big.Int).SetString("81092634509128364509812374509812734509812734", 10)
		consumer = &fakeConsumer{
			id: requestID,
			status: &types.RequestStatus{
				Fulfilled:   true,
				RandomWords: []*big.Int{big.NewInt(42)},
				Exists:      true,
			},
		}
		out = new(bytes.Buffer)
		sleeps = nil
		proc = request.New(consumer, out).WithSleep(func(_ context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			// the countdown line is printed before each sleep
			gomega.Expect(strings.Count(out.String(), "Waiting for")).To(gomega.Equal(len(sleeps)))
			return nil
		})
	})

	ginkgo.Describe("Run", func() {
		ginkgo.It("requests once with native payment disabled", func() {
			_, _, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(consumer.nativePayment).To(gomega.Equal([]bool{false}))
		})

		ginkgo.It("reads the status of the id returned by the consumer", func() {
			id, status, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(id).To(gomega.Equal(requestID))
			gomega.Expect(consumer.requestedID).To(gomega.Equal(requestID))
			gomega.Expect(status).To(gomega.Equal(consumer.status))
			gomega.Expect(consumer.calls).To(gomega.Equal([]string{"request", "id", "status"}))
		})

		ginkgo.It("waits five one-second steps between the request and the read", func() {
			_, _, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(sleeps).To(gomega.HaveLen(request.CountdownSteps))
			for _, d := range sleeps {
				gomega.Expect(d).To(gomega.Equal(time.Second))
			}
		})

		ginkgo.It("prints the id, the countdown and the record in order", func() {
			_, _, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.Equal(
				"Request ID: 81092634509128364509812374509812734509812734\n" +
					"\t Waiting for 5 seconds...\n" +
					"\t Waiting for 4 seconds...\n" +
					"\t Waiting for 3 seconds...\n" +
					"\t Waiting for 2 seconds...\n" +
					"\t Waiting for 1 seconds...\n" +
					"Request status: true\n" +
					"Request random words: [42]\n" +
					"Request exists: true\n",
			))
		})

		ginkgo.It("reports an unfulfilled request without failing", func() {
			consumer.status = &types.RequestStatus{Fulfilled: false, RandomWords: []*big.Int{}, Exists: true}

			_, status, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(status.Fulfilled).To(gomega.BeFalse())
			gomega.Expect(out.String()).To(gomega.HaveSuffix(
				"Request status: false\nRequest random words: []\nRequest exists: true\n",
			))
			gomega.Expect(consumer.calls).To(gomega.Equal([]string{"request", "id", "status"}))
		})

		ginkgo.It("stops before reading the id when the request fails", func() {
			consumer.requestErr = errors.New("execution reverted")

			_, _, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).To(gomega.MatchError(consumer.requestErr))
			gomega.Expect(consumer.calls).To(gomega.Equal([]string{"request"}))
			gomega.Expect(sleeps).To(gomega.BeEmpty())
			gomega.Expect(out.String()).To(gomega.BeEmpty())
		})

		ginkgo.It("stops before the countdown when the id cannot be read", func() {
			consumer.idErr = errors.New("call failed")

			_, _, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).To(gomega.MatchError(consumer.idErr))
			gomega.Expect(sleeps).To(gomega.BeEmpty())
		})

		ginkgo.It("prints every random word", func() {
			consumer.status.RandomWords = []*big.Int{big.NewInt(1), big.NewInt(2)}

			_, _, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(out.String()).To(gomega.ContainSubstring("Request random words: [1, 2]\n"))
		})

		ginkgo.It("stops the countdown when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			proc = request.New(consumer, out)
			consumer.onRequest = cancel

			start := time.Now()
			id, status, err := proc.Run(ctx, &bind.TransactOpts{}, false)
			gomega.Expect(err).To(gomega.MatchError(context.Canceled))
			gomega.Expect(time.Since(start)).To(gomega.BeNumerically("<", request.CountdownInterval))
			gomega.Expect(id).To(gomega.Equal(requestID))
			gomega.Expect(status).To(gomega.BeNil())
			gomega.Expect(consumer.calls).To(gomega.Equal([]string{"request", "id"}))
			gomega.Expect(strings.Count(out.String(), "Waiting for")).To(gomega.Equal(1))
		})

		ginkgo.It("returns the id when the record cannot be read", func() {
			consumer.statusErr = errors.New("call failed")

			id, status, err := proc.Run(context.Background(), &bind.TransactOpts{}, false)
			gomega.Expect(err).To(gomega.MatchError(consumer.statusErr))
			gomega.Expect(id).To(gomega.Equal(requestID))
			gomega.Expect(status).To(gomega.BeNil())
			gomega.Expect(sleeps).To(gomega.HaveLen(request.CountdownSteps))
		})
	})

	ginkgo.Describe("Status", func() {
		ginkgo.It("prints the record without requesting", func() {
			status, err := proc.Status(context.Background(), big.NewInt(7))
			gomega.Expect(err).NotTo(gomega.HaveOccurred())
			gomega.Expect(status.Exists).To(gomega.BeTrue())
			gomega.Expect(consumer.requestedID).To(gomega.Equal(big.NewInt(7)))
			gomega.Expect(consumer.calls).To(gomega.Equal([]string{"status"}))
			gomega.Expect(sleeps).To(gomega.BeEmpty())
			gomega.Expect(out.String()).To(gomega.Equal(
				"Request status: true\nRequest random words: [42]\nRequest exists: true\n",
			))
		})
	})
})

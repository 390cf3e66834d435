// Package rpctest serves canned Ethereum JSON-RPC responses over HTTP.
package rpctest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/tidwall/gjson"
)

// Handler answers one method call. params is the JSON params array.
type Handler func(params gjson.Result) (interface{}, error)

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	handlers map[string]Handler
	calls    map[string]int
	total    int
	status   int
}

// NewServer starts a stub that answers eth_chainId with chainID. It is
// closed when the test ends.
func NewServer(t testing.TB, chainID uint64) *Server {
	t.Helper()

	s := &Server{
		handlers: make(map[string]Handler),
		calls:    make(map[string]int),
	}
	s.Result("eth_chainId", hexutil.EncodeUint64(chainID))
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)

	return s
}

func (s *Server) Handle(method string, h Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handlers[method] = h
}

// Result makes method always return result.
func (s *Server) Result(method string, result interface{}) {
	s.Handle(method, func(gjson.Result) (interface{}, error) {
		return result, nil
	})
}

// FailWith makes every request fail with an HTTP status; 0 restores normal service.
func (s *Server) FailWith(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = status
}

func (s *Server) Calls(method string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[method]
}

// Total counts every HTTP request, failed ones included.
func (s *Server) Total() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.total
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := gjson.ParseBytes(body)
	method := req.Get("method").String()

	s.mu.Lock()
	s.total++
	status := s.status
	if status == 0 {
		s.calls[method]++
	}
	h, ok := s.handlers[method]
	s.mu.Unlock()

	if status != 0 {
		http.Error(w, "busy", status)
		return
	}

	resp := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      json.RawMessage(req.Get("id").Raw),
	}
	if !ok {
		resp["error"] = map[string]interface{}{"code": -32601, "message": "method not found: " + method}
	} else if result, err := h(req.Get("params")); err != nil {
		resp["error"] = map[string]interface{}{"code": -32000, "message": err.Error()}
	} else {
		resp["result"] = result
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

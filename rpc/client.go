// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/core"
)

const vsrAccountSize = 2728

// retry/backoff per the error-handling design: base 500ms, cap 8s, 5 attempts.
const (
	retryAttempts  = 5
	retryBaseDelay = 500 * time.Millisecond
	retryCapDelay  = 8 * time.Second
)

// Client is a minimal JSON-RPC 2.0 client for the Solana-style HTTP RPC
// surface this system depends on: getAccountInfo, getProgramAccounts,
// getMultipleAccounts. It never signs or submits transactions.
type Client struct {
	endpoint string
	http     *http.Client
}

// DialContext constructs a Client bound to a single JSON-RPC HTTP endpoint.
func DialContext(ctx context.Context, rawURL string) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, core.NewConfigError("rpc endpoint", fmt.Errorf("empty URL"))
	}
	return &Client{
		endpoint: rawURL,
		http:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type jsonrpcRequest struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      int         `json:"id"`
	Method  string      `json:"method"`
	Params  interface{} `json:"params,omitempty"`
}

type jsonrpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *jsonrpcError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

type jsonrpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *jsonrpcError   `json:"error"`
}

// CallContext performs one JSON-RPC call and decodes the result into out.
// Network failures are wrapped as a retryable TransportError; 4xx auth-style
// HTTP statuses are wrapped fatal. CallContext itself does not retry -- that
// is callWithRetry's job -- so it can also be used directly by callers that
// want to implement their own policy.
func (c *Client) CallContext(ctx context.Context, out interface{}, method string, params interface{}) error {
	body, err := json.Marshal(jsonrpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return core.NewFatalTransportError(fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return core.NewFatalTransportError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return core.NewRetryableTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return core.NewFatalTransportError(fmt.Errorf("rpc auth failed with status %s", resp.Status))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return core.NewRetryableTransportError(fmt.Errorf("rpc call failed with status %s", resp.Status))
	}

	var rpcResp jsonrpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return core.NewRetryableTransportError(fmt.Errorf("decode response: %w", err))
	}
	if rpcResp.Error != nil {
		return core.NewFatalTransportError(rpcResp.Error)
	}
	if out != nil && rpcResp.Result != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return core.NewFatalTransportError(fmt.Errorf("decode result: %w", err))
		}
	}
	return nil
}

// callWithRetry wraps CallContext with the bounded exponential backoff the
// error-handling design requires: base 500ms, doubling, capped at 8s, at most
// retryAttempts tries. A fatal TransportError aborts immediately.
func (c *Client) callWithRetry(ctx context.Context, out interface{}, method string, params interface{}) error {
	var lastErr error
	delay := retryBaseDelay
	for attempt := 0; attempt < retryAttempts; attempt++ {
		lastErr = c.CallContext(ctx, out, method, params)
		if lastErr == nil {
			return nil
		}
		if !core.IsRetryable(lastErr) {
			return lastErr
		}
		if attempt == retryAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return core.NewRetryableTransportError(ctx.Err())
		case <-time.After(delay):
		}
		delay = time.Duration(math.Min(float64(delay*2), float64(retryCapDelay)))
	}
	return lastErr
}

// GetAccountInfo fetches a single account by pubkey. A nil AccountInfo with a
// nil error means the account does not exist.
func (c *Client) GetAccountInfo(ctx context.Context, pubkey common.Address) (*AccountInfo, uint64, error) {
	cfg := accountInfoCfg{Commitment: CommitmentConfirmed, Encoding: EncodingBase64}
	var res accountInfoResult
	if err := c.callWithRetry(ctx, &res, "getAccountInfo", []interface{}{pubkey.Base58(), cfg}); err != nil {
		return nil, 0, err
	}
	return res.Value, res.Context.Slot, nil
}

// GetMultipleAccounts batches account lookups in one round trip.
func (c *Client) GetMultipleAccounts(ctx context.Context, pubkeys []common.Address) ([]*AccountInfo, uint64, error) {
	keys := make([]string, len(pubkeys))
	for i, pk := range pubkeys {
		keys[i] = pk.Base58()
	}
	cfg := accountInfoCfg{Commitment: CommitmentConfirmed, Encoding: EncodingBase64}
	var res multipleAccountsResult
	if err := c.callWithRetry(ctx, &res, "getMultipleAccounts", []interface{}{keys, cfg}); err != nil {
		return nil, 0, err
	}
	return res.Value, res.Context.Slot, nil
}

// GetProgramAccounts returns every account owned by programID matching the
// given data_size/memcmp filters. Results are complete in a single call; it
// never returns a partial set silently -- any transport failure is reported
// to the caller rather than swallowed.
func (c *Client) GetProgramAccounts(ctx context.Context, programID common.Address, dataSize int, memcmps []Memcmp) ([]ProgramAccount, error) {
	var filters []interface{}
	if dataSize > 0 {
		filters = append(filters, filterDataSize{DataSize: dataSize})
	}
	for _, m := range memcmps {
		filters = append(filters, filterMemcmp{Memcmp: m})
	}
	cfg := programAccountsCfg{Commitment: CommitmentConfirmed, Encoding: EncodingBase64, Filters: filters}

	var res []ProgramAccount
	if err := c.callWithRetry(ctx, &res, "getProgramAccounts", []interface{}{programID.Base58(), cfg}); err != nil {
		return nil, err
	}
	return res, nil
}

// SnapshotVSR performs the one-shot getProgramAccounts call filtered to
// data_size == 2728, the fixed size of a VSR Voter account. The result is
// meant to be cached by the caller for the lifetime of a run: every wallet
// scored from the same snapshot observes identical chain state.
func (c *Client) SnapshotVSR(ctx context.Context, vsrProgramID common.Address) ([]ProgramAccount, error) {
	accounts, err := c.GetProgramAccounts(ctx, vsrProgramID, vsrAccountSize, nil)
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

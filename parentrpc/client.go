// Copyright (c) 2014-2017 The btcsuite developers
// Copyright (c) 2024 The sdk developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package parentrpc talks to the parent chain's own RPC server to learn
// about new one-way-peg deposits (spec.md §6.3), and decodes the raw
// transactions it returns (parentrpc never validates parent-chain
// signatures, only extracts the fields the linkage algorithm in
// ingestor needs). It is the only component in this module that makes a
// network call.
package parentrpc

import (
	"bytes"
	"crypto/tls"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nchashch/sdk/chainutil"
	"github.com/nchashch/sdk/ingestor"
)

// ConnConfig describes the connection settings for a parent-chain RPC
// server, mirroring the teacher's rpcclient.ConnConfig shape (Host,
// User, Pass, HTTP POST mode, TLS toggle) pared down to what a
// deposit-polling client needs.
type ConnConfig struct {
	// Host is the host:port of the RPC server.
	Host string
	// User is the username to authenticate with.
	User string
	// Pass is the password to authenticate with.
	Pass string
	// DisableTLS disables TLS, matching a local regtest/signet parent
	// node that does not provide it by default.
	DisableTLS bool
}

// Client is a JSON-RPC 1.0 HTTP POST client for a single parent-chain
// node, enough to poll listsidechaindeposits (spec.md §6.3).
type Client struct {
	cfg        ConnConfig
	httpClient *http.Client
	sidechain  uint32
}

// New creates a Client for sidechain slot sidechainNumber against cfg.
func New(cfg ConnConfig, sidechainNumber uint32) *Client {
	transport := &http.Transport{}
	if cfg.DisableTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Transport: transport},
		sidechain:  sidechainNumber,
	}
}

type rpcRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      string        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *rpcError) Error() string {
	return fmt.Sprintf("parentrpc: server error %d: %s", e.Code, e.Message)
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
	ID     string          `json:"id"`
}

// call issues a single JSON-RPC 1.0 request over HTTP POST, the only
// transport mode the parent chain's RPC server supports (matching the
// teacher's rpcclient.ConnConfig.HTTPPostMode note).
func (c *Client) call(method string, params []interface{}) (json.RawMessage, error) {
	reqBody, err := json.Marshal(rpcRequest{
		JSONRPC: "1.0",
		ID:      "sdk",
		Method:  method,
		Params:  params,
	})
	if err != nil {
		return nil, err
	}

	scheme := "https"
	if c.cfg.DisableTLS {
		scheme = "http"
	}
	url := fmt.Sprintf("%s://%s/", scheme, c.cfg.Host)

	httpReq, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(c.cfg.User, c.cfg.Pass)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	var resp rpcResponse
	if err := json.NewDecoder(httpResp.Body).Decode(&resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		return nil, resp.Error
	}
	return resp.Result, nil
}

// jsonDeposit is listsidechaindeposits's per-entry result shape
// (original_source/src/client.rs JsonDeposit; spec.md §6.3).
type jsonDeposit struct {
	HashBlock  string `json:"hashblock"`
	NBurnIndex int    `json:"nburnindex"`
	NSidechain int    `json:"nsidechain"`
	NTx        int    `json:"ntx"`
	StrDest    string `json:"strdest"`
	TxHex      string `json:"txhex"`
}

// ListSideChainDeposits polls the parent chain for deposits targeting
// this client's sidechain slot since last (exclusive), returning them as
// ingestor.DepositRecords in the order the server reported them.
func (c *Client) ListSideChainDeposits(last *ingestor.Deposit) ([]ingestor.DepositRecord, error) {
	params := []interface{}{c.sidechain}
	if last != nil {
		params = append(params, last.Outpoint.Txid.String(), last.Outpoint.Vout)
	}

	raw, err := c.call("listsidechaindeposits", params)
	if err != nil {
		return nil, err
	}

	var deposits []jsonDeposit
	if err := json.Unmarshal(raw, &deposits); err != nil {
		return nil, err
	}

	records := make([]ingestor.DepositRecord, 0, len(deposits))
	for _, d := range deposits {
		txBytes, err := hex.DecodeString(d.TxHex)
		if err != nil {
			return nil, fmt.Errorf("parentrpc: decoding txhex: %w", err)
		}
		tx, err := decodeParentTx(txBytes)
		if err != nil {
			return nil, fmt.Errorf("parentrpc: decoding parent transaction: %w", err)
		}
		destination, err := chainutil.ParseDepositString(d.StrDest, int(c.sidechain))
		if err != nil {
			return nil, fmt.Errorf("parentrpc: parsing destination %q: %w", d.StrDest, err)
		}
		records = append(records, ingestor.DepositRecord{
			Tx:          tx,
			BurnIndex:   uint32(d.NBurnIndex),
			Destination: destination,
		})
		log.Debugf("observed deposit %s:%d -> %s", tx.Txid, d.NBurnIndex, destination)
	}
	return records, nil
}

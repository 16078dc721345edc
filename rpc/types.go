// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package rpc

import "github.com/cielu/govpower/common"

// Commitment is the confirmation level requested on every call. govpower
// never requests anything weaker than confirmed (spec: "confirmed or
// stronger").
type Commitment string

const (
	CommitmentConfirmed Commitment = "confirmed"
	CommitmentFinalized Commitment = "finalized"
)

// Encoding is the account-data encoding requested from the node.
type Encoding string

const (
	EncodingBase58 Encoding = "base58"
	EncodingBase64 Encoding = "base64"
)

// Memcmp is a single offset/bytes match filter for getProgramAccounts.
type Memcmp struct {
	Offset int    `json:"offset"`
	Bytes  string `json:"bytes"`
}

type filterDataSize struct {
	DataSize int `json:"dataSize"`
}

type filterMemcmp struct {
	Memcmp Memcmp `json:"memcmp"`
}

// accountInfoCfg is the shared "config object" every getAccountInfo-family
// RPC call takes as its trailing positional argument.
type accountInfoCfg struct {
	Commitment Commitment `json:"commitment,omitempty"`
	Encoding   Encoding   `json:"encoding,omitempty"`
}

// programAccountsCfg additionally carries the filter list.
type programAccountsCfg struct {
	Commitment Commitment    `json:"commitment,omitempty"`
	Encoding   Encoding      `json:"encoding,omitempty"`
	Filters    []interface{} `json:"filters,omitempty"`
}

// AccountInfo is the decoded shape of a single account as returned by
// getAccountInfo / within getProgramAccounts results.
type AccountInfo struct {
	Data       common.SolData `json:"data"`
	Owner      common.Address `json:"owner"`
	Lamports   uint64         `json:"lamports"`
	RentEpoch  uint64         `json:"rentEpoch"`
	Executable bool           `json:"executable"`
	Space      uint64         `json:"space"`
}

// ContextSlot mirrors the {context: {slot}, value: ...} envelope every
// Solana JSON-RPC response wraps its payload in.
type ContextSlot struct {
	Slot uint64 `json:"slot"`
}

type accountInfoResult struct {
	Context ContextSlot  `json:"context"`
	Value   *AccountInfo `json:"value"`
}

// ProgramAccount pairs a pubkey with its account data, the shape
// getProgramAccounts returns one of per match.
type ProgramAccount struct {
	Pubkey  common.Address `json:"pubkey"`
	Account AccountInfo    `json:"account"`
}

type multipleAccountsResult struct {
	Context ContextSlot    `json:"context"`
	Value   []*AccountInfo `json:"value"`
}

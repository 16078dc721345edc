// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/core"
)

// Config is the full set of external inputs the core needs, loaded from
// environment variables (the spec's §6 external interface) with an
// optional wallet alias file.
type Config struct {
	RPCURL                string
	RealmPubkey           common.Address
	GoverningTokenMint    common.Address
	VSRProgramID          common.Address
	GovernanceProgramID   common.Address
	WalletAliasesFile     string
}

// Load reads the six documented environment variables. A missing required
// value or an unparseable pubkey is a fatal ConfigError.
func Load(getenv func(string) string) (*Config, error) {
	rpcURL := strings.TrimSpace(getenv("HELIUS_RPC_URL"))
	if rpcURL == "" {
		return nil, core.NewConfigError("HELIUS_RPC_URL", fmt.Errorf("must be set"))
	}

	realm, err := parseRequiredPubkey(getenv, "REALM_PUBKEY")
	if err != nil {
		return nil, err
	}
	mint, err := parseRequiredPubkey(getenv, "GOVERNING_TOKEN_MINT_PUBKEY")
	if err != nil {
		return nil, err
	}
	vsrProgram, err := parseRequiredPubkey(getenv, "VSR_PROGRAM_PUBKEY")
	if err != nil {
		return nil, err
	}
	governanceProgram, err := parseRequiredPubkey(getenv, "GOVERNANCE_PROGRAM_PUBKEY")
	if err != nil {
		return nil, err
	}

	return &Config{
		RPCURL:              rpcURL,
		RealmPubkey:         realm,
		GoverningTokenMint:  mint,
		VSRProgramID:        vsrProgram,
		GovernanceProgramID: governanceProgram,
		WalletAliasesFile:   strings.TrimSpace(getenv("WALLET_ALIASES_FILE")),
	}, nil
}

func parseRequiredPubkey(getenv func(string) string, name string) (common.Address, error) {
	raw := strings.TrimSpace(getenv(name))
	if raw == "" {
		return common.Address{}, core.NewConfigError(name, fmt.Errorf("must be set"))
	}
	addr := common.Base58ToAddress(raw)
	if addr == (common.Address{}) {
		return common.Address{}, core.NewConfigError(name, fmt.Errorf("unparseable base58 pubkey: %q", raw))
	}
	return addr, nil
}

// LoadWalletAliases parses a wallet_aliases.json file of the shape
// { main_wallet_b58: [alias_b58, ...] }. Absent path means no aliases. A
// wallet listed as its own alias, or an alias claimed by two different main
// wallets, is a ConfigError at load time rather than a silent
// first-match-wins ambiguity in the resolver.
func LoadWalletAliases(path string) (map[common.Address][]common.Address, error) {
	result := make(map[common.Address][]common.Address)
	if strings.TrimSpace(path) == "" {
		return result, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigError("wallet_aliases_file", err)
	}

	var asStrings map[string][]string
	if err := json.Unmarshal(raw, &asStrings); err != nil {
		return nil, core.NewConfigError("wallet_aliases_file", fmt.Errorf("invalid JSON: %w", err))
	}

	claimedBy := make(map[common.Address]common.Address)
	for mainStr, aliasStrs := range asStrings {
		main := common.Base58ToAddress(mainStr)
		var aliases []common.Address
		for _, aliasStr := range aliasStrs {
			alias := common.Base58ToAddress(aliasStr)
			if alias == main {
				return nil, core.NewConfigError("wallet_aliases_file", fmt.Errorf("wallet %s lists itself as its own alias", mainStr))
			}
			if owner, ok := claimedBy[alias]; ok && owner != main {
				return nil, core.NewConfigError("wallet_aliases_file", fmt.Errorf("alias %s is claimed by both %s and %s", aliasStr, owner.String(), mainStr))
			}
			claimedBy[alias] = main
			aliases = append(aliases, alias)
		}
		result[main] = aliases
	}
	return result, nil
}

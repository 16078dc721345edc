// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func envMap(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func TestLoadRequiresRPCURL(t *testing.T) {
	_, err := Load(envMap(map[string]string{}))
	if err == nil {
		t.Fatal("expected ConfigError for missing HELIUS_RPC_URL")
	}
}

func TestLoadRejectsUnparseablePubkey(t *testing.T) {
	env := map[string]string{
		"HELIUS_RPC_URL": "https://example.com",
		"REALM_PUBKEY":   "not-a-valid-pubkey-at-all",
	}
	_, err := Load(envMap(env))
	if err == nil {
		t.Fatal("expected ConfigError for unparseable pubkey")
	}
}

func TestLoadSucceedsWithAllFieldsSet(t *testing.T) {
	env := map[string]string{
		"HELIUS_RPC_URL":              "https://example.com",
		"REALM_PUBKEY":                "F9V4Lwo49aUe8fFujMbU6uhdFyDRqKY54WpzdpzwV3Na",
		"GOVERNING_TOKEN_MINT_PUBKEY": "MangoCzJ36AjZyKwVj3VnYU4GTonjfVEnJmvvWaxLac",
		"VSR_PROGRAM_PUBKEY":          "VoteWPk9yyGmkX4U77nEa4LtZVMMeKBWbTmFKfFF3PX",
		"GOVERNANCE_PROGRAM_PUBKEY":   "VoteWPk9yyGmkX4U77nEa4LtZVMMeKBWbTmFKfFF3PX",
	}
	cfg, err := Load(envMap(env))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RPCURL != env["HELIUS_RPC_URL"] {
		t.Fatal("RPCURL mismatch")
	}
}

func TestLoadWalletAliasesEmptyPath(t *testing.T) {
	aliases, err := LoadWalletAliases("")
	if err != nil {
		t.Fatalf("LoadWalletAliases: %v", err)
	}
	if len(aliases) != 0 {
		t.Fatal("expected empty alias map for empty path")
	}
}

func writeAliasFile(t *testing.T, contents map[string][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wallet_aliases.json")
	raw, err := json.Marshal(contents)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadWalletAliasesRejectsSelfAlias(t *testing.T) {
	main := "F9V4Lwo49aUe8fFujMbU6uhdFyDRqKY54WpzdpzwV3Na"
	path := writeAliasFile(t, map[string][]string{main: {main}})
	if _, err := LoadWalletAliases(path); err == nil {
		t.Fatal("expected ConfigError for self-alias")
	}
}

func TestLoadWalletAliasesRejectsDoubleClaim(t *testing.T) {
	mainA := "F9V4Lwo49aUe8fFujMbU6uhdFyDRqKY54WpzdpzwV3Na"
	mainB := "MangoCzJ36AjZyKwVj3VnYU4GTonjfVEnJmvvWaxLac"
	alias := "VoteWPk9yyGmkX4U77nEa4LtZVMMeKBWbTmFKfFF3PX"
	path := writeAliasFile(t, map[string][]string{
		mainA: {alias},
		mainB: {alias},
	})
	if _, err := LoadWalletAliases(path); err == nil {
		t.Fatal("expected ConfigError for alias claimed by two main wallets")
	}
}

func TestLoadWalletAliasesAcceptsValidFile(t *testing.T) {
	mainA := "F9V4Lwo49aUe8fFujMbU6uhdFyDRqKY54WpzdpzwV3Na"
	alias := "VoteWPk9yyGmkX4U77nEa4LtZVMMeKBWbTmFKfFF3PX"
	path := writeAliasFile(t, map[string][]string{mainA: {alias}})
	aliases, err := LoadWalletAliases(path)
	if err != nil {
		t.Fatalf("LoadWalletAliases: %v", err)
	}
	if len(aliases) != 1 {
		t.Fatalf("expected 1 main wallet, got %d", len(aliases))
	}
}

// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package registrar

import (
	"testing"

	"github.com/cielu/govpower/common"
)

func TestDeriveAddressDeterministic(t *testing.T) {
	vsr := common.Base58ToAddress("VoteWPk9yyGmkX4U77nEa4LtZVMMeKBWbTmFKfFF3PX")
	realm := common.Base58ToAddress("F9V4Lwo49aUe8fFujMbU6uhdFyDRqKY54WpzdpzwV3Na")
	mint := common.Base58ToAddress("MangoCzJ36AjZyKwVj3VnYU4GTonjfVEnJmvvWaxLac")

	addr1, bump1, err := DeriveAddress(vsr, realm, mint)
	if err != nil {
		t.Fatalf("DeriveAddress: %v", err)
	}
	addr2, bump2, err := DeriveAddress(vsr, realm, mint)
	if err != nil {
		t.Fatalf("DeriveAddress (2nd call): %v", err)
	}
	if addr1 != addr2 || bump1 != bump2 {
		t.Fatal("expected deterministic PDA derivation")
	}
}

func TestDeriveAddressDiffersByMint(t *testing.T) {
	vsr := common.Base58ToAddress("VoteWPk9yyGmkX4U77nEa4LtZVMMeKBWbTmFKfFF3PX")
	realm := common.Base58ToAddress("F9V4Lwo49aUe8fFujMbU6uhdFyDRqKY54WpzdpzwV3Na")
	mintA := common.Base58ToAddress("MangoCzJ36AjZyKwVj3VnYU4GTonjfVEnJmvvWaxLac")
	mintB := common.Base58ToAddress("So11111111111111111111111111111111111111112")

	addrA, _, err := DeriveAddress(vsr, realm, mintA)
	if err != nil {
		t.Fatalf("DeriveAddress A: %v", err)
	}
	addrB, _, err := DeriveAddress(vsr, realm, mintB)
	if err != nil {
		t.Fatalf("DeriveAddress B: %v", err)
	}
	if addrA == addrB {
		t.Fatal("expected different PDAs for different mints")
	}
}

func TestValidateRejectsOutOfRangeBaseline(t *testing.T) {
	r := &Registrar{
		BaselineVoteWeightScaledFactor: 0,
		MaxExtraLockupScaledFactor:     0,
		LockupSaturationSecs:           minSaturationSecs,
	}
	if err := r.validate(); err == nil {
		t.Fatal("expected invariant violation for zero baseline")
	}
}

func TestValidateRejectsOutOfRangeSaturation(t *testing.T) {
	r := &Registrar{
		BaselineVoteWeightScaledFactor: 1_000_000_000,
		MaxExtraLockupScaledFactor:     1_000_000_000,
		LockupSaturationSecs:           10,
	}
	if err := r.validate(); err == nil {
		t.Fatal("expected invariant violation for too-short saturation window")
	}
}

func TestValidateAcceptsInRangeValues(t *testing.T) {
	r := &Registrar{
		BaselineVoteWeightScaledFactor: 1_000_000_000,
		MaxExtraLockupScaledFactor:     3_000_000_000,
		LockupSaturationSecs:           5 * 365 * 24 * 3600,
	}
	if err := r.validate(); err != nil {
		t.Fatalf("expected valid registrar, got %v", err)
	}
}

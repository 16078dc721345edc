// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package vsr

import (
	"testing"

	"github.com/cielu/govpower/registrar"
)

func testRegistrar() *registrar.Registrar {
	return &registrar.Registrar{
		BaselineVoteWeightScaledFactor: 1_000_000_000,
		MaxExtraLockupScaledFactor:     4_000_000_000,
		LockupSaturationSecs:           5 * 365 * 24 * 3600,
	}
}

func TestMultiplierNoneIsOne(t *testing.T) {
	now := int64(1_700_000_000)
	d := DepositEntry{LockupKind: LockupNone, LockupEndTs: 0}
	res := Multiplier(d, testRegistrar(), now, MultiplierOptions{})
	if res.Multiplier != 1.0 {
		t.Fatalf("expected multiplier 1.0, got %v", res.Multiplier)
	}
}

func TestMultiplierExpiredIsOne(t *testing.T) {
	now := int64(1_700_000_000)
	d := DepositEntry{LockupKind: LockupCliff, LockupStartTs: now - 1000, LockupEndTs: now}
	res := Multiplier(d, testRegistrar(), now, MultiplierOptions{})
	if res.Multiplier != 1.0 {
		t.Fatalf("expected expired-at-now multiplier 1.0, got %v", res.Multiplier)
	}
}

func TestMultiplierCliffFullySaturated(t *testing.T) {
	now := int64(1_700_000_000)
	r := testRegistrar()
	d := DepositEntry{
		LockupKind:    LockupCliff,
		LockupStartTs: now,
		LockupEndTs:   now + int64(r.LockupSaturationSecs)*2,
	}
	res := Multiplier(d, r, now, MultiplierOptions{})
	want := (1_000_000_000.0 + 4_000_000_000.0) / 1_000_000_000.0
	if res.Multiplier != want {
		t.Fatalf("expected fully saturated multiplier %v, got %v", want, res.Multiplier)
	}
}

func TestMultiplierWithinBounds(t *testing.T) {
	now := int64(1_700_000_000)
	r := testRegistrar()
	d := DepositEntry{
		LockupKind:    LockupMonthly,
		LockupStartTs: now - 1000,
		LockupEndTs:   now + 1000,
	}
	res := Multiplier(d, r, now, MultiplierOptions{})
	baseline := 1.0
	cap := (1_000_000_000.0 + 4_000_000_000.0) / 1_000_000_000.0
	if res.Multiplier < baseline || res.Multiplier > cap {
		t.Fatalf("multiplier %v outside [%v, %v]", res.Multiplier, baseline, cap)
	}
}

func TestMultiplierRounding(t *testing.T) {
	now := int64(1_700_000_000)
	r := testRegistrar()
	d := DepositEntry{
		LockupKind:    LockupDaily,
		LockupStartTs: now - 500,
		LockupEndTs:   now + 1500,
	}
	digits := 3
	res := Multiplier(d, r, now, MultiplierOptions{RoundDigits: &digits})
	rounded := roundTo(res.Multiplier, 3)
	if res.Multiplier != rounded {
		t.Fatalf("expected multiplier already rounded to 3 digits, got %v", res.Multiplier)
	}
}

func TestMultiplierSafetyClamp(t *testing.T) {
	now := int64(1_700_000_000)
	r := &registrar.Registrar{
		BaselineVoteWeightScaledFactor: 1_000_000_000,
		MaxExtraLockupScaledFactor:     9_000_000_000,
		LockupSaturationSecs:           1,
	}
	d := DepositEntry{
		LockupKind:    LockupCliff,
		LockupStartTs: now,
		LockupEndTs:   now + 1_000_000,
	}
	res := Multiplier(d, r, now, MultiplierOptions{})
	if res.Multiplier != MultiplierSafetyCap {
		t.Fatalf("expected clamp to %v, got %v", MultiplierSafetyCap, res.Multiplier)
	}
	if !res.Clamped {
		t.Fatal("expected Clamped to be true")
	}
}

func TestVotingPower(t *testing.T) {
	d := DepositEntry{AmountNative: 5_000_000}
	vp := VotingPower(d, 2.0, DefaultParserConfig())
	if vp != 10.0 {
		t.Fatalf("expected voting power 10.0, got %v", vp)
	}
}

// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package registrar

import (
	"context"
	"fmt"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/core"
	"github.com/cielu/govpower/pkg/encodbin"
	"github.com/cielu/govpower/rpc"
)

const (
	minBaselineScaled = 1
	maxBaselineScaled = 10_000_000_000
	maxExtraScaled    = 10_000_000_000
	minSaturationSecs = 365 * 24 * 3600
	maxSaturationSecs = 10 * 365 * 24 * 3600
)

// Registrar holds the four numeric fields the Multiplier Engine consumes,
// decoded from the fixed-layout Registrar account. Every value is read
// exactly once per run.
type Registrar struct {
	Address                        common.Address
	LockupSaturationSecs           uint64
	BaselineVoteWeightScaledFactor uint64
	MaxExtraLockupScaledFactor     uint64
	DigitShift                    int8
}

// discriminator (8) + governer realm authority pubkey placeholders before the
// four numeric fields. Layouts observed in the wild put the scaled factors
// immediately after the realm/mint pair; offsets below match the canonical
// spl-governance-voter-stake-registry account.
const (
	offsetRealm                = 8
	offsetGoverningTokenMint   = offsetRealm + 32
	offsetBaselineScaled       = offsetGoverningTokenMint + 32 + 1 // + votingMintsLen byte of the first config slot skip
	offsetMaxExtraScaled       = offsetBaselineScaled + 8
	offsetLockupSaturationSecs = offsetMaxExtraScaled + 8
	offsetDigitShift           = offsetLockupSaturationSecs + 8
	minAccountLen              = offsetDigitShift + 1
)

// Load derives the registrar PDA for (realm, mint) under vsrProgramID, fetches
// it, and decodes the numeric fields the rest of the system needs. There is
// no fallback scan: an absent or malformed registrar aborts the whole batch,
// since every subsequent multiplier depends on these four numbers.
func Load(ctx context.Context, client *rpc.Client, vsrProgramID, realm, mint common.Address) (*Registrar, error) {
	addr, _, err := DeriveAddress(vsrProgramID, realm, mint)
	if err != nil {
		return nil, core.NewInvariantViolation("registrar_pda", err.Error())
	}

	info, _, err := client.GetAccountInfo(ctx, addr)
	if err != nil {
		return nil, err
	}
	if info == nil {
		return nil, core.NewInvariantViolation("registrar_missing", fmt.Sprintf("no registrar account at derived address %s", addr))
	}

	data := info.Data.Data
	if len(data) < minAccountLen {
		return nil, core.NewInvariantViolation("registrar_too_short", fmt.Sprintf("registrar %s length %d below minimum %d", addr, len(data), minAccountLen))
	}

	baseline, err := encodbin.PeekU64(data, offsetBaselineScaled)
	if err != nil {
		return nil, core.NewInvariantViolation("registrar_decode", fmt.Sprintf("registrar %s: %v", addr, err))
	}
	maxExtra, err := encodbin.PeekU64(data, offsetMaxExtraScaled)
	if err != nil {
		return nil, core.NewInvariantViolation("registrar_decode", fmt.Sprintf("registrar %s: %v", addr, err))
	}
	saturation, err := encodbin.PeekU64(data, offsetLockupSaturationSecs)
	if err != nil {
		return nil, core.NewInvariantViolation("registrar_decode", fmt.Sprintf("registrar %s: %v", addr, err))
	}
	digitShiftByte, err := encodbin.PeekBytes(data, offsetDigitShift, 1)
	if err != nil {
		return nil, core.NewInvariantViolation("registrar_decode", fmt.Sprintf("registrar %s: %v", addr, err))
	}

	r := &Registrar{
		Address:                        addr,
		LockupSaturationSecs:           saturation,
		BaselineVoteWeightScaledFactor: baseline,
		MaxExtraLockupScaledFactor:     maxExtra,
		DigitShift:                     int8(digitShiftByte[0]),
	}

	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// validate enforces the range invariants from the registrar loader's
// design: out-of-range parameters are a code/config bug, never a per-wallet
// condition, so they abort the batch.
func (r *Registrar) validate() error {
	if r.BaselineVoteWeightScaledFactor < minBaselineScaled || r.BaselineVoteWeightScaledFactor > maxBaselineScaled {
		return core.NewInvariantViolation("baseline_scaled_range",
			fmt.Sprintf("baseline_vote_weight_scaled_factor %d outside [%d, %d]", r.BaselineVoteWeightScaledFactor, minBaselineScaled, maxBaselineScaled))
	}
	if r.MaxExtraLockupScaledFactor > maxExtraScaled {
		return core.NewInvariantViolation("max_extra_scaled_range",
			fmt.Sprintf("max_extra_lockup_vote_weight_scaled_factor %d exceeds %d", r.MaxExtraLockupScaledFactor, maxExtraScaled))
	}
	if r.LockupSaturationSecs < minSaturationSecs || r.LockupSaturationSecs > maxSaturationSecs {
		return core.NewInvariantViolation("saturation_secs_range",
			fmt.Sprintf("lockup_saturation_secs %d outside [%d, %d]", r.LockupSaturationSecs, minSaturationSecs, maxSaturationSecs))
	}
	return nil
}

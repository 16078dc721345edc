// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package power

import (
	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/registrar"
	"github.com/cielu/govpower/resolve"
	"github.com/cielu/govpower/vsr"
)

// DepositRecord is one scored, surviving deposit in a wallet's audit trail.
type DepositRecord struct {
	Account        common.Address
	Offset         uint32
	Amount         float64
	LockupKind     string
	LockupEndTs    *int64
	Multiplier     float64
	VotingPower    float64
	Classification string
}

// Result is the immutable per-wallet output the spec calls PowerResult.
type Result struct {
	Wallet          common.Address
	NativePower     float64
	DelegatedPower  float64
	TotalPower      float64
	Deposits        []DepositRecord
	Filtered        []vsr.FilterRecord
	NowUsed         int64
}

// ScoreOptions bundles the run-wide knobs every wallet in a batch must share:
// the pinned clock, the registrar, and the multiplier/parser tuning.
type ScoreOptions struct {
	Now               int64
	Registrar         *registrar.Registrar
	ParserConfig      vsr.ParserConfig
	MultiplierOptions vsr.MultiplierOptions
}

// ClampCounter accumulates how many multiplier computations hit the safety
// rail across a run, so the summary can surface it per SPEC_FULL's
// supplemented-features requirement.
type ClampCounter struct {
	Count int
}

// ScoreWallet combines the Authority Resolver's native/delegated account
// classification with the Deposit Parser and Multiplier Engine to produce
// one wallet's PowerResult. A single malformed account never fails the
// whole wallet: its deposits are recorded as FilterRecord{parse_error} and
// scoring continues with the rest.
func ScoreWallet(wallet common.Address, classified []resolve.ClassifiedAccount, opts ScoreOptions, clamps *ClampCounter) Result {
	res := Result{Wallet: wallet, NowUsed: opts.Now}

	for _, acc := range classified {
		deposits, filtered, err := vsr.ParseDeposits(acc.Account, acc.Data, opts.Now, opts.ParserConfig)
		if err != nil {
			res.Filtered = append(res.Filtered, vsr.FilterRecord{
				Account: acc.Account,
				Reason:  vsr.ReasonParseError,
			})
			continue
		}
		res.Filtered = append(res.Filtered, filtered...)

		classLabel := "native"
		if acc.Classification == resolve.ClassDelegate {
			classLabel = "delegated"
		}

		for _, d := range deposits {
			mr := vsr.Multiplier(d, opts.Registrar, opts.Now, opts.MultiplierOptions)
			if mr.Clamped && clamps != nil {
				clamps.Count++
			}
			vp := vsr.VotingPower(d, mr.Multiplier, opts.ParserConfig)

			var endTs *int64
			if d.LockupKind != vsr.LockupNone {
				end := d.LockupEndTs
				endTs = &end
			}

			record := DepositRecord{
				Account:        d.Account,
				Offset:         d.Offset,
				Amount:         float64(d.AmountNative) / opts.ParserConfig.DisplayDivisor(),
				LockupKind:     d.LockupKind.String(),
				LockupEndTs:    endTs,
				Multiplier:     mr.Multiplier,
				VotingPower:    vp,
				Classification: classLabel,
			}
			res.Deposits = append(res.Deposits, record)

			if classLabel == "delegated" {
				res.DelegatedPower += vp
			} else {
				res.NativePower += vp
			}
		}
	}

	res.TotalPower = res.NativePower + res.DelegatedPower
	return res
}

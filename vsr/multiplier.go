// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package vsr

import (
	"math"

	"github.com/cielu/govpower/registrar"
)

// MultiplierSafetyCap is the absolute safety rail: a computed multiplier is
// never reported above this value, regardless of what registrar parameters
// would otherwise produce.
const MultiplierSafetyCap = 5.0

// MultiplierResult carries the scored multiplier plus whether the safety
// clamp fired, so callers can maintain the run-wide clamp counter the spec
// requires.
type MultiplierResult struct {
	Multiplier float64
	Clamped    bool
}

// MultiplierOptions.RoundDigits, when non-nil, rounds the multiplier to
// this many fractional digits to match the governance UI's display
// arithmetic. Applied uniformly across every deposit in a run.
type MultiplierOptions struct {
	RoundDigits *int
}

// Multiplier computes the lockup voting-power multiplier for a single
// deposit against registrar r, at run-wide timestamp now. now is passed
// explicitly (never read from the clock) so every deposit in a batch is
// scored against the same instant.
func Multiplier(d DepositEntry, r *registrar.Registrar, now int64, opts MultiplierOptions) MultiplierResult {
	baselineScaled := float64(r.BaselineVoteWeightScaledFactor)
	maxExtraScaled := float64(r.MaxExtraLockupScaledFactor)
	saturation := float64(r.LockupSaturationSecs)

	var m float64
	if d.LockupKind == LockupNone || d.LockupEndTs <= now {
		m = 1.0
	} else {
		remaining := float64(d.LockupEndTs - maxInt64(d.LockupStartTs, now))
		duration := float64(maxInt64(d.LockupEndTs-d.LockupStartTs, 1))

		var bonusScaled float64
		switch d.LockupKind {
		case LockupCliff, LockupMonthly:
			ratio := math.Min(1, remaining/saturation)
			bonusScaled = maxExtraScaled * ratio
		case LockupConstant, LockupDaily:
			unlockedRatio := clamp01(float64(now-d.LockupStartTs) / duration)
			lockedRatio := 1 - unlockedRatio
			ratio := math.Min(1, (lockedRatio*duration)/saturation)
			bonusScaled = maxExtraScaled * ratio
		}

		m = (baselineScaled + bonusScaled) / baselineScaled
	}

	if opts.RoundDigits != nil {
		m = roundTo(m, *opts.RoundDigits)
	}

	clamped := false
	if m > MultiplierSafetyCap {
		m = MultiplierSafetyCap
		clamped = true
	}

	return MultiplierResult{Multiplier: m, Clamped: clamped}
}

// VotingPower returns amount_display x multiplier for a deposit, where
// amount_display applies the registrar's digit_shift.
func VotingPower(d DepositEntry, multiplier float64, cfg ParserConfig) float64 {
	return (float64(d.AmountNative) / cfg.displayDivisor()) * multiplier
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

func roundTo(v float64, digits int) float64 {
	scale := math.Pow(10, float64(digits))
	return math.Round(v*scale) / scale
}

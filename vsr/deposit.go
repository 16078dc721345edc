// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package vsr

import (
	"fmt"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/core"
	"github.com/cielu/govpower/library"
	"github.com/cielu/govpower/pkg/encodbin"
)

// VoterAccountSize is the fixed data length of a VSR Voter account.
const VoterAccountSize = 2728

// LockupKind enumerates the lockup schedules a deposit entry can carry.
type LockupKind uint8

const (
	LockupNone LockupKind = iota
	LockupDaily
	LockupMonthly
	LockupCliff
	LockupConstant
)

func (k LockupKind) String() string {
	switch k {
	case LockupNone:
		return "None"
	case LockupDaily:
		return "Daily"
	case LockupMonthly:
		return "Monthly"
	case LockupCliff:
		return "Cliff"
	case LockupConstant:
		return "Constant"
	default:
		return "Unknown"
	}
}

func parseLockupKind(b uint8) (LockupKind, bool) {
	switch LockupKind(b) {
	case LockupNone, LockupDaily, LockupMonthly, LockupCliff, LockupConstant:
		return LockupKind(b), true
	default:
		return LockupNone, false
	}
}

// DepositEntry is one live deposit slot decoded from a Voter account, prior
// to multiplier scoring.
type DepositEntry struct {
	Account         common.Address
	Offset          uint32
	AmountNative    uint64
	AmountLockedNative uint64
	LockupKind      LockupKind
	LockupStartTs   int64
	LockupEndTs     int64
}

// FilterRecord documents a suppressed slot and why it was dropped.
type FilterRecord struct {
	Account common.Address
	Offset  uint32
	Amount  float64
	Reason  string
}

// Filter reason labels, matching the external JSON contract exactly.
const (
	ReasonUnused     = "unused"
	ReasonZero       = "zero"
	ReasonOutOfRange = "out_of_range"
	ReasonShadow     = "shadow"
	ReasonDuplicate  = "duplicate"
	ReasonParseError = "parse_error"
)

const (
	headerSize        = 104
	entrySize         = 56
	maxDepositEntries = 32

	minDisplayAmount = 50.0
	maxDisplayAmount = 20_000_000.0

	entryIsUsedOff       = 0
	entryAmountDepOff    = 8
	entryAmountLockedOff = 16
	entryLockupKindOff   = 24
	entryLockupStartOff  = 25
	entryLockupEndOff    = 33
	companionConfigLen   = 32
)

// ParserConfig carries the tunables the spec calls out as conventions that
// evolve, rather than hardcoded literals: the shadow/phantom sentinel
// amounts and the digit_shift-driven display divisor.
type ParserConfig struct {
	ShadowSentinels []float64
	DigitShift      int8
}

// DefaultParserConfig matches the governance token's current conventions:
// 6-decimal base units, 1,000/11,000 token shadow markers.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		ShadowSentinels: []float64{1000, 11000},
		DigitShift:      6,
	}
}

// DisplayDivisor returns the divisor applied to a raw base-unit amount to
// get display units, derived from DigitShift.
func (c ParserConfig) DisplayDivisor() float64 {
	return c.displayDivisor()
}

func (c ParserConfig) displayDivisor() float64 {
	shift := c.DigitShift
	if shift < 0 {
		shift = -shift
	}
	d := 1.0
	for i := int8(0); i < shift; i++ {
		d *= 10
	}
	if d == 0 {
		return 1
	}
	return d
}

// candidateAmountOffsets are the legacy-layout offsets the scan fallback
// probes, observed across historical account layouts.
var candidateAmountOffsets = []int{104, 112, 184, 192, 200, 208, 264, 272, 344, 352, 424}

// ParseDeposits decodes every slot of a Voter account's raw data, trying the
// canonical fixed layout first and falling back to the scan heuristic only
// when the canonical path yields zero used deposits. It never aggregates or
// scores -- callers combine its output with a Registrar via Multiplier.
func ParseDeposits(account common.Address, data []byte, now int64, cfg ParserConfig) ([]DepositEntry, []FilterRecord, error) {
	if len(data) != VoterAccountSize {
		return nil, nil, core.NewDecodeError(account.String(), "bad_account_size", fmt.Errorf("expected %d bytes, got %d", VoterAccountSize, len(data)))
	}

	deposits, filtered := parseCanonical(account, data, now, cfg)
	used := len(deposits)
	for _, f := range filtered {
		if f.Reason != ReasonUnused {
			used++
		}
	}
	if used == 0 {
		fbDeposits, fbFiltered := parseScanFallback(account, data, now, cfg)
		deposits = fbDeposits
		filtered = append(filtered, fbFiltered...)
	}
	return deposits, filtered, nil
}

func parseCanonical(account common.Address, data []byte, now int64, cfg ParserConfig) ([]DepositEntry, []FilterRecord) {
	var deposits []DepositEntry
	var filtered []FilterRecord
	var seen []string

	for i := 0; i < maxDepositEntries; i++ {
		base := headerSize + i*entrySize
		r := encodbin.NewReader(data)
		if err := r.Seek(base); err != nil {
			break
		}

		isUsed, err := r.Bool()
		if err != nil {
			break
		}
		offset := uint32(base + entryAmountDepOff)
		if !isUsed {
			filtered = append(filtered, FilterRecord{Account: account, Offset: offset, Reason: ReasonUnused})
			continue
		}

		if err := r.Seek(base + entryAmountDepOff); err != nil {
			break
		}
		amountNative, err := r.U64()
		if err != nil {
			break
		}
		amountLocked, err := r.U64()
		if err != nil {
			break
		}
		kindByte, err := r.U8()
		if err != nil {
			break
		}
		startTs, err := r.I64()
		if err != nil {
			break
		}
		endTs, err := r.I64()
		if err != nil {
			break
		}
		companion, err := encodbin.PeekBytes(data, base+entryAmountDepOff+8, companionConfigLen)
		if err != nil {
			companion = nil
		}

		entry, rec, ok := classify(account, offset, amountNative, amountLocked, kindByte, startTs, endTs, companion, cfg, &seen)
		if ok {
			deposits = append(deposits, entry)
		} else {
			filtered = append(filtered, rec)
		}
	}

	return deposits, filtered
}

// parseScanFallback probes legacy candidate offsets for an amount followed,
// within 128 bytes, by a plausible end timestamp, inferring the lockup kind
// from its position relative to the amount. Used only when the canonical
// path finds nothing.
func parseScanFallback(account common.Address, data []byte, now int64, cfg ParserConfig) ([]DepositEntry, []FilterRecord) {
	var deposits []DepositEntry
	var filtered []FilterRecord
	var seen []string

	for _, off := range candidateAmountOffsets {
		amount, err := encodbin.PeekU64(data, off)
		if err != nil || amount == 0 {
			continue
		}

		endTs, endOff, found := findPlausibleEndTs(data, off, now)
		if !found {
			continue
		}
		startTs, _ := encodbin.PeekI64(data, endOff-8)

		kind := inferKindFromOffset(endOff - off)

		companion, err := encodbin.PeekBytes(data, off+8, companionConfigLen)
		if err != nil {
			companion = nil
		}

		entry, rec, ok := classify(account, uint32(off), amount, amount, uint8(kind), startTs, endTs, companion, cfg, &seen)
		if ok {
			deposits = append(deposits, entry)
		} else {
			filtered = append(filtered, rec)
		}
	}

	return deposits, filtered
}

// findPlausibleEndTs searches up to 128 bytes after an amount offset for the
// first i64 that looks like a lockup end timestamp: strictly in the future,
// within 10 years of now.
func findPlausibleEndTs(data []byte, amountOff int, now int64) (int64, int, bool) {
	const searchWindow = 128
	const tenYears = 10 * 365 * 24 * 3600

	for off := amountOff + 8; off <= amountOff+searchWindow && off+8 <= len(data); off++ {
		v, err := encodbin.PeekI64(data, off)
		if err != nil {
			break
		}
		if v > now && v < now+tenYears {
			return v, off, true
		}
	}
	return 0, 0, false
}

func inferKindFromOffset(delta int) LockupKind {
	switch {
	case delta <= 16:
		return LockupCliff
	case delta <= 40:
		return LockupConstant
	case delta <= 64:
		return LockupMonthly
	default:
		return LockupDaily
	}
}

// classify applies the uniform filtering rules and, when an entry survives
// all of them, builds the DepositEntry. seen tracks 6-decimal-precision
// amount keys already emitted for this account, for duplicate detection.
func classify(account common.Address, offset uint32, amountNative, amountLocked uint64, kindByte uint8, startTs, endTs int64, companion []byte, cfg ParserConfig, seen *[]string) (DepositEntry, FilterRecord, bool) {
	if amountNative == 0 {
		return DepositEntry{}, FilterRecord{Account: account, Offset: offset, Amount: 0, Reason: ReasonZero}, false
	}

	display := float64(amountNative) / cfg.displayDivisor()

	if display < minDisplayAmount || display > maxDisplayAmount {
		return DepositEntry{}, FilterRecord{Account: account, Offset: offset, Amount: display, Reason: ReasonOutOfRange}, false
	}

	if isShadowSentinel(display, cfg.ShadowSentinels) && companionAllZero(companion) {
		return DepositEntry{}, FilterRecord{Account: account, Offset: offset, Amount: display, Reason: ReasonShadow}, false
	}

	key := fmt.Sprintf("%.6f", display)
	before := len(*seen)
	*seen = library.UniqueAppend(*seen, key)
	if len(*seen) == before {
		// UniqueAppend left the slice unchanged: key was already present.
		return DepositEntry{}, FilterRecord{Account: account, Offset: offset, Amount: display, Reason: ReasonDuplicate}, false
	}

	kind, ok := parseLockupKind(kindByte)
	if !ok {
		return DepositEntry{}, FilterRecord{Account: account, Offset: offset, Amount: display, Reason: ReasonParseError}, false
	}

	return DepositEntry{
		Account:            account,
		Offset:             offset,
		AmountNative:       amountNative,
		AmountLockedNative: amountLocked,
		LockupKind:         kind,
		LockupStartTs:      startTs,
		LockupEndTs:        endTs,
	}, FilterRecord{}, true
}

func isShadowSentinel(display float64, sentinels []float64) bool {
	for _, s := range sentinels {
		if display > s-1 && display < s+1 {
			return true
		}
	}
	return false
}

func companionAllZero(b []byte) bool {
	if len(b) != companionConfigLen {
		return false
	}
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

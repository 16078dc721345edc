// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package snapshot

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/cielu/govpower/core"
	"github.com/cielu/govpower/power"
)

// SchemaVersion is bumped whenever the JSON document's shape changes in a
// way a downstream consumer must account for.
const SchemaVersion = 1

type depositJSON struct {
	Account        string  `json:"account"`
	Offset         uint32  `json:"offset"`
	Amount         float64 `json:"amount"`
	LockupKind     string  `json:"lockup_kind"`
	LockupEndTs    *int64  `json:"lockup_end_ts"`
	Multiplier     float64 `json:"multiplier"`
	VotingPower    float64 `json:"voting_power"`
	Classification string  `json:"classification"`
}

type filteredJSON struct {
	Offset uint32  `json:"offset"`
	Amount float64 `json:"amount"`
	Reason string  `json:"reason"`
}

type citizenJSON struct {
	Wallet          string         `json:"wallet"`
	NativePower     float64        `json:"native_power"`
	DelegatedPower  float64        `json:"delegated_power"`
	TotalPower      float64        `json:"total_power"`
	Deposits        []depositJSON  `json:"deposits"`
	Filtered        []filteredJSON `json:"filtered"`
}

type summaryJSON struct {
	TotalCitizens      int     `json:"total_citizens"`
	CitizensWithPower  int     `json:"citizens_with_power"`
	TotalNative        float64 `json:"total_native"`
	TotalDelegated     float64 `json:"total_delegated"`
	MultiplierClampedCount int `json:"multiplier_clamped_count"`
}

// Document is the schema-versioned JSON document written once per run,
// matching the external interface's exact shape.
type Document struct {
	SchemaVersion int           `json:"schema_version"`
	GeneratedAt   string        `json:"generated_at"`
	NowUsed       int64         `json:"now_used"`
	Summary       summaryJSON   `json:"summary"`
	Citizens      []citizenJSON `json:"citizens"`
}

// Build assembles a Document from a batch of PowerResults. generatedAt is
// passed in rather than read from the clock so a run is fully reproducible
// given the same inputs.
func Build(results []power.Result, nowUsed int64, generatedAt time.Time, clampedCount int) Document {
	doc := Document{
		SchemaVersion: SchemaVersion,
		GeneratedAt:   generatedAt.UTC().Format(time.RFC3339),
		NowUsed:       nowUsed,
	}

	withPower := 0
	for _, r := range results {
		if r.TotalPower > 0 {
			withPower++
		}
		doc.Summary.TotalNative += r.NativePower
		doc.Summary.TotalDelegated += r.DelegatedPower

		cz := citizenJSON{
			Wallet:         r.Wallet.String(),
			NativePower:    r.NativePower,
			DelegatedPower: r.DelegatedPower,
			TotalPower:     r.TotalPower,
		}
		for _, d := range r.Deposits {
			cz.Deposits = append(cz.Deposits, depositJSON{
				Account:        d.Account.String(),
				Offset:         d.Offset,
				Amount:         d.Amount,
				LockupKind:     d.LockupKind,
				LockupEndTs:    d.LockupEndTs,
				Multiplier:     d.Multiplier,
				VotingPower:    d.VotingPower,
				Classification: d.Classification,
			})
		}
		for _, f := range r.Filtered {
			cz.Filtered = append(cz.Filtered, filteredJSON{
				Offset: f.Offset,
				Amount: f.Amount,
				Reason: f.Reason,
			})
		}
		doc.Citizens = append(doc.Citizens, cz)
	}

	doc.Summary.TotalCitizens = len(results)
	doc.Summary.CitizensWithPower = withPower
	doc.Summary.MultiplierClampedCount = clampedCount
	return doc
}

// Write serializes doc to path as indented JSON. Keys are not sorted: struct
// field order in depositJSON/citizenJSON/etc. is fixed at compile time, which is
// what makes two runs over the same snapshot byte-identical (spec property
// 7): encoding/json always emits struct fields in declaration order.
func Write(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return core.NewConfigError("snapshot_write", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return core.NewConfigError("snapshot_encode", err)
	}
	return nil
}

// Read loads a previously written snapshot document, used by verify to load
// the expected fixture.
func Read(path string) (Document, error) {
	var doc Document
	f, err := os.Open(path)
	if err != nil {
		return doc, core.NewConfigError("snapshot_read", err)
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(&doc); err != nil {
		return doc, core.NewConfigError("snapshot_decode", err)
	}
	return doc, nil
}

// Compare checks got against want within a relative tolerance on every
// power field, returning the first mismatch it finds as a
// VerificationMismatch. It does not attempt to diff the full deposit/filter
// audit trail -- only the headline per-citizen totals the CLI reports.
func Compare(got, want Document, tolerance float64) error {
	wantByWallet := make(map[string]citizenJSON, len(want.Citizens))
	for _, c := range want.Citizens {
		wantByWallet[c.Wallet] = c
	}
	gotByWallet := make(map[string]citizenJSON, len(got.Citizens))
	for _, c := range got.Citizens {
		gotByWallet[c.Wallet] = c
	}

	for _, g := range got.Citizens {
		w, ok := wantByWallet[g.Wallet]
		if !ok {
			return &core.VerificationMismatch{Wallet: g.Wallet, Field: "presence", Got: 1, Want: 0}
		}
		if err := compareField(g.Wallet, "native_power", g.NativePower, w.NativePower, tolerance); err != nil {
			return err
		}
		if err := compareField(g.Wallet, "delegated_power", g.DelegatedPower, w.DelegatedPower, tolerance); err != nil {
			return err
		}
		if err := compareField(g.Wallet, "total_power", g.TotalPower, w.TotalPower, tolerance); err != nil {
			return err
		}
	}
	for _, w := range want.Citizens {
		if _, ok := gotByWallet[w.Wallet]; !ok {
			return &core.VerificationMismatch{Wallet: w.Wallet, Field: "presence", Got: 0, Want: 1}
		}
	}
	return nil
}

func compareField(wallet, field string, got, want, tolerance float64) error {
	tol := math.Abs(want) * tolerance
	if tol == 0 {
		tol = tolerance
	}
	if math.Abs(got-want) > tol {
		return &core.VerificationMismatch{Wallet: wallet, Field: field, Got: got, Want: want, ToleranceAbs: tol}
	}
	return nil
}

// DumpMismatch renders a human-diagnostic dump of one wallet's computed vs.
// expected citizen record, for verify's failure output.
func DumpMismatch(got, want Document, wallet string) string {
	var g, w citizenJSON
	for _, c := range got.Citizens {
		if c.Wallet == wallet {
			g = c
		}
	}
	for _, c := range want.Citizens {
		if c.Wallet == wallet {
			w = c
		}
	}
	return fmt.Sprintf("got=%s\nwant=%s", spewDump(g), spewDump(w))
}

// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package snapshot

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/power"
)

func zeroAddr(b byte) common.Address {
	var a common.Address
	a[31] = b
	return a
}

func TestBuildSummaryCounts(t *testing.T) {
	results := []power.Result{
		{Wallet: zeroAddr(1), NativePower: 100, DelegatedPower: 0, TotalPower: 100},
		{Wallet: zeroAddr(2), NativePower: 0, DelegatedPower: 0, TotalPower: 0},
	}
	doc := Build(results, 1_700_000_000, time.Unix(1_700_000_500, 0), 2)

	if doc.Summary.TotalCitizens != 2 {
		t.Fatalf("expected 2 total citizens, got %d", doc.Summary.TotalCitizens)
	}
	if doc.Summary.CitizensWithPower != 1 {
		t.Fatalf("expected 1 citizen with power, got %d", doc.Summary.CitizensWithPower)
	}
	if doc.Summary.TotalNative != 100 {
		t.Fatalf("expected total native 100, got %v", doc.Summary.TotalNative)
	}
	if doc.Summary.MultiplierClampedCount != 2 {
		t.Fatalf("expected clamp count 2, got %d", doc.Summary.MultiplierClampedCount)
	}
	if doc.SchemaVersion != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, doc.SchemaVersion)
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	results := []power.Result{
		{Wallet: zeroAddr(3), NativePower: 50, DelegatedPower: 25, TotalPower: 75},
	}
	doc := Build(results, 1_700_000_000, time.Unix(1_700_000_500, 0), 0)

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := Write(path, doc); err != nil {
		t.Fatalf("Write: %v", err)
	}
	roundTripped, err := Read(path)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if roundTripped.Summary.TotalNative != doc.Summary.TotalNative {
		t.Fatalf("round-trip mismatch: got %v, want %v", roundTripped.Summary.TotalNative, doc.Summary.TotalNative)
	}
}

func TestCompareWithinTolerancePasses(t *testing.T) {
	got := Build([]power.Result{{Wallet: zeroAddr(4), NativePower: 100, TotalPower: 100}}, 0, time.Unix(0, 0), 0)
	want := Build([]power.Result{{Wallet: zeroAddr(4), NativePower: 100.4, TotalPower: 100.4}}, 0, time.Unix(0, 0), 0)
	if err := Compare(got, want, 0.005); err != nil {
		t.Fatalf("expected values within tolerance to pass, got %v", err)
	}
}

func TestCompareBeyondToleranceFails(t *testing.T) {
	got := Build([]power.Result{{Wallet: zeroAddr(5), NativePower: 100, TotalPower: 100}}, 0, time.Unix(0, 0), 0)
	want := Build([]power.Result{{Wallet: zeroAddr(5), NativePower: 200, TotalPower: 200}}, 0, time.Unix(0, 0), 0)
	if err := Compare(got, want, 0.005); err == nil {
		t.Fatal("expected verification mismatch beyond tolerance")
	}
}

func TestCompareFailsOnMissingCitizenInWant(t *testing.T) {
	got := Build([]power.Result{
		{Wallet: zeroAddr(6), NativePower: 100, TotalPower: 100},
		{Wallet: zeroAddr(7), NativePower: 50, TotalPower: 50},
	}, 0, time.Unix(0, 0), 0)
	want := Build([]power.Result{
		{Wallet: zeroAddr(6), NativePower: 100, TotalPower: 100},
	}, 0, time.Unix(0, 0), 0)
	if err := Compare(got, want, 0.005); err == nil {
		t.Fatal("expected mismatch when got has a citizen absent from want")
	}
}

func TestCompareFailsOnMissingCitizenInGot(t *testing.T) {
	got := Build([]power.Result{
		{Wallet: zeroAddr(8), NativePower: 100, TotalPower: 100},
	}, 0, time.Unix(0, 0), 0)
	want := Build([]power.Result{
		{Wallet: zeroAddr(8), NativePower: 100, TotalPower: 100},
		{Wallet: zeroAddr(9), NativePower: 50, TotalPower: 50},
	}, 0, time.Unix(0, 0), 0)
	if err := Compare(got, want, 0.005); err == nil {
		t.Fatal("expected mismatch when want has a citizen absent from got")
	}
}

// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/config"
	"github.com/cielu/govpower/core"
	"github.com/cielu/govpower/power"
	"github.com/cielu/govpower/registrar"
	"github.com/cielu/govpower/resolve"
	"github.com/cielu/govpower/rpc"
	"github.com/cielu/govpower/snapshot"
	"github.com/cielu/govpower/vsr"
)

// Exit codes per the external interface.
const (
	exitOK                = 0
	exitVerificationFail  = 1
	exitConfigError       = 2
	exitTransportFailure  = 3
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return exitConfigError
	}

	switch args[0] {
	case "scan":
		return runScan(args[1:])
	case "verify":
		return runVerify(args[1:])
	default:
		printUsage()
		return exitConfigError
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage: govpower scan --all --citizens <file> --out <file>")
	fmt.Fprintln(os.Stderr, "       govpower scan --wallet <b58>")
	fmt.Fprintln(os.Stderr, "       govpower verify --expected <file> --got <file> [--tolerance 0.005]")
}

func runScan(args []string) int {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	all := fs.Bool("all", false, "score every citizen and write a snapshot")
	wallet := fs.String("wallet", "", "score a single wallet and print its PowerResult")
	citizensPath := fs.String("citizens", "", "path to a newline-delimited file of base58 wallets (required with --all)")
	outPath := fs.String("out", "native-governance-power.json", "output snapshot path")
	roundDigits := fs.Int("round-digits", 3, "fractional digits to round multipliers to")
	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}

	cfg, err := config.Load(os.Getenv)
	if err != nil {
		return reportFatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	client, err := rpc.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return reportFatal(err)
	}

	reg, err := registrar.Load(ctx, client, cfg.VSRProgramID, cfg.RealmPubkey, cfg.GoverningTokenMint)
	if err != nil {
		return reportFatal(err)
	}

	vsrSnapshot, err := client.SnapshotVSR(ctx, cfg.VSRProgramID)
	if err != nil {
		return reportFatal(err)
	}

	refs := make([]resolve.VoterAccountRef, 0, len(vsrSnapshot))
	for _, acc := range vsrSnapshot {
		ref, err := resolve.ExtractVoterRef(acc.Pubkey, acc.Account.Data.Data)
		if err != nil {
			continue
		}
		ref.Data = acc.Account.Data.Data
		refs = append(refs, ref)
	}

	aliasMap, err := config.LoadWalletAliases(cfg.WalletAliasesFile)
	if err != nil {
		return reportFatal(err)
	}
	aliasTable := resolve.NewAliasTable(aliasMap)

	const tokenOwnerRecordSize = 200
	records, err := resolve.FetchTokenOwnerRecords(ctx, client, cfg.GovernanceProgramID, tokenOwnerRecordSize)
	if err != nil {
		return reportFatal(err)
	}

	now := time.Now().Unix()
	parserConfig := vsr.DefaultParserConfig()
	parserConfig.DigitShift = reg.DigitShift
	opts := power.ScoreOptions{
		Now:               now,
		Registrar:         reg,
		ParserConfig:      parserConfig,
		MultiplierOptions: vsr.MultiplierOptions{RoundDigits: roundDigits},
	}
	clamps := &power.ClampCounter{}

	var wallets []common.Address
	switch {
	case *wallet != "":
		wallets = []common.Address{common.Base58ToAddress(*wallet)}
	case *all:
		wallets, err = readCitizens(*citizensPath)
		if err != nil {
			return reportFatal(err)
		}
	default:
		printUsage()
		return exitConfigError
	}

	var results []power.Result
	for _, w := range wallets {
		native := resolve.ClassifyNative(w, refs, aliasTable)
		nativeSet := make(map[common.Address]bool, len(native))
		for _, n := range native {
			nativeSet[n.Account] = true
		}
		delegated := resolve.ClassifyDelegated(w, records, refs, nativeSet)

		classified := append(append([]resolve.ClassifiedAccount{}, native...), delegated...)
		res := power.ScoreWallet(w, classified, opts, clamps)
		results = append(results, res)
	}

	if *wallet != "" {
		printWalletResult(results[0])
		return exitOK
	}

	doc := snapshot.Build(results, now, time.Now(), clamps.Count)
	if err := snapshot.Write(*outPath, doc); err != nil {
		return reportFatal(err)
	}

	color.Green("scored %d citizens, wrote %s", len(results), *outPath)
	return exitOK
}

func runVerify(args []string) int {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	expectedPath := fs.String("expected", "", "expected snapshot fixture")
	gotPath := fs.String("got", "", "computed snapshot to verify")
	tolerance := fs.Float64("tolerance", 0.005, "relative tolerance for power fields")
	if err := fs.Parse(args); err != nil {
		return exitConfigError
	}
	if *expectedPath == "" || *gotPath == "" {
		printUsage()
		return exitConfigError
	}

	want, err := snapshot.Read(*expectedPath)
	if err != nil {
		return reportFatal(err)
	}
	got, err := snapshot.Read(*gotPath)
	if err != nil {
		return reportFatal(err)
	}

	if err := snapshot.Compare(got, want, *tolerance); err != nil {
		var mismatch *core.VerificationMismatch
		if errors.As(err, &mismatch) {
			color.Red("verification mismatch: %s", mismatch.Error())
			fmt.Println(snapshot.DumpMismatch(got, want, mismatch.Wallet))
		} else {
			color.Red("verification failed: %s", err)
		}
		return exitVerificationFail
	}

	color.Green("verification passed: %d citizens within %.3f%% tolerance", len(got.Citizens), *tolerance*100)
	return exitOK
}

func readCitizens(path string) ([]common.Address, error) {
	if path == "" {
		return nil, core.NewConfigError("citizens", fmt.Errorf("--citizens is required with --all"))
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, core.NewConfigError("citizens_file", err)
	}
	defer f.Close()

	var wallets []common.Address
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		wallets = append(wallets, common.Base58ToAddress(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, core.NewConfigError("citizens_file", err)
	}
	return wallets, nil
}

func printWalletResult(r power.Result) {
	fmt.Printf("wallet=%s native=%.6f delegated=%.6f total=%.6f\n", r.Wallet.String(), r.NativePower, r.DelegatedPower, r.TotalPower)
	for _, d := range r.Deposits {
		fmt.Printf("  deposit account=%s amount=%.6f multiplier=%.6f power=%.6f kind=%s class=%s\n",
			d.Account.String(), d.Amount, d.Multiplier, d.VotingPower, d.LockupKind, d.Classification)
	}
	for _, f := range r.Filtered {
		fmt.Printf("  filtered account=%s reason=%s\n", f.Account.String(), f.Reason)
	}
}

func reportFatal(err error) int {
	var cfgErr *core.ConfigError
	var txErr *core.TransportError
	switch {
	case errors.As(err, &cfgErr):
		color.Red("ConfigError: %s", err)
		return exitConfigError
	case errors.As(err, &txErr):
		color.Red("TransportError: %s", err)
		return exitTransportFailure
	default:
		color.Red("error: %s", err)
		return exitConfigError
	}
}

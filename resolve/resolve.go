// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package resolve

import (
	"context"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cielu/govpower/common"
	"github.com/cielu/govpower/core"
	"github.com/cielu/govpower/pkg/encodbin"
	"github.com/cielu/govpower/rpc"
)

// Classification labels how a VoterAccount's deposits count toward a
// wallet's power.
type Classification int

const (
	ClassNone Classification = iota
	ClassDirect
	ClassAlias
	ClassCrossAlias
	ClassDelegate
)

func (c Classification) IsNative() bool {
	return c == ClassDirect || c == ClassAlias || c == ClassCrossAlias
}

// AliasTable is the externally supplied main_wallet -> {alias wallets} map,
// a trust input the resolver never derives itself.
type AliasTable struct {
	aliasesOf map[common.Address]mapset.Set[common.Address]
}

// NewAliasTable builds an AliasTable from a main->aliases mapping. The
// table stores both directions so `aliases[W]` and `aliases[authority]`
// membership tests (spec rule 2, "Alias") are O(1) either way.
func NewAliasTable(mainToAliases map[common.Address][]common.Address) *AliasTable {
	t := &AliasTable{aliasesOf: make(map[common.Address]mapset.Set[common.Address])}
	for main, aliases := range mainToAliases {
		set := t.aliasesOf[main]
		if set == nil {
			set = mapset.NewSet[common.Address]()
			t.aliasesOf[main] = set
		}
		for _, alias := range aliases {
			set.Add(alias)
			reverse := t.aliasesOf[alias]
			if reverse == nil {
				reverse = mapset.NewSet[common.Address]()
				t.aliasesOf[alias] = reverse
			}
			reverse.Add(main)
		}
	}
	return t
}

// Aliases returns the alias set of addr, or an empty set if addr has none.
func (t *AliasTable) Aliases(addr common.Address) mapset.Set[common.Address] {
	if t == nil {
		return mapset.NewSet[common.Address]()
	}
	if s, ok := t.aliasesOf[addr]; ok {
		return s
	}
	return mapset.NewSet[common.Address]()
}

// classify applies the three-rule precedence from the authority resolver
// design: direct match, alias-table membership (either direction), then
// cross-alias (an alias of W equals an alias of authority).
func classify(w, authority common.Address, aliases *AliasTable) Classification {
	if authority == w {
		return ClassDirect
	}
	if aliases.Aliases(authority).Contains(w) || aliases.Aliases(w).Contains(authority) {
		return ClassAlias
	}
	if aliases.Aliases(w).Intersect(aliases.Aliases(authority)).Cardinality() > 0 {
		return ClassCrossAlias
	}
	return ClassNone
}

// VoterAccountRef is a minimal view of a VSR Voter account the resolver
// needs: its own pubkey and the two candidate authority fields.
type VoterAccountRef struct {
	Pubkey          common.Address
	Authority       common.Address // bytes [32..64]
	VoterAuthority  common.Address // bytes [8..40], identical to Authority in the canonical layout
	Data            []byte
}

// ClassifiedAccount is one VSR account assigned to a wallet's native or
// delegated set.
type ClassifiedAccount struct {
	Account        common.Address
	Classification Classification
	Data           []byte
}

// ExtractVoterRef reads the two candidate authority fields out of a raw VSR
// account blob, per the binary layout contract in the external interfaces:
// authority at [32..64], a second voter-authority candidate at [8..40].
func ExtractVoterRef(pubkey common.Address, data []byte) (VoterAccountRef, error) {
	authBytes, err := encodbin.PeekBytes(data, 32, 32)
	if err != nil {
		return VoterAccountRef{}, core.NewDecodeError(pubkey.String(), "missing_authority_field", err)
	}
	voterAuthBytes, err := encodbin.PeekBytes(data, 8, 32)
	if err != nil {
		return VoterAccountRef{}, core.NewDecodeError(pubkey.String(), "missing_voter_authority_field", err)
	}
	return VoterAccountRef{
		Pubkey:         pubkey,
		Authority:      common.BytesToAddress(authBytes),
		VoterAuthority: common.BytesToAddress(voterAuthBytes),
		Data:           data,
	}, nil
}

// ClassifyNative walks the VSR snapshot and returns every account whose
// authority or voter-authority field classifies as native for wallet w
// (direct, alias, or cross-alias). Both candidate fields are tested; the
// first match in either field wins.
func ClassifyNative(w common.Address, snapshot []VoterAccountRef, aliases *AliasTable) []ClassifiedAccount {
	var out []ClassifiedAccount
	for _, acc := range snapshot {
		class := classify(w, acc.Authority, aliases)
		if class == ClassNone {
			class = classify(w, acc.VoterAuthority, aliases)
		}
		if class != ClassNone {
			out = append(out, ClassifiedAccount{Account: acc.Pubkey, Classification: class, Data: acc.Data})
		}
	}
	return out
}

// TokenOwnerRecord carries the governance-program fields the delegate pass
// needs, per the binary layout contract:
// governing_token_mint [1..33], governing_token_owner [65..97],
// governing_token_deposit_amount [97..105] LE, governance_delegate behind
// an Option<Pubkey> marker byte.
type TokenOwnerRecord struct {
	GoverningTokenMint     common.Address
	GoverningTokenOwner    common.Address
	GoverningTokenDeposit  uint64
	GovernanceDelegate     *common.Address
}

// ParseTokenOwnerRecord decodes a raw governance TokenOwnerRecord account.
func ParseTokenOwnerRecord(pubkey common.Address, data []byte) (*TokenOwnerRecord, error) {
	mintBytes, err := encodbin.PeekBytes(data, 1, 32)
	if err != nil {
		return nil, core.NewDecodeError(pubkey.String(), "tor_missing_mint", err)
	}
	ownerBytes, err := encodbin.PeekBytes(data, 65, 32)
	if err != nil {
		return nil, core.NewDecodeError(pubkey.String(), "tor_missing_owner", err)
	}
	deposit, err := encodbin.PeekU64(data, 97)
	if err != nil {
		return nil, core.NewDecodeError(pubkey.String(), "tor_missing_deposit", err)
	}

	rec := &TokenOwnerRecord{
		GoverningTokenMint:    common.BytesToAddress(mintBytes),
		GoverningTokenOwner:   common.BytesToAddress(ownerBytes),
		GoverningTokenDeposit: deposit,
	}

	const delegateMarkerOffset = 105
	if marker, err := encodbin.PeekBytes(data, delegateMarkerOffset, 1); err == nil && marker[0] != 0 {
		if delegateBytes, err := encodbin.PeekBytes(data, delegateMarkerOffset+1, 32); err == nil {
			addr := common.BytesToAddress(delegateBytes)
			rec.GovernanceDelegate = &addr
		}
	}

	return rec, nil
}

// ClassifyDelegated scans TokenOwnerRecords for delegates pointing at w and
// returns the VSR accounts whose authority matches the record's owner --
// those accounts' deposits count toward delegated power, never native. An
// account that already classified as native for w is never duplicated here
// (spec invariant: the sets are disjoint).
func ClassifyDelegated(w common.Address, records []TokenOwnerRecord, snapshot []VoterAccountRef, nativeAlready map[common.Address]bool) []ClassifiedAccount {
	var out []ClassifiedAccount
	for _, rec := range records {
		if rec.GovernanceDelegate == nil || *rec.GovernanceDelegate != w || rec.GoverningTokenOwner == w {
			continue
		}
		for _, acc := range snapshot {
			if nativeAlready[acc.Pubkey] {
				continue
			}
			if acc.Authority == rec.GoverningTokenOwner || acc.VoterAuthority == rec.GoverningTokenOwner {
				out = append(out, ClassifiedAccount{Account: acc.Pubkey, Classification: ClassDelegate, Data: acc.Data})
			}
		}
	}
	return out
}

// FetchTokenOwnerRecords loads every TokenOwnerRecord owned by the
// governance program, used for the delegate pass. There is no indexed
// lookup by delegate on-chain, so this is a full program-account scan
// filtered to the TokenOwnerRecord discriminator size.
func FetchTokenOwnerRecords(ctx context.Context, client *rpc.Client, governanceProgramID common.Address, tokenOwnerRecordSize int) ([]TokenOwnerRecord, error) {
	accounts, err := client.GetProgramAccounts(ctx, governanceProgramID, tokenOwnerRecordSize, nil)
	if err != nil {
		return nil, err
	}
	var records []TokenOwnerRecord
	for _, acc := range accounts {
		rec, err := ParseTokenOwnerRecord(acc.Pubkey, acc.Account.Data.Data)
		if err != nil {
			continue
		}
		records = append(records, *rec)
	}
	return records, nil
}

// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package registrar

import (
	"crypto/sha256"
	"errors"
	"math/big"

	"github.com/cielu/govpower/common"
)

// Ported from https://github.com/solana-labs/solana/blob/216983c50e0a618facc39aa07472ba6d23f1b33a/sdk/program/src/pubkey.rs#L204
const (
	maxSeedLength = 32
	maxSeeds      = 16
	pdaMarker     = "ProgramDerivedAddress"
)

var errMaxSeedLengthExceeded = errors.New("registrar: max seed length exceeded")

// edwards25519 field prime p = 2^255 - 19, and curve constant d.
var (
	fieldPrime = mustBig("57896044618658097711785492504343953926634992332820282019728792003956564819949")
	curveD     = mustBig("37095705934669439343138083508754565189542113879843219016388785533085940283555")
	one        = big.NewInt(1)
)

func mustBig(dec string) *big.Int {
	v, ok := new(big.Int).SetString(dec, 10)
	if !ok {
		panic("registrar: bad constant " + dec)
	}
	return v
}

// isOnCurve reports whether the 32-byte value, read as a little-endian y
// coordinate, decompresses to a valid point on the ed25519 curve. It is the
// same existence test Solana's pubkey derivation runs: a PDA is only valid
// when the sha256 digest falls *off* the curve.
func isOnCurve(b []byte) bool {
	yBytes := make([]byte, 32)
	copy(yBytes, b)
	yBytes[31] &= 0x7f // clear sign bit, only the magnitude matters for existence

	// reverse to big-endian for big.Int
	for i, j := 0, len(yBytes)-1; i < j; i, j = i+1, j-1 {
		yBytes[i], yBytes[j] = yBytes[j], yBytes[i]
	}
	y := new(big.Int).SetBytes(yBytes)
	y.Mod(y, fieldPrime)

	y2 := new(big.Int).Mul(y, y)
	y2.Mod(y2, fieldPrime)

	u := new(big.Int).Sub(y2, one)
	u.Mod(u, fieldPrime)

	v := new(big.Int).Mul(curveD, y2)
	v.Add(v, one)
	v.Mod(v, fieldPrime)

	if v.Sign() == 0 {
		return false
	}

	vInv := new(big.Int).ModInverse(v, fieldPrime)
	if vInv == nil {
		return false
	}
	x2 := new(big.Int).Mul(u, vInv)
	x2.Mod(x2, fieldPrime)

	if x2.Sign() == 0 {
		return true
	}
	return new(big.Int).ModSqrt(x2, fieldPrime) != nil
}

// createProgramAddress hashes seeds||programID||marker and accepts the
// result only when it falls off the curve -- a PDA must never be a valid
// public key with a corresponding private key.
func createProgramAddress(seeds [][]byte, programID common.Address) (common.Address, error) {
	if len(seeds) > maxSeeds {
		return common.Address{}, errMaxSeedLengthExceeded
	}
	for _, seed := range seeds {
		if len(seed) > maxSeedLength {
			return common.Address{}, errMaxSeedLengthExceeded
		}
	}

	h := sha256.New()
	for _, seed := range seeds {
		h.Write(seed)
	}
	h.Write(programID[:])
	h.Write([]byte(pdaMarker))
	sum := h.Sum(nil)

	if isOnCurve(sum) {
		return common.Address{}, errors.New("registrar: invalid seeds, address must fall off the curve")
	}
	return common.BytesToAddress(sum), nil
}

// findProgramAddress finds a valid program address, decrementing the bump
// seed from 255 until the candidate falls off the curve.
func findProgramAddress(seeds [][]byte, programID common.Address) (common.Address, uint8, error) {
	for bump := uint8(255); bump > 0; bump-- {
		addr, err := createProgramAddress(append(append([][]byte{}, seeds...), []byte{bump}), programID)
		if err == nil {
			return addr, bump, nil
		}
	}
	return common.Address{}, 0, errors.New("registrar: unable to find a valid program address")
}

// DeriveAddress computes the deterministic registrar PDA for
// (b"registrar", realm, mint) under the VSR program, per the fixed seed
// layout every VSR deployment uses.
func DeriveAddress(vsrProgramID, realm, mint common.Address) (common.Address, uint8, error) {
	seeds := [][]byte{[]byte("registrar"), realm[:], mint[:]}
	return findProgramAddress(seeds, vsrProgramID)
}

// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package common

import (
	"bytes"
	"database/sql/driver"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"github.com/mr-tron/base58"
	"math/big"
)

// AddressLength is the expected length of the address
const AddressLength = 32

/////// -------------------------------------------------///////
/////// -------------------------------------------------///////
/////// -------------------- Address --------------------///////
/////// -------------------- Address --------------------///////
/////// -------------------------------------------------///////
/////// -------------------------------------------------///////

// Address The address
type Address [AddressLength]byte

// BytesToAddress returns Address with value b.
func BytesToAddress(b []byte) (a Address) {
	a.SetBytes(b)
	return
}

// BigToAddress returns Address with byte values of b.
func BigToAddress(b *big.Int) Address { return BytesToAddress(b.Bytes()) }

// Base58ToAddress returns Address with byte values of b.
func Base58ToAddress(b string) Address {
	// decode base58
	d, _ := base58.Decode(b)
	// bytes to address
	return BytesToAddress(d)
}

// Cmp compares two addresses.
func (a Address) Cmp(other Address) int {
	return bytes.Compare(a[:], other[:])
}

// Bytes return Address bytes
func (a Address) Bytes() []byte { return a[:] }

// Big return Address to *big.Int
func (a Address) Big() *big.Int { return new(big.Int).SetBytes(a[:]) }

// Base58 return base58 account
func (a Address) Base58() string {
	return base58.Encode(a[:])
}

// String return base58 account
func (a Address) String() string {
	return a.Base58()
}

// SetBytes sets the address to the value of b.
func (a *Address) SetBytes(b []byte) {
	if len(b) > len(a) {
		b = b[len(b)-AddressLength:]
	}
	copy(a[AddressLength-len(b):], b)
}

// MarshalText returns base58 str account
func (a Address) MarshalText() ([]byte, error) {
	input, err := json.Marshal(a.Base58())
	return input[1 : len(input)-1], err
}

// UnmarshalText parses an account in base58 syntax.
func (a *Address) UnmarshalText(input []byte) error {
	d, err := base58.Decode(string(input))
	if err != nil {
		return err
	}
	a.SetBytes(d)
	return nil
}

// UnmarshalJSON parses an account in base58 syntax.
func (a *Address) UnmarshalJSON(input []byte) error {
	// Unmarshal data to []byte
	data, _, err := UnmarshalDataByEncoding(input)
	// set decoded bytes to Address
	a.SetBytes(data)
	return err
}

// Scan implements Scanner for database/sql.
func (a *Address) Scan(src interface{}) error {
	srcB, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("can't scan %T into Address", src)
	}
	if len(srcB) != AddressLength {
		return fmt.Errorf("can't scan []byte of len %d into Address, want %d", len(srcB), AddressLength)
	}
	copy(a[:], srcB)
	return nil
}

// Value implements valuer for database/sql.
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

// ImplementsGraphQLType returns true if Address implements the specified GraphQL type.
func (a Address) ImplementsGraphQLType(name string) bool { return name == "Address" }

// UnmarshalGraphQL unmarshals the provided GraphQL query data.
func (a *Address) UnmarshalGraphQL(input interface{}) error {
	var err error
	switch input := input.(type) {
	case string:
		err = a.UnmarshalText([]byte(input))
	default:
		err = fmt.Errorf("unexpected type %T for Address", input)
	}
	return err
}

/////// -------------------------------------------------///////
/////// -------------------------------------------------///////
/////// -------------------- SolData --------------------///////
/////// -------------------- SolData --------------------///////
/////// -------------------------------------------------///////
/////// -------------------------------------------------///////

// SolData base58, base64 data
type SolData struct {
	Data     []byte
	Encoding string
}

// Base58 return base58 str
func (sd SolData) Base58() string {
	return base58.Encode(sd.Data)
}

func (sd SolData) Base64() string {
	return base64.StdEncoding.EncodeToString(sd.Data)
}

// String return base58 str
func (sd SolData) String() string {
	// base64
	if sd.Encoding == "base64" {
		return sd.Base64()
	}
	return sd.Base58()
}

// SetBytes sets the SolData to the value of sd. (default base58)
func (sd *SolData) SetBytes(input []byte) {
	sd.Data = input
}

// SetSolData sets the SolData
func (sd *SolData) SetSolData(data []byte, encoding string) {
	sd.Data = data
	sd.Encoding = encoding
}

// MarshalText returns base58/base64 str
func (sd SolData) MarshalText() ([]byte, error) {
	input, err := json.Marshal(sd.String())
	return input[1 : len(input)-1], err
}

// UnmarshalText parses data in base58 syntax.
func (sd *SolData) UnmarshalText(input []byte) error {
	d, err := base58.Decode(string(input))
	if err != nil {
		return err
	}
	sd.SetBytes(d)
	return nil
}

// UnmarshalJSON parses data in base58 syntax.
func (sd *SolData) UnmarshalJSON(input []byte) error {
	// Unmarshal data to []byte
	data, encoding, err := UnmarshalDataByEncoding(input)
	// set SolData by encoding
	if encoding == "" {
		sd.SetBytes(data)
	}else {
		sd.SetSolData(data, encoding)
	}
	return err
}

// Value implements valuer for database/sql.
func (sd SolData) Value() (driver.Value, error) {
	return sd.Data[:], nil
}


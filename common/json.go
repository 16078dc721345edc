// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package common

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/mr-tron/base58"
)

// UnmarshalDataByEncoding unmarshals a raw JSON value that is either a plain
// base58 string or a Solana-style [data, encoding] tuple into decoded bytes.
func UnmarshalDataByEncoding(input []byte) ([]byte, string, error) {
	var (
		err      error
		data     interface{}
		encoding string
	)
	if err = json.Unmarshal(input, &data); err != nil {
		return input, "", err
	}
	switch v := data.(type) {
	case string:
		input, _ = base58.Decode(v)
	case []interface{}:
		if len(v) != 2 {
			return nil, "", fmt.Errorf("malformed account data tuple: want [data, encoding], got %d elements", len(v))
		}
		dataStr, ok := v[0].(string)
		if !ok {
			return nil, "", fmt.Errorf("malformed account data tuple: element 0 is %T, want string", v[0])
		}
		switch v[1] {
		case "base58":
			encoding = "base58"
			input, _ = base58.Decode(dataStr)
		case "base64", "base64+zstd":
			encoding = "base64"
			input, _ = base64.StdEncoding.DecodeString(dataStr)
		default:
			return nil, "", fmt.Errorf("unsupported account data encoding: %v", v[1])
		}
	}
	return input, encoding, err
}

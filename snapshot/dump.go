// Copyright 2024 The govpower Authors
// This file is part of the govpower library.

package snapshot

import "github.com/davecgh/go-spew/spew"

func spewDump(v interface{}) string {
	return spew.Sdump(v)
}

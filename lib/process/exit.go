// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package process

import (
	"fmt"
	"os"
)

// Fatal writes "error: err" to stderr and exits with code 1. This is
// the standard entrypoint error handler: every fatal condition in the
// relay — unexpected kernel errors, startup configuration problems,
// failed cleanup — propagates up to main() as an error and lands here.
func Fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

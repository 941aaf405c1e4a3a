// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package process provides binary entrypoint helpers. These centralize
// the raw stderr I/O that exists before or after the structured logger:
// fatal error reporting when the logger may not be initialized, and
// process exit after an unrecoverable error in main().
package process

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli holds the command-line plumbing shared by recordgrid's
// entry points: categorized errors with hints ([ToolError]), silent
// exit codes ([ExitError]), the exit path that maps either to a status
// ([Exit]), and the stderr logger for non-interactive modes.
package cli

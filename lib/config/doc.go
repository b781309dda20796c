// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config provides configuration loading for recordgrid.
//
// Configuration is loaded from a single file named by either the
// RECORDGRID_CONFIG environment variable (via [Load]) or a --config
// flag (via [LoadFile]). There is no ~/.config discovery and no
// automatic file search. Without a file the binary runs on [Default].
//
// YAML is the native format; files ending in .json or .jsonc are
// accepted with comments.
//
// Variable expansion is performed on path fields after loading:
// ${HOME} and ${VAR:-default} patterns are expanded. No environment
// variable overrides a config value.
//
// Key exports:
//
//   - [Config] -- data file, key policy, column overrides, logging
//   - [Default] -- the configuration used without a file
//   - [Load] and [LoadFile] -- the two entry points for loading
//   - [Config.Schema] -- the column schema with overrides applied
package config

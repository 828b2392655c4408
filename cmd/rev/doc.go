// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for rev.
//
// Handlers receive an App and resolve a session once per invocation: the
// merged configuration, the persisted preferences and a logger. Business
// logic lives in the internal packages; this package wires them together
// and renders their results.
package cmd

// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against embedded schemas.
//
// Parsing follows three steps: compile the schema, unify the user document
// with the root definition, then validate and decode. Errors carry the
// JSON-style path of the offending field:
//
//	result, err := cueutil.ParseAndDecode[map[string]any](
//	    schema, data, "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
package cueutil

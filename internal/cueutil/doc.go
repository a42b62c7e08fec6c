// SPDX-License-Identifier: MPL-2.0

// Package cueutil validates CUE documents against an embedded schema:
// compile the schema, compile the user data, unify both under a root
// definition, validate, then decode.
//
//	//go:embed config_schema.cue
//	var schema string
//
//	res, err := cueutil.ParseAndDecode[map[string]any](
//	    []byte(schema), data, "#Config",
//	    cueutil.WithFilename(path),
//	    cueutil.WithConcrete(false),
//	)
package cueutil

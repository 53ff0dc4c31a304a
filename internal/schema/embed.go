package schema

import _ "embed"

// Source contains the embedded CUE schema definition for
// #BrandSpecification. The validator compiles it once at construction.
//
//go:embed brandspec.cue
var Source []byte

// Package schema owns the canonical BrandSpecification contract: the
// embedded CUE definition, its independent version, validation against it,
// and the bounded set of structural repairs keyed by validator error path.
package schema

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// Version is the current schema version. Synthesized specifications are
// stamped with it; consumers declare the version they were built against.
const Version = "1.0.0"

// IsCompatible checks whether a specification's declared schema version is
// compatible with Version, using a caret semver constraint. Returns false
// with no error for incompatible versions and an error only for versions
// that do not parse.
func IsCompatible(specVersion string) (bool, error) {
	constraint, err := semver.NewConstraint("^" + Version)
	if err != nil {
		return false, fmt.Errorf("invalid schema version: %w", err)
	}

	v, err := semver.NewVersion(specVersion)
	if err != nil {
		return false, fmt.Errorf("invalid specification version %q: %w", specVersion, err)
	}

	return constraint.Check(v), nil
}

package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsCompatible(t *testing.T) {
	tests := []struct {
		name    string
		version string
		want    bool
	}{
		{name: "current version", version: Version, want: true},
		{name: "later patch", version: "1.0.5", want: true},
		{name: "later minor", version: "1.2.0", want: true},
		{name: "next major", version: "2.0.0", want: false},
		{name: "earlier major", version: "0.9.0", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IsCompatible(tt.version)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsCompatibleRejectsGarbage(t *testing.T) {
	_, err := IsCompatible("not-a-version")
	assert.Error(t, err)
}

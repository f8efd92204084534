package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCmd(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "true", versionCmd.Annotations[annotationNoRuntime])
}

func TestVersionCmd_Prints(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{version: "dev", want: "jse version dev"},
		{version: "1.2.0", want: "jse version 1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.version, func(t *testing.T) {
			original := version
			version = tt.version
			defer func() { version = original }()

			out, err := execute(t, "version")
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

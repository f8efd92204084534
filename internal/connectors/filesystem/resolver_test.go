package filesystem

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePath(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want string
	}{
		{
			name: "file:// URI is converted to local path",
			uri:  "file:///reports/npn/annual-2024.pdf",
			want: "/reports/npn/annual-2024.pdf",
		},
		{
			name: "file:// URI with spaces",
			uri:  "file:///reports/my reports/sens.txt",
			want: "/reports/my reports/sens.txt",
		},
		{
			name: "escaped characters are decoded",
			uri:  "file:///reports/interim%20results.docx",
			want: "/reports/interim results.docx",
		},
		{
			name: "bare path passes through unchanged",
			uri:  "/reports/npn/annual-2024.pdf",
			want: "/reports/npn/annual-2024.pdf",
		},
		{
			name: "relative path passes through unchanged",
			uri:  "reports/sens.txt",
			want: "reports/sens.txt",
		},
		{
			name: "empty string",
			uri:  "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolvePath(tt.uri))
		})
	}
}

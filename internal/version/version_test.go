package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShort(t *testing.T) {
	tests := []struct{ in, want string }{
		{"v1.2.3-abcdef", "v1.2.3"},
		{"v1.10.0", "v1.10.0"},
		{"dev", "dev"},
		{"v100.200.300-rc1", "v100.200.30"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Short(tt.in), tt.in)
	}
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already normalized", "src/utils/helpers.go", "src/utils/helpers.go"},
		{"backslashes", `src\utils\helpers.go`, "src/utils/helpers.go"},
		{"dot-slash prefix", "./src/main.go", "src/main.go"},
		{"duplicate separators", "src//utils///a.go", "src/utils/a.go"},
		{"trailing separator", "src/utils/", "src/utils"},
		{"file uri", "file:///home/app/main.go", "/home/app/main.go"},
		{"empty", "", ""},
		{"bare root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePath(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizePath(got), "normalization must be idempotent")
		})
	}
}

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "getuserbyid", NormalizeName("getUserById"))
	assert.Equal(t, "getuserbyid", NormalizeName("GETUSERBYID"))
}

func TestDirOf(t *testing.T) {
	assert.Equal(t, "src/utils", DirOf("src/utils/helpers.go"))
	assert.Equal(t, "src/utils", DirOf("src//utils//helpers.go"))
	assert.Equal(t, "", DirOf("main.go"))
}

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "0 B", FormatSize(0))
	assert.Equal(t, "0 B", FormatSize(-42))
	assert.Equal(t, "4.0 KiB", FormatSize(4096))
	assert.Equal(t, "1.5 GiB", FormatSize(1610612736))
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "7", FormatCount(7))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
}

func TestDisplayPath(t *testing.T) {
	t.Setenv("HOME", "/Users/demo")

	assert.Equal(t, "~", DisplayPath("/Users/demo"))
	assert.Equal(t, "~/Library/Caches/ms-playwright", DisplayPath("/Users/demo/Library/Caches/ms-playwright"))
	assert.Equal(t, "/usr/local/lib", DisplayPath("/usr/local/lib"))

	// A sibling that merely shares the prefix keeps its full path.
	assert.Equal(t, "/Users/demolition", DisplayPath("/Users/demolition"))
}

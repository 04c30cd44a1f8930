package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateProductBarcode_Deterministic(t *testing.T) {
	a := GenerateProductBarcode("Banana")
	b := GenerateProductBarcode("  banana ")

	// Case and surrounding whitespace must not change the code, or a
	// re-scan of the same product would miss the catalog row.
	assert.Equal(t, a, b)
}

func TestGenerateProductBarcode_Format(t *testing.T) {
	code := GenerateProductBarcode("milk")

	parts := strings.Split(code, "-")
	assert.Len(t, parts, 3)
	assert.Equal(t, "mil", parts[0])
	assert.Len(t, parts[1], 8)
	assert.Equal(t, "20", parts[2])
}

func TestGenerateProductBarcode_ShortName(t *testing.T) {
	code := GenerateProductBarcode("ab")
	assert.True(t, strings.HasPrefix(code, "ab-"))
}

func TestGenerateProductBarcode_DistinctNames(t *testing.T) {
	assert.NotEqual(t, GenerateProductBarcode("milk"), GenerateProductBarcode("eggs"))
}

package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFmtTokens(t *testing.T) {
	tests := []struct {
		input    int
		expected string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1.0k"},
		{15000, "15.0k"},
		{1_000_000, "1.0M"},
		{3_400_000, "3.4M"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, fmtTokens(tt.input), "fmtTokens(%d)", tt.input)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "hello", truncate("hello", 10))
	assert.Equal(t, "hello w...", truncate("hello world, how are you", 10))
	assert.Equal(t, "hello world", truncate("hello\n  world", 20))
	assert.Equal(t, "寿司...", truncate("寿司寿司寿司寿司", 7))
	assert.Empty(t, truncate("", 5))
}

func TestFormatRecipeTags(t *testing.T) {
	in := "Here you go:\n<description>A quick omelette.</description>\n<ingredients>- 2 eggs</ingredients>\n<for>1</for>"

	out := formatRecipeTags(in)

	assert.NotContains(t, out, "<")
	assert.Contains(t, out, "A quick omelette.")
	assert.Contains(t, out, "#### Ingredients\n- 2 eggs")
	assert.Contains(t, out, "#### Servings\n1")
	assert.NotContains(t, out, "#### \n")
}

func TestFormatRecipeTags_LeavesOtherMarkupAlone(t *testing.T) {
	in := "Use a <b>hot</b> pan"
	assert.Equal(t, in, formatRecipeTags(in))
}

func TestRenderMarkdown_NoRenderer(t *testing.T) {
	prev := mdRenderer
	mdRenderer = nil
	t.Cleanup(func() { mdRenderer = prev })

	assert.Equal(t, "**bold**", renderMarkdown("**bold**"))
}

func TestLoadDotEnv_MissingFileIgnored(t *testing.T) {
	require.NoError(t, loadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RECIPEBOT_TEST_NEW=from-file\nRECIPEBOT_TEST_SET=from-file\n"), 0o600))

	t.Setenv("RECIPEBOT_TEST_NEW", "")
	require.NoError(t, os.Unsetenv("RECIPEBOT_TEST_NEW"))
	t.Setenv("RECIPEBOT_TEST_SET", "from-process")

	require.NoError(t, loadDotEnv(path))

	assert.Equal(t, "from-file", os.Getenv("RECIPEBOT_TEST_NEW"))
	assert.Equal(t, "from-process", os.Getenv("RECIPEBOT_TEST_SET"))
}

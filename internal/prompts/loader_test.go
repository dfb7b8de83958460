package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get("skills.json", "extract-skills")
	require.NoError(t, err)
	assert.Contains(t, prompt, "JSON array of strings")
	assert.Contains(t, prompt, "{{.Text}}")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get("parsing.json", "nonexistent-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() { MustGet("nonexistent.json", "some-key") })
	assert.NotPanics(t, func() {
		assert.NotEmpty(t, MustGet("resume.json", "tailor-resume"))
	})
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}! {{.Missing}}"
	result := Format(template, map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	})
	assert.Equal(t, "Hello Alice, welcome to Acme Corp! {{.Missing}}", result)
}

func TestRender(t *testing.T) {
	ClearCache()

	prompt, err := Render("parsing.json", "parse-job-description", map[string]string{"Description": "Senior Go engineer"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Senior Go engineer")
	assert.NotContains(t, prompt, "{{.Description}}")
}

func TestList(t *testing.T) {
	ClearCache()

	keys, err := List("skills.json")
	require.NoError(t, err)
	assert.Equal(t, []string{"extract-skills"}, keys)
}

// Every embedded prompt file must parse, and every template must be non-empty.
func TestAllPromptFilesParse(t *testing.T) {
	ClearCache()

	entries, err := promptFiles.ReadDir(".")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, entry := range entries {
		keys, err := List(entry.Name())
		require.NoError(t, err, entry.Name())
		for _, key := range keys {
			assert.NotEmpty(t, MustGet(entry.Name(), key), "%s/%s", entry.Name(), key)
		}
	}
}

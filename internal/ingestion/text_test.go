package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_PreserveMarkdownHeadings(t *testing.T) {
	result := CleanText("  # Title\n## Subtitle\nContent here")
	assert.Equal(t, "# Title\n## Subtitle\nContent here", result)
}

func TestCleanText_PreserveBulletLists(t *testing.T) {
	result := CleanText("- Item 1\n  - Nested   item\n* Item 3")
	assert.Equal(t, "- Item 1\n  - Nested item\n* Item 3", result)
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	assert.Equal(t, "Line with multiple spaces", CleanText("Line    with \t multiple    spaces"))
}

func TestCleanText_NonBreakingSpaces(t *testing.T) {
	assert.Equal(t, "Senior Go engineer", CleanText("Senior\u00a0\u00a0Go\u2009engineer"))
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	assert.Equal(t, "Line 1\n\nLine 2", CleanText("Line 1\n\n\n  \n\nLine 2"))
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", CleanText("Line 1\r\nLine 2\rLine 3\nLine 4"))
}

func TestCleanText_ComposesUnicode(t *testing.T) {
	decomposed := "Cafe\u0301 developer"
	assert.Equal(t, "Caf\u00e9 developer", CleanText(decomposed))
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	result := CleanText("Test with émojis 🚀 and spéciàl chàracters")
	assert.Equal(t, "Test with émojis 🚀 and spéciàl chàracters", result)
}

func TestCleanText_PreserveIndentation(t *testing.T) {
	assert.Equal(t, "Indented line\n  Less indented", CleanText("    Indented line\n  Less indented"))
}

// Package ingestion turns job descriptions and resumes from files and web pages into clean
// plain text for skill extraction.
package ingestion

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var (
	spaceRun     = regexp.MustCompile(`[ \t\f\v\p{Zs}]+`)
	blankLineRun = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes text while keeping its structure: Unicode is composed (NFC), line
// endings become LF, runs of spaces collapse inside a line, leading indentation is kept,
// and at most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = norm.NFC.String(content)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := blankLineRun.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(result)
}

func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	trimmed := strings.TrimLeft(line, " \t")
	if trimmed == "" {
		return ""
	}

	// Headings lose their indentation
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	body := spaceRun.ReplaceAllString(trimmed, " ")
	if indent > 0 {
		return strings.Repeat(" ", indent) + body
	}
	return body
}

package main

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/joho/godotenv"
	"github.com/mattn/go-runewidth"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("5"))
	userStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	botStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	spinStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	addedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	removeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
)

// mdRenderer renders markdown to terminal-formatted output.
var mdRenderer *glamour.TermRenderer

func initMarkdownRenderer(width int) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return
	}
	mdRenderer = r
}

// renderMarkdown converts markdown text to terminal-formatted output.
func renderMarkdown(text string) string {
	if mdRenderer == nil {
		return text
	}
	out, err := mdRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

var recipeTag = regexp.MustCompile(`(?i)<(/?)(description|ingredients|for|instructions|serving)>`)

var recipeHeadings = map[string]string{
	"description":  "",
	"ingredients":  "Ingredients",
	"for":          "Servings",
	"instructions": "Instructions",
	"serving":      "Serving",
}

// formatRecipeTags turns the tagged recipe sections of a reply into markdown
// headings. Closing tags are dropped.
func formatRecipeTags(text string) string {
	return recipeTag.ReplaceAllStringFunc(text, func(tag string) string {
		m := recipeTag.FindStringSubmatch(tag)
		if m[1] == "/" {
			return ""
		}
		heading := recipeHeadings[strings.ToLower(m[2])]
		if heading == "" {
			return ""
		}
		return "\n#### " + heading + "\n"
	})
}

// truncate shortens s to at most width terminal cells, appending "..." when
// cut. Newlines are replaced with spaces for single-line display.
func truncate(s string, width int) string {
	s = strings.Join(strings.Fields(s), " ")
	return runewidth.Truncate(s, width, "...")
}

// fmtTokens formats a token count for display, using k/M suffixes.
func fmtTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}

// loadDotEnv loads environment variables from path. Missing files are
// ignored and variables already set in the process are kept.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

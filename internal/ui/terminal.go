package ui

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Init resolves color preferences once at startup, before any output.
// The gate dump usually lands in CI logs where stdout is not a TTY, so color
// stays off there unless CLICOLOR_FORCE asks for it.
func Init() {
	if !shouldUseColor(os.Stdout) {
		ForceNoColor()
	}
}

// shouldUseColor reports whether ANSI colors should be used on out.
// It respects NO_COLOR, CLICOLOR_FORCE, CLICOLOR, and TTY detection.
func shouldUseColor(out *os.File) bool {
	// https://no-color.org — any non-empty value disables color.
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	// CLICOLOR_FORCE=1 forces color even without a TTY.
	if strings.TrimSpace(os.Getenv("CLICOLOR_FORCE")) == "1" {
		return true
	}
	// CLICOLOR=0 explicitly disables color.
	if strings.TrimSpace(os.Getenv("CLICOLOR")) == "0" {
		return false
	}
	return term.IsTerminal(int(out.Fd()))
}

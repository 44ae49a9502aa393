package parser

import (
	"regexp"
	"strings"
)

var trailingPromptRe = regexp.MustCompile(`[#>$%)]\s*$`)
var leadingDigitRe = regexp.MustCompile(`^\s*\d`)

// Sanitize strips the command echo and trailing prompt noise that an
// interactive CLI session leaves in captured output, so templates and
// regexes only ever see the data lines.
//
// Leading: at most three lines that echo the command (match it exactly,
// contain it, or end with it) are stripped.
// Trailing: blank lines are stripped, then one more trailing short line is
// stripped if it looks like a prompt: under 60 chars, ends in a prompt
// character, and doesn't start with a digit (so a one-line numeric summary
// row is never mistaken for a prompt).
//
// Sanitize is idempotent: sanitizing already-sanitized output is a no-op.
func Sanitize(output, command string) string {
	lines := strings.Split(output, "\n")

	cmd := strings.TrimSpace(command)
	stripped := 0
	for len(lines) > 0 && stripped < 3 && cmd != "" {
		line := strings.TrimSpace(lines[0])
		if line == cmd || strings.Contains(line, cmd) || strings.HasSuffix(line, cmd) {
			lines = lines[1:]
			stripped++
			continue
		}
		break
	}

	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	if len(lines) > 0 {
		last := strings.TrimRight(lines[len(lines)-1], " \t\r")
		if len(last) < 60 && trailingPromptRe.MatchString(last) && !leadingDigitRe.MatchString(last) {
			lines = lines[:len(lines)-1]
		}
	}

	return strings.Join(lines, "\n")
}

package transport

import (
	"regexp"
	"strings"
)

// promptCharRe matches a short line that looks like an end-of-output device
// prompt: ends in one of the usual CLI sentinel characters.
var promptCharRe = regexp.MustCompile(`[#>$%:\])]\s*$`)

var configModeRe = regexp.MustCompile(`\([^)]*\)\s*$`)
var userAtHostRe = regexp.MustCompile(`^([\w.\-]+)@([\w.\-]+)`)
var hostPromptRe = regexp.MustCompile(`^([\w.\-]+)[#>$%]\s*$`)

// detectPrompt scans the last few short lines of quiescent shell output for a
// prompt candidate. If a line repeats (the device echoed itself back), the
// repeated base is extracted. Falls back to "#" when nothing matches.
func detectPrompt(output string) string {
	lines := strings.Split(strings.TrimRight(output, "\n"), "\n")

	candidates := make([]string, 0, 4)
	for i := len(lines) - 1; i >= 0 && len(candidates) < 5; i-- {
		line := strings.TrimRight(lines[i], " \t\r")
		if line == "" {
			continue
		}
		if len(line) > 40 {
			continue
		}
		if promptCharRe.MatchString(line) {
			candidates = append(candidates, line)
		}
	}

	if len(candidates) == 0 {
		return "#"
	}

	// If the same candidate appears twice (echoed), prefer it — it is the
	// stable prompt rather than a one-off line that happens to end in '#'.
	counts := map[string]int{}
	for _, c := range candidates {
		counts[c]++
	}
	for _, c := range candidates {
		if counts[c] > 1 {
			return c
		}
	}
	return candidates[0]
}

// extractHostname pulls the device hostname out of a detected prompt,
// stripping config-mode parentheticals like "(config)" or "(config-if)".
func extractHostname(prompt string) string {
	p := strings.TrimSpace(prompt)
	p = configModeRe.ReplaceAllString(p, "")
	p = strings.TrimSpace(p)

	if m := userAtHostRe.FindStringSubmatch(p); m != nil {
		return m[2]
	}
	if m := hostPromptRe.FindStringSubmatch(p); m != nil {
		return m[1]
	}
	return ""
}

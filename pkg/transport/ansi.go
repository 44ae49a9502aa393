package transport

import "regexp"

// csiRe matches ANSI CSI sequences (cursor movement, color, erase-line, …).
var csiRe = regexp.MustCompile("\x1b\\[[0-9;?]*[a-zA-Z]")

// charsetRe matches charset-selection escapes such as ESC ( B.
var charsetRe = regexp.MustCompile("\x1b[()][0-9A-Za-z]")

// oscRe matches OSC sequences terminated by BEL or ST.
var oscRe = regexp.MustCompile("\x1b\\][^\x07]*\x07")

// filterANSI strips CSI/OSC/charset escapes, the bell, and stray non-printable
// control bytes (everything but \t \n \r) from raw device output. Applied to
// every read before any scanning or storage happens.
func filterANSI(s string) string {
	s = oscRe.ReplaceAllString(s, "")
	s = csiRe.ReplaceAllString(s, "")
	s = charsetRe.ReplaceAllString(s, "")

	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b == '\x07': // bell
			continue
		case b == '\t' || b == '\n' || b == '\r':
			out = append(out, b)
		case b < 0x20 || b == 0x7f:
			continue
		default:
			out = append(out, b)
		}
	}
	return string(out)
}

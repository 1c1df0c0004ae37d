package console

import (
	"strings"
	"unicode"
)

const (
	AnsiReset     = "\x1b[0m"
	AnsiBold      = "\x1b[1m"
	AnsiDim       = "\x1b[2m"
	AnsiUnderline = "\x1b[4m"
	AnsiRed       = "\x1b[31m"
	AnsiGreen     = "\x1b[32m"
	AnsiYellow    = "\x1b[33m"
	AnsiBlue      = "\x1b[34m"
	AnsiMagenta   = "\x1b[35m"
	AnsiCyan      = "\x1b[36m"
)

// Style wraps text with the provided ANSI attributes.
func Style(text string, attrs ...string) string {
	if len(attrs) == 0 {
		return text
	}
	return strings.Join(attrs, "") + text + AnsiReset
}

// Highlight formats room ids and designer names consistently.
func Highlight(name string) string {
	return Style(name, AnsiBold, AnsiCyan)
}

// Ansi ensures output strings end with a reset sequence.
func Ansi(c string) string {
	if strings.Contains(c, "\x1b[") && !strings.HasSuffix(c, AnsiReset) {
		return c + AnsiReset
	}
	return c
}

// Prompt renders the status readout followed by the input marker.
func Prompt(status string) string {
	var b strings.Builder
	b.WriteString("\r\n")
	if status != "" {
		b.WriteString(Style("["+status+"]", AnsiDim))
		b.WriteString("\r\n")
	}
	b.WriteString(Style("> ", AnsiBold, AnsiYellow))
	return Ansi(b.String())
}

// Trim normalises a telnet input line: control and format characters are
// dropped, other whitespace becomes a plain space.
func Trim(s string) string {
	return strings.TrimSpace(sanitizeInput(s))
}

func sanitizeInput(s string) string {
	clean := true
	for _, r := range s {
		if out, ok := sanitizeRune(r); !ok || out != r {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if out, ok := sanitizeRune(r); ok {
			b.WriteRune(out)
		}
	}
	return b.String()
}

func sanitizeRune(r rune) (rune, bool) {
	switch {
	case r == '\r':
		return 0, false
	case r == ' ':
		return r, true
	case unicode.IsSpace(r):
		return ' ', true
	case r < 0x20 || r == 0x7f, unicode.IsControl(r):
		return 0, false
	case unicode.Is(unicode.Cf, r), unicode.In(r, unicode.Zl, unicode.Zp):
		return 0, false
	case !unicode.IsPrint(r):
		return 0, false
	}
	return r, true
}

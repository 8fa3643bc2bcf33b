package llm

import (
	"regexp"
	"strings"
	"unicode"
)

// NoContentPlaceholder replaces output that is empty after cleaning.
const NoContentPlaceholder = "[no response generated]"

// promptSeparators may follow an echoed prompt, tried in order.
var promptSeparators = []string{"\n", "?", ":", " "}

// endMarkers are banners llama-cli prints when input ends or generation stops.
var endMarkers = []string{"> EOF by user", "EOF by user", "[end of text]"}

var ansiEscape = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]`)

// Clean strips llama-cli artifacts from raw output: the echoed prompt, ANSI
// colour codes, end-of-input banners and interactive "> " markers. Runs of
// blank lines collapse to one. The result is trimmed; if nothing is left the
// placeholder is returned.
//
// Passes repeat until the text stops changing, so removing one artifact
// cannot leave another behind and Clean(Clean(s, p), p) == Clean(s, p).
// Every pass that changes the text shortens it, which bounds the loop.
//
// This is pattern matching against one tool's known quirks. It does not
// catch every echo variant (whitespace-normalized echoes, for example) and
// will also eat "> " quote markers from genuine answers.
func Clean(raw, prompt string) string {
	s := raw
	for {
		next := cleanPass(s, prompt)
		if next == s {
			break
		}
		s = next
	}
	if s == "" {
		return NoContentPlaceholder
	}
	return s
}

func cleanPass(s, prompt string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = ansiEscape.ReplaceAllString(s, "")
	s = stripPromptEcho(s, prompt)
	for _, m := range endMarkers {
		s = strings.ReplaceAll(s, m, "")
	}

	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	pendingBlank := false
	for _, l := range lines {
		l = strings.TrimRightFunc(stripPromptMarker(l), unicode.IsSpace)
		if strings.TrimSpace(l) == "" {
			pendingBlank = len(out) > 0
			continue
		}
		if isMarkerNoise(l) {
			continue
		}
		if pendingBlank {
			out = append(out, "")
			pendingBlank = false
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

func stripPromptEcho(s, prompt string) string {
	if strings.TrimSpace(prompt) == "" {
		return s
	}
	t := strings.TrimLeft(s, " \t\n")
	t = strings.TrimPrefix(t, "> ")
	if strings.HasPrefix(t, prompt) {
		return t[len(prompt):]
	}
	p := strings.TrimSpace(prompt)
	for _, sep := range promptSeparators {
		if strings.HasPrefix(t, p+sep) {
			return t[len(p)+len(sep):]
		}
	}
	return s
}

// stripPromptMarker removes any number of leading "> " interactive markers.
func stripPromptMarker(l string) string {
	for {
		switch {
		case strings.HasPrefix(l, "> "):
			l = l[2:]
		case l == ">":
			return ""
		default:
			return l
		}
	}
}

// isMarkerNoise reports lines holding only '>' and whitespace or control runes.
func isMarkerNoise(l string) bool {
	for _, r := range l {
		if r != '>' && !unicode.IsSpace(r) && !unicode.IsControl(r) {
			return false
		}
	}
	return true
}

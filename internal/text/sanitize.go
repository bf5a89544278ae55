package text

import (
	"strings"
	"unicode"
)

// normalizeLineWhitespace collapses all consecutive whitespace characters (spaces, tabs, etc.)
// into a single space and trims leading/trailing whitespace from a line of text.
func normalizeLineWhitespace(line string) string {
	var strBuilder strings.Builder

	var space bool

	for _, r := range line {
		if unicode.IsSpace(r) {
			if !space {
				strBuilder.WriteRune(' ')

				space = true
			}
		} else {
			strBuilder.WriteRune(r)

			space = false
		}
	}

	return strings.TrimSpace(strBuilder.String())
}

// Sanitize cleans model output before it is sent to a chat:
//
//  1. line endings are normalized to LF
//  2. invisible Unicode characters are removed and exotic spaces replaced
//  3. ASCII control characters are replaced by spaces
//  4. whitespace within each line is collapsed
//  5. runs of three or more newlines become exactly two
//
// The result is trimmed and may be empty.
func Sanitize(input string) string {
	if input == "" {
		return ""
	}

	s := strings.ReplaceAll(input, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = unicodeReplacer.Replace(s)
	s = controlCharsRegex.ReplaceAllString(s, " ")

	parts := strings.Split(s, "\n")
	for i := range parts {
		parts[i] = normalizeLineWhitespace(parts[i])
	}

	s = strings.Join(parts, "\n")
	s = multipleNewlinesRegex.ReplaceAllString(s, "\n\n")

	return strings.TrimSpace(s)
}

// SanitizeForLog strips everything but letters, digits, whitespace and basic
// punctuation, and shortens the result to MaxLogTextLength runes.
func SanitizeForLog(input string) string {
	if input == "" {
		return ""
	}

	s := logUnsafeRegex.ReplaceAllString(input, "")
	if runes := []rune(s); len(runes) > MaxLogTextLength {
		s = string(runes[:MaxLogTextLength-3]) + "..."
	}

	return strings.TrimSpace(s)
}

// Truncate returns at most maxRunes runes of s. A non-positive limit
// disables truncation.
func Truncate(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes])
}

// EscapeMarkdownV1 escapes user supplied text for messages sent with the
// legacy Markdown parse mode.
func EscapeMarkdownV1(s string) string {
	return markdownV1Replacer.Replace(s)
}

// Package text provides text validation, sanitization and formatting helpers
// shared by the Telegram handlers and the AI relay.
package text

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// MaxMessageLength is Telegram's limit for a text message.
	MaxMessageLength = 4096
	// MaxLogTextLength bounds text passed through SanitizeForLog.
	MaxLogTextLength = 200

	minNewlinesThreshold = 3
)

// Regular expression patterns and character replacers used for text sanitization.
var (
	// controlCharsRegex matches ASCII control characters (including DEL 0x7F) that should be removed.
	controlCharsRegex = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

	// multipleNewlinesRegex matches sequences of 3 or more newlines.
	multipleNewlinesRegex = regexp.MustCompile("\n{" + strconv.Itoa(minNewlinesThreshold) + ",}")

	// logUnsafeRegex matches everything except letters, digits, whitespace and
	// basic punctuation.
	logUnsafeRegex = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?\-:;()\[\]'"]+`)

	// unicodeReplacer normalizes invisible and exotic whitespace characters
	// that break rendering in Telegram clients.
	unicodeReplacer = strings.NewReplacer(
		// Invisible format control characters
		"\u2060", "", // Word Joiner
		"\uFEFF", "", // Byte Order Mark
		"\u00AD", "", // Soft Hyphen

		// Directional formatting characters
		"\u200E", "", // Left-to-Right Mark
		"\u200F", "", // Right-to-Left Mark

		// Whitespace normalization
		"\u2028", "\n", // Line Separator
		"\u2029", "\n\n", // Paragraph Separator
		"\u200B", " ", // Zero Width Space
		"\u2009", " ", // Thin Space
		"\u200A", " ", // Hair Space
		"\u202F", " ", // Narrow No-Break Space
		"\u3000", " ", // Ideographic Space
		"\u00A0", " ", // Non-breaking Space
	)

	// markdownV1Replacer escapes the characters legacy Markdown treats as markup.
	markdownV1Replacer = strings.NewReplacer(
		"_", `\_`,
		"*", `\*`,
		"`", "\\`",
		"[", `\[`,
	)
)

package form

import "strings"

var exitPhrases = map[string]bool{
	"stop":       true,
	"cancel":     true,
	"exit":       true,
	"quit":       true,
	"never mind": true,
	"nevermind":  true,
}

var confirmPhrases = map[string]bool{
	"yes":     true,
	"y":       true,
	"yep":     true,
	"yeah":    true,
	"sure":    true,
	"ok":      true,
	"okay":    true,
	"confirm": true,
}

// normalizeIntent lowercases text and strips surrounding punctuation so
// "Yes!" and " yes " compare equal
func normalizeIntent(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = strings.Trim(text, ".!?, ")
	return strings.Join(strings.Fields(text), " ")
}

// IsExit reports whether the user wants to leave the form
func IsExit(text string) bool {
	return exitPhrases[normalizeIntent(text)]
}

// IsConfirm reports whether the user accepted the sheet
func IsConfirm(text string) bool {
	return confirmPhrases[normalizeIntent(text)]
}

// This file derives a title and author from an archive's file name.

package library

import "strings"

// UnknownAuthor is used when no author can be derived from a file name.
const UnknownAuthor = "Unknown"

// filenameRule splits a name into title and author. ok is false when the
// rule does not apply to the name.
type filenameRule struct {
	name  string
	split func(name string) (title, author string, ok bool)
}

// filenameRules are tried in order and the first match wins.
var filenameRules = []filenameRule{
	{name: "dash", split: splitOnFirst(" - ")},
	{name: "by", split: splitOnFirst(" by ")},
	{name: "parentheses", split: splitParentheses},
}

// ParseFilename derives (title, author) from a file name whose extension has
// already been stripped. Recognised forms are "Title - Author",
// "Title by Author" and "Title (Author)".
func ParseFilename(name string) (title, author string) {
	return ParseFilenameWithDefault(name, UnknownAuthor)
}

// ParseFilenameWithDefault is ParseFilename with a caller-chosen sentinel
// for the author.
func ParseFilenameWithDefault(name, unknownAuthor string) (title, author string) {
	for _, rule := range filenameRules {
		title, author, ok := rule.split(name)
		if !ok {
			continue
		}
		if author == "" {
			author = unknownAuthor
		}
		return title, author
	}
	return name, unknownAuthor
}

func splitOnFirst(sep string) func(string) (string, string, bool) {
	return func(name string) (string, string, bool) {
		left, right, found := strings.Cut(name, sep)
		if !found {
			return "", "", false
		}
		return strings.TrimSpace(left), strings.TrimSpace(right), true
	}
}

// splitParentheses requires the first "(" to come before the first ")".
func splitParentheses(name string) (string, string, bool) {
	open := strings.IndexByte(name, '(')
	end := strings.IndexByte(name, ')')
	if open < 0 || end < 0 || open > end {
		return "", "", false
	}
	return strings.TrimSpace(name[:open]), strings.TrimSpace(name[open+1 : end]), true
}

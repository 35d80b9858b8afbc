package apitree

import (
	"fmt"
	"strings"
)

const (
	Undocumented   = "Undocumented."
	UnknownSummary = "Unable to determine summary."
)

// Summarize returns the first non-empty line of the text produced by doc.
// Missing documentation yields Undocumented; an error or panic while
// obtaining it yields UnknownSummary.
func Summarize(doc func() (string, error)) string {
	_, s := describe(doc)
	return s
}

// describe returns the full documentation text and its summary.
func describe(doc func() (string, error)) (string, string) {
	text, err := safeDoc(doc)
	if err != nil {
		return "", UnknownSummary
	}
	return text, firstLine(text)
}

func safeDoc(doc func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("doc: panic: %v", r)
		}
	}()
	return doc()
}

func firstLine(text string) string {
	for line := range strings.SplitSeq(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
	}
	return Undocumented
}

package snapshot

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// folder lower-cases text for substring search.
// A cases.Caser keeps state, so every folder is owned by one goroutine.
type folder struct {
	caser cases.Caser
}

func newFolder() *folder {
	return &folder{caser: cases.Lower(language.Und)}
}

// fold normalises s to NFC and lower-cases it.
func (f *folder) fold(s string) string {
	if s == "" {
		return ""
	}
	return f.caser.String(norm.NFC.String(s))
}

// Fold returns the search form of s.
func Fold(s string) string {
	return newFolder().fold(s)
}

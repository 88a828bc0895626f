package agents

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Title capitalizes each word of a concept for headings, so
// "photosynthesis in plants" becomes "Photosynthesis In Plants".
func Title(concept string) string {
	return cases.Title(language.English).String(concept)
}

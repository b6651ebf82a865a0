package catalog

import "strings"

// illustrationTypes are the page types that carry visual content. Matching is
// exact and case-sensitive against trimmed labels.
var illustrationTypes = map[string]bool{
	"Illustration": true,
	"Plate":        true,
	"Figure":       true,
	"Chart":        true,
	"Map":          true,
	"Photograph":   true,
}

// IllustrationTypes returns the page type labels accepted by IsIncludable.
func IllustrationTypes() []string {
	return []string{"Illustration", "Plate", "Figure", "Chart", "Map", "Photograph"}
}

// IsIncludable reports whether a page has a full size image and at least one
// illustration page type.
func IsIncludable(page Page) bool {
	if strings.TrimSpace(page.FullSizeImageURL) == "" {
		return false
	}
	for _, pt := range page.PageTypes {
		if illustrationTypes[strings.TrimSpace(pt.PageTypeName)] {
			return true
		}
	}
	return false
}

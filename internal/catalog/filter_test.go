package catalog

import (
	"testing"
)

func pageWithTypes(url string, types ...string) Page {
	p := Page{PageID: 1, FullSizeImageURL: url}
	for _, name := range types {
		p.PageTypes = append(p.PageTypes, PageType{PageTypeName: name})
	}
	return p
}

func TestIsIncludableAllowSet(t *testing.T) {
	for _, name := range IllustrationTypes() {
		t.Run(name, func(t *testing.T) {
			if !IsIncludable(pageWithTypes("https://example.org/img", name)) {
				t.Errorf("Expected page typed %q to be includable", name)
			}
			if !IsIncludable(pageWithTypes("https://example.org/img", "  "+name+" ")) {
				t.Errorf("Expected page typed %q with padding to be includable", name)
			}
			if IsIncludable(pageWithTypes("", name)) {
				t.Errorf("Expected page typed %q without image url to be excluded", name)
			}
		})
	}
}

func TestIsIncludable(t *testing.T) {
	tests := []struct {
		name     string
		page     Page
		expected bool
	}{
		{
			name:     "text page",
			page:     pageWithTypes("https://example.org/img", "Text"),
			expected: false,
		},
		{
			name:     "no page types",
			page:     pageWithTypes("https://example.org/img"),
			expected: false,
		},
		{
			name:     "case sensitive",
			page:     pageWithTypes("https://example.org/img", "illustration", "PLATE"),
			expected: false,
		},
		{
			name:     "one qualifying label among many",
			page:     pageWithTypes("https://example.org/img", "Text", "Index", "Map"),
			expected: true,
		},
		{
			name:     "blank image url",
			page:     pageWithTypes("   ", "Plate"),
			expected: false,
		},
		{
			name:     "substring is not a match",
			page:     pageWithTypes("https://example.org/img", "Foldout Map Index"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsIncludable(tt.page)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestFormattedPageNumbers(t *testing.T) {
	tests := []struct {
		name     string
		numbers  []PageNumber
		expected string
	}{
		{
			name:     "single plate",
			numbers:  []PageNumber{{Prefix: "Plate", Number: "22"}},
			expected: "Plate 22",
		},
		{
			name:     "multiple entries",
			numbers:  []PageNumber{{Prefix: "Page", Number: "4"}, {Prefix: "Plate", Number: "II"}},
			expected: "Page 4, Plate II",
		},
		{
			name:     "missing prefix is trimmed",
			numbers:  []PageNumber{{Number: "12"}},
			expected: "12",
		},
		{
			name:     "none",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Page{PageNumbers: tt.numbers}
			if got := p.FormattedPageNumbers(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestAuthorNames(t *testing.T) {
	title := Title{Authors: []Author{{Name: "Bateman, James"}, {Name: " "}, {Name: "Fitch, W. H."}}}
	if got := title.AuthorNames(); got != "Bateman, James; Fitch, W. H." {
		t.Errorf("Expected joined author names, got %q", got)
	}
}

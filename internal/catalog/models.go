package catalog

import (
	"strings"
)

// apiResponse is the api3 envelope. Success is keyed on Status, not on the
// HTTP status code.
type apiResponse[T any] struct {
	Status       string `json:"Status"`
	ErrorMessage string `json:"ErrorMessage"`
	Result       []T    `json:"Result"`
}

// Item is a scanned volume with its pages
type Item struct {
	ItemID  int    `json:"ItemID"`
	TitleID int    `json:"TitleID"`
	Volume  string `json:"Volume"`
	Year    string `json:"Year"`
	ItemURL string `json:"ItemUrl"`
	Pages   []Page `json:"Pages"`
}

// Page is a single scanned page of an item
type Page struct {
	PageID           int          `json:"PageID"`
	PageURL          string       `json:"PageUrl"`
	ThumbnailURL     string       `json:"ThumbnailUrl"`
	FullSizeImageURL string       `json:"FullSizeImageUrl"`
	PageNumbers      []PageNumber `json:"PageNumbers"`
	PageTypes        []PageType   `json:"PageTypes"`
}

type PageNumber struct {
	Prefix string `json:"Prefix"`
	Number string `json:"Number"`
}

type PageType struct {
	PageTypeName string `json:"PageTypeName"`
}

// Title is the bibliographic title an item belongs to
type Title struct {
	TitleID         int      `json:"TitleID"`
	FullTitle       string   `json:"FullTitle"`
	ShortTitle      string   `json:"ShortTitle"`
	PublicationDate string   `json:"PublicationDate"`
	TitleURL        string   `json:"TitleUrl"`
	Authors         []Author `json:"Authors"`
}

type Author struct {
	Name string `json:"Name"`
}

// FormattedPageNumbers renders the page number entries as
// "Prefix Number, Prefix Number".
func (p Page) FormattedPageNumbers() string {
	parts := make([]string, 0, len(p.PageNumbers))
	for _, pn := range p.PageNumbers {
		parts = append(parts, strings.TrimSpace(pn.Prefix+" "+pn.Number))
	}
	return strings.Join(parts, ", ")
}

// TypeNames returns the trimmed page type labels.
func (p Page) TypeNames() []string {
	names := make([]string, 0, len(p.PageTypes))
	for _, pt := range p.PageTypes {
		names = append(names, strings.TrimSpace(pt.PageTypeName))
	}
	return names
}

// AuthorNames joins the title's author names with "; ".
func (t Title) AuthorNames() string {
	names := make([]string, 0, len(t.Authors))
	for _, a := range t.Authors {
		if name := strings.TrimSpace(a.Name); name != "" {
			names = append(names, name)
		}
	}
	return strings.Join(names, "; ")
}

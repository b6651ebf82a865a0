package harvest

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/lehigh-university-libraries/bhl-commons/internal/catalog"
	"github.com/lehigh-university-libraries/bhl-commons/internal/models"
)

const (
	// License marks content with no known copyright restrictions from BHL.
	License = "BHL-no-known-restrictions"
	// CollectionCategory is added to every harvested file.
	CollectionCategory = "Files from the Biodiversity Heritage Library"
	Institution        = "Biodiversity Heritage Library"

	maxStubWords = 5
	ellipsis     = "..."
)

// StubTitle shortens a title to its first five words. truncated reports
// whether anything was cut.
func StubTitle(short string) (stub string, truncated bool) {
	words := strings.Fields(short)
	if len(words) > maxStubWords {
		return strings.Join(words[:maxStubWords], " "), true
	}
	return short, false
}

// DisplayTitle is the stub title with the ellipsis marker when truncated.
func DisplayTitle(short string) string {
	stub, truncated := StubTitle(short)
	if truncated {
		return stub + ellipsis
	}
	return stub
}

// Filename builds the deterministic file name for a page, e.g.
// "A Monograph of the Genus... (Plate 22) BHL12870361.jpg". The page id makes
// it unique within an item even when titles and page numbers collide.
func Filename(title *catalog.Title, page catalog.Page) string {
	name := fmt.Sprintf("%s (%s) BHL%d.jpg", DisplayTitle(title.ShortTitle), page.FormattedPageNumbers(), page.PageID)
	return SafeFilename(name)
}

// SafeFilename replaces path separators and characters MediaWiki rejects in
// file titles.
func SafeFilename(name string) string {
	return unsafeChars.Replace(name)
}

var unsafeChars = strings.NewReplacer(
	"/", "-", "\\", "-", "#", "-", "<", "(", ">", ")",
	"[", "(", "]", ")", "{", "(", "}", ")", "|", "-",
)

// Categories is the ";"-separated category list for a title.
func Categories(title *catalog.Title) string {
	short := strings.TrimSpace(title.ShortTitle)
	if short == "" {
		return CollectionCategory
	}
	return CollectionCategory + "; " + short
}

// Build creates the record for a retained page. The target name is fixed
// here and never changed afterwards.
func Build(page catalog.Page, item *catalog.Item, title *catalog.Title, dir string) models.AssetRecord {
	filename := Filename(title, page)
	r := models.NewAssetRecord(filepath.Join(dir, filename), filename)

	r.SourceItemID = strconv.Itoa(item.ItemID)
	r.SourceTitleID = strconv.Itoa(item.TitleID)
	r.SourcePageID = strconv.Itoa(page.PageID)

	pageNumbers := page.FormattedPageNumbers()
	pageTypes := strings.Join(page.TypeNames(), "; ")

	displayTitle := DisplayTitle(title.ShortTitle)
	if pageNumbers != "" {
		displayTitle = fmt.Sprintf("%s (%s)", displayTitle, pageNumbers)
	}

	fullTitle := title.FullTitle
	if fullTitle == "" {
		fullTitle = title.ShortTitle
	}
	description := fmt.Sprintf("%s from ''%s''", firstOr(page.TypeNames(), "Page"), fullTitle)
	if item.Volume != "" {
		description += ", " + item.Volume
	}
	if pageNumbers != "" {
		description += ", " + pageNumbers
	}

	source := page.PageURL
	if source == "" {
		source = fmt.Sprintf("https://www.biodiversitylibrary.org/page/%d", page.PageID)
	}

	date := item.Year
	if date == "" {
		date = title.PublicationDate
	}

	r.Fields[models.FieldTitle] = displayTitle
	r.Fields[models.FieldDescription] = description
	r.Fields[models.FieldPhotographer] = title.AuthorNames()
	r.Fields[models.FieldDate] = date
	r.Fields[models.FieldInstitution] = Institution
	r.Fields[models.FieldSource] = source
	r.Fields[models.FieldNotes] = pageTypes
	r.Fields[models.FieldAccessionNumber] = fmt.Sprintf("BHL page %d", page.PageID)
	r.Fields[models.FieldLicense] = License
	r.Fields[models.FieldCategories] = Categories(title)

	return r
}

func firstOr(values []string, fallback string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return fallback
}

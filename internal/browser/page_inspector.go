package browser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/pricefeed/internal/common"
	"github.com/aleister1102/pricefeed/internal/models"
)

// Portal selectors.
const (
	UsernameSelector  = "#username"
	PasswordSelector  = "#password"
	LoginButtonCSS    = "button.login-button"
	CheckboxContainer = "#brands-checkboxes"
	CheckboxQuery     = "input[type='checkbox']"
)

// PageInspector answers questions about a rendered page from its HTML.
type PageInspector struct {
	doc *goquery.Document
}

// NewPageInspector parses a page snapshot.
func NewPageInspector(html string) (*PageInspector, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, common.WrapError(err, "failed to parse page HTML")
	}
	return &PageInspector{doc: doc}, nil
}

// IsLoginURL reports whether the browser was redirected to the login page.
func IsLoginURL(url string) bool {
	return strings.Contains(strings.ToLower(url), "login")
}

// HasLoginForm reports whether both credential inputs are on the page.
func (pi *PageInspector) HasLoginForm() bool {
	return pi.doc.Find(UsernameSelector).Length() > 0 && pi.doc.Find(PasswordSelector).Length() > 0
}

// HasElement reports whether an element with the given id exists.
func (pi *PageInspector) HasElement(id string) bool {
	return pi.doc.Find("#" + id).Length() > 0
}

// FindLocator returns the index of the first locator matching an element.
// Text matches are case-insensitive and may be partial.
func (pi *PageInspector) FindLocator(locators []models.Locator) (int, bool) {
	for i, loc := range locators {
		if pi.matches(loc) {
			return i, true
		}
	}
	return -1, false
}

func (pi *PageInspector) matches(loc models.Locator) bool {
	found := false
	pi.doc.Find(loc.CSS).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if loc.Text == "" || strings.Contains(strings.ToLower(s.Text()), strings.ToLower(loc.Text)) {
			found = true
			return false
		}
		return true
	})
	return found
}

// UncheckedBoxes returns the document-order positions of enabled, unticked
// checkboxes inside the container.
func (pi *PageInspector) UncheckedBoxes(container string) []int {
	var positions []int
	pi.doc.Find(container + " " + CheckboxQuery).Each(func(i int, s *goquery.Selection) {
		_, checked := s.Attr("checked")
		_, disabled := s.Attr("disabled")
		if !checked && !disabled {
			positions = append(positions, i)
		}
	})
	return positions
}

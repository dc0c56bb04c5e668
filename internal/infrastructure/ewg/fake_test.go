package ewg

import (
	"context"
	"errors"
	"time"
)

type fakeElement struct {
	text     string
	textErr  error
	attrs    map[string]string
	inner    string
	children map[string][]*fakeElement
	next     *fakeElement
	nextErr  error
}

func (e *fakeElement) Text() (string, error) {
	return e.text, e.textErr
}

func (e *fakeElement) Attribute(name string) (*string, error) {
	v, ok := e.attrs[name]
	if !ok {
		return nil, nil
	}
	return &v, nil
}

func (e *fakeElement) InnerHTML() (string, error) {
	return e.inner, nil
}

func (e *fakeElement) Elements(selector string) ([]Element, error) {
	return toElements(e.children[selector]), nil
}

func (e *fakeElement) Next() (Element, error) {
	if e.nextErr != nil {
		return nil, e.nextErr
	}
	if e.next == nil {
		return nil, errNoSibling
	}
	return e.next, nil
}

func toElements(els []*fakeElement) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

// fakePage serves one DOM per navigated URL
type fakePage struct {
	doms      map[string]map[string][]*fakeElement
	current   string
	navigated []string
}

func (p *fakePage) Navigate(url string) error {
	p.navigated = append(p.navigated, url)
	if _, ok := p.doms[url]; !ok {
		return errors.New("net::ERR_NAME_NOT_RESOLVED")
	}
	p.current = url
	return nil
}

func (p *fakePage) WaitElement(selector string, timeout time.Duration) (Element, error) {
	els := p.doms[p.current][selector]
	if len(els) == 0 {
		return nil, context.DeadlineExceeded
	}
	return els[0], nil
}

func (p *fakePage) Elements(selector string) ([]Element, error) {
	return toElements(p.doms[p.current][selector]), nil
}

type fakeBrowser struct {
	page     *fakePage
	releases int
	openErr  error
}

func (b *fakeBrowser) OpenPage(ctx context.Context) (Page, func(), error) {
	if b.openErr != nil {
		return nil, nil, b.openErr
	}
	return b.page, func() { b.releases++ }, nil
}

func ingredientRow(name, alt string) *fakeElement {
	row := &fakeElement{children: map[string][]*fakeElement{}}
	if name != "" {
		row.children[selRowName] = []*fakeElement{{text: "  " + name + "\n"}}
	}
	if alt != "" {
		row.children[selRowScore] = []*fakeElement{{attrs: map[string]string{"alt": alt}}}
	}
	return row
}

// withMoreInfo attaches a "more info" sibling whose sub-table has a FUNCTION row
// and, when concernsHTML is non-empty, a CONCERNS row.
func withMoreInfo(row *fakeElement, concernsHTML string) *fakeElement {
	subRows := []*fakeElement{
		{children: map[string][]*fakeElement{"td": {
			{inner: "<span>FUNCTION(S)</span>"},
			{inner: "Fragrance ingredient"},
		}}},
	}
	if concernsHTML != "" {
		subRows = append(subRows, &fakeElement{children: map[string][]*fakeElement{"td": {
			{inner: "<span>CONCERNS</span>"},
			{inner: concernsHTML},
		}}})
	}

	row.next = &fakeElement{
		attrs:    map[string]string{"class": "ingredient-more-info-wrapper hidden"},
		children: map[string][]*fakeElement{selMoreInfoRows: subRows},
	}
	return row
}

const (
	testBaseURL    = "https://www.ewg.org/skindeep"
	testProductURL = "https://www.ewg.org/skindeep/products/123456-CeraVe_Moisturizing_Cream/"
)

func searchDOM(href string) map[string][]*fakeElement {
	return map[string][]*fakeElement{
		selSearchResult: {{attrs: map[string]string{"href": href}}},
	}
}

func productDOM(name string, rows ...*fakeElement) map[string][]*fakeElement {
	dom := map[string][]*fakeElement{
		selIngredientRow: rows,
	}
	if len(rows) > 0 {
		dom[selIngredientCell] = rows[0].children[selRowName]
	} else {
		dom[selIngredientCell] = []*fakeElement{{text: ""}}
	}
	if name != "" {
		dom[selProductName] = []*fakeElement{{text: name}}
	}
	return dom
}

func ceraVeRows() []*fakeElement {
	return []*fakeElement{
		withMoreInfo(ingredientRow("Water", "Ingredient score: 1"), ""),
		withMoreInfo(ingredientRow("Fragrance", "Ingredient score: 8"),
			"\n  <div>• Allergies/immunotoxicity (high)</div>\n<div>•Endocrine disruption (moderate)</div>\n"),
	}
}

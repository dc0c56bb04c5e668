package ewg

import (
	"context"
	"time"
)

// Element is the subset of a rendered DOM node the extractor reads
type Element interface {
	Text() (string, error)
	// Attribute returns nil when the attribute is not set
	Attribute(name string) (*string, error)
	InnerHTML() (string, error)
	// Elements returns matching descendants without waiting
	Elements(selector string) ([]Element, error)
	// Next returns the following sibling element
	Next() (Element, error)
}

// Page is a single browser tab
type Page interface {
	Navigate(url string) error
	// WaitElement blocks until selector matches or timeout elapses
	WaitElement(selector string, timeout time.Duration) (Element, error)
	// Elements returns current matches without waiting
	Elements(selector string) ([]Element, error)
}

// Browser hands out isolated pages. The returned release func closes the page
// and must be safe to call more than once.
type Browser interface {
	OpenPage(ctx context.Context) (Page, func(), error)
}

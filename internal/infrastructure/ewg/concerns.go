package ewg

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

var errNoSibling = errors.New("no following sibling")

// parseConcerns turns the markup of a concerns cell into one concern per line
func parseConcerns(fragment string) ([]string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return nil, fmt.Errorf("parse concerns markup: %w", err)
	}

	var texts []string
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.TextNode {
			texts = append(texts, n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)

	concerns := []string{}
	for _, line := range strings.Split(strings.Join(texts, "\n"), "\n") {
		line = strings.TrimSpace(strings.ReplaceAll(line, concernBullet, ""))
		if line != "" {
			concerns = append(concerns, line)
		}
	}
	return concerns, nil
}

// rowConcerns reads the concern list from the "more info" row that follows an ingredient row.
// A missing panel or missing CONCERNS label is not an error and yields an empty list.
func rowConcerns(row Element) ([]string, error) {
	wrapper, err := row.Next()
	if errors.Is(err, errNoSibling) {
		return []string{}, nil
	}
	if err != nil {
		return []string{}, err
	}

	class, err := wrapper.Attribute("class")
	if err != nil {
		return []string{}, err
	}
	if class == nil || !hasClass(*class, moreInfoClass) {
		return []string{}, nil
	}

	subRows, err := wrapper.Elements(selMoreInfoRows)
	if err != nil {
		return []string{}, err
	}

	for _, tr := range subRows {
		cells, err := tr.Elements(selCell)
		if err != nil {
			return []string{}, err
		}
		if len(cells) < 2 {
			continue
		}

		label, err := cells[0].InnerHTML()
		if err != nil {
			return []string{}, err
		}
		if !strings.Contains(label, concernsLabel) {
			continue
		}

		body, err := cells[1].InnerHTML()
		if err != nil {
			return []string{}, err
		}
		concerns, err := parseConcerns(body)
		if err != nil {
			return []string{}, err
		}
		return concerns, nil
	}

	return []string{}, nil
}

func hasClass(classAttr, want string) bool {
	for _, c := range strings.Fields(classAttr) {
		if c == want {
			return true
		}
	}
	return false
}

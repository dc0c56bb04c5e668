package ewg

import (
	"errors"
	"strings"

	"github.com/porespective/backend/internal/domain"
)

var errEmptyText = errors.New("empty text")

// extraction is the outcome of reading a rendered product page.
// Fields holds every absorbed per-field failure so callers can log or assert on them.
type extraction struct {
	Record *domain.ProductRecord
	Fields []*domain.FieldError
}

// extractProduct builds one IngredientEntry per table row in a single pass
func extractProduct(page Page, productURL string) (*extraction, error) {
	out := &extraction{
		Record: &domain.ProductRecord{
			ProductURL:  productURL,
			ProductName: domain.UnknownProductName,
			Ingredients: []domain.IngredientEntry{},
		},
	}

	name, err := productName(page)
	if err != nil {
		out.Fields = append(out.Fields, &domain.FieldError{Field: "product_name", Index: -1, Err: err})
	} else {
		out.Record.ProductName = name
	}

	rows, err := page.Elements(selIngredientRow)
	if err != nil {
		return nil, err
	}

	for i, row := range rows {
		name, err := firstText(row, selRowName)
		if err != nil {
			// Without a name there is nothing to attach a score or concerns to
			out.Fields = append(out.Fields, &domain.FieldError{Field: "name", Index: i, Err: err})
			continue
		}

		entry := domain.IngredientEntry{Name: name, Score: domain.ScoreNotAvailable, Concerns: []string{}}

		if score, err := rowScore(row); err != nil {
			out.Fields = append(out.Fields, &domain.FieldError{Field: "score", Index: i, Err: err})
		} else {
			entry.Score = score
		}

		concerns, err := rowConcerns(row)
		if err != nil {
			out.Fields = append(out.Fields, &domain.FieldError{Field: "concerns", Index: i, Err: err})
		}
		entry.Concerns = concerns

		out.Record.Ingredients = append(out.Record.Ingredients, entry)
	}

	if len(out.Record.Ingredients) == 0 {
		return out, domain.ErrNoIngredientData
	}

	return out, nil
}

func productName(page Page) (string, error) {
	els, err := page.Elements(selProductName)
	if err != nil {
		return "", err
	}
	if len(els) == 0 {
		return "", errors.New("product heading not found")
	}

	text, err := els[0].Text()
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyText
	}
	return text, nil
}

func firstText(parent Element, selector string) (string, error) {
	els, err := parent.Elements(selector)
	if err != nil {
		return "", err
	}
	if len(els) == 0 {
		return "", errors.New(selector + " not found")
	}

	text, err := els[0].Text()
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errEmptyText
	}
	return text, nil
}

func rowScore(row Element) (string, error) {
	imgs, err := row.Elements(selRowScore)
	if err != nil {
		return "", err
	}
	if len(imgs) == 0 {
		return "", errors.New("score image not found")
	}

	alt, err := imgs[0].Attribute("alt")
	if err != nil {
		return "", err
	}
	if alt == nil {
		return "", errors.New("score image has no alt text")
	}

	score := strings.TrimSpace(strings.Replace(*alt, scoreAltPrefix, "", 1))
	if score == "" {
		return "", errEmptyText
	}
	return score, nil
}

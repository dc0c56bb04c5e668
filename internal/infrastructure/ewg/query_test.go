package ewg

import (
	"strings"
	"testing"
)

func TestQueryCleaner_Clean(t *testing.T) {
	c := NewQueryCleaner(100)

	testCases := []struct {
		name  string
		query string
		want  string
	}{
		{name: "leaves plain names alone", query: "CeraVe Moisturizing Cream", want: "CeraVe Moisturizing Cream"},
		{name: "removes fl oz size", query: "CeraVe Moisturizing Cream, 16 fl oz", want: "CeraVe Moisturizing Cream"},
		{name: "removes ml size", query: "The Ordinary Niacinamide 10% + Zinc 1% 30ml", want: "The Ordinary Niacinamide 10% + Zinc 1%"},
		{name: "removes pack count", query: "Neutrogena Hydro Boost Gel 2 pack", want: "Neutrogena Hydro Boost Gel"},
		{name: "removes pack of", query: "Cetaphil Cleanser - pack of 3", want: "Cetaphil Cleanser"},
		{name: "removes noise words", query: "NEW Travel Size La Roche-Posay Toleriane", want: "La Roche-Posay Toleriane"},
		{name: "collapses whitespace", query: "  Aveeno   Daily\tMoisturizing  ", want: "Aveeno Daily Moisturizing"},
		{name: "keeps original when everything is noise", query: "New Travel Size", want: "New Travel Size"},
		{name: "empty", query: "   ", want: ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := c.Clean(tc.query); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.query, got, tc.want)
			}
		})
	}
}

func TestQueryCleaner_Truncates(t *testing.T) {
	c := NewQueryCleaner(20)

	got := c.Clean("Supergoop Unseen Sunscreen Broad Spectrum")
	if len(got) > 20 {
		t.Errorf("Clean() length = %d, want <= 20", len(got))
	}
	if strings.HasSuffix(got, " ") {
		t.Errorf("Clean() = %q, should not end with a space", got)
	}
	if got != "Supergoop Unseen" {
		t.Errorf("Clean() = %q, want %q", got, "Supergoop Unseen")
	}
}

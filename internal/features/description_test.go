// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"strings"
	"testing"

	"github.com/tomtom215/cartographus-recsys/internal/table"
)

func articleRow() table.Row {
	return table.Row{
		"article_id":                   int64(108775015),
		"prod_name":                    "Strap top",
		"product_type_name":            "Vest top",
		"product_group_name":           "Garment Upper body",
		"graphical_appearance_name":    "Solid",
		"colour_group_name":            "Black",
		"perceived_colour_value_name":  "Dark",
		"perceived_colour_master_name": "Black",
		"index_group_name":             "Ladieswear",
		"section_name":                 "Womens Everyday Basics",
		"garment_group_name":           "Jersey Basic",
	}
}

func TestDescribeArticle(t *testing.T) {
	t.Parallel()

	want := "Strap top - Vest top in Garment Upper body\n" +
		"Appearance: Solid\n" +
		"Color: Dark Black (Black)\n" +
		"Category: Ladieswear - Womens Everyday Basics - Jersey Basic"

	if got := DescribeArticle(articleRow()); got != want {
		t.Errorf("DescribeArticle() =\n%s\nwant\n%s", got, want)
	}
}

func TestDescribeArticle_Detail(t *testing.T) {
	t.Parallel()

	empty := articleRow()
	empty["detail_desc"] = ""
	withDetail := articleRow()
	withDetail["detail_desc"] = "x"

	a := DescribeArticle(empty)
	b := DescribeArticle(withDetail)

	if strings.Contains(a, "Detail:") {
		t.Errorf("empty detail_desc must not add a detail line: %q", a)
	}
	if b != a+"\nDetail: x" {
		t.Errorf("descriptions should differ only by the detail line:\n%q\n%q", a, b)
	}
}

func TestDescribeArticle_MissingFields(t *testing.T) {
	t.Parallel()

	got := DescribeArticle(table.Row{"prod_name": "Tee", "section_name": nil})
	want := "Tee -  in \nAppearance: \nColor:   ()\nCategory:  -  - "
	if got != want {
		t.Errorf("DescribeArticle() = %q, want %q", got, want)
	}
}

func TestImageURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		id   string
		want string
	}{
		{"108775015", DefaultImageBaseURL + "/images/010/0108775015.jpg"},
		{"7", DefaultImageBaseURL + "/images/07/07.jpg"},
		{"12", DefaultImageBaseURL + "/images/012/012.jpg"},
	}
	for _, tt := range tests {
		if got := ImageURL(DefaultImageBaseURL, tt.id); got != tt.want {
			t.Errorf("ImageURL(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

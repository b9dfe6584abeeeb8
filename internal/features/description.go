// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package features

import (
	"strings"

	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// DescribeArticle builds the human-readable description of one article row
// from its categorical attributes. A missing or null attribute contributes
// an empty string. The Detail line is appended only when detail_desc is
// present and non-empty.
func DescribeArticle(row table.Row) string {
	f := func(col string) string {
		s, _ := table.String(row[col])
		return s
	}

	var b strings.Builder
	b.WriteString(f(ColProdName))
	b.WriteString(" - ")
	b.WriteString(f("product_type_name"))
	b.WriteString(" in ")
	b.WriteString(f("product_group_name"))

	b.WriteString("\nAppearance: ")
	b.WriteString(f("graphical_appearance_name"))

	b.WriteString("\nColor: ")
	b.WriteString(f("perceived_colour_value_name"))
	b.WriteString(" ")
	b.WriteString(f("perceived_colour_master_name"))
	b.WriteString(" (")
	b.WriteString(f("colour_group_name"))
	b.WriteString(")")

	b.WriteString("\nCategory: ")
	b.WriteString(f("index_group_name"))
	b.WriteString(" - ")
	b.WriteString(f("section_name"))
	b.WriteString(" - ")
	b.WriteString(f("garment_group_name"))

	if detail := f(ColDetailDesc); detail != "" {
		b.WriteString("\nDetail: ")
		b.WriteString(detail)
	}

	return b.String()
}

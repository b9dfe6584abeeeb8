// Cartographus Recsys - Feature Pipeline for Recommendation Models
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus-recsys

package sampling

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/cartographus-recsys/internal/table"
)

// SizeTier names a target customer count.
type SizeTier string

// Supported tiers.
const (
	SizeSmall  SizeTier = "SMALL"
	SizeMedium SizeTier = "MEDIUM"
	SizeLarge  SizeTier = "LARGE"
)

var sizes = map[SizeTier]int{
	SizeSmall:  1000,
	SizeMedium: 5000,
	SizeLarge:  50000,
}

// SupportedSizes returns a copy of the tier to customer-count mapping.
func SupportedSizes() map[SizeTier]int {
	out := make(map[SizeTier]int, len(sizes))
	for k, v := range sizes {
		out[k] = v
	}
	return out
}

// Size returns the target customer count of the tier.
func (s SizeTier) Size() (int, error) {
	n, ok := sizes[s]
	if !ok {
		return 0, &InvalidTierError{Tier: string(s)}
	}
	return n, nil
}

// ParseSizeTier parses a tier name, ignoring case and surrounding spaces.
func ParseSizeTier(s string) (SizeTier, error) {
	tier := SizeTier(strings.ToUpper(strings.TrimSpace(s)))
	if _, ok := sizes[tier]; !ok {
		return "", &InvalidTierError{Tier: s}
	}
	return tier, nil
}

// InvalidTierError reports a size tier that is not one of the supported
// tiers. It matches table.ErrConfiguration.
type InvalidTierError struct {
	Tier string
}

func (e *InvalidTierError) Error() string {
	names := make([]string, 0, len(sizes))
	for k := range sizes {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return fmt.Sprintf("invalid size tier %q: supported tiers are %s", e.Tier, strings.Join(names, ", "))
}

// Is reports whether target is table.ErrConfiguration.
func (e *InvalidTierError) Is(target error) bool {
	return target == table.ErrConfiguration
}

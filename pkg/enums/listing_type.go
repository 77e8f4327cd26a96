package enums

import "fmt"

// ListingType distinguishes stocked products from bookable services.
type ListingType string

const (
	ListingTypeProduct ListingType = "product"
	ListingTypeService ListingType = "service"
)

var validListingTypes = []ListingType{ListingTypeProduct, ListingTypeService}

// IsValid reports whether the value matches the canonical listing type enum.
func (l ListingType) IsValid() bool {
	for _, candidate := range validListingTypes {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingType converts the raw string to ListingType.
func ParseListingType(value string) (ListingType, error) {
	for _, candidate := range validListingTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing type %q", value)
}

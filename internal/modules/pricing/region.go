package pricing

import (
	"fmt"
	"strings"
)

// Region is the coarse shipping zone a customer selects at checkout.
type Region string

const (
	RegionUnset           Region = ""
	RegionNCR             Region = "NCR"
	RegionLuzon           Region = "LUZON"
	RegionVisayasMindanao Region = "VISAYAS_MINDANAO"
)

// Regions lists the selectable zones in display order.
var Regions = []Region{RegionNCR, RegionLuzon, RegionVisayasMindanao}

// ParseRegion accepts a zone name in any case; "" is RegionUnset.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if r == RegionUnset {
		return RegionUnset, nil
	}
	for _, known := range Regions {
		if r == known {
			return r, nil
		}
	}
	return RegionUnset, fmt.Errorf("invalid region: %s (allowed: NCR, LUZON, VISAYAS_MINDANAO)", s)
}

// Label is the zone as printed on order summaries, e.g. "VISAYAS & MINDANAO".
func (r Region) Label() string {
	return strings.ReplaceAll(string(r), "_", " & ")
}

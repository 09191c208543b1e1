package models

// Units the kitchen requisitions in. Matches the vocabulary staff already
// use on the requisition forms.
var AllowedUnits = []string{
	"kg", "tubers", "pieces", "cubes", "pack", "gram",
	"ml", "litre", "portion", "cl", "tbsp", "tsp",
}

func ValidUnit(unit string) bool {
	for _, u := range AllowedUnits {
		if u == unit {
			return true
		}
	}
	return false
}

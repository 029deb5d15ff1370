package models

import "strings"

// WasteCategory is one of the fixed categories a hospital can book a pickup for
type WasteCategory struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var wasteCategories = []WasteCategory{
	{ID: "biohazard", Name: "Biohazard Waste", Description: "Infectious materials & contaminated items"},
	{ID: "sharps", Name: "Sharps Waste", Description: "Needles, syringes & sharp objects"},
	{ID: "chemical", Name: "Chemical Waste", Description: "Laboratory chemicals & reagents"},
	{ID: "pharma", Name: "Pharma Waste", Description: "Expired medications & pharmaceuticals"},
	{ID: "pathology", Name: "Pathology Waste", Description: "Tissue samples & body fluids"},
	{ID: "infectious", Name: "Infectious Waste", Description: "Highly contagious materials"},
}

// WasteCategories returns the categories in display order.
func WasteCategories() []WasteCategory {
	out := make([]WasteCategory, len(wasteCategories))
	copy(out, wasteCategories)
	return out
}

// LookupWasteCategory finds a category by id, ignoring case and surrounding spaces.
func LookupWasteCategory(id string) (WasteCategory, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, c := range wasteCategories {
		if c.ID == id {
			return c, true
		}
	}
	return WasteCategory{}, false
}

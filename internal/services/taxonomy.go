package services

import (
	"strings"

	"github.com/Genocadio/citizen-engagement-backend/internal/models"
	apperrors "github.com/Genocadio/citizen-engagement-backend/pkg/errors"
)

// Subcategories per category. Subcategory is optional on a ticket, but when
// present it must belong to the ticket's category.
var Subcategories = map[string][]string{
	"Water":       {"Supply Interruption", "Leakage", "Quality", "Billing"},
	"Electricity": {"Outage", "Billing", "New Connection", "Street Lighting"},
	"Roads":       {"Potholes", "Traffic Signals", "Road Signs", "Construction"},
	"Sanitation":  {"Garbage Collection", "Drainage", "Public Toilets"},
	"Safety":      {"Street Crime", "Traffic Safety", "Public Disorder"},
	"Health":      {"Clinic Services", "Sanitary Inspection", "Ambulance"},
	"Education":   {"School Infrastructure", "Teacher Conduct", "Fees"},
	"Environment": {"Pollution", "Deforestation", "Noise", "Wetlands"},
	"Other":       {},
}

// Rwanda administrative taxonomy: districts per province. Sector names below
// district level are accepted as free text.
var rwandaDistricts = map[string][]string{
	"Kigali City": {"Gasabo", "Kicukiro", "Nyarugenge"},
	"Northern":    {"Burera", "Gakenke", "Gicumbi", "Musanze", "Rulindo"},
	"Southern":    {"Gisagara", "Huye", "Kamonyi", "Muhanga", "Nyamagabe", "Nyanza", "Nyaruguru", "Ruhango"},
	"Eastern":     {"Bugesera", "Gatsibo", "Kayonza", "Kirehe", "Ngoma", "Nyagatare", "Rwamagana"},
	"Western":     {"Karongi", "Ngororero", "Nyabihu", "Nyamasheke", "Rubavu", "Rusizi", "Rutsiro"},
}

// ValidCategory reports whether the category is one the platform routes.
func ValidCategory(category string) bool {
	_, ok := Subcategories[category]
	return ok
}

// ValidateCategory checks the category/subcategory pair.
func ValidateCategory(category, subcategory string) *apperrors.AppError {
	subs, ok := Subcategories[category]
	if !ok {
		return apperrors.Validation("unknown category: " + category)
	}
	if subcategory == "" {
		return nil
	}
	for _, s := range subs {
		if strings.EqualFold(s, subcategory) {
			return nil
		}
	}
	return apperrors.Validation("subcategory " + subcategory + " does not belong to category " + category)
}

// ValidateLocation enforces the fixed Rwanda taxonomy; any other country is
// free text.
func ValidateLocation(loc models.Location) *apperrors.AppError {
	if loc.Country == "" {
		return apperrors.Validation("location country is required")
	}
	if !strings.EqualFold(loc.Country, "Rwanda") {
		return nil
	}

	districts, ok := rwandaDistricts[loc.Province]
	if !ok {
		return apperrors.Validation("unknown Rwanda province: " + loc.Province)
	}
	if loc.District == "" {
		return nil
	}
	for _, d := range districts {
		if strings.EqualFold(d, loc.District) {
			return nil
		}
	}
	return apperrors.Validation("district " + loc.District + " is not in province " + loc.Province)
}

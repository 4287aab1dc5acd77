// internal/repository/static.go
package repository

import (
	"context"

	"renovation-matching/internal/models"
)

// StaticCompanyRepository serves a fixed roster. Only eligible companies are
// returned, and every call returns fresh copies.
type StaticCompanyRepository struct {
	companies []models.Company
}

func NewStaticCompanyRepository(companies []models.Company) *StaticCompanyRepository {
	return &StaticCompanyRepository{companies: companies}
}

func (r *StaticCompanyRepository) ListEligible(context.Context) ([]models.Company, error) {
	out := make([]models.Company, 0, len(r.companies))
	for _, c := range r.companies {
		if !c.Eligible() {
			continue
		}
		out = append(out, c.Clone())
	}
	return out, nil
}

func weekdays(start, end string, days ...string) map[string]models.DayHours {
	out := make(map[string]models.DayHours, len(days))
	for _, d := range days {
		out[d] = models.DayHours{Available: true, Start: start, End: end}
	}
	return out
}

// DemoCompanies is the demonstration roster used when the company source is
// "demo" or as the fallback when the real source is unreachable.
func DemoCompanies() []models.Company {
	mondayToFriday := []string{"monday", "tuesday", "wednesday", "thursday", "friday"}

	return []models.Company{
		{
			ID:          "demo-renov-paris",
			Name:        "Rénov'Paris Bâtiment",
			ContactName: "Claire Martin",
			Email:       "contact@renov-paris.example",
			Phone:       "+33140000001",
			Activities:  []string{"2.2", "3.1", "4.1", "5.1", "5.4"},
			Territory: models.Territory{
				Center:   models.GeoLocation{Latitude: 48.8566, Longitude: 2.3522, City: "Paris", PostalCode: "75001"},
				RadiusKm: 40,
			},
			Availability:       &models.Availability{WorkingHours: weekdays("08:00", "18:00", mondayToFriday...)},
			Status:             models.CompanyStatusActive,
			VerificationStatus: models.VerificationVerified,
			Reputation:         models.Reputation{AverageRating: 4.6, SuccessRate: 94, ResponseRate: 92},
		},
		{
			ID:          "demo-elec-boulogne",
			Name:        "Boulogne Électricité",
			ContactName: "Karim Benali",
			Email:       "devis@boulogne-elec.example",
			Phone:       "+33146000002",
			Activities:  []string{"5.3", "5.4"},
			Territory: models.Territory{
				Center:   models.GeoLocation{Latitude: 48.8397, Longitude: 2.2399, City: "Boulogne-Billancourt", PostalCode: "92100"},
				RadiusKm: 25,
			},
			Availability: &models.Availability{
				WorkingHours: weekdays("07:30", "17:00", "monday", "tuesday", "wednesday", "thursday"),
			},
			Status:             models.CompanyStatusActive,
			VerificationStatus: models.VerificationVerified,
			Reputation:         models.Reputation{AverageRating: 4.2, SuccessRate: 88, ResponseRate: 75},
		},
		{
			ID:          "demo-plomberie-montreuil",
			Name:        "Montreuil Plomberie Chauffage",
			ContactName: "Sophie Leroy",
			Email:       "atelier@montreuil-plomberie.example",
			Activities:  []string{"5.1", "5.2", "5.3"},
			Territory: models.Territory{
				Center:   models.GeoLocation{Latitude: 48.8638, Longitude: 2.4485, City: "Montreuil", PostalCode: "93100"},
				RadiusKm: 30,
			},
			Availability:       &models.Availability{WorkingHours: weekdays("08:00", "17:30", mondayToFriday...)},
			Status:             models.CompanyStatusActive,
			VerificationStatus: models.VerificationVerified,
			Reputation:         models.Reputation{AverageRating: 3.9, SuccessRate: 81, ResponseRate: 64},
		},
		{
			ID:          "demo-archi-versailles",
			Name:        "Atelier d'Architecture de Versailles",
			ContactName: "Hugo Petit",
			Email:       "projets@archi-versailles.example",
			Activities:  []string{"A.1", "A.2", "A.3"},
			Territory: models.Territory{
				Center:   models.GeoLocation{Latitude: 48.8049, Longitude: 2.1204, City: "Versailles", PostalCode: "78000"},
				RadiusKm: 60,
			},
			Status:             models.CompanyStatusActive,
			VerificationStatus: models.VerificationVerified,
			Reputation:         models.Reputation{AverageRating: 4.8, SuccessRate: 97, ResponseRate: 55},
		},
		{
			ID:          "demo-lyon-multi",
			Name:        "Lyon Multiservices Habitat",
			ContactName: "Julien Moreau",
			Email:       "contact@lyon-habitat.example",
			Phone:       "+33472000005",
			Activities:  []string{"1.1", "2.2", "4.1", "5.1", "5.4", "6.1"},
			Territory: models.Territory{
				Center:   models.GeoLocation{Latitude: 45.7640, Longitude: 4.8357, City: "Lyon", PostalCode: "69001"},
				RadiusKm: 50,
			},
			Availability:       &models.Availability{WorkingHours: weekdays("08:00", "18:00", mondayToFriday...)},
			Status:             models.CompanyStatusActive,
			VerificationStatus: models.VerificationVerified,
			Reputation:         models.Reputation{AverageRating: 4.4, SuccessRate: 90, ResponseRate: 85},
		},
		{
			ID:         "demo-pending-creteil",
			Name:       "Créteil Rénovation",
			Email:      "info@creteil-renov.example",
			Activities: []string{"3.1", "4.1"},
			Territory: models.Territory{
				Center:   models.GeoLocation{Latitude: 48.7904, Longitude: 2.4556, City: "Créteil", PostalCode: "94000"},
				RadiusKm: 20,
			},
			Status:             models.CompanyStatusActive,
			VerificationStatus: models.VerificationPending,
			Reputation:         models.Reputation{AverageRating: 3.5, SuccessRate: 70, ResponseRate: 60},
		},
	}
}

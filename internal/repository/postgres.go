// internal/repository/postgres.go
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"renovation-matching/internal/common/logger"
	"renovation-matching/internal/models"
)

// PostgresCompanyRepository reads the eligible roster from the companies table.
type PostgresCompanyRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresCompanyRepository(db *sql.DB, log logger.Logger) *PostgresCompanyRepository {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresCompanyRepository{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "company-repository", "source": "postgres"}),
	}
}

// ListEligible returns active, verified companies ordered by id. Rows with a
// missing id or territory, or JSON columns that cannot be decoded, are logged
// and left out.
func (r *PostgresCompanyRepository) ListEligible(ctx context.Context) ([]models.Company, error) {
	rows, err := r.db.QueryContext(ctx, queryEligibleCompanies,
		string(models.CompanyStatusActive), string(models.VerificationVerified))
	if err != nil {
		return nil, fmt.Errorf("query eligible companies: %w", err)
	}
	defer rows.Close()

	companies := []models.Company{}
	for rows.Next() {
		var (
			c                                 models.Company
			id, name                          sql.NullString
			contactName, email, phone         sql.NullString
			activities, availability          []byte
			lat, lng, radius                  sql.NullFloat64
			status, verification              string
			rating, successRate, responseRate sql.NullFloat64
		)
		if err := rows.Scan(
			&id, &name, &contactName, &email, &phone, &activities,
			&lat, &lng, &radius, &availability,
			&status, &verification, &rating, &successRate, &responseRate,
		); err != nil {
			return nil, fmt.Errorf("scan company row: %w", err)
		}

		c.ID = id.String
		if !id.Valid || !lat.Valid || !lng.Valid || !radius.Valid {
			r.logger.Warn("skipping company with missing required columns", map[string]interface{}{
				"companyId": c.ID,
				"missing":   missingColumns(id, lat, lng, radius),
			})
			continue
		}

		c.Name = name.String
		c.ContactName = contactName.String
		c.Email = email.String
		c.Phone = phone.String
		c.Territory.Center.Latitude = lat.Float64
		c.Territory.Center.Longitude = lng.Float64
		c.Territory.RadiusKm = radius.Float64
		c.Status = models.CompanyStatus(status)
		c.VerificationStatus = models.VerificationStatus(verification)
		c.Reputation = models.Reputation{
			AverageRating: rating.Float64,
			SuccessRate:   successRate.Float64,
			ResponseRate:  responseRate.Float64,
		}

		if err := decodeJSONColumns(&c, activities, availability); err != nil {
			r.logger.Warn("skipping company with unreadable columns", map[string]interface{}{
				"companyId": c.ID,
				"error":     err,
			})
			continue
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate company rows: %w", err)
	}

	r.logger.Debug("eligible companies loaded", map[string]interface{}{"count": len(companies)})
	return companies, nil
}

func missingColumns(id sql.NullString, lat, lng, radius sql.NullFloat64) []string {
	var missing []string
	if !id.Valid {
		missing = append(missing, "id")
	}
	for _, col := range []struct {
		name string
		v    sql.NullFloat64
	}{{"territory_lat", lat}, {"territory_lng", lng}, {"territory_radius_km", radius}} {
		if !col.v.Valid {
			missing = append(missing, col.name)
		}
	}
	return missing
}

func decodeJSONColumns(c *models.Company, activities, availability []byte) error {
	c.Activities = []string{}
	if len(activities) > 0 {
		if err := json.Unmarshal(activities, &c.Activities); err != nil {
			return fmt.Errorf("activities: %w", err)
		}
	}
	if len(availability) > 0 && string(availability) != "null" {
		var a models.Availability
		if err := json.Unmarshal(availability, &a); err != nil {
			return fmt.Errorf("availability: %w", err)
		}
		c.Availability = &a
	}
	return nil
}

// PostgresWorkloadRepository counts in-progress projects per company.
type PostgresWorkloadRepository struct {
	db *sql.DB
}

func NewPostgresWorkloadRepository(db *sql.DB) *PostgresWorkloadRepository {
	return &PostgresWorkloadRepository{db: db}
}

func (r *PostgresWorkloadRepository) CountActiveProjects(ctx context.Context, companyID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, queryActiveProjectCount, models.ProjectStatusInProgress, companyID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active projects for %s: %w", companyID, err)
	}
	return count, nil
}

// PostgresNotificationStore writes notification records.
type PostgresNotificationStore struct {
	db *sql.DB
}

func NewPostgresNotificationStore(db *sql.DB) *PostgresNotificationStore {
	return &PostgresNotificationStore{db: db}
}

func (s *PostgresNotificationStore) Create(ctx context.Context, n models.Notification) error {
	_, err := s.db.ExecContext(ctx, insertNotification,
		n.ID, n.CompanyID, n.ProjectID, n.Type, n.Message, n.MatchingScore, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification for %s: %w", n.CompanyID, err)
	}
	return nil
}

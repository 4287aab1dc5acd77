// internal/repository/queries.go
package repository

const (
	queryEligibleCompanies = `
		SELECT id, name, contact_name, email, phone, activities,
		       territory_lat, territory_lng, territory_radius_km, availability,
		       status, verification_status, average_rating, success_rate, response_rate
		FROM companies
		WHERE status = $1 AND verification_status = $2
		ORDER BY id`

	queryActiveProjectCount = `
		SELECT COUNT(*)
		FROM projects
		WHERE status = $1 AND $2 = ANY(selected_companies)`

	insertNotification = `
		INSERT INTO notifications (id, company_id, project_id, type, message, matching_score, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

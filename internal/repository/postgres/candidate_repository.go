package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-whatscv-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type candidateRepository struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepository{db: db}
}

// Reconcile turns one inbound event into persisted state: create-or-overwrite
// the candidate row keyed by effective phone, then replace all child rows.
// The whole sequence runs in a single transaction so a reader never observes
// a candidate stripped of its children mid-replacement.
func (r *candidateRepository) Reconcile(ctx context.Context, in domain.ReconcileInput) (int64, domain.ReconcileAction, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, "", fmt.Errorf("failed to begin reconcile tx: %w", err)
	}
	defer tx.Rollback(ctx)

	phone := in.EffectivePhone()

	var candidateID int64
	found := false
	if phone != nil {
		// Soft uniqueness: lookup by phone, oldest row wins if duplicates
		// ever slipped in.
		err := tx.QueryRow(ctx,
			`SELECT id FROM candidates WHERE phone = $1 ORDER BY id LIMIT 1`, *phone,
		).Scan(&candidateID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return 0, "", fmt.Errorf("failed to look up candidate by phone: %w", err)
		}
		found = err == nil
	}

	action := domain.ActionCreated
	if found {
		action = domain.ActionUpdated
		// Wholesale overwrite of every scalar attribute.
		updateQuery := `
			UPDATE candidates SET
				phone = $1, email = $2, full_name = $3, id_number_hash = $4,
				location_city = $5, raw_paragraph = $6, cv_text = $7,
				updated_at = NOW()
			WHERE id = $8`
		_, err := tx.Exec(ctx, updateQuery,
			phone, in.Fields.Email, in.Fields.FullName, in.IDNumberHash,
			in.Fields.LocationCity, in.RawParagraph, in.CVText,
			candidateID,
		)
		if err != nil {
			return 0, "", fmt.Errorf("failed to update candidate: %w", err)
		}
	} else {
		// No effective phone still creates a row; phone is simply null.
		insertQuery := `
			INSERT INTO candidates (
				phone, email, full_name, id_number_hash,
				location_city, raw_paragraph, cv_text
			) VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING id`
		err := tx.QueryRow(ctx, insertQuery,
			phone, in.Fields.Email, in.Fields.FullName, in.IDNumberHash,
			in.Fields.LocationCity, in.RawParagraph, in.CVText,
		).Scan(&candidateID)
		if err != nil {
			return 0, "", fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	// Children are replaced in full, never merged (Delete All -> Insert).
	if _, err := tx.Exec(ctx, `DELETE FROM education WHERE candidate_id = $1`, candidateID); err != nil {
		return 0, "", fmt.Errorf("failed to delete education: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM experiences WHERE candidate_id = $1`, candidateID); err != nil {
		return 0, "", fmt.Errorf("failed to delete experiences: %w", err)
	}

	eduInsert := `
		INSERT INTO education (
			candidate_id, institution, degree, major, gpa, status, expected_graduation_date
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, e := range in.Fields.Education {
		_, err := tx.Exec(ctx, eduInsert,
			candidateID, e.Institution, e.Degree, e.Major, e.GPA, e.Status, e.ExpectedGraduationDate,
		)
		if err != nil {
			return 0, "", fmt.Errorf("failed to insert education: %w", err)
		}
	}

	expInsert := `
		INSERT INTO experiences (
			candidate_id, company, title, dates, employment_status, description
		) VALUES ($1, $2, $3, $4, $5, $6)`
	for _, x := range in.Fields.Experiences {
		_, err := tx.Exec(ctx, expInsert,
			candidateID, x.Company, x.Title, x.Dates, x.EmploymentStatus, x.Description,
		)
		if err != nil {
			return 0, "", fmt.Errorf("failed to insert experience: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, "", fmt.Errorf("failed to commit reconcile: %w", err)
	}
	return candidateID, action, nil
}

func (r *candidateRepository) GetByID(ctx context.Context, id int64) (*domain.CandidateDetail, error) {
	query := `
		SELECT id, phone, email, full_name, id_number_hash, location_city,
		       COALESCE(raw_paragraph, ''), COALESCE(cv_text, ''),
		       created_at, updated_at
		FROM candidates WHERE id = $1`

	var d domain.CandidateDetail
	err := r.db.QueryRow(ctx, query, id).Scan(
		&d.ID, &d.Phone, &d.Email, &d.FullName, &d.IDNumberHash, &d.LocationCity,
		&d.RawParagraph, &d.CVText, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	if err := r.loadChildren(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *candidateRepository) Search(ctx context.Context, f domain.SearchFilter) ([]domain.CandidateDetail, error) {
	// City and education filters run in SQL; the skills filter needs the
	// combined text blob and is applied by the usecase.
	query := `
		SELECT c.id, c.phone, c.email, c.full_name, c.id_number_hash, c.location_city,
		       COALESCE(c.raw_paragraph, ''), COALESCE(c.cv_text, ''),
		       c.created_at, c.updated_at
		FROM candidates c
		WHERE ($1 = '' OR c.location_city ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR EXISTS (
			SELECT 1 FROM education e
			WHERE e.candidate_id = c.id AND e.degree ILIKE '%' || $2 || '%'
		  ))
		ORDER BY c.id`

	rows, err := r.db.Query(ctx, query, f.City, f.EducationLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to search candidates: %w", err)
	}
	defer rows.Close()

	results := []domain.CandidateDetail{}
	for rows.Next() {
		var d domain.CandidateDetail
		err := rows.Scan(
			&d.ID, &d.Phone, &d.Email, &d.FullName, &d.IDNumberHash, &d.LocationCity,
			&d.RawParagraph, &d.CVText, &d.CreatedAt, &d.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		results = append(results, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range results {
		if err := r.loadChildren(ctx, &results[i]); err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *candidateRepository) loadChildren(ctx context.Context, d *domain.CandidateDetail) error {
	d.Education = []domain.Education{}
	d.Experiences = []domain.Experience{}

	eduQuery := `
		SELECT id, candidate_id, institution, degree, major, gpa, status, expected_graduation_date
		FROM education WHERE candidate_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, eduQuery, d.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch education: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var e domain.Education
		if err := rows.Scan(&e.ID, &e.CandidateID, &e.Institution, &e.Degree, &e.Major, &e.GPA, &e.Status, &e.ExpectedGraduationDate); err != nil {
			return err
		}
		d.Education = append(d.Education, e)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	expQuery := `
		SELECT id, candidate_id, company, title, dates, employment_status, description
		FROM experiences WHERE candidate_id = $1 ORDER BY id`
	xRows, err := r.db.Query(ctx, expQuery, d.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch experiences: %w", err)
	}
	defer xRows.Close()
	for xRows.Next() {
		var x domain.Experience
		if err := xRows.Scan(&x.ID, &x.CandidateID, &x.Company, &x.Title, &x.Dates, &x.EmploymentStatus, &x.Description); err != nil {
			return err
		}
		d.Experiences = append(d.Experiences, x)
	}
	return xRows.Err()
}

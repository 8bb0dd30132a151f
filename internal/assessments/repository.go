package assessments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/glossworks/glossworks/internal/ai"
	"github.com/glossworks/glossworks/internal/pricing"
	"github.com/glossworks/glossworks/internal/shared"
)

// Repository persists assessments. Vehicle details, hotspots, service
// selections, answers, and AI questions live in JSONB columns.
type Repository interface {
	Create(ctx context.Context, a Assessment) (*Assessment, error)
	Get(ctx context.Context, orgID, id int64) (*Assessment, error)
	List(ctx context.Context, orgID int64, status *Status, page, perPage int) ([]Assessment, int, error)
	UpdateStatus(ctx context.Context, orgID, id int64, status Status) error
	UpdateHotspots(ctx context.Context, orgID, id int64, hotspots []Hotspot) error
	SetAIResults(ctx context.Context, orgID, id int64, questions []ai.Question, estimate float64) error
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const assessmentColumns = `id, org_id, client_name, client_email, vehicle, hotspots, selections, answers, estimate_amount, ai_questions, ai_estimate, status, created_at, updated_at`

func scanAssessment(row pgx.Row) (*Assessment, error) {
	var a Assessment
	var vehicle, hotspots, selections, answers, aiQuestions []byte
	err := row.Scan(&a.ID, &a.OrgID, &a.ClientName, &a.ClientEmail, &vehicle, &hotspots, &selections, &answers, &a.EstimateAmount, &aiQuestions, &a.AIEstimate, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := decodeAssessmentJSON(&a, vehicle, hotspots, selections, answers, aiQuestions); err != nil {
		return nil, err
	}
	return &a, nil
}

func decodeAssessmentJSON(a *Assessment, vehicle, hotspots, selections, answers, aiQuestions []byte) error {
	if len(vehicle) > 0 {
		if err := json.Unmarshal(vehicle, &a.Vehicle); err != nil {
			return fmt.Errorf("decode vehicle: %w", err)
		}
	}
	if len(hotspots) > 0 {
		if err := json.Unmarshal(hotspots, &a.Hotspots); err != nil {
			return fmt.Errorf("decode hotspots: %w", err)
		}
	}
	if len(selections) > 0 {
		if err := json.Unmarshal(selections, &a.Selections); err != nil {
			return fmt.Errorf("decode selections: %w", err)
		}
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return fmt.Errorf("decode answers: %w", err)
		}
	}
	if len(aiQuestions) > 0 {
		if err := json.Unmarshal(aiQuestions, &a.AIQuestions); err != nil {
			return fmt.Errorf("decode ai questions: %w", err)
		}
	}
	return nil
}

func encodeAssessmentJSON(a Assessment) (vehicle, hotspots, selections, answers, aiQuestions []byte, err error) {
	if vehicle, err = json.Marshal(a.Vehicle); err != nil {
		return
	}
	if hotspots, err = json.Marshal(orEmptyHotspots(a.Hotspots)); err != nil {
		return
	}
	if selections, err = json.Marshal(orEmptySelections(a.Selections)); err != nil {
		return
	}
	if answers, err = json.Marshal(orEmptyAnswers(a.Answers)); err != nil {
		return
	}
	aiQuestions, err = json.Marshal(orEmptyQuestions(a.AIQuestions))
	return
}

func orEmptyHotspots(h []Hotspot) []Hotspot {
	if h == nil {
		return []Hotspot{}
	}
	return h
}

func orEmptySelections(s []pricing.Selection) []pricing.Selection {
	if s == nil {
		return []pricing.Selection{}
	}
	return s
}

func orEmptyAnswers(a []QAPair) []QAPair {
	if a == nil {
		return []QAPair{}
	}
	return a
}

func orEmptyQuestions(q []ai.Question) []ai.Question {
	if q == nil {
		return []ai.Question{}
	}
	return q
}

func (r *repository) Create(ctx context.Context, a Assessment) (*Assessment, error) {
	vehicle, hotspots, selections, answers, aiQuestions, err := encodeAssessmentJSON(a)
	if err != nil {
		return nil, err
	}
	return scanAssessment(r.pool.QueryRow(ctx, `INSERT INTO assessments (org_id, client_name, client_email, vehicle, hotspots, selections, answers, estimate_amount, ai_questions, ai_estimate, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW(), NOW()) RETURNING `+assessmentColumns,
		a.OrgID, a.ClientName, a.ClientEmail, vehicle, hotspots, selections, answers, a.EstimateAmount, aiQuestions, a.AIEstimate, a.Status))
}

func (r *repository) Get(ctx context.Context, orgID, id int64) (*Assessment, error) {
	return scanAssessment(r.pool.QueryRow(ctx, `SELECT `+assessmentColumns+` FROM assessments WHERE org_id=$1 AND id=$2`, orgID, id))
}

func (r *repository) List(ctx context.Context, orgID int64, status *Status, page, perPage int) ([]Assessment, int, error) {
	conditions := "org_id = $1"
	args := []interface{}{orgID}
	if status != nil {
		conditions += " AND status = $2"
		args = append(args, *status)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM assessments WHERE `+conditions, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	p := shared.NewPagination(page, perPage, total)
	offset := (p.Page - 1) * p.PerPage
	limitPos := len(args) + 1
	query := fmt.Sprintf(`SELECT %s FROM assessments WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`, assessmentColumns, conditions, limitPos, limitPos+1)
	args = append(args, p.PerPage, offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var list []Assessment
	for rows.Next() {
		var a Assessment
		var vehicle, hotspots, selections, answers, aiQuestions []byte
		if err := rows.Scan(&a.ID, &a.OrgID, &a.ClientName, &a.ClientEmail, &vehicle, &hotspots, &selections, &answers, &a.EstimateAmount, &aiQuestions, &a.AIEstimate, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, 0, err
		}
		if err := decodeAssessmentJSON(&a, vehicle, hotspots, selections, answers, aiQuestions); err != nil {
			return nil, 0, err
		}
		list = append(list, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (r *repository) UpdateStatus(ctx context.Context, orgID, id int64, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE assessments SET status=$1, updated_at=NOW() WHERE org_id=$2 AND id=$3`, status, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) UpdateHotspots(ctx context.Context, orgID, id int64, hotspots []Hotspot) error {
	data, err := json.Marshal(orEmptyHotspots(hotspots))
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE assessments SET hotspots=$1, updated_at=NOW() WHERE org_id=$2 AND id=$3`, data, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *repository) SetAIResults(ctx context.Context, orgID, id int64, questions []ai.Question, estimate float64) error {
	data, err := json.Marshal(orEmptyQuestions(questions))
	if err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, `UPDATE assessments SET ai_questions=$1, ai_estimate=$2, updated_at=NOW() WHERE org_id=$3 AND id=$4`, data, estimate, orgID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

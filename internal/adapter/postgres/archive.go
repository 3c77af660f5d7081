package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Strob0t/TaskForge/internal/domain"
	"github.com/Strob0t/TaskForge/internal/domain/pipeline"
)

// Archive implements resultstore.Store on PostgreSQL. One row per finished
// run; outputs and escalations are stored as jsonb so downstream consumers
// (trackers, documentation stores) can query them without schema churn.
type Archive struct {
	pool *pgxpool.Pool
}

// NewArchive creates an Archive over the given pool.
func NewArchive(pool *pgxpool.Pool) *Archive {
	return &Archive{pool: pool}
}

// SaveResult persists one finished pipeline result.
func (a *Archive) SaveResult(ctx context.Context, req pipeline.Request, res *pipeline.Result) error {
	outputs, err := json.Marshal(res.Outputs)
	if err != nil {
		return fmt.Errorf("marshal outputs: %w", err)
	}
	findings, err := json.Marshal(res.Findings)
	if err != nil {
		return fmt.Errorf("marshal findings: %w", err)
	}
	recommendations, err := json.Marshal(res.Recommendations)
	if err != nil {
		return fmt.Errorf("marshal recommendations: %w", err)
	}
	escalations, err := json.Marshal(res.Escalations)
	if err != nil {
		return fmt.Errorf("marshal escalations: %w", err)
	}

	_, err = a.pool.Exec(ctx, `
		INSERT INTO pipeline_results
			(run_id, task_description, status, summary, outputs, findings,
			 recommendations, escalations, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (run_id) DO NOTHING`,
		res.RunID, req.TaskDescription, string(res.Status), res.Summary,
		outputs, findings, recommendations, escalations,
		res.StartedAt, res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert pipeline result: %w", err)
	}
	return nil
}

// GetResult loads an archived result by run id.
func (a *Archive) GetResult(ctx context.Context, runID string) (*pipeline.Result, error) {
	var (
		res             pipeline.Result
		outputs         []byte
		findings        []byte
		recommendations []byte
		escalations     []byte
		status          string
	)
	err := a.pool.QueryRow(ctx, `
		SELECT run_id, status, summary, outputs, findings, recommendations,
		       escalations, started_at, finished_at
		FROM pipeline_results WHERE run_id = $1`, runID).Scan(
		&res.RunID, &status, &res.Summary, &outputs, &findings,
		&recommendations, &escalations, &res.StartedAt, &res.FinishedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: run %s", domain.ErrNotFound, runID)
	}
	if err != nil {
		return nil, fmt.Errorf("select pipeline result: %w", err)
	}
	res.Status = pipeline.Status(status)

	if err := json.Unmarshal(outputs, &res.Outputs); err != nil {
		return nil, fmt.Errorf("unmarshal outputs: %w", err)
	}
	if err := json.Unmarshal(findings, &res.Findings); err != nil {
		return nil, fmt.Errorf("unmarshal findings: %w", err)
	}
	if err := json.Unmarshal(recommendations, &res.Recommendations); err != nil {
		return nil, fmt.Errorf("unmarshal recommendations: %w", err)
	}
	if err := json.Unmarshal(escalations, &res.Escalations); err != nil {
		return nil, fmt.Errorf("unmarshal escalations: %w", err)
	}
	return &res, nil
}

package postgres

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Codeveil-Studio/QResolve-app/internal/domain/entity"
	"github.com/Codeveil-Studio/QResolve-app/internal/domain/repository"
)

type IssueRepository struct {
	db DB
}

func NewIssueRepository(db DB) *IssueRepository {
	return &IssueRepository{db: db}
}

const issueColumns = `id, org_id, asset_id, title, description, status::text, priority::text,
	reported_by, assigned_to, resolved_at, created_at, updated_at`

func scanIssue(row rowScanner) (*entity.Issue, error) {
	i := &entity.Issue{}
	var status, priority string
	if err := row.Scan(&i.ID, &i.OrgID, &i.AssetID, &i.Title, &i.Description, &status, &priority,
		&i.ReportedBy, &i.AssignedTo, &i.ResolvedAt, &i.CreatedAt, &i.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	i.Status = entity.IssueStatus(status)
	i.Priority = entity.IssuePriority(priority)
	return i, nil
}

func (r *IssueRepository) List(ctx context.Context, orgID string, f entity.IssueFilter) ([]entity.Issue, error) {
	where := []string{"org_id = $1"}
	args := []any{orgID}
	add := func(clause string, v any) {
		args = append(args, v)
		where = append(where, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(args))))
	}
	if f.Status != "" {
		add("status = ?::issue_status", string(f.Status))
	}
	if f.Priority != "" {
		add("priority = ?::issue_priority", string(f.Priority))
	}
	if f.AssetID != "" {
		if !validID(f.AssetID) {
			return []entity.Issue{}, nil
		}
		add("asset_id = ?", f.AssetID)
	}
	q := `SELECT ` + issueColumns + ` FROM issues WHERE ` + strings.Join(where, " AND ") + ` ORDER BY created_at DESC`
	if f.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(f.Limit)
	}

	rows, err := r.db.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []entity.Issue{}
	for rows.Next() {
		i, err := scanIssue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *i)
	}
	return out, rows.Err()
}

func (r *IssueRepository) GetByID(ctx context.Context, orgID, id string) (*entity.Issue, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanIssue(r.db.QueryRow(ctx, `SELECT `+issueColumns+` FROM issues WHERE org_id = $1 AND id = $2`, orgID, id))
}

func (r *IssueRepository) Create(ctx context.Context, i *entity.Issue) error {
	if i.AssetID != nil && !validID(*i.AssetID) {
		return repository.ErrNotFound
	}
	created, err := scanIssue(r.db.QueryRow(ctx, `
		INSERT INTO issues (org_id, asset_id, title, description, status, priority, reported_by, assigned_to)
		VALUES ($1, $2, $3, $4, $5::issue_status, $6::issue_priority, $7, $8)
		RETURNING `+issueColumns,
		i.OrgID, i.AssetID, i.Title, i.Description, string(i.Status), string(i.Priority), i.ReportedBy, i.AssignedTo))
	if err != nil {
		return err
	}
	*i = *created
	return nil
}

func (r *IssueRepository) UpdateStatus(ctx context.Context, orgID, id string, status entity.IssueStatus, resolvedAt *time.Time) (*entity.Issue, error) {
	if !validID(id) {
		return nil, repository.ErrNotFound
	}
	return scanIssue(r.db.QueryRow(ctx, `
		UPDATE issues SET status = $1::issue_status, resolved_at = $2, updated_at = now()
		WHERE org_id = $3 AND id = $4
		RETURNING `+issueColumns, string(status), resolvedAt, orgID, id))
}

func (r *IssueRepository) Delete(ctx context.Context, orgID, id string) error {
	if !validID(id) {
		return repository.ErrNotFound
	}
	res, err := r.db.Exec(ctx, `DELETE FROM issues WHERE org_id = $1 AND id = $2`, orgID, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *IssueRepository) Stats(ctx context.Context, orgID string, resolvedSince time.Time) (entity.IssueStats, error) {
	var s entity.IssueStats
	err := r.db.QueryRow(ctx, `
		SELECT
			count(*) FILTER (WHERE status IN ('open', 'in_progress')),
			count(*) FILTER (WHERE priority = 'critical' AND status <> 'closed'),
			count(*) FILTER (WHERE resolved_at >= $2)
		FROM issues
		WHERE org_id = $1
	`, orgID, resolvedSince).Scan(&s.Active, &s.Critical, &s.ResolvedSince)
	return s, err
}

func (r *IssueRepository) Breakdown(ctx context.Context, orgID string) (entity.IssueBreakdown, error) {
	b := entity.IssueBreakdown{
		ByStatus:   make(map[entity.IssueStatus]int, 4),
		ByPriority: make(map[entity.IssuePriority]int, 4),
	}
	for _, s := range entity.AllIssueStatuses() {
		b.ByStatus[s] = 0
	}
	for _, p := range entity.AllIssuePriorities() {
		b.ByPriority[p] = 0
	}
	rows, err := r.db.Query(ctx, `
		SELECT status::text, priority::text, count(*)
		FROM issues
		WHERE org_id = $1
		GROUP BY status, priority
	`, orgID)
	if err != nil {
		return b, err
	}
	defer rows.Close()
	for rows.Next() {
		var status, priority string
		var n int
		if err := rows.Scan(&status, &priority, &n); err != nil {
			return b, err
		}
		b.ByStatus[entity.IssueStatus(status)] += n
		b.ByPriority[entity.IssuePriority(priority)] += n
	}
	return b, rows.Err()
}

var _ repository.IssueRepository = (*IssueRepository)(nil)

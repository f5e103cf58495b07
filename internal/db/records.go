package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/marcus/jobdesk/internal/models"
)

// ErrInvalidQuery is returned for list queries naming unknown or
// non-sortable/non-filterable fields.
var ErrInvalidQuery = errors.New("invalid query")

// columns returns every field key of r, which are also the columns of its
// view.
func columns(r models.Resource) []string {
	fields := models.Fields(r)
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = f.Key
	}
	return cols
}

func checkResource(r models.Resource) error {
	if len(models.Fields(r)) == 0 {
		return fmt.Errorf("unknown resource %q", r)
	}
	return nil
}

// escapeLike escapes LIKE wildcards so user text matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// whereClause builds the WHERE clause for search and filters. Search matches
// any searchable field; each filter must match its field. Status filters
// match exactly, everything else by substring.
func whereClause(r models.Resource, q models.ListQuery) (string, []any, error) {
	var conds []string
	var args []any

	if term := strings.TrimSpace(q.Search); term != "" {
		var ors []string
		for _, f := range models.Fields(r) {
			if f.Searchable {
				ors = append(ors, f.Key+` LIKE ? ESCAPE '\'`)
				args = append(args, escapeLike(term))
			}
		}
		if len(ors) > 0 {
			conds = append(conds, "("+strings.Join(ors, " OR ")+")")
		}
	}

	keys := make([]string, 0, len(q.Filters))
	for k := range q.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		value := strings.TrimSpace(q.Filters[key])
		if value == "" {
			continue
		}
		f, ok := models.LookupField(r, key)
		if !ok || !f.Filterable {
			return "", nil, fmt.Errorf("%w: cannot filter %s by %q", ErrInvalidQuery, r, key)
		}
		if f.Kind == models.FieldStatus {
			conds = append(conds, f.Key+" = ?")
			args = append(args, value)
			continue
		}
		conds = append(conds, f.Key+` LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(value))
	}

	if len(conds) == 0 {
		return "", args, nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func orderClause(r models.Resource, q models.ListQuery) (string, error) {
	if q.SortKey == "" {
		return " ORDER BY created_at DESC, id", nil
	}
	f, ok := models.LookupField(r, q.SortKey)
	if !ok || !f.Sortable {
		return "", fmt.Errorf("%w: cannot sort %s by %q", ErrInvalidQuery, r, q.SortKey)
	}
	dir := "ASC"
	if q.Desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id", f.Key, dir), nil
}

// List returns one page of r matching q, and the total number of matches.
func (db *DB) List(ctx context.Context, r models.Resource, q models.ListQuery) (models.Page, error) {
	if err := checkResource(r); err != nil {
		return models.Page{}, err
	}
	where, args, err := whereClause(r, q)
	if err != nil {
		return models.Page{}, err
	}
	order, err := orderClause(r, q)
	if err != nil {
		return models.Page{}, err
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM " + r.View() + where
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return models.Page{}, fmt.Errorf("count %s: %w", r, err)
	}

	limit := NormalizeLimit(q.Limit)
	query := fmt.Sprintf("SELECT id, %s FROM %s%s%s LIMIT %d OFFSET %d",
		strings.Join(columns(r), ", "), r.View(), where, order, limit, Offset(q.Page, limit))

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return models.Page{}, fmt.Errorf("list %s: %w", r, err)
	}
	defer rows.Close()

	page := models.Page{Rows: []models.Record{}, Total: total}
	for rows.Next() {
		rec, err := scanRecord(rows, columns(r))
		if err != nil {
			return models.Page{}, fmt.Errorf("scan %s: %w", r, err)
		}
		page.Rows = append(page.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return models.Page{}, fmt.Errorf("iterate %s: %w", r, err)
	}
	return page, nil
}

// Get returns a single record.
func (db *DB) Get(ctx context.Context, r models.Resource, id string) (*models.Record, error) {
	if err := checkResource(r); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT id, %s FROM %s WHERE id = ?", strings.Join(columns(r), ", "), r.View())
	rows, err := db.conn.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("get %s %s: %w", r, id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%s %s: %w", r, id, ErrNotFound)
	}
	rec, err := scanRecord(rows, columns(r))
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", r, err)
	}
	return &rec, nil
}

func scanRecord(rows *sql.Rows, cols []string) (models.Record, error) {
	var id string
	values := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols)+1)
	dest[0] = &id
	for i := range values {
		dest[i+1] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return models.Record{}, err
	}

	rec := models.Record{ID: id, Fields: make(map[string]any, len(cols))}
	for i, col := range cols {
		if values[i].Valid {
			rec.Fields[col] = values[i].String
		} else {
			rec.Fields[col] = nil
		}
	}
	return rec, nil
}

// Delete removes a record and everything that depends on it in one
// transaction.
func (db *DB) Delete(ctx context.Context, r models.Resource, id string) error {
	if err := checkResource(r); err != nil {
		return err
	}
	return db.withTx(ctx, func(tx *sql.Tx) error {
		for _, d := range dependents[r] {
			stmt := "DELETE FROM " + d.child.Table() + " WHERE " + d.where
			if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
				return fmt.Errorf("delete dependents of %s %s: %w", r, id, err)
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM "+r.Table()+" WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("delete %s %s: %w", r, id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%s %s: %w", r, id, ErrNotFound)
		}
		return nil
	})
}

// Update changes editable fields of a record. Unknown or read-only keys are
// rejected.
func (db *DB) Update(ctx context.Context, r models.Resource, id string, values map[string]string) error {
	if err := checkResource(r); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sets := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys)+1)
	for _, key := range keys {
		f, ok := models.LookupField(r, key)
		if !ok || !f.Editable {
			return fmt.Errorf("%w: %s field %q is not editable", ErrInvalidQuery, r, key)
		}
		sets = append(sets, key+" = ?")
		args = append(args, values[key])
	}
	args = append(args, id)

	res, err := db.conn.ExecContext(ctx,
		"UPDATE "+r.Table()+" SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", r, id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s %s: %w", r, id, ErrNotFound)
	}
	return nil
}

// Insert adds a row to r's table. An empty "id" value is generated.
func (db *DB) Insert(ctx context.Context, r models.Resource, values map[string]any) (string, error) {
	if err := checkResource(r); err != nil {
		return "", err
	}
	id, _ := values["id"].(string)
	if id == "" {
		var err error
		if id, err = idGenerator(r); err != nil {
			return "", fmt.Errorf("generate id: %w", err)
		}
	}

	cols := []string{"id"}
	args := []any{id}
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "id" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		cols = append(cols, k)
		args = append(args, values[k])
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ")

	_, err := db.conn.ExecContext(ctx,
		fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", r.Table(), strings.Join(cols, ", "), marks), args...)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", r, err)
	}
	return id, nil
}

// Stats counts every resource and the companies awaiting approval.
func (db *DB) Stats(ctx context.Context) (models.Stats, error) {
	stats := models.Stats{Counts: make(map[models.Resource]int)}
	for _, r := range models.AllResources() {
		var n int
		if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+r.Table()).Scan(&n); err != nil {
			return stats, fmt.Errorf("count %s: %w", r, err)
		}
		stats.Counts[r] = n
	}
	err := db.conn.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM companies WHERE status = ?", models.StatusApproving).Scan(&stats.PendingCompanies)
	if err != nil {
		return stats, fmt.Errorf("count pending companies: %w", err)
	}
	return stats, nil
}

func (db *DB) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Dependent is a record removed along with the record it references.
type Dependent struct {
	Resource models.Resource
	ID       string
	Label    string
}

// dependents lists, per resource, the records a delete cascades to and the
// condition selecting them by parent id. Order matters: applications of a
// company go before its job posts.
var dependents = map[models.Resource][]struct {
	child models.Resource
	where string
}{
	models.ResourceUsers: {
		{models.ResourceApplications, "user_id = ?"},
		{models.ResourceReviews, "user_id = ?"},
	},
	models.ResourceCompanies: {
		{models.ResourceApplications, "job_post_id IN (SELECT id FROM job_posts WHERE company_id = ?)"},
		{models.ResourceJobPosts, "company_id = ?"},
		{models.ResourceReviews, "company_id = ?"},
	},
	models.ResourceJobPosts: {
		{models.ResourceApplications, "job_post_id = ?"},
	},
}

// labelColumn is the view column naming a record of r.
func labelColumn(r models.Resource) string {
	switch r {
	case models.ResourceApplications:
		return "applicant || ' → ' || job_post"
	case models.ResourceUsers, models.ResourceCompanies:
		return "name"
	default:
		return "title"
	}
}

// Dependents returns the records a Delete of r/id would also remove.
func (db *DB) Dependents(ctx context.Context, r models.Resource, id string) ([]Dependent, error) {
	if err := checkResource(r); err != nil {
		return nil, err
	}
	var out []Dependent
	for _, d := range dependents[r] {
		query := fmt.Sprintf("SELECT id, COALESCE(%s, id) FROM %s WHERE %s ORDER BY id",
			labelColumn(d.child), d.child.View(), d.where)
		rows, err := db.conn.QueryContext(ctx, query, id)
		if err != nil {
			return nil, fmt.Errorf("dependents of %s %s: %w", r, id, err)
		}
		for rows.Next() {
			dep := Dependent{Resource: d.child}
			if err := rows.Scan(&dep.ID, &dep.Label); err != nil {
				rows.Close()
				return nil, err
			}
			out = append(out, dep)
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

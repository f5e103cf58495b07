package host

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sahilm/fuzzy"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

// snapshotPageSize is the page size used while copying a source.
const snapshotPageSize = db.MaxPageLimit

// Memory is a Source holding every record in process. Search is fuzzy and
// ranked by match quality unless a sort key is given. Mutations change only
// the snapshot.
type Memory struct {
	mu      sync.RWMutex
	records map[models.Resource][]models.Record
	machine *workflow.Machine
	now     func() time.Time
}

// NewMemory returns a Memory holding records. A nil machine means
// workflow.DefaultMachine.
func NewMemory(records map[models.Resource][]models.Record, machine *workflow.Machine) *Memory {
	if machine == nil {
		machine = workflow.DefaultMachine()
	}
	m := &Memory{
		records: make(map[models.Resource][]models.Record, len(records)),
		machine: machine,
		now:     time.Now,
	}
	for r, recs := range records {
		m.records[r] = cloneRecords(recs)
	}
	return m
}

// Snapshot copies every resource of src into a Memory.
func Snapshot(ctx context.Context, src Source, machine *workflow.Machine) (*Memory, error) {
	all := make(map[models.Resource][]models.Record)
	for _, r := range models.AllResources() {
		var recs []models.Record
		for page := 1; ; page++ {
			p, err := src.List(ctx, r, models.ListQuery{Page: page, Limit: snapshotPageSize})
			if err != nil {
				return nil, fmt.Errorf("snapshot: %w", err)
			}
			recs = append(recs, p.Rows...)
			if len(p.Rows) == 0 || len(recs) >= p.Total {
				break
			}
		}
		all[r] = recs
	}
	return NewMemory(all, machine), nil
}

func cloneRecords(recs []models.Record) []models.Record {
	out := make([]models.Record, len(recs))
	for i, rec := range recs {
		out[i] = cloneRecord(rec)
	}
	return out
}

func cloneRecord(rec models.Record) models.Record {
	fields := make(map[string]any, len(rec.Fields))
	for k, v := range rec.Fields {
		fields[k] = v
	}
	return models.Record{ID: rec.ID, Fields: fields}
}

// searchSource adapts records to fuzzy.Source over their searchable fields.
type searchSource struct {
	records []models.Record
	keys    []string
}

func (s searchSource) Len() int { return len(s.records) }

func (s searchSource) String(i int) string {
	parts := make([]string, 0, len(s.keys))
	for _, k := range s.keys {
		if v := s.records[i].String(k); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func searchKeys(r models.Resource) []string {
	var keys []string
	for _, f := range models.Fields(r) {
		if f.Searchable {
			keys = append(keys, f.Key)
		}
	}
	return keys
}

func (m *Memory) List(ctx context.Context, r models.Resource, q models.ListQuery) (models.Page, error) {
	if err := ctx.Err(); err != nil {
		return models.Page{}, &FetchError{Resource: r, Err: err}
	}
	if len(models.Fields(r)) == 0 {
		return models.Page{}, &FetchError{Resource: r, Err: fmt.Errorf("unknown resource %q", r)}
	}

	m.mu.RLock()
	recs := m.records[r]
	matched, err := filterRecords(r, recs, q.Filters)
	m.mu.RUnlock()
	if err != nil {
		return models.Page{}, &FetchError{Resource: r, Err: err}
	}

	if term := strings.TrimSpace(q.Search); term != "" {
		matches := fuzzy.FindFrom(term, searchSource{records: matched, keys: searchKeys(r)})
		found := make([]models.Record, len(matches))
		for i, match := range matches {
			found[i] = matched[match.Index]
		}
		matched = found
	}

	if q.SortKey != "" {
		f, ok := models.LookupField(r, q.SortKey)
		if !ok || !f.Sortable {
			return models.Page{}, &FetchError{Resource: r,
				Err: fmt.Errorf("%w: cannot sort %s by %q", db.ErrInvalidQuery, r, q.SortKey)}
		}
		sortRecords(matched, q.SortKey, q.Desc)
	}

	limit := db.NormalizeLimit(q.Limit)
	start := db.Offset(q.Page, limit)
	page := models.Page{Rows: []models.Record{}, Total: len(matched)}
	if start < len(matched) {
		end := min(start+limit, len(matched))
		page.Rows = cloneRecords(matched[start:end])
	}
	return page, nil
}

// filterRecords keeps records matching every filter. Status filters match
// exactly; other fields by case-insensitive substring.
func filterRecords(r models.Resource, recs []models.Record, filters map[string]string) ([]models.Record, error) {
	type cond struct {
		key   string
		value string
		exact bool
	}
	var conds []cond
	for key, value := range filters {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		f, ok := models.LookupField(r, key)
		if !ok || !f.Filterable {
			return nil, fmt.Errorf("%w: cannot filter %s by %q", db.ErrInvalidQuery, r, key)
		}
		conds = append(conds, cond{key: key, value: strings.ToLower(value), exact: f.Kind == models.FieldStatus})
	}

	out := make([]models.Record, 0, len(recs))
	for _, rec := range recs {
		keep := true
		for _, c := range conds {
			v := strings.ToLower(rec.String(c.key))
			if c.exact && v != c.value || !c.exact && !strings.Contains(v, c.value) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out, nil
}

func sortRecords(recs []models.Record, key string, desc bool) {
	sort.SliceStable(recs, func(i, j int) bool {
		a, b := recs[i].String(key), recs[j].String(key)
		if a == b {
			return recs[i].ID < recs[j].ID
		}
		if desc {
			return a > b
		}
		return a < b
	})
}

// find returns the index of id in r. m.mu must be held.
func (m *Memory) find(r models.Resource, id string) int {
	for i, rec := range m.records[r] {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

func (m *Memory) Get(_ context.Context, r models.Resource, id string) (*models.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.find(r, id)
	if i < 0 {
		return nil, &FetchError{Resource: r, Err: fmt.Errorf("%s %s: %w", r, id, db.ErrNotFound)}
	}
	rec := cloneRecord(m.records[r][i])
	return &rec, nil
}

// Delete removes a record and, like the store, the records that reference it.
func (m *Memory) Delete(_ context.Context, r models.Resource, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(r, id)
	if i < 0 {
		return &ActionError{Action: "delete", Resource: r, ID: id, Err: fmt.Errorf("%s %s: %w", r, id, db.ErrNotFound)}
	}
	m.records[r] = append(m.records[r][:i:i], m.records[r][i+1:]...)

	switch r {
	case models.ResourceUsers:
		m.removeWhere(models.ResourceApplications, "user_id", id)
		m.removeWhere(models.ResourceReviews, "user_id", id)
	case models.ResourceCompanies:
		for _, post := range m.records[models.ResourceJobPosts] {
			if post.String("company_id") == id {
				m.removeWhere(models.ResourceApplications, "job_post_id", post.ID)
			}
		}
		m.removeWhere(models.ResourceJobPosts, "company_id", id)
		m.removeWhere(models.ResourceReviews, "company_id", id)
	case models.ResourceJobPosts:
		m.removeWhere(models.ResourceApplications, "job_post_id", id)
	}
	return nil
}

// removeWhere drops records of r whose key field equals value. m.mu must be
// held.
func (m *Memory) removeWhere(r models.Resource, key, value string) {
	kept := m.records[r][:0:0]
	for _, rec := range m.records[r] {
		if rec.String(key) != value {
			kept = append(kept, rec)
		}
	}
	m.records[r] = kept
}

func (m *Memory) SetStatus(_ context.Context, r models.Resource, id string, to models.Status, force bool) ([]workflow.GuardResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(r, id)
	if i < 0 {
		return nil, &ActionError{Action: "status", Resource: r, ID: id, Err: fmt.Errorf("%s %s: %w", r, id, db.ErrNotFound)}
	}
	rec := m.records[r][i]
	warnings, err := m.machine.Validate(&workflow.TransitionContext{
		Resource:   r,
		Record:     &rec,
		FromStatus: rec.Status(),
		ToStatus:   to,
		Force:      force,
		Now:        m.now(),
	})
	if err != nil {
		return warnings, &ActionError{Action: "status", Resource: r, ID: id, Err: err}
	}
	updated := cloneRecord(rec)
	updated.Fields["status"] = string(to)
	m.records[r][i] = updated
	return warnings, nil
}

func (m *Memory) Update(_ context.Context, r models.Resource, id string, values map[string]string) error {
	for key := range values {
		f, ok := models.LookupField(r, key)
		if !ok || !f.Editable {
			return &ActionError{Action: "update", Resource: r, ID: id,
				Err: fmt.Errorf("%w: %s field %q is not editable", db.ErrInvalidQuery, r, key)}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.find(r, id)
	if i < 0 {
		return &ActionError{Action: "update", Resource: r, ID: id, Err: fmt.Errorf("%s %s: %w", r, id, db.ErrNotFound)}
	}
	updated := cloneRecord(m.records[r][i])
	for k, v := range values {
		updated.Fields[k] = v
	}
	m.records[r][i] = updated
	return nil
}

func (m *Memory) Stats(context.Context) (models.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	stats := models.Stats{Counts: make(map[models.Resource]int)}
	for _, r := range models.AllResources() {
		stats.Counts[r] = len(m.records[r])
	}
	for _, rec := range m.records[models.ResourceCompanies] {
		if rec.Status() == models.StatusApproving {
			stats.PendingCompanies++
		}
	}
	return stats, nil
}

package serve

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/marcus/jobdesk/internal/db"
	"github.com/marcus/jobdesk/internal/host"
	"github.com/marcus/jobdesk/internal/models"
	"github.com/marcus/jobdesk/internal/workflow"
)

var seedBase = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// seededAPI starts a server over a freshly seeded store and returns a remote
// client for it along with the raw server URL.
func seededAPI(t *testing.T, machine *workflow.Machine) (*host.Remote, string) {
	t.Helper()
	database, err := db.Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Seed(context.Background(), seedBase); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	srv := NewServer(host.NewLocal(database, machine, nil), "srv_test02", ServeConfig{}, nil)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	remote, err := host.NewRemote(ts.URL, ts.Client())
	if err != nil {
		t.Fatal(err)
	}
	return remote, ts.URL
}

func statusOf(err error) int {
	var se *host.StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}

func TestHandleList(t *testing.T) {
	remote, _ := seededAPI(t, nil)
	ctx := context.Background()

	tests := []struct {
		name      string
		resource  models.Resource
		query     models.ListQuery
		wantTotal int
		wantRows  int
		wantFirst string
	}{
		{"default page", models.ResourceUsers, models.ListQuery{}, 12, 10, ""},
		{"second page", models.ResourceUsers, models.ListQuery{Page: 2, Limit: 10}, 12, 2, ""},
		{"sorted", models.ResourceCompanies, models.ListQuery{SortKey: "name"}, 6, 6, "co-0001"},
		{"filtered", models.ResourceApplications, models.ListQuery{Filters: map[string]string{"status": "denied"}}, 8, 8, ""},
		{"search", models.ResourceNotices, models.ListQuery{Search: "holiday"}, 1, 1, "nt-0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := remote.List(ctx, tt.resource, tt.query)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if page.Total != tt.wantTotal || len(page.Rows) != tt.wantRows {
				t.Errorf("total = %d rows = %d, want %d and %d", page.Total, len(page.Rows), tt.wantTotal, tt.wantRows)
			}
			if tt.wantFirst != "" && page.Rows[0].ID != tt.wantFirst {
				t.Errorf("first = %s, want %s", page.Rows[0].ID, tt.wantFirst)
			}
		})
	}
}

func TestHandleList_BadRequests(t *testing.T) {
	_, base := seededAPI(t, nil)

	tests := []struct {
		path string
		want int
	}{
		{"/api/admin/unicorns", http.StatusNotFound},
		{"/api/admin/users?page=x", http.StatusBadRequest},
		{"/api/admin/users?limit=5000", http.StatusBadRequest},
		{"/api/admin/users?sort=password", http.StatusBadRequest},
		{"/api/admin/users?f.created_at=2026", http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Get(base + tt.path)
		if err != nil {
			t.Fatalf("GET %s: %v", tt.path, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.want {
			t.Errorf("GET %s: status = %d, want %d", tt.path, resp.StatusCode, tt.want)
		}
	}
}

func TestHandleGet(t *testing.T) {
	remote, _ := seededAPI(t, nil)
	ctx := context.Background()

	rec, err := remote.Get(ctx, models.ResourceJobPosts, "jp-0001")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if rec.String("company") != "Blue Bean Coffee" || rec.Status() != models.StatusOpen {
		t.Errorf("record = %+v", rec)
	}

	_, err = remote.Get(ctx, models.ResourceJobPosts, "jp-9999")
	if statusOf(err) != http.StatusNotFound {
		t.Errorf("missing record err = %v, want 404", err)
	}
}

func TestHandleDelete(t *testing.T) {
	remote, _ := seededAPI(t, nil)
	ctx := context.Background()

	if err := remote.Delete(ctx, models.ResourceUsers, "us-0001"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	stats, err := remote.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.Counts[models.ResourceUsers] != 11 {
		t.Errorf("users = %d, want 11", stats.Counts[models.ResourceUsers])
	}
	if stats.Counts[models.ResourceApplications] != 22 {
		t.Errorf("applications = %d, want 22 after cascade", stats.Counts[models.ResourceApplications])
	}

	if err := remote.Delete(ctx, models.ResourceUsers, "us-0001"); statusOf(err) != http.StatusNotFound {
		t.Errorf("second delete err = %v, want 404", err)
	}
}

func TestHandleUpdate(t *testing.T) {
	remote, base := seededAPI(t, nil)
	ctx := context.Background()

	if err := remote.Update(ctx, models.ResourceReviews, "rv-0001", map[string]string{"title": "Great first job"}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	rec, err := remote.Get(ctx, models.ResourceReviews, "rv-0001")
	if err != nil {
		t.Fatal(err)
	}
	if rec.String("title") != "Great first job" {
		t.Errorf("title = %q", rec.String("title"))
	}

	err = remote.Update(ctx, models.ResourceReviews, "rv-0001", map[string]string{"author": "someone"})
	if statusOf(err) != http.StatusBadRequest {
		t.Errorf("read-only update err = %v, want 400", err)
	}

	req, _ := http.NewRequest(http.MethodPut, base+"/api/admin/reviews/rv-0001", strings.NewReader("{not json"))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", resp.StatusCode)
	}
}

func TestHandleSetStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed", func(t *testing.T) {
		remote, _ := seededAPI(t, nil)
		warnings, err := remote.SetStatus(ctx, models.ResourceCompanies, "co-0003", models.StatusApproved, false)
		if err != nil {
			t.Fatalf("SetStatus failed: %v", err)
		}
		if len(warnings) != 0 {
			t.Errorf("warnings = %+v, want none", warnings)
		}
		stats, _ := remote.Stats(ctx)
		if stats.PendingCompanies != 1 {
			t.Errorf("pending = %d, want 1", stats.PendingCompanies)
		}
	})

	t.Run("not in table", func(t *testing.T) {
		remote, _ := seededAPI(t, nil)
		_, err := remote.SetStatus(ctx, models.ResourceCompanies, "co-0001", models.StatusApproving, false)
		if statusOf(err) != http.StatusConflict {
			t.Errorf("err = %v, want 409", err)
		}
	})

	t.Run("wrong vocabulary", func(t *testing.T) {
		remote, _ := seededAPI(t, nil)
		_, err := remote.SetStatus(ctx, models.ResourceJobPosts, "jp-0001", models.StatusApproved, false)
		if statusOf(err) != http.StatusBadRequest {
			t.Errorf("err = %v, want 400", err)
		}
	})

	// The seeded posts' due dates are long past, so reopening one trips
	// ExpiredPostGuard.
	t.Run("guard blocks", func(t *testing.T) {
		remote, _ := seededAPI(t, nil)
		_, err := remote.SetStatus(ctx, models.ResourceJobPosts, "jp-0004", models.StatusOpen, false)
		if statusOf(err) != http.StatusUnprocessableEntity {
			t.Fatalf("err = %v, want 422", err)
		}
		if msg := host.UserMessage(err); !strings.Contains(msg, "has passed") {
			t.Errorf("UserMessage = %q, want guard reason", msg)
		}
	})

	t.Run("force returns warnings", func(t *testing.T) {
		remote, _ := seededAPI(t, nil)
		warnings, err := remote.SetStatus(ctx, models.ResourceJobPosts, "jp-0004", models.StatusOpen, true)
		if err != nil {
			t.Fatalf("SetStatus failed: %v", err)
		}
		if len(warnings) != 1 || warnings[0].Guard != "ExpiredPostGuard" {
			t.Errorf("warnings = %+v", warnings)
		}
	})

	t.Run("advisory machine", func(t *testing.T) {
		remote, _ := seededAPI(t, workflow.AdvisoryMachine())
		warnings, err := remote.SetStatus(ctx, models.ResourceJobPosts, "jp-0004", models.StatusOpen, false)
		if err != nil {
			t.Fatalf("SetStatus failed: %v", err)
		}
		if len(warnings) != 1 {
			t.Errorf("warnings = %+v, want one", warnings)
		}
	})
}

func TestHandleTransitions(t *testing.T) {
	_, base := seededAPI(t, nil)

	resp, err := http.Get(base + "/api/admin/companies/co-0005/transitions")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var env struct {
		OK   bool `json:"ok"`
		Data struct {
			Status      string          `json:"status"`
			Transitions []transitionDTO `json:"transitions"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatal(err)
	}
	if env.Data.Status != "hidden" || len(env.Data.Transitions) != 2 {
		t.Fatalf("transitions = %+v", env.Data)
	}
	if env.Data.Transitions[0].Action != "unhide" || env.Data.Transitions[1].Action != "approve" {
		t.Errorf("actions = %+v", env.Data.Transitions)
	}
}

package host

import (
	"net/url"
	"testing"

	"github.com/marcus/jobdesk/internal/grid"
	"github.com/marcus/jobdesk/internal/models"
)

func TestDecodeListQuery(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    models.ListQuery
		wantErr bool
	}{
		{"empty", "", models.ListQuery{}, false},
		{
			"everything",
			"search=kim&sort=name&desc=1&page=2&limit=50&f.status=open&f.=ignored&other=x",
			models.ListQuery{Search: "kim", SortKey: "name", Desc: true, Page: 2, Limit: 50, Filters: map[string]string{"status": "open"}},
			false,
		},
		{"bad desc", "desc=maybe", models.ListQuery{}, true},
		{"bad page", "page=two", models.ListQuery{}, true},
		{"negative limit", "limit=-5", models.ListQuery{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := url.ParseQuery(tt.raw)
			got, err := DecodeListQuery(v)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Search != tt.want.Search || got.SortKey != tt.want.SortKey || got.Desc != tt.want.Desc ||
				got.Page != tt.want.Page || got.Limit != tt.want.Limit || len(got.Filters) != len(tt.want.Filters) {
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
			for k, v := range tt.want.Filters {
				if got.Filters[k] != v {
					t.Errorf("filter %s = %q, want %q", k, got.Filters[k], v)
				}
			}
		})
	}
}

func TestEncodeListQuery_DropsZeroValues(t *testing.T) {
	v := EncodeListQuery(models.ListQuery{Desc: true, Filters: map[string]string{"name": ""}})
	if len(v) != 0 {
		t.Errorf("EncodeListQuery = %v, want empty", v)
	}
}

func TestListQueryFromGrid(t *testing.T) {
	q := ListQuery(grid.Query{
		Search:  "x",
		Sort:    grid.SortState{Key: "name", Direction: grid.Desc},
		Filters: grid.FilterState{"status": "open"},
		Page:    3,
		Size:    20,
	})
	if q.Search != "x" || q.SortKey != "name" || !q.Desc || q.Page != 3 || q.Limit != 20 || q.Filters["status"] != "open" {
		t.Errorf("ListQuery = %+v", q)
	}

	if q := ListQuery(grid.Query{Sort: grid.SortState{Direction: grid.Desc}}); q.Desc {
		t.Error("Desc without a sort key should be dropped")
	}
}

func TestColumns_HideReferenceFields(t *testing.T) {
	cols := Columns(models.ResourceJobPosts)
	for _, c := range cols {
		switch c.Key {
		case "company_id", "company_status":
			t.Errorf("hidden field %s became a column", c.Key)
		case "status":
			if c.Display.Kind != grid.DisplayBadge || c.Display.Badges["open"].Tone != grid.ToneSuccess {
				t.Errorf("status column display = %+v", c.Display)
			}
		case "due_date":
			if c.Display.Kind != grid.DisplayDate {
				t.Errorf("due_date display kind = %v", c.Display.Kind)
			}
		}
	}
	if len(cols) != 4 {
		t.Errorf("len(cols) = %d, want 4", len(cols))
	}
}

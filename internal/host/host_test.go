package host

import (
	"context"
	"testing"
	"time"

	"github.com/marcus/jobdesk/internal/db"
)

var seedBase = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func seededLocal(t *testing.T) *Local {
	t.Helper()
	database, err := db.Initialize(t.TempDir())
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	if err := database.Seed(context.Background(), seedBase); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	return NewLocal(database, nil, nil)
}

package db

import (
	"context"
	"fmt"
	"time"

	"github.com/marcus/jobdesk/internal/models"
)

const sqlTime = "2006-01-02 15:04:05"

var (
	seedUsers = []string{
		"Kim Minji", "Lee Jisoo", "Park Hyun", "Choi Yuna", "Jung Hoon",
		"Kang Seo", "Cho Eun", "Yoon Tae", "Jang Mira", "Lim Dohyun",
		"Han Sora", "Oh Jiwon",
	}
	seedCompanies = []struct {
		name, owner string
		status      models.Status
	}{
		{"Blue Bean Coffee", "Song Jae", models.StatusApproved},
		{"Daily Mart", "Baek Hana", models.StatusApproved},
		{"Quick Wash", "Shin Woo", models.StatusApproving},
		{"Hanok Bistro", "Nam Gyu", models.StatusApproved},
		{"Pixel Print", "Ryu Ara", models.StatusHidden},
		{"Green Bike Rental", "Moon Sol", models.StatusApproving},
	}
	seedTitles = []string{
		"Weekend barista", "Night shift cashier", "Delivery rider", "Kitchen helper",
		"Store stocker", "Server (lunch)", "Laundry attendant", "Print shop assistant",
	}
)

// Seed fills an empty database with demo records. Timestamps are derived
// from base so repeated seeds produce the same data.
func (db *DB) Seed(ctx context.Context, base time.Time) error {
	stats, err := db.Stats(ctx)
	if err != nil {
		return err
	}
	for _, n := range stats.Counts {
		if n > 0 {
			return fmt.Errorf("database already has data")
		}
	}

	at := func(days int) string { return base.AddDate(0, 0, days).Format(sqlTime) }

	for i, name := range seedUsers {
		_, err := db.Insert(ctx, models.ResourceUsers, map[string]any{
			"id":         fmt.Sprintf("us-%04d", i+1),
			"name":       name,
			"email":      fmt.Sprintf("user%d@example.com", i+1),
			"phone":      fmt.Sprintf("010-%04d-%04d", 1000+i, 2000+i*7),
			"created_at": at(-90 + i*3),
		})
		if err != nil {
			return err
		}
	}

	for i, c := range seedCompanies {
		_, err := db.Insert(ctx, models.ResourceCompanies, map[string]any{
			"id":                  fmt.Sprintf("co-%04d", i+1),
			"name":                c.name,
			"owner":               c.owner,
			"phone":               fmt.Sprintf("02-%03d-%04d", 300+i, 4000+i*11),
			"registration_number": fmt.Sprintf("%03d-%02d-%05d", 100+i, 10+i, 12345+i),
			"status":              string(c.status),
			"created_at":          at(-80 + i*5),
		})
		if err != nil {
			return err
		}
	}

	postCount := 14
	for i := 0; i < postCount; i++ {
		status := models.StatusOpen
		if i%4 == 3 {
			status = models.StatusClosed
		}
		_, err := db.Insert(ctx, models.ResourceJobPosts, map[string]any{
			"id":         fmt.Sprintf("jp-%04d", i+1),
			"company_id": fmt.Sprintf("co-%04d", i%len(seedCompanies)+1),
			"title":      seedTitles[i%len(seedTitles)],
			"status":     string(status),
			"due_date":   base.AddDate(0, 0, -10+i*4).Format("2006-01-02"),
			"created_at": at(-60 + i*2),
		})
		if err != nil {
			return err
		}
	}

	appStatuses := []models.Status{models.StatusApproving, models.StatusApproved, models.StatusDenied}
	for i := 0; i < 25; i++ {
		_, err := db.Insert(ctx, models.ResourceApplications, map[string]any{
			"id":          fmt.Sprintf("ap-%04d", i+1),
			"user_id":     fmt.Sprintf("us-%04d", i%len(seedUsers)+1),
			"job_post_id": fmt.Sprintf("jp-%04d", (i*3)%postCount+1),
			"status":      string(appStatuses[i%len(appStatuses)]),
			"applied_at":  at(-30 + i),
			"created_at":  at(-30 + i),
		})
		if err != nil {
			return err
		}
	}

	for i := 0; i < 8; i++ {
		_, err := db.Insert(ctx, models.ResourceReviews, map[string]any{
			"id":         fmt.Sprintf("rv-%04d", i+1),
			"company_id": fmt.Sprintf("co-%04d", i%len(seedCompanies)+1),
			"user_id":    fmt.Sprintf("us-%04d", (i*5)%len(seedUsers)+1),
			"title":      fmt.Sprintf("Worked here for %d months", i+2),
			"content":    fmt.Sprintf("## Pros\n\n- Friendly team\n- Flexible shifts\n\n## Cons\n\n- Busy weekends (rating %d/5)\n", i%5+1),
			"created_at": at(-20 + i*2),
		})
		if err != nil {
			return err
		}
	}

	notices := []string{"Holiday schedule", "New approval process", "Service maintenance", "Privacy policy update", "Spring hiring event"}
	for i, title := range notices {
		_, err := db.Insert(ctx, models.ResourceNotices, map[string]any{
			"id":         fmt.Sprintf("nt-%04d", i+1),
			"title":      title,
			"content":    fmt.Sprintf("# %s\n\nPlease read this notice carefully. It applies from **%s**.\n", title, base.AddDate(0, 0, i*7).Format("Jan 2")),
			"created_at": at(-15 + i*3),
		})
		if err != nil {
			return err
		}
	}
	return nil
}

package db

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/marcus/jobdesk/internal/models"
)

var idPrefixes = map[models.Resource]string{
	models.ResourceUsers:        "us-",
	models.ResourceCompanies:    "co-",
	models.ResourceJobPosts:     "jp-",
	models.ResourceApplications: "ap-",
	models.ResourceReviews:      "rv-",
	models.ResourceNotices:      "nt-",
}

// idGenerator is the function used to generate record IDs.
// It can be replaced in tests to control ID generation.
var idGenerator = defaultGenerateID

// defaultGenerateID generates a unique record ID using crypto/rand
func defaultGenerateID(r models.Resource) (string, error) {
	bytes := make([]byte, 4) // 8 hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return idPrefixes[r] + hex.EncodeToString(bytes), nil
}

package appclient

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
)

// loadSnapshot reads the static read-only fallback file. The file carries
// the same shape as GET /api/app-data.
func loadSnapshot(path string) (*models.AppData, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read offline snapshot: %w", err)
	}

	var data models.AppData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode offline snapshot: %w", err)
	}
	return &data, nil
}

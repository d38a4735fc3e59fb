package db

import (
	"encoding/json"
	"fmt"

	"github.com/marcuslopes-design/Projeto-Vistoria/internal/models"
)

// SeedAppData decodes the embedded seed aggregate. Every backend seeds from
// this single document on first run.
func SeedAppData() (*models.AppData, error) {
	b, err := SeedFiles.ReadFile("seed/appdata.json")
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}

	var data models.AppData
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	return &data, nil
}

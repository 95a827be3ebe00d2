// Package catalogfile reads promotion catalogs and simulation scenarios from
// JSON or YAML files for offline use.
package catalogfile

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/Cheertaboi/restaurant-promotion-service/internal/models"
)

// Catalog is the file layout of a promotion catalog.
type Catalog struct {
	Promotions []models.Promotion `json:"promotions"`
}

// Scenario is one simulation to run against a catalog.
type Scenario struct {
	models.SimulationRequest
	At string `json:"at,omitempty"` // RFC3339
}

func LoadCatalog(path string) ([]models.Promotion, error) {
	var c Catalog
	if err := load(path, &c); err != nil {
		return nil, err
	}
	return c.Promotions, nil
}

func LoadScenario(path string) (Scenario, error) {
	var s Scenario
	if err := load(path, &s); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func load(path string, out any) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	switch ext := filepath.Ext(path); ext {
	case ".json":
		err = json.Unmarshal(data, out)
	case ".yaml", ".yml":
		err = decodeYAML(data, out)
	default:
		return fmt.Errorf("unsupported file extension %q", ext)
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// decodeYAML goes through JSON so the models' json tags and decimal
// handling apply to YAML files too.
func decodeYAML(data []byte, out any) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	j, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return json.Unmarshal(j, out)
}

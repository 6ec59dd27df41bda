// Package project persists load plans and the container preset inventory as
// JSON files.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// planFileVersion is bumped when the plan file layout changes.
const planFileVersion = "1.0.0"

// PlanFile is the on-disk envelope of a load plan.
type PlanFile struct {
	Version string         `json:"version"`
	SavedAt string         `json:"saved_at"`
	Plan    model.LoadPlan `json:"plan"`
}

// SavePlan writes the plan to the specified JSON file. It creates parent
// directories if they do not exist.
func SavePlan(path string, plan model.LoadPlan) error {
	envelope := PlanFile{
		Version: planFileVersion,
		SavedAt: time.Now().UTC().Format(time.RFC3339),
		Plan:    plan,
	}
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal plan: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write plan file: %w", err)
	}
	return nil
}

// LoadPlan reads a plan from the specified JSON file.
func LoadPlan(path string) (model.LoadPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.LoadPlan{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	var envelope PlanFile
	if err := json.Unmarshal(data, &envelope); err != nil {
		return model.LoadPlan{}, fmt.Errorf("failed to parse plan file: %w", err)
	}
	if envelope.Version == "" {
		return model.LoadPlan{}, fmt.Errorf("invalid plan file: missing version field")
	}
	// Ensure Groups is never nil
	if envelope.Plan.Groups == nil {
		envelope.Plan.Groups = []model.PackageGroup{}
	}
	return envelope.Plan, nil
}

package model

import (
	"github.com/google/uuid"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
)

// ContainerPreset is a reusable container definition. Dimensions are
// interior measurements in centimetres.
type ContainerPreset struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Dims        geometry.Vector `json:"dims"`
}

// NewContainerPreset creates a preset with a generated ID.
func NewContainerPreset(name, description string, dims geometry.Vector) ContainerPreset {
	return ContainerPreset{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Description: description,
		Dims:        dims,
	}
}

// ToContainer builds an empty container from the preset, with optional
// forbidden zones.
func (cp ContainerPreset) ToContainer(zones []geometry.Box) (*Container, error) {
	return NewContainer(cp.Dims, zones)
}

// Inventory holds the saved container presets.
type Inventory struct {
	Presets []ContainerPreset `json:"presets"`
}

// DefaultInventory returns the standard ISO shipping container interiors.
func DefaultInventory() Inventory {
	return Inventory{
		Presets: []ContainerPreset{
			NewContainerPreset("20ft GP", "20ft general purpose dry container", geometry.Vector{589.8, 235.2, 239.3}),
			NewContainerPreset("40ft GP", "40ft general purpose dry container", geometry.Vector{1203.2, 235.2, 239.3}),
			NewContainerPreset("40ft HC", "40ft high cube dry container", geometry.Vector{1203.2, 235.2, 269.7}),
			NewContainerPreset("45ft HC", "45ft high cube dry container", geometry.Vector{1355.6, 235.2, 269.7}),
		},
	}
}

// FindPresetByID returns a pointer to the preset with the given ID, or nil.
func (inv *Inventory) FindPresetByID(id string) *ContainerPreset {
	for i := range inv.Presets {
		if inv.Presets[i].ID == id {
			return &inv.Presets[i]
		}
	}
	return nil
}

// FindPresetByName returns a pointer to the first preset with the given
// name, or nil.
func (inv *Inventory) FindPresetByName(name string) *ContainerPreset {
	for i := range inv.Presets {
		if inv.Presets[i].Name == name {
			return &inv.Presets[i]
		}
	}
	return nil
}

// AddPreset appends a preset to the inventory.
func (inv *Inventory) AddPreset(p ContainerPreset) {
	inv.Presets = append(inv.Presets, p)
}

// RemovePresetByID removes the preset with the given ID. Returns true if
// found and removed.
func (inv *Inventory) RemovePresetByID(id string) bool {
	for i := range inv.Presets {
		if inv.Presets[i].ID == id {
			inv.Presets = append(inv.Presets[:i], inv.Presets[i+1:]...)
			return true
		}
	}
	return false
}

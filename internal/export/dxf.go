package export

import (
	"fmt"
	"math/bits"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// layerColors cycles distinct ACI colors across the per-type layers.
var layerColors = []color.ColorNumber{
	color.Red,
	color.Yellow,
	color.Green,
	color.Cyan,
	color.Blue,
	color.Magenta,
}

// SaveDXF writes a wireframe drawing of the load: the container shell on its
// own layer and the placed boxes on one layer per package type, so CAD
// viewers can toggle types independently.
func SaveDXF(path string, placed *model.PlacedPackageList) error {
	if placed.Len() == 0 {
		return fmt.Errorf("no placements to export")
	}

	d := dxf.NewDrawing()

	if _, err := d.AddLayer("CONTAINER", dxf.DefaultColor, dxf.DefaultLineType, true); err != nil {
		return fmt.Errorf("failed to add container layer: %w", err)
	}
	if err := drawBoxEdges(d, geometry.Vector{}, placed.ContainerDims); err != nil {
		return err
	}

	byType := placementsByType(placed)
	for i, pkgType := range sortedTypes(byType) {
		name := fmt.Sprintf("TYPE_%d", pkgType)
		if pkgType == model.TypeNone {
			name = "UNTYPED"
		}
		if _, err := d.AddLayer(name, layerColors[i%len(layerColors)], dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", name, err)
		}
		for _, pp := range byType[pkgType] {
			if err := drawBoxEdges(d, pp.Min, pp.Dims); err != nil {
				return err
			}
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save DXF file: %w", err)
	}
	return nil
}

// drawBoxEdges draws the twelve edges of the box anchored at min on the
// drawing's current layer. Corners whose indices differ in exactly one bit
// share an edge.
func drawBoxEdges(d *drawing.Drawing, min, dims geometry.Vector) error {
	for i := 0; i < 8; i++ {
		for j := i + 1; j < 8; j++ {
			if bits.OnesCount8(uint8(i^j)) != 1 {
				continue
			}
			a := boxVertex(min, dims, i)
			b := boxVertex(min, dims, j)
			if _, err := d.Line(
				a[geometry.AxisX], a[geometry.AxisY], a[geometry.AxisZ],
				b[geometry.AxisX], b[geometry.AxisY], b[geometry.AxisZ],
			); err != nil {
				return fmt.Errorf("failed to draw edge: %w", err)
			}
		}
	}
	return nil
}

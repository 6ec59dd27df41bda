// Package export renders completed load plans to interchange formats: 3MF
// models, DXF wireframes, PDF tier reports, QR-coded load labels, and sweep
// result tables.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// boxColor represents an RGB color for a rendered package.
type boxColor struct {
	R, G, B int
}

// boxColors is the palette package footprints and 3MF materials cycle
// through.
var boxColors = []boxColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// typeColor returns the palette color for a package type. Untyped packages
// render gray.
func typeColor(pkgType int) boxColor {
	if pkgType < 0 {
		return boxColor{R: 158, G: 158, B: 158}
	}
	return boxColors[pkgType%len(boxColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// GeneratePDF builds a loading report: one page per tier of the load (all
// placements anchored at the same height, bottom tier first), drawing each
// tier's footprints to scale with type-colored fills, followed by a summary
// page with the run statistics.
func GeneratePDF(placed *model.PlacedPackageList, stats model.Statistics) (*fpdf.Fpdf, error) {
	if placed.Len() == 0 {
		return nil, fmt.Errorf("no placements to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for i, t := range tiersOf(placed) {
		pdf.AddPage()
		renderTierPage(pdf, t, i+1, placed.ContainerDims)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, placed, stats)

	return pdf, nil
}

// SavePDF writes the loading report to a PDF file at the given path.
func SavePDF(path string, placed *model.PlacedPackageList, stats model.Statistics) error {
	pdf, err := GeneratePDF(placed, stats)
	if err != nil {
		return err
	}
	return pdf.OutputFileAndClose(path)
}

// tier is one horizontal layer of the load: every placement anchored at the
// same height.
type tier struct {
	z          float64
	placements []model.PlacedPackage
}

// tiersOf groups placements by anchor height, ascending. Stacked packages
// anchor exactly on a lower package's top face, so heights match without a
// tolerance.
func tiersOf(placed *model.PlacedPackageList) []tier {
	byZ := make(map[float64][]model.PlacedPackage)
	for _, pp := range placed.Placed() {
		z := pp.Min[geometry.AxisZ]
		byZ[z] = append(byZ[z], pp)
	}

	zs := make([]float64, 0, len(byZ))
	for z := range byZ {
		zs = append(zs, z)
	}
	sort.Float64s(zs)

	tiers := make([]tier, 0, len(zs))
	for _, z := range zs {
		tiers = append(tiers, tier{z: z, placements: byZ[z]})
	}
	return tiers
}

// renderTierPage draws a single tier of the load on the current PDF page.
func renderTierPage(pdf *fpdf.Fpdf, t tier, tierNum int, containerDims geometry.Vector) {
	// Title
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Tier %d: z = %g cm (%d packages)", tierNum, t.z, len(t.placements))
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	// Stats line
	tallest := 0.0
	for _, pp := range t.placements {
		tallest = math.Max(tallest, pp.Dims[geometry.AxisZ])
	}
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Container floor: %g x %g cm | Tallest package: %g cm",
		containerDims[geometry.AxisX], containerDims[geometry.AxisY], tallest)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	// Calculate drawing area
	drawWidth := pageWidth - marginLeft - marginRight
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	// Calculate scale to fit the container floor within the drawing area
	scaleX := drawWidth / containerDims[geometry.AxisX]
	scaleY := drawHeight / containerDims[geometry.AxisY]
	scale := math.Min(scaleX, scaleY)

	canvasW := containerDims[geometry.AxisX] * scale
	canvasH := containerDims[geometry.AxisY] * scale

	// Center the drawing horizontally
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Draw the container floor background
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Draw the tier's footprints
	for _, pp := range t.placements {
		col := typeColor(pp.Package.Type)
		pw := pp.Dims[geometry.AxisX] * scale
		ph := pp.Dims[geometry.AxisY] * scale
		px := offsetX + pp.Min[geometry.AxisX]*scale
		py := offsetY + pp.Min[geometry.AxisY]*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		// Footprint label (only if the rectangle is large enough)
		if pw > 8 && ph > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)

			label := fmt.Sprintf("%d", pp.Package.ID)
			dims := fmt.Sprintf("%gx%g", pp.Dims[geometry.AxisX], pp.Dims[geometry.AxisY])

			labelW := pdf.GetStringWidth(label)
			dimsW := pdf.GetStringWidth(dims)

			// First line: package ID
			if labelW < pw-1 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-4)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}

			// Second line: footprint dimensions
			if ph > 10 && dimsW < pw-1 {
				pdf.SetXY(px+(pw-dimsW)/2, py+ph/2)
				pdf.CellFormat(dimsW, 4, dims, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, containerDims, scale, offsetX, offsetY, canvasW, canvasH)
	drawTypeLegend(pdf, t.placements, offsetY+canvasH+5)
}

// drawDimensionAnnotations adds floor dimension labels outside the container
// rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, containerDims geometry.Vector, scale, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	// Width annotation (below the floor)
	widthLabel := fmt.Sprintf("%g cm", containerDims[geometry.AxisX])
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(canvasW-wLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	// Depth annotation (to the left of the floor, rotated)
	depthLabel := fmt.Sprintf("%g cm", containerDims[geometry.AxisY])
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	dLabelW := pdf.GetStringWidth(depthLabel)
	pdf.SetXY(offsetX-3-dLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(dLabelW, 4, depthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	// Reset text color
	pdf.SetTextColor(0, 0, 0)
}

// drawTypeLegend renders a compact legend of the tier's package types at the
// bottom of the page.
func drawTypeLegend(pdf *fpdf.Fpdf, placements []model.PlacedPackage, startY float64) {
	if len(placements) == 0 {
		return
	}

	counts := make(map[int]int)
	for _, pp := range placements {
		counts[pp.Package.Type]++
	}
	types := make([]int, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Ints(types)

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Package types:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight

	for _, pkgType := range types {
		col := typeColor(pkgType)
		label := fmt.Sprintf("%s (%d)", typeLabel(pkgType), counts[pkgType])
		labelW := pdf.GetStringWidth(label) + 6

		// Wrap to next line if needed
		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}

		// Color swatch
		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		// Label text
		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// typeLabel renders a package type for reports.
func typeLabel(pkgType int) string {
	if pkgType < 0 {
		return "untyped"
	}
	return fmt.Sprintf("type %d", pkgType)
}

// renderSummaryPage draws the final summary page with the run statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, placed *model.PlacedPackageList, stats model.Statistics) {
	// Title
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Load Plan Summary", "", 0, "L", false, 0, "")

	// Separator line
	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	// Run statistics
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Run Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Run", stats.Run},
		{"Time", fmt.Sprintf("%g s", stats.Time)},
		{"Packages Placed", fmt.Sprintf("%d", stats.PlacedN)},
		{"Placed Volume", fmt.Sprintf("%g cm3", stats.PlacedVol)},
		{"Packages Remaining", fmt.Sprintf("%d", stats.RemainingN)},
		{"Remaining Volume", fmt.Sprintf("%g cm3", stats.RemainingVol)},
		{"Placed Ratio", fmt.Sprintf("%g", stats.PlacedRatio)},
		{"Filling Ratio", fmt.Sprintf("%g", stats.FillingRatio)},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	// Per-type breakdown table
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Packages by Type", "", 0, "L", false, 0, "")
	y += 9

	byType := placementsByType(placed)
	types := sortedTypes(byType)

	colWidths := []float64{40, 30, 50}
	headers := []string{"Type", "Count", "Volume"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, pkgType := range types {
		volume := 0.0
		for _, pp := range byType[pkgType] {
			volume += pp.Volume()
		}
		rowData := []string{
			typeLabel(pkgType),
			fmt.Sprintf("%d", len(byType[pkgType])),
			fmt.Sprintf("%.1f cm3", volume),
		}

		// Alternate row background
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		xPos = marginLeft
		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	// Remaining packages warning
	if stats.RemainingN > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		warning := fmt.Sprintf("WARNING: %d packages did not fit", stats.RemainingN)
		pdf.CellFormat(200, 7, warning, "", 0, "L", false, 0, "")
		pdf.SetTextColor(0, 0, 0)
	}

	// Footer
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by loadplan - 3D container loading planner", "", 0, "C", false, 0, "")
}

// labelFontSize returns an appropriate font size based on the rectangle
// dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}

// placementsByType groups placements by package type.
func placementsByType(placed *model.PlacedPackageList) map[int][]model.PlacedPackage {
	byType := make(map[int][]model.PlacedPackage)
	for _, pp := range placed.Placed() {
		byType[pp.Package.Type] = append(byType[pp.Package.Type], pp)
	}
	return byType
}

// sortedTypes returns the map's type keys in ascending order.
func sortedTypes(byType map[int][]model.PlacedPackage) []int {
	types := make([]int, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Ints(types)
	return types
}

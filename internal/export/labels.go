package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// LabelInfo holds the data encoded into each load label's QR code.
type LabelInfo struct {
	PackageID int             `json:"id"`
	Type      int             `json:"type"`
	Dims      geometry.Vector `json:"dims_cm"`
	Anchor    geometry.Vector `json:"anchor_cm"`
	Rotation  string          `json:"rotation"`
	Order     int             `json:"order"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// BuildLabels extracts label information for every placement, in loading
// order: the order labels come off the sheet is the order packages go into
// the container.
func BuildLabels(placed *model.PlacedPackageList) []LabelInfo {
	var labels []LabelInfo
	for i, pp := range placed.Placed() {
		labels = append(labels, LabelInfo{
			PackageID: pp.Package.ID,
			Type:      pp.Package.Type,
			Dims:      pp.Package.Dims,
			Anchor:    pp.Min,
			Rotation:  pp.Rotation.String(),
			Order:     i + 1,
		})
	}
	return labels
}

// GenerateLabelsPDF generates a PDF of QR-coded load labels for all placed
// packages. Each label carries the package ID, dimensions, loading order and
// anchor position, plus a QR code encoding the same data as JSON. Labels are
// laid out on a standard label sheet format (Avery 5160 / 3 columns x 10 rows
// on US Letter).
func GenerateLabelsPDF(path string, placed *model.PlacedPackageList) error {
	labels := BuildLabels(placed)
	if len(labels) == 0 {
		return fmt.Errorf("no placements to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range labels {
		// Add new page when needed
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for package %d: %w", label.PackageID, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Draw light border for cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	// Generate QR code PNG bytes
	qrData, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	// Register QR image with a unique name
	imgName := fmt.Sprintf("qr_pkg_%d", info.PackageID)
	pdf.RegisterImageOptionsReader(imgName, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))

	// Place QR code on the right side of the label
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	// Text area (left side of label)
	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	// Package ID and type (bold, larger)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	title := fmt.Sprintf("Package %d", info.PackageID)
	if info.Type >= 0 {
		title += fmt.Sprintf(" / type %d", info.Type)
	}
	pdf.CellFormat(textW, 4.5, title, "", 1, "L", false, 0, "")

	// Dimensions
	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	dims := fmt.Sprintf("%g x %g x %g cm",
		info.Dims[geometry.AxisX], info.Dims[geometry.AxisY], info.Dims[geometry.AxisZ])
	pdf.CellFormat(textW, 3.5, dims, "", 1, "L", false, 0, "")

	// Loading order and anchor position
	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	position := fmt.Sprintf("Load #%d @ (%g, %g, %g)", info.Order,
		info.Anchor[geometry.AxisX], info.Anchor[geometry.AxisY], info.Anchor[geometry.AxisZ])
	pdf.CellFormat(textW, 3, position, "", 1, "L", false, 0, "")

	// Rotation indicator for non-identity rotations
	if info.Rotation != geometry.Rotations[0].String() {
		pdf.SetXY(textX, y+labelPadding+12.5)
		pdf.SetFont("Helvetica", "I", 6)
		pdf.SetTextColor(150, 100, 0)
		pdf.CellFormat(textW, 3, "Rotated "+info.Rotation, "", 0, "L", false, 0, "")
	}

	// Reset text color
	pdf.SetTextColor(0, 0, 0)

	return nil
}

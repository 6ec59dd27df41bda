package export

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iv-stpn/container-loading-problem/internal/geometry"
	"github.com/iv-stpn/container-loading-problem/internal/model"
)

// model3MFNamespace is the 3MF core specification namespace.
const model3MFNamespace = "http://schemas.microsoft.com/3dmanufacturing/core/2015/02"

// modelEntryName is the conventional path of the model document inside a 3MF
// archive.
const modelEntryName = "3D/3dmodel.model"

// boxTriangles indexes the eight corners of a box into its twelve triangular
// faces. Triangles of the same face share their first vertex so renderers
// shade the face smoothly.
var boxTriangles = [12][3]int{
	{1, 5, 7},
	{1, 7, 3},
	{5, 4, 6},
	{5, 6, 7},
	{4, 0, 2},
	{4, 2, 6},
	{0, 1, 3},
	{0, 3, 2},
	{3, 7, 6},
	{3, 6, 2},
	{5, 0, 4},
	{5, 1, 0},
}

// Write3MF writes the placements as a 3MF archive: a ZIP file whose single
// entry 3D/3dmodel.model holds the core-spec XML. All packages share one
// mesh object; each contributes eight vertices and twelve triangles tied to
// its own material group, so viewers color every package differently.
func Write3MF(w io.Writer, placed *model.PlacedPackageList) error {
	if placed.Len() == 0 {
		return fmt.Errorf("no placements to export")
	}

	zw := zip.NewWriter(w)
	entry, err := zw.Create(modelEntryName)
	if err != nil {
		return fmt.Errorf("failed to create model entry: %w", err)
	}
	if _, err := io.WriteString(entry, build3MFModel(placed)); err != nil {
		return fmt.Errorf("failed to write model entry: %w", err)
	}
	return zw.Close()
}

// Save3MF writes the placements to a 3MF file at the given path.
func Save3MF(path string, placed *model.PlacedPackageList) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create 3MF file: %w", err)
	}
	if err := Write3MF(f, placed); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// build3MFModel renders the model document for the placements.
func build3MFModel(placed *model.PlacedPackageList) string {
	placements := placed.Placed()
	objectID := len(placements) + 1

	var b strings.Builder
	b.WriteString("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(&b, "<model unit=\"meter\" xml:lang=\"en-US\" xmlns=%q>\n", model3MFNamespace)
	b.WriteString("    <resources>\n")

	for j := range placements {
		id := j + 1
		fmt.Fprintf(&b, "        <basematerials id=\"%d\">\n", id)
		fmt.Fprintf(&b, "            <base name=\"Color%d\" displaycolor=\"%s\"/>\n", id, materialColor(j))
		b.WriteString("        </basematerials>\n")
	}

	fmt.Fprintf(&b, "        <object id=\"%d\" type=\"model\">\n", objectID)
	b.WriteString("            <mesh>\n")
	b.WriteString("                <vertices>\n")
	for _, pp := range placements {
		for corner := 0; corner < 8; corner++ {
			v := boxVertex(pp.Min, pp.Dims, corner)
			fmt.Fprintf(&b, "                    <vertex x=\"%g\" y=\"%g\" z=\"%g\"/>\n",
				v[geometry.AxisX], v[geometry.AxisY], v[geometry.AxisZ])
		}
	}
	b.WriteString("                </vertices>\n")
	b.WriteString("                <triangles>\n")
	for j := range placements {
		base := j * 8
		for _, tri := range boxTriangles {
			fmt.Fprintf(&b, "                    <triangle v1=\"%d\" v2=\"%d\" v3=\"%d\" pid=\"%d\"/>\n",
				base+tri[0], base+tri[1], base+tri[2], j+1)
		}
	}
	b.WriteString("                </triangles>\n")
	b.WriteString("            </mesh>\n")
	b.WriteString("        </object>\n")
	b.WriteString("    </resources>\n")
	b.WriteString("    <build>\n")
	fmt.Fprintf(&b, "        <item objectid=\"%d\"/>\n", objectID)
	b.WriteString("    </build>\n")
	b.WriteString("</model>\n")
	return b.String()
}

// boxVertex returns corner i of the box anchored at min: the box extent is
// added on axis a when bit (2-a) of i is set, so corner 0 is the anchor and
// corner 7 the far corner.
func boxVertex(min, dims geometry.Vector, corner int) geometry.Vector {
	v := min
	for axis := 0; axis < geometry.Axes; axis++ {
		if corner>>(geometry.Axes-1-axis)&1 == 1 {
			v[axis] += dims[axis]
		}
	}
	return v
}

// materialColor returns the palette color for package index i in hex RGBA
// form with full opacity.
func materialColor(i int) string {
	c := boxColors[i%len(boxColors)]
	return fmt.Sprintf("#%02X%02X%02XFF", c.R, c.G, c.B)
}

package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/Faultbox/midgard-levelgen/pkg/terrain"
)

// WriteOBJ writes mesh as a Wavefront OBJ with positions, texture
// coordinates and normals. Face indices are 1-based and keep the mesh's
// winding order.
func WriteOBJ(w io.Writer, mesh *terrain.Mesh, name string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# levelgen terrain\n")
	fmt.Fprintf(bw, "# vertices %d triangles %d\n", len(mesh.Vertices), mesh.TriangleCount())
	if name != "" {
		fmt.Fprintf(bw, "o %s\n", name)
	}

	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.Position.X(), v.Position.Y(), v.Position.Z())
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vt %g %g\n", v.TexCoord.X(), v.TexCoord.Y())
	}
	for _, v := range mesh.Vertices {
		fmt.Fprintf(bw, "vn %g %g %g\n", v.Normal.X(), v.Normal.Y(), v.Normal.Z())
	}

	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		a, b, c := mesh.Indices[i]+1, mesh.Indices[i+1]+1, mesh.Indices[i+2]+1
		fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}

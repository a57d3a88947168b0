package slicer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/fauxgl"
	"github.com/nfnt/resize"
	"github.com/soypat/slicer/expr"
	"github.com/soypat/slicer/mesh"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Diagnostics receives intermediate slicing artifacts. Implementations
// must tolerate failure internally: diagnostic output never aborts a
// run.
type Diagnostics interface {
	// Settings is called once with the meshing parameters of the run.
	Settings(depth int, bounds mesh.Bounds)
	// Expression is called with each unit's offset cross-section
	// expression before meshing.
	Expression(layerZ float64, perimeter int, e expr.Expr)
	// Mesh is called with each unit's slice mesh after meshing.
	Mesh(layerZ float64, perimeter int, m *mesh.Mesh)
	// Paths is called with each unit's extracted contour paths.
	Paths(layerZ float64, perimeter int, paths []*ExtrusionPath)
}

type nopDiagnostics struct{}

func (nopDiagnostics) Settings(int, mesh.Bounds)                 {}
func (nopDiagnostics) Expression(float64, int, expr.Expr)        {}
func (nopDiagnostics) Mesh(float64, int, *mesh.Mesh)             {}
func (nopDiagnostics) Paths(float64, int, []*ExtrusionPath)      {}

// DirDiagnostics dumps intermediate artifacts into a directory:
// a settings file, per-unit expression dumps and STL meshes, and
// optionally shaded mesh previews and contour plots. Write failures
// are logged and swallowed.
type DirDiagnostics struct {
	// Dir is the destination directory, created on first use.
	Dir string
	// Previews enables shaded PNG previews of each slice mesh.
	Previews bool
	// Plots enables per-unit PNG plots of the extracted contours.
	Plots bool
	// Log receives write failures. Defaults to slog.Default.
	Log *slog.Logger
}

var _ Diagnostics = (*DirDiagnostics)(nil)

func (d *DirDiagnostics) logger() *slog.Logger {
	if d.Log != nil {
		return d.Log
	}
	return slog.Default()
}

func (d *DirDiagnostics) create(name string) (*os.File, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(d.Dir, name))
}

func (d *DirDiagnostics) Settings(depth int, bounds mesh.Bounds) {
	fp, err := d.create("settings.txt")
	if err != nil {
		d.logger().Warn("diagnostics: settings dump failed", "err", err)
		return
	}
	defer fp.Close()
	fmt.Fprintf(fp, "depth: %d\n", depth)
	fmt.Fprintf(fp, "center x: %g\n", bounds.Center.X)
	fmt.Fprintf(fp, "center y: %g\n", bounds.Center.Y)
	fmt.Fprintf(fp, "center z: %g\n", bounds.Center.Z)
	fmt.Fprintf(fp, "size: %g\n", bounds.Size)
}

func (d *DirDiagnostics) Expression(layerZ float64, perimeter int, e expr.Expr) {
	fp, err := d.create(fmt.Sprintf("expr_%.2f_p%d.txt", layerZ, perimeter))
	if err == nil {
		_, err = fp.WriteString(expr.Sprint(e) + "\n")
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		d.logger().Warn("diagnostics: expression dump failed", "z", layerZ, "err", err)
	}
}

func (d *DirDiagnostics) Mesh(layerZ float64, perimeter int, m *mesh.Mesh) {
	name := fmt.Sprintf("mesh_%.2f_p%d.stl", layerZ, perimeter)
	fp, err := d.create(name)
	if err == nil {
		err = mesh.WriteSTL(fp, m)
		if cerr := fp.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		d.logger().Warn("diagnostics: mesh dump failed", "z", layerZ, "err", err)
		return
	}
	if d.Previews {
		src := filepath.Join(d.Dir, name)
		dst := filepath.Join(d.Dir, fmt.Sprintf("mesh_%.2f_p%d.png", layerZ, perimeter))
		if err := stlToPNG(src, dst); err != nil {
			d.logger().Warn("diagnostics: mesh preview failed", "z", layerZ, "err", err)
		}
	}
}

func (d *DirDiagnostics) Paths(layerZ float64, perimeter int, paths []*ExtrusionPath) {
	if !d.Plots || len(paths) == 0 {
		return
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("contours z=%.2f perimeter %d", layerZ, perimeter)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	for _, path := range paths {
		points := path.Points()
		xys := make(plotter.XYs, len(points))
		for i, pt := range points {
			xys[i].X = pt.X
			xys[i].Y = pt.Y
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			d.logger().Warn("diagnostics: contour plot failed", "z", layerZ, "err", err)
			return
		}
		p.Add(line)
	}
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		d.logger().Warn("diagnostics: contour plot failed", "z", layerZ, "err", err)
		return
	}
	name := filepath.Join(d.Dir, fmt.Sprintf("contours_%.2f_p%d.png", layerZ, perimeter))
	if err := p.Save(5*vg.Inch, 5*vg.Inch, name); err != nil {
		d.logger().Warn("diagnostics: contour plot failed", "z", layerZ, "err", err)
	}
}

// stlToPNG renders a shaded preview of an STL file.
func stlToPNG(stlName, outputName string) error {
	m, err := fauxgl.LoadSTL(stlName)
	if err != nil {
		return err
	}
	const (
		width = 640
		height = 480
		scale = 2  // supersampling
		fovy  = 30 // vertical field of view in degrees
	)
	var (
		eye    = fauxgl.V(2.4, 2.4, 2.4)
		center = fauxgl.V(0, 0, 0)
		up     = fauxgl.V(0, 0, 1)
		light  = fauxgl.V(-0.75, 1, 0.25).Normalize()
		color  = fauxgl.HexColor("#468966")
	)
	// fit mesh in a bi-unit cube centered at the origin
	m.BiUnitCube()
	context := fauxgl.NewContext(width*scale, height*scale)
	context.ClearColorBufferWith(fauxgl.HexColor("#FFF8E3"))
	aspect := float64(width) / float64(height)
	matrix := fauxgl.LookAt(eye, center, up).Perspective(fovy, aspect, 1, 10)
	shader := fauxgl.NewPhongShader(matrix, light, eye)
	shader.ObjectColor = color
	context.Shader = shader
	context.DrawMesh(m)
	// downsample image for antialiasing
	img := context.Image()
	img = resize.Resize(width, height, img, resize.Bilinear)
	return fauxgl.SavePNG(outputName, img)
}

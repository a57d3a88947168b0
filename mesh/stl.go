package mesh

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/chewxy/math32"
)

// WriteSTL writes the mesh to w in binary STL format.
func WriteSTL(w io.Writer, m *Mesh) error {
	if m == nil || len(m.Triangles) == 0 {
		return errors.New("empty mesh")
	}
	header := stlHeader{
		Count: uint32(len(m.Triangles)),
	}
	if err := binary.Write(w, binary.LittleEndian, &header); err != nil {
		return err
	}
	var d stlTriangle
	var b [50]byte
	for _, t := range m.Triangles {
		n := m.Normal(t)
		d.Normal[0] = float32(n.X)
		d.Normal[1] = float32(n.Y)
		d.Normal[2] = float32(n.Z)
		d.Vertex1 = vertex3F32(m.Vertices[t[0]])
		d.Vertex2 = vertex3F32(m.Vertices[t[1]])
		d.Vertex3 = vertex3F32(m.Vertices[t[2]])
		d.put(b[:])
		if _, err := w.Write(b[:]); err != nil {
			return err
		}
	}
	return nil
}

// stlHeader defines the STL file header.
type stlHeader struct {
	_     [80]uint8 // Header
	Count uint32    // Number of triangles
}

// stlTriangle defines the triangle data within an STL file.
type stlTriangle struct {
	Normal  [3]float32
	Vertex1 [3]float32
	Vertex2 [3]float32
	Vertex3 [3]float32
	_       uint16 // Attribute byte count
}

func (t stlTriangle) put(b []byte) {
	if len(b) < 50 {
		panic("need length 50 to marshal stlTriangle")
	}
	put3F32(b, t.Normal)
	put3F32(b[12:], t.Vertex1)
	put3F32(b[24:], t.Vertex2)
	put3F32(b[36:], t.Vertex3)
	binary.LittleEndian.PutUint16(b[48:], 0)
}

func put3F32(b []byte, f [3]float32) {
	_ = b[11] // early bounds check
	binary.LittleEndian.PutUint32(b, math32.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:], math32.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:], math32.Float32bits(f[2]))
}

func vertex3F32(v Vec) [3]float32 {
	return [3]float32{v.X, v.Y, v.Z}
}

package tavern

import (
	"math"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// vertexStride is position(3) + normal(3) + uv(2), interleaved float32s.
const vertexStride = 8

// MeshData is CPU-side geometry: interleaved vertices plus triangle indices.
// The procedural generators below produce it and tests inspect it directly;
// Upload moves it to the GPU.
type MeshData struct {
	Vertices []float32
	Indices  []uint32
}

func (md MeshData) VertexCount() int { return len(md.Vertices) / vertexStride }

// Mesh is uploaded geometry. The VAO captures the attribute layout once:
// location 0 position, 1 normal, 2 uv.
type Mesh struct {
	vao, vbo, ebo uint32
	indexCount    int32
}

func UploadMesh(md MeshData) *Mesh {
	m := &Mesh{indexCount: int32(len(md.Indices))}

	gl.GenVertexArrays(1, &m.vao)
	gl.GenBuffers(1, &m.vbo)
	gl.GenBuffers(1, &m.ebo)

	gl.BindVertexArray(m.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(md.Vertices)*4, gl.Ptr(md.Vertices), gl.STATIC_DRAW)

	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(md.Indices)*4, gl.Ptr(md.Indices), gl.STATIC_DRAW)

	stride := int32(vertexStride * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 6*4)

	gl.BindVertexArray(0)
	return m
}

func (m *Mesh) Draw() {
	gl.BindVertexArray(m.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, m.indexCount, gl.UNSIGNED_INT, 0)
	gl.BindVertexArray(0)
}

func (m *Mesh) Destroy() {
	if m.ebo != 0 {
		gl.DeleteBuffers(1, &m.ebo)
		m.ebo = 0
	}
	if m.vbo != 0 {
		gl.DeleteBuffers(1, &m.vbo)
		m.vbo = 0
	}
	if m.vao != 0 {
		gl.DeleteVertexArrays(1, &m.vao)
		m.vao = 0
	}
}

// GeneratePlane builds a flat XZ quad centered at the origin with +Y normals,
// width along X and depth along Z.
func GeneratePlane(width, depth float32) MeshData {
	w, d := width/2, depth/2
	return MeshData{
		Vertices: []float32{
			-w, 0, -d, 0, 1, 0, 0, 0,
			-w, 0, d, 0, 1, 0, 0, 1,
			w, 0, d, 0, 1, 0, 1, 1,
			w, 0, -d, 0, 1, 0, 1, 0,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
}

// GenerateBox builds an axis-aligned box centered at the origin with
// per-face normals, 24 vertices, 36 indices.
func GenerateBox(sx, sy, sz float32) MeshData {
	x, y, z := sx/2, sy/2, sz/2

	faces := []struct {
		normal  [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-x, -y, z}, {x, -y, z}, {x, y, z}, {-x, y, z}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{x, -y, -z}, {-x, -y, -z}, {-x, y, -z}, {x, y, -z}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{x, -y, z}, {x, -y, -z}, {x, y, -z}, {x, y, z}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-x, -y, -z}, {-x, -y, z}, {-x, y, z}, {-x, y, -z}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-x, y, z}, {x, y, z}, {x, y, -z}, {-x, y, -z}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-x, -y, -z}, {x, -y, -z}, {x, -y, z}, {-x, -y, z}}},
	}
	uvs := [4][2]float32{{0, 0}, {1, 0}, {1, 1}, {0, 1}}

	var md MeshData
	for f, face := range faces {
		for i, c := range face.corners {
			md.Vertices = append(md.Vertices,
				c[0], c[1], c[2],
				face.normal[0], face.normal[1], face.normal[2],
				uvs[i][0], uvs[i][1],
			)
		}
		base := uint32(f * 4)
		md.Indices = append(md.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return md
}

// GenerateCylinder builds an upright cylinder centered at the origin with
// smooth side normals and flat caps.
func GenerateCylinder(radius, height float32, segments int) MeshData {
	if segments < 3 {
		segments = 3
	}
	h := height / 2
	var md MeshData

	// Side ring: two vertices per segment step, wrapped with a duplicated
	// seam so UVs stay monotonic.
	for i := 0; i <= segments; i++ {
		angle := 2 * math.Pi * float64(i) / float64(segments)
		nx := float32(math.Cos(angle))
		nz := float32(math.Sin(angle))
		u := float32(i) / float32(segments)

		md.Vertices = append(md.Vertices,
			nx*radius, -h, nz*radius, nx, 0, nz, u, 0,
			nx*radius, h, nz*radius, nx, 0, nz, u, 1,
		)
	}
	for i := 0; i < segments; i++ {
		base := uint32(i * 2)
		md.Indices = append(md.Indices,
			base, base+1, base+3,
			base, base+3, base+2,
		)
	}

	// Caps: center vertex plus the ring, fanned out.
	for _, cap := range []struct {
		y  float32
		ny float32
	}{{h, 1}, {-h, -1}} {
		center := uint32(len(md.Vertices) / vertexStride)
		md.Vertices = append(md.Vertices, 0, cap.y, 0, 0, cap.ny, 0, 0.5, 0.5)
		for i := 0; i <= segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			nx := float32(math.Cos(angle))
			nz := float32(math.Sin(angle))
			md.Vertices = append(md.Vertices,
				nx*radius, cap.y, nz*radius, 0, cap.ny, 0,
				0.5+nx/2, 0.5+nz/2,
			)
		}
		for i := 0; i < segments; i++ {
			a := center + 1 + uint32(i)
			b := a + 1
			if cap.ny > 0 {
				md.Indices = append(md.Indices, center, b, a)
			} else {
				md.Indices = append(md.Indices, center, a, b)
			}
		}
	}
	return md
}

// GenerateBarrel builds a bulged cylinder: a stack of rings whose radius
// follows a sine profile, with smooth normals, plus flat caps reused from
// the cylinder generator's approach.
func GenerateBarrel(radius, height float32, segments, rings int) MeshData {
	if segments < 3 {
		segments = 3
	}
	if rings < 2 {
		rings = 2
	}
	h := height / 2
	var md MeshData

	for r := 0; r <= rings; r++ {
		t := float32(r) / float32(rings)
		y := -h + height*t
		// Bulge peaks mid-height at 1.15× the base radius.
		bulge := radius * (1 + 0.15*float32(math.Sin(float64(t)*math.Pi)))

		for i := 0; i <= segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			nx := float32(math.Cos(angle))
			nz := float32(math.Sin(angle))
			md.Vertices = append(md.Vertices,
				nx*bulge, y, nz*bulge, nx, 0, nz,
				float32(i)/float32(segments), t,
			)
		}
	}
	ringStride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for i := 0; i < segments; i++ {
			a := uint32(r)*ringStride + uint32(i)
			b := a + ringStride
			md.Indices = append(md.Indices,
				a, b, b+1,
				a, b+1, a+1,
			)
		}
	}

	// Flat caps.
	for _, cap := range []struct {
		y  float32
		ny float32
	}{{h, 1}, {-h, -1}} {
		center := uint32(len(md.Vertices) / vertexStride)
		md.Vertices = append(md.Vertices, 0, cap.y, 0, 0, cap.ny, 0, 0.5, 0.5)
		for i := 0; i <= segments; i++ {
			angle := 2 * math.Pi * float64(i) / float64(segments)
			nx := float32(math.Cos(angle))
			nz := float32(math.Sin(angle))
			md.Vertices = append(md.Vertices,
				nx*radius, cap.y, nz*radius, 0, cap.ny, 0,
				0.5+nx/2, 0.5+nz/2,
			)
		}
		for i := 0; i < segments; i++ {
			a := center + 1 + uint32(i)
			b := a + 1
			if cap.ny > 0 {
				md.Indices = append(md.Indices, center, b, a)
			} else {
				md.Indices = append(md.Indices, center, a, b)
			}
		}
	}
	return md
}

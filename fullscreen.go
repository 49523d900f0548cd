package tavern

import (
	"github.com/go-gl/gl/v4.1-core/gl"
)

// FullscreenQuad is the shared screen-covering triangle pair used by every
// image-space pass (SSAO, lighting, post-process).
type FullscreenQuad struct {
	vao, vbo uint32
}

func NewFullscreenQuad() *FullscreenQuad {
	vertices := []float32{
		// position        uv
		-1, 1, 0, 0, 1,
		-1, -1, 0, 0, 0,
		1, -1, 0, 1, 0,

		-1, 1, 0, 0, 1,
		1, -1, 0, 1, 0,
		1, 1, 0, 1, 1,
	}

	q := &FullscreenQuad{}
	gl.GenVertexArrays(1, &q.vao)
	gl.GenBuffers(1, &q.vbo)

	gl.BindVertexArray(q.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, q.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)

	gl.BindVertexArray(0)
	return q
}

func (q *FullscreenQuad) Render() {
	gl.BindVertexArray(q.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)
}

func (q *FullscreenQuad) Destroy() {
	if q.vbo != 0 {
		gl.DeleteBuffers(1, &q.vbo)
		q.vbo = 0
	}
	if q.vao != 0 {
		gl.DeleteVertexArrays(1, &q.vao)
		q.vao = 0
	}
}

// fullscreenVertSrc is shared by all image-space passes.
const fullscreenVertSrc = `
#version 410 core
layout(location = 0) in vec3 vertPosition;
layout(location = 1) in vec2 vertUV;

out vec2 UV;

void main() {
    UV = vertUV;
    gl_Position = vec4(vertPosition, 1.0);
}
`

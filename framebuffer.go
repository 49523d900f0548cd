package tavern

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// AttachmentFormat is the per-texel format of a render-target attachment.
// The attachment set and formats are fixed at creation and never
// reinterpreted.
type AttachmentFormat int

const (
	AttachRGB16F AttachmentFormat = iota // world-space position / normal
	AttachRGBA8                         // albedo + specular scalar
	AttachR16F                          // single-channel occlusion
)

func (f AttachmentFormat) glFormats() (internal int32, format, xtype uint32) {
	switch f {
	case AttachRGB16F:
		return gl.RGB16F, gl.RGB, gl.FLOAT
	case AttachRGBA8:
		return gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE
	case AttachR16F:
		return gl.R16F, gl.RED, gl.FLOAT
	}
	panic(fmt.Sprintf("unknown attachment format %d", f))
}

// RenderTarget is a multi-attachment framebuffer. Allocation failure is not
// recoverable at this layer: the constructor returns an error and callers
// treat it as fatal.
type RenderTarget struct {
	fbo    uint32
	Colors []uint32
	Depth  uint32

	Width  int32
	Height int32
}

// NewRenderTarget allocates a framebuffer with one color texture per spec
// entry, attached in order, plus an optional depth texture.
func NewRenderTarget(width, height int, specs []AttachmentFormat, withDepth bool) (*RenderTarget, error) {
	rt := &RenderTarget{
		Width:  int32(width),
		Height: int32(height),
	}

	gl.GenFramebuffers(1, &rt.fbo)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)

	drawBuffers := make([]uint32, 0, len(specs))
	for i, spec := range specs {
		internal, format, xtype := spec.glFormats()

		var tex uint32
		gl.GenTextures(1, &tex)
		gl.BindTexture(gl.TEXTURE_2D, tex)
		gl.TexImage2D(gl.TEXTURE_2D, 0, internal, rt.Width, rt.Height, 0, format, xtype, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)

		attachment := uint32(gl.COLOR_ATTACHMENT0 + i)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachment, gl.TEXTURE_2D, tex, 0)

		rt.Colors = append(rt.Colors, tex)
		drawBuffers = append(drawBuffers, attachment)
	}
	if len(drawBuffers) > 0 {
		gl.DrawBuffers(int32(len(drawBuffers)), &drawBuffers[0])
	}

	if withDepth {
		gl.GenTextures(1, &rt.Depth)
		gl.BindTexture(gl.TEXTURE_2D, rt.Depth)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH_COMPONENT24, rt.Width, rt.Height, 0,
			gl.DEPTH_COMPONENT, gl.FLOAT, nil)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_ATTACHMENT, gl.TEXTURE_2D, rt.Depth, 0)
	}

	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if status != gl.FRAMEBUFFER_COMPLETE {
		rt.Destroy()
		return nil, fmt.Errorf("framebuffer incomplete: status=0x%X", status)
	}
	return rt, nil
}

// BindForWrite directs subsequent draw calls into the target's attachments,
// resetting the viewport and clearing color and depth.
func (rt *RenderTarget) BindForWrite() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.fbo)
	gl.Viewport(0, 0, rt.Width, rt.Height)
	gl.ClearColor(0, 0, 0, 0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// BindForRead binds each color attachment to a consecutive texture unit
// starting at baseUnit. It does not change the framebuffer binding; the
// caller decides where the read pass writes.
func (rt *RenderTarget) BindForRead(baseUnit uint32) {
	for i, tex := range rt.Colors {
		gl.ActiveTexture(gl.TEXTURE0 + baseUnit + uint32(i))
		gl.BindTexture(gl.TEXTURE_2D, tex)
	}
}

func (rt *RenderTarget) Destroy() {
	for _, tex := range rt.Colors {
		if tex != 0 {
			gl.DeleteTextures(1, &tex)
		}
	}
	rt.Colors = nil
	if rt.Depth != 0 {
		gl.DeleteTextures(1, &rt.Depth)
		rt.Depth = 0
	}
	if rt.fbo != 0 {
		gl.DeleteFramebuffers(1, &rt.fbo)
		rt.fbo = 0
	}
}

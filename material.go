package tavern

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

type AssetId string

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// maxTextureDim caps uploaded texture size; larger sources are rescaled.
const maxTextureDim = 1024

// Texture is an uploaded GL texture tracked by the manager.
type Texture struct {
	Id     AssetId
	Handle uint32
	Width  int
	Height int
}

// Material describes how the geometry pass shades a surface. When a texture
// failed to load its has-flag stays false and FlatColor takes over; a missing
// texture is a visual downgrade, never an error.
type Material struct {
	Diffuse  *Texture
	Normal   *Texture
	Specular *Texture

	HasDiffuse  bool
	HasNormal   bool
	HasSpecular bool

	Roughness float32
	Metallic  float32
	FlatColor mgl32.Vec3
}

// TextureManager owns every texture the scene loads. Load failures fall back
// to flat materials and are logged, matching the pipeline's error taxonomy.
type TextureManager struct {
	textures map[AssetId]*Texture
	logger   Logger
}

func NewTextureManager(logger Logger) *TextureManager {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &TextureManager{
		textures: make(map[AssetId]*Texture),
		logger:   logger,
	}
}

// Load decodes an image file and uploads it as an RGBA8 texture with
// mipmaps. Non-fatal on failure: the caller receives the error and decides
// whether to fall back.
func (tm *TextureManager) Load(path string) (*Texture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}

	rgba := normalizeImage(src)
	b := rgba.Bounds()

	tex := &Texture{
		Id:     makeAssetId(),
		Width:  b.Dx(),
		Height: b.Dy(),
	}
	gl.GenTextures(1, &tex.Handle)
	gl.BindTexture(gl.TEXTURE_2D, tex.Handle)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0,
		gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(rgba.Pix))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	tm.textures[tex.Id] = tex
	return tex, nil
}

// LoadMaterial assembles a material from up to three texture files. Any path
// may be empty or missing; the material degrades to the fallback color.
func (tm *TextureManager) LoadMaterial(diffuse, normal, specular string, roughness, metallic float32, fallback mgl32.Vec3) Material {
	mat := Material{
		Roughness: roughness,
		Metallic:  metallic,
		FlatColor: fallback,
	}

	if diffuse != "" {
		if tex, err := tm.Load(diffuse); err != nil {
			tm.logger.Warnf("diffuse map unavailable, using flat color: %v", err)
		} else {
			mat.Diffuse = tex
			mat.HasDiffuse = true
		}
	}
	if normal != "" {
		if tex, err := tm.Load(normal); err != nil {
			tm.logger.Warnf("normal map unavailable: %v", err)
		} else {
			mat.Normal = tex
			mat.HasNormal = true
		}
	}
	if specular != "" {
		if tex, err := tm.Load(specular); err != nil {
			tm.logger.Warnf("specular map unavailable: %v", err)
		} else {
			mat.Specular = tex
			mat.HasSpecular = true
		}
	}
	return mat
}

// FlatMaterial is the zero-texture material used for stand-in geometry.
func FlatMaterial(color mgl32.Vec3, roughness, metallic float32) Material {
	return Material{
		Roughness: roughness,
		Metallic:  metallic,
		FlatColor: color,
	}
}

func (tm *TextureManager) Destroy() {
	for _, tex := range tm.textures {
		if tex.Handle != 0 {
			gl.DeleteTextures(1, &tex.Handle)
		}
	}
	tm.textures = make(map[AssetId]*Texture)
}

// normalizeImage converts to RGBA and downscales anything beyond
// maxTextureDim with a bilinear kernel.
func normalizeImage(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	if w > maxTextureDim || h > maxTextureDim {
		scale := float64(maxTextureDim) / float64(max(w, h))
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}

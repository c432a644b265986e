package gltf

import (
	"github.com/jmgilman/go/errors"
)

// lookup returns a pointer to items[index] or a not-found error naming the collection.
func lookup[T any](items []T, index int, kind string) (*T, error) {
	if index < 0 || index >= len(items) {
		return nil, errors.WithContext(
			errors.Newf(errors.CodeNotFound, "%s index %d out of range (have %d)", kind, index, len(items)),
			kind, index,
		)
	}
	return &items[index], nil
}

// Buffer returns the buffer at index.
func (d *Document) Buffer(index int) (*Buffer, error) {
	return lookup(d.Buffers, index, "buffer")
}

// BufferView returns the buffer view at index.
func (d *Document) BufferView(index int) (*BufferView, error) {
	return lookup(d.BufferViews, index, "bufferView")
}

// Accessor returns the accessor at index.
func (d *Document) Accessor(index int) (*Accessor, error) {
	return lookup(d.Accessors, index, "accessor")
}

// Image returns the image at index.
func (d *Document) Image(index int) (*Image, error) {
	return lookup(d.Images, index, "image")
}

// Texture returns the texture at index.
func (d *Document) Texture(index int) (*Texture, error) {
	return lookup(d.Textures, index, "texture")
}

// Sampler returns the sampler at index.
func (d *Document) Sampler(index int) (*Sampler, error) {
	return lookup(d.Samplers, index, "sampler")
}

// Mesh returns the mesh at index.
func (d *Document) Mesh(index int) (*Mesh, error) {
	return lookup(d.Meshes, index, "mesh")
}

// Primitives returns every mesh primitive in mesh order.
func (d *Document) Primitives() []Primitive {
	var prims []Primitive
	for i := range d.Meshes {
		prims = append(prims, d.Meshes[i].Primitives...)
	}
	return prims
}

// TextureInfos returns every texture info referenced by the document's materials, in
// material order. The same texture may appear more than once with different extensions.
//
// Returns:
//   - []TextureInfo: copies of the referenced texture infos
func (d *Document) TextureInfos() []TextureInfo {
	var infos []TextureInfo
	add := func(info *TextureInfo) {
		if info != nil {
			infos = append(infos, *info)
		}
	}

	for i := range d.Materials {
		mat := &d.Materials[i]
		if pbr := mat.PbrMetallicRoughness; pbr != nil {
			add(pbr.BaseColorTexture)
			add(pbr.MetallicRoughnessTexture)
		}
		add(mat.NormalTexture)
		add(mat.OcclusionTexture)
		add(mat.EmissiveTexture)
		if ext := mat.Extensions; ext != nil {
			for _, info := range ext.textureInfos() {
				add(info)
			}
		}
	}
	return infos
}

// textureInfos lists the extension texture slots in a fixed order. Slots may be nil.
func (e *MaterialExtensions) textureInfos() []*TextureInfo {
	var infos []*TextureInfo
	if c := e.Clearcoat; c != nil {
		infos = append(infos, c.ClearcoatTexture, c.ClearcoatRoughnessTexture, c.ClearcoatNormalTexture)
	}
	if t := e.Transmission; t != nil {
		infos = append(infos, t.TransmissionTexture)
	}
	if t := e.DiffuseTransmission; t != nil {
		infos = append(infos, t.DiffuseTransmissionTexture, t.DiffuseTransmissionColorTexture)
	}
	if v := e.Volume; v != nil {
		infos = append(infos, v.ThicknessTexture)
	}
	if s := e.Specular; s != nil {
		infos = append(infos, s.SpecularTexture, s.SpecularColorTexture)
	}
	if s := e.Sheen; s != nil {
		infos = append(infos, s.SheenColorTexture, s.SheenRoughnessTexture)
	}
	if i := e.Iridescence; i != nil {
		infos = append(infos, i.IridescenceTexture, i.IridescenceThicknessTexture)
	}
	if a := e.Anisotropy; a != nil {
		infos = append(infos, a.AnisotropyTexture)
	}
	if sg := e.PbrSpecularGlossiness; sg != nil {
		infos = append(infos, sg.DiffuseTexture, sg.SpecularGlossinessTexture)
	}
	return infos
}

// HasTextureTransform reports whether the texture info carries KHR_texture_transform.
func (t TextureInfo) HasTextureTransform() bool {
	return t.Extensions != nil && t.Extensions.TextureTransform != nil
}

// Draco returns the primitive's KHR_draco_mesh_compression extension, or nil.
func (p *Primitive) Draco() *DracoMeshCompression {
	if p.Extensions == nil {
		return nil
	}
	return p.Extensions.Draco
}

// Meshopt returns the buffer view's EXT_meshopt_compression extension, or nil.
func (v *BufferView) Meshopt() *MeshoptCompression {
	if v.Extensions == nil {
		return nil
	}
	return v.Extensions.Meshopt
}

// IsEmbedded reports whether the buffer has no URI and is only reachable through its document.
func (b *Buffer) IsEmbedded() bool {
	return b.URI == ""
}

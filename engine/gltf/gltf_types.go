// gltf_types.go contains the glTF 2.0 data structures that take part in resource identity.
// Only the parts of the schema that locate bytes (buffers, buffer views, accessors, images)
// or shape how they are sampled (textures, samplers, texture infos) are decoded; node
// hierarchy, skins and animations are ignored by encoding/json.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html
package gltf

// --- glTF Root Structure ---

// Document represents the root of a glTF JSON document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-gltf
type Document struct {
	// Asset contains metadata about the glTF asset.
	Asset Asset `json:"asset"`

	// Meshes is an array of meshes.
	Meshes []Mesh `json:"meshes,omitempty"`

	// Accessors define how to interpret buffer data.
	Accessors []Accessor `json:"accessors,omitempty"`

	// BufferViews define portions of buffers.
	BufferViews []BufferView `json:"bufferViews,omitempty"`

	// Buffers are raw binary data containers.
	Buffers []Buffer `json:"buffers,omitempty"`

	// Materials is an array of materials.
	Materials []Material `json:"materials,omitempty"`

	// Textures is an array of textures.
	Textures []Texture `json:"textures,omitempty"`

	// Images is an array of images.
	Images []Image `json:"images,omitempty"`

	// Samplers define texture sampling parameters.
	Samplers []Sampler `json:"samplers,omitempty"`

	// ExtensionsUsed lists extensions used by this asset.
	ExtensionsUsed []string `json:"extensionsUsed,omitempty"`

	// ExtensionsRequired lists extensions required to load this asset.
	ExtensionsRequired []string `json:"extensionsRequired,omitempty"`
}

// Asset contains metadata about the glTF asset.
type Asset struct {
	// Version is the glTF version (required, must be "2.0").
	Version string `json:"version"`

	// Generator is the tool that generated this asset.
	Generator string `json:"generator,omitempty"`
}

// --- Mesh Data ---

// Mesh is a set of primitives to be rendered.
type Mesh struct {
	Name       string      `json:"name,omitempty"`
	Primitives []Primitive `json:"primitives"`
}

// Primitive defines geometry for rendering.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-mesh-primitive
type Primitive struct {
	// Attributes is a map of attribute semantic to accessor index.
	Attributes map[string]int `json:"attributes"`

	// Indices is the accessor index for the index buffer.
	Indices *int `json:"indices,omitempty"`

	// Material is the material index.
	Material *int `json:"material,omitempty"`

	// Mode is the primitive topology (4=TRIANGLES when omitted).
	Mode *int `json:"mode,omitempty"`

	Extensions *PrimitiveExtensions `json:"extensions,omitempty"`
}

// PrimitiveExtensions holds the primitive extensions that change where geometry bytes live.
type PrimitiveExtensions struct {
	Draco *DracoMeshCompression `json:"KHR_draco_mesh_compression,omitempty"`
}

// DracoMeshCompression is the KHR_draco_mesh_compression primitive extension.
// One compressed block in BufferView decodes into one stream per entry in Attributes,
// keyed by semantic with the draco attribute id as value.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos/KHR_draco_mesh_compression
type DracoMeshCompression struct {
	BufferView int            `json:"bufferView"`
	Attributes map[string]int `json:"attributes"`
}

// --- Buffer Data ---

// Accessor defines how to interpret buffer data.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-accessor
type Accessor struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// BufferView is the index of the bufferView. Accessors without one are zero-filled
	// (or fully sparse) and have no byte location of their own.
	BufferView *int `json:"bufferView,omitempty"`

	// ByteOffset is the offset within the bufferView.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ComponentType is the data type of components.
	// 5120=BYTE, 5121=UNSIGNED_BYTE, 5122=SHORT, 5123=UNSIGNED_SHORT, 5125=UNSIGNED_INT, 5126=FLOAT
	ComponentType int `json:"componentType"`

	// Normalized indicates if integer data should be normalized.
	Normalized bool `json:"normalized,omitempty"`

	// Count is the number of elements.
	Count int `json:"count"`

	// Type is the element type (SCALAR, VEC2, VEC3, VEC4, MAT2, MAT3, MAT4).
	Type string `json:"type"`
}

// ComponentType constants
const (
	ComponentTypeByte          = 5120
	ComponentTypeUnsignedByte  = 5121
	ComponentTypeShort         = 5122
	ComponentTypeUnsignedShort = 5123
	ComponentTypeUnsignedInt   = 5125
	ComponentTypeFloat         = 5126
)

// AccessorType constants
const (
	AccessorTypeScalar = "SCALAR"
	AccessorTypeVec2   = "VEC2"
	AccessorTypeVec3   = "VEC3"
	AccessorTypeVec4   = "VEC4"
	AccessorTypeMat2   = "MAT2"
	AccessorTypeMat3   = "MAT3"
	AccessorTypeMat4   = "MAT4"
)

// BufferView represents a subset of a buffer.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-bufferview
type BufferView struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Buffer is the index of the buffer.
	Buffer int `json:"buffer"`

	// ByteOffset is the offset into the buffer.
	ByteOffset int `json:"byteOffset,omitempty"`

	// ByteLength is the length of the bufferView.
	ByteLength int `json:"byteLength"`

	// ByteStride is the stride for interleaved data (optional).
	ByteStride *int `json:"byteStride,omitempty"`

	// Target is the intended GPU buffer type.
	// 34962=ARRAY_BUFFER, 34963=ELEMENT_ARRAY_BUFFER
	Target *int `json:"target,omitempty"`

	Extensions *BufferViewExtensions `json:"extensions,omitempty"`
}

// BufferViewExtensions holds the buffer view extensions that relocate its bytes.
type BufferViewExtensions struct {
	Meshopt *MeshoptCompression `json:"EXT_meshopt_compression,omitempty"`
}

// MeshoptCompression is the EXT_meshopt_compression buffer view extension. The compressed
// bytes live at ByteOffset/ByteLength of Buffer; the view itself points at a fallback or
// placeholder buffer.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Vendor/EXT_meshopt_compression
type MeshoptCompression struct {
	Buffer     int    `json:"buffer"`
	ByteOffset int    `json:"byteOffset,omitempty"`
	ByteLength int    `json:"byteLength"`
	ByteStride int    `json:"byteStride"`
	Count      int    `json:"count"`
	Mode       string `json:"mode"`
	Filter     string `json:"filter,omitempty"`
}

// Buffer represents binary data. A buffer without a URI is the GLB binary chunk (or
// otherwise embedded) and is only addressable through its owning document.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-buffer
type Buffer struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the URI of the buffer data (can be data: URI or external file).
	URI string `json:"uri,omitempty"`

	// ByteLength is the length of the buffer.
	ByteLength int `json:"byteLength"`
}

// --- Materials and Textures ---

// Material defines the material appearance of a primitive. Only the texture slots are decoded.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-material
type Material struct {
	Name                 string                `json:"name,omitempty"`
	PbrMetallicRoughness *PbrMetallicRoughness `json:"pbrMetallicRoughness,omitempty"`
	NormalTexture        *TextureInfo          `json:"normalTexture,omitempty"`
	OcclusionTexture     *TextureInfo          `json:"occlusionTexture,omitempty"`
	EmissiveTexture      *TextureInfo          `json:"emissiveTexture,omitempty"`
	Extensions           *MaterialExtensions   `json:"extensions,omitempty"`
}

// MaterialExtensions holds the ratified KHR_materials_* extensions that reference textures.
// Reference: https://github.com/KhronosGroup/glTF/tree/main/extensions/2.0/Khronos
type MaterialExtensions struct {
	Clearcoat             *MaterialClearcoat           `json:"KHR_materials_clearcoat,omitempty"`
	Transmission          *MaterialTransmission        `json:"KHR_materials_transmission,omitempty"`
	DiffuseTransmission   *MaterialDiffuseTransmission `json:"KHR_materials_diffuse_transmission,omitempty"`
	Volume                *MaterialVolume              `json:"KHR_materials_volume,omitempty"`
	Specular              *MaterialSpecular            `json:"KHR_materials_specular,omitempty"`
	Sheen                 *MaterialSheen               `json:"KHR_materials_sheen,omitempty"`
	Iridescence           *MaterialIridescence         `json:"KHR_materials_iridescence,omitempty"`
	Anisotropy            *MaterialAnisotropy          `json:"KHR_materials_anisotropy,omitempty"`
	PbrSpecularGlossiness *MaterialSpecularGlossiness  `json:"KHR_materials_pbrSpecularGlossiness,omitempty"`
}

type MaterialClearcoat struct {
	ClearcoatTexture          *TextureInfo `json:"clearcoatTexture,omitempty"`
	ClearcoatRoughnessTexture *TextureInfo `json:"clearcoatRoughnessTexture,omitempty"`
	ClearcoatNormalTexture    *TextureInfo `json:"clearcoatNormalTexture,omitempty"`
}

type MaterialTransmission struct {
	TransmissionTexture *TextureInfo `json:"transmissionTexture,omitempty"`
}

type MaterialDiffuseTransmission struct {
	DiffuseTransmissionTexture      *TextureInfo `json:"diffuseTransmissionTexture,omitempty"`
	DiffuseTransmissionColorTexture *TextureInfo `json:"diffuseTransmissionColorTexture,omitempty"`
}

type MaterialVolume struct {
	ThicknessTexture *TextureInfo `json:"thicknessTexture,omitempty"`
}

type MaterialSpecular struct {
	SpecularTexture      *TextureInfo `json:"specularTexture,omitempty"`
	SpecularColorTexture *TextureInfo `json:"specularColorTexture,omitempty"`
}

type MaterialSheen struct {
	SheenColorTexture     *TextureInfo `json:"sheenColorTexture,omitempty"`
	SheenRoughnessTexture *TextureInfo `json:"sheenRoughnessTexture,omitempty"`
}

type MaterialIridescence struct {
	IridescenceTexture          *TextureInfo `json:"iridescenceTexture,omitempty"`
	IridescenceThicknessTexture *TextureInfo `json:"iridescenceThicknessTexture,omitempty"`
}

type MaterialAnisotropy struct {
	AnisotropyTexture *TextureInfo `json:"anisotropyTexture,omitempty"`
}

// MaterialSpecularGlossiness is the archived specular-glossiness workflow, still common in older assets.
type MaterialSpecularGlossiness struct {
	DiffuseTexture            *TextureInfo `json:"diffuseTexture,omitempty"`
	SpecularGlossinessTexture *TextureInfo `json:"specularGlossinessTexture,omitempty"`
}

// PbrMetallicRoughness is the metallic-roughness material model.
type PbrMetallicRoughness struct {
	BaseColorTexture         *TextureInfo `json:"baseColorTexture,omitempty"`
	MetallicRoughnessTexture *TextureInfo `json:"metallicRoughnessTexture,omitempty"`
}

// TextureInfo references a texture. Normal and occlusion infos carry extra scalar fields
// (scale, strength) that do not affect the texture resource and are not decoded.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-textureinfo
type TextureInfo struct {
	// Index is the texture index.
	Index int `json:"index"`

	// TexCoord is the UV set to use (default 0).
	TexCoord int `json:"texCoord,omitempty"`

	Extensions *TextureInfoExtensions `json:"extensions,omitempty"`
}

// TextureInfoExtensions holds the texture info extensions that affect sampling.
type TextureInfoExtensions struct {
	TextureTransform *TextureTransform `json:"KHR_texture_transform,omitempty"`
}

// TextureTransform is the KHR_texture_transform texture info extension.
type TextureTransform struct {
	Offset   *[2]float32 `json:"offset,omitempty"`
	Rotation *float32    `json:"rotation,omitempty"`
	Scale    *[2]float32 `json:"scale,omitempty"`
	TexCoord *int        `json:"texCoord,omitempty"`
}

// Texture combines an image and a sampler.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-texture
type Texture struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// Sampler is the sampler index.
	Sampler *int `json:"sampler,omitempty"`

	// Source is the image index.
	Source *int `json:"source,omitempty"`

	Extensions *TextureExtensions `json:"extensions,omitempty"`
}

// TextureExtensions holds alternate image sources.
type TextureExtensions struct {
	Basisu *TextureSource `json:"KHR_texture_basisu,omitempty"`
	Webp   *TextureSource `json:"EXT_texture_webp,omitempty"`
}

// TextureSource is the common shape of the image-source texture extensions.
type TextureSource struct {
	Source *int `json:"source,omitempty"`
}

// Image is a texture image source.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-image
type Image struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// URI is the image URI (can be data: URI or external file).
	URI string `json:"uri,omitempty"`

	// MimeType is the MIME type when embedded in a bufferView.
	MimeType string `json:"mimeType,omitempty"`

	// BufferView is the index of the bufferView containing the image.
	BufferView *int `json:"bufferView,omitempty"`
}

// Sampler defines texture sampling parameters.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#reference-sampler
type Sampler struct {
	// Name is an optional name.
	Name string `json:"name,omitempty"`

	// MagFilter is the magnification filter.
	// 9728=NEAREST, 9729=LINEAR
	MagFilter *int `json:"magFilter,omitempty"`

	// MinFilter is the minification filter.
	// 9728=NEAREST, 9729=LINEAR, 9984-9987=mipmapped variants
	MinFilter *int `json:"minFilter,omitempty"`

	// WrapS is the U wrapping mode.
	// 33071=CLAMP_TO_EDGE, 33648=MIRRORED_REPEAT, 10497=REPEAT (default)
	WrapS *int `json:"wrapS,omitempty"`

	// WrapT is the V wrapping mode.
	WrapT *int `json:"wrapT,omitempty"`
}

// Sampler filter constants
const (
	FilterNearest              = 9728
	FilterLinear               = 9729
	FilterNearestMipmapNearest = 9984
	FilterLinearMipmapNearest  = 9985
	FilterNearestMipmapLinear  = 9986
	FilterLinearMipmapLinear   = 9987
)

// Sampler wrap constants
const (
	WrapClampToEdge    = 33071
	WrapMirroredRepeat = 33648
	WrapRepeat         = 10497
)

// --- GLB Binary Format ---

// glbHeader is the header of a GLB file (12 bytes).
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#glb-file-format-specification
type glbHeader struct {
	Magic   uint32 // Must be 0x46546C67 ("glTF" in ASCII)
	Version uint32 // Must be 2
	Length  uint32 // Total file length
}

// glbChunkHeader is the header of a GLB chunk (8 bytes).
type glbChunkHeader struct {
	ChunkLength uint32
	ChunkType   uint32 // 0x4E4F534A for JSON, 0x004E4942 for BIN
}

// GLB magic number and chunk type constants
const (
	glbMagic     = 0x46546C67 // "glTF" in little-endian ASCII
	glbVersion   = 2
	glbChunkJSON = 0x4E4F534A // "JSON" in little-endian ASCII
	glbChunkBIN  = 0x004E4942 // "BIN\0" in little-endian ASCII
)

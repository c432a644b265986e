package cachekey

import (
	"github.com/Carmen-Shannon/oxy-cachekey/engine/gltf"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/sampler"
)

// Document is the read-only indexed lookup surface of a parsed glTF document.
// *gltf.Document satisfies it.
type Document interface {
	sampler.Document

	Buffer(index int) (*gltf.Buffer, error)
	BufferView(index int) (*gltf.BufferView, error)
	Accessor(index int) (*gltf.Accessor, error)
	Image(index int) (*gltf.Image, error)
}

// Asset ties a parsed document to where it was loaded from.
type Asset struct {
	// Document is the parsed glTF document.
	Document Document

	// Location is the location of the glTF document itself. Its resolved form is the
	// document key that embedded resources are scoped to.
	Location string

	// BaseLocation is what relative buffer and image URIs resolve against.
	// When empty, Location is used.
	BaseLocation string
}

func (a Asset) base() string {
	if a.BaseLocation != "" {
		return a.BaseLocation
	}
	return a.Location
}

// ImageFormats lists the optional image encodings the consumer can decode.
type ImageFormats struct {
	// KTX2 enables KHR_texture_basisu image sources.
	KTX2 bool

	// WebP enables EXT_texture_webp image sources.
	WebP bool
}

// keyDeriverImpl is the implementation of the KeyDeriver interface.
type keyDeriverImpl struct {
	resolver     LocationResolver
	imageFormats ImageFormats
}

// KeyDeriver derives cache keys for the resources of glTF documents.
// It holds no state besides its collaborators; every method is a pure function of its
// arguments and may be called concurrently and redundantly.
type KeyDeriver interface {
	// DocumentKey returns the resolved absolute location of the asset's document.
	//
	// Parameters:
	//   - asset: the document and its location
	//
	// Returns:
	//   - string: the document key
	//   - error: invalid-input error if the asset has no location
	DocumentKey(asset Asset) (string, error)

	// BufferKey returns the identity of a buffer. External buffers are identified by their
	// resolved location alone, so documents referencing the same URI share one key.
	// Embedded buffers are scoped to their document.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - bufferID: the buffer index
	//
	// Returns:
	//   - string: the buffer key
	//   - error: error if the buffer does not exist or the location cannot be resolved
	BufferKey(asset Asset, bufferID int) (string, error)

	// BufferViewKey keys the contents of a buffer view as a standalone resource.
	// EXT_meshopt_compression views are keyed by their compressed source range.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - bufferViewID: the buffer view index
	//
	// Returns:
	//   - string: the buffer view key
	//   - error: error if the view or its buffer does not exist
	BufferViewKey(asset Asset, bufferViewID int) (string, error)

	// VertexBufferKey keys the untyped vertex data of a buffer view.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - bufferViewID: the buffer view index
	//   - opts: load variant options
	//
	// Returns:
	//   - string: the vertex buffer key
	//   - error: error if the view or its buffer does not exist
	VertexBufferKey(asset Asset, bufferViewID int, opts ...KeyOption) (string, error)

	// IndexBufferKey keys the typed index array read through an accessor.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - accessorID: the accessor index
	//   - opts: load variant options
	//
	// Returns:
	//   - string: the index buffer key
	//   - error: invalid-input error for accessors without a buffer view, not-found error for missing ids
	IndexBufferKey(asset Asset, accessorID int, opts ...KeyOption) (string, error)

	// DracoVertexBufferKey keys one decoded attribute stream of a compressed block.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - attr: the compressed block's buffer view and the draco attribute id
	//   - opts: load variant options; WithDequantize applies here
	//
	// Returns:
	//   - string: the decoded vertex buffer key
	//   - error: error if the view does not exist or the attribute id is negative
	DracoVertexBufferKey(asset Asset, attr DracoAttribute, opts ...KeyOption) (string, error)

	// DracoIndexBufferKey keys the decoded indices of a compressed block.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - bufferViewID: the compressed block's buffer view index
	//   - opts: load variant options
	//
	// Returns:
	//   - string: the decoded index buffer key
	//   - error: error if the view does not exist
	DracoIndexBufferKey(asset Asset, bufferViewID int, opts ...KeyOption) (string, error)

	// ImageKey keys an image. External images are identified by resolved location like
	// external buffers; embedded images by their byte range in the owning buffer.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - imageID: the image index
	//
	// Returns:
	//   - string: the image key
	//   - error: error if the image or its view does not exist, or it has no location
	ImageKey(asset Asset, imageID int) (string, error)

	// SamplerKey keys a resolved sampler state.
	//
	// Parameters:
	//   - state: the default-filled sampler state
	//
	// Returns:
	//   - string: wrapS-wrapT-minFilter-magFilter
	SamplerKey(state sampler.State) string

	// TextureKey keys a texture as its image plus its resolved sampler state, so the same
	// image sampled differently is a different texture.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - info: the texture info referencing the texture
	//
	// Returns:
	//   - string: the texture key
	//   - error: error if the texture, its image or its sampler cannot be resolved
	TextureKey(asset Asset, info gltf.TextureInfo) (string, error)

	// TextureImageID selects the image a texture is loaded from, preferring supported
	// KHR_texture_basisu and EXT_texture_webp sources over texture.source.
	//
	// Parameters:
	//   - asset: the document and its location
	//   - textureID: the texture index
	//
	// Returns:
	//   - int: the image index
	//   - error: error if the texture does not exist or has no usable source
	TextureImageID(asset Asset, textureID int) (int, error)
}

var _ KeyDeriver = &keyDeriverImpl{}

// NewKeyDeriver creates a new KeyDeriver with the specified options applied.
// Without options it resolves locations with NewURLResolver() and uses texture.source for images.
//
// Parameters:
//   - options: a variadic list of KeyDeriverBuilderOption functions to configure the KeyDeriver
//
// Returns:
//   - KeyDeriver: the configured deriver
func NewKeyDeriver(options ...KeyDeriverBuilderOption) KeyDeriver {
	d := &keyDeriverImpl{
		resolver: NewURLResolver(),
	}

	for _, option := range options {
		option(d)
	}
	return d
}

func (d *keyDeriverImpl) DocumentKey(asset Asset) (string, error) {
	if asset.Location == "" {
		return "", ErrEmptyLocation
	}
	location, err := d.resolver.Resolve(asset.Location, "")
	if err != nil {
		return "", err
	}
	return ScrubLocation(location), nil
}

func (d *keyDeriverImpl) BufferKey(asset Asset, bufferID int) (string, error) {
	if asset.Document == nil {
		return "", ErrNilDocument
	}
	if err := validateID("buffer", bufferID); err != nil {
		return "", err
	}
	buf, err := asset.Document.Buffer(bufferID)
	if err != nil {
		return "", err
	}
	return d.bufferKey(asset, BufferRef{URI: buf.URI, Index: bufferID})
}

func (d *keyDeriverImpl) BufferViewKey(asset Asset, bufferViewID int) (string, error) {
	loc, err := d.viewLocation(asset, bufferViewID)
	if err != nil {
		return "", err
	}
	if loc.meshopt {
		return JoinMeshoptBufferView(loc.bufferKey, loc.rng), nil
	}
	return JoinBufferView(loc.bufferKey, loc.rng), nil
}

func (d *keyDeriverImpl) VertexBufferKey(asset Asset, bufferViewID int, opts ...KeyOption) (string, error) {
	loc, err := d.viewLocation(asset, bufferViewID)
	if err != nil {
		return "", err
	}

	o := newKeyOptions(opts)
	if loc.meshopt {
		return JoinMeshoptVertexBuffer(loc.bufferKey, loc.rng) + o.suffix(false), nil
	}
	return JoinVertexBuffer(loc.bufferKey, loc.rng) + o.suffix(false), nil
}

func (d *keyDeriverImpl) IndexBufferKey(asset Asset, accessorID int, opts ...KeyOption) (string, error) {
	if asset.Document == nil {
		return "", ErrNilDocument
	}
	if err := validateID("accessor", accessorID); err != nil {
		return "", err
	}
	acc, err := asset.Document.Accessor(accessorID)
	if err != nil {
		return "", err
	}
	if acc.BufferView == nil {
		return "", ErrNoBufferView
	}
	if err := validateAccessor(accessorID, acc); err != nil {
		return "", err
	}

	bv, err := asset.Document.BufferView(*acc.BufferView)
	if err != nil {
		return "", err
	}
	loc, err := d.viewLocation(asset, *acc.BufferView)
	if err != nil {
		return "", err
	}

	o := newKeyOptions(opts)
	layout := AccessorLayout{
		ComponentType: acc.ComponentType,
		Type:          acc.Type,
		Count:         acc.Count,
	}
	if loc.meshopt {
		layout.ByteOffset = acc.ByteOffset
		return JoinMeshoptIndexBuffer(loc.bufferKey, loc.rng, layout) + o.suffix(false), nil
	}
	layout.ByteOffset = bv.ByteOffset + acc.ByteOffset
	return JoinIndexBuffer(loc.bufferKey, layout) + o.suffix(false), nil
}

func (d *keyDeriverImpl) DracoVertexBufferKey(asset Asset, attr DracoAttribute, opts ...KeyOption) (string, error) {
	if attr.AttributeID < 0 {
		return "", invalidInput("draco attribute id %d is negative", attr.AttributeID)
	}
	loc, err := d.rawViewLocation(asset, attr.BufferView)
	if err != nil {
		return "", err
	}

	o := newKeyOptions(opts)
	return JoinDracoVertexBuffer(loc.bufferKey, loc.rng, attr.AttributeID) + o.suffix(true), nil
}

func (d *keyDeriverImpl) DracoIndexBufferKey(asset Asset, bufferViewID int, opts ...KeyOption) (string, error) {
	loc, err := d.rawViewLocation(asset, bufferViewID)
	if err != nil {
		return "", err
	}

	o := newKeyOptions(opts)
	return JoinDracoIndexBuffer(loc.bufferKey, loc.rng) + o.suffix(false), nil
}

func (d *keyDeriverImpl) ImageKey(asset Asset, imageID int) (string, error) {
	if asset.Document == nil {
		return "", ErrNilDocument
	}
	if err := validateID("image", imageID); err != nil {
		return "", err
	}
	img, err := asset.Document.Image(imageID)
	if err != nil {
		return "", err
	}
	return d.imageKey(asset, ImageRef{URI: img.URI, BufferView: img.BufferView})
}

func (d *keyDeriverImpl) SamplerKey(state sampler.State) string {
	return state.Key()
}

func (d *keyDeriverImpl) TextureKey(asset Asset, info gltf.TextureInfo) (string, error) {
	imageID, err := d.TextureImageID(asset, info.Index)
	if err != nil {
		return "", err
	}
	imageKey, err := d.ImageKey(asset, imageID)
	if err != nil {
		return "", err
	}
	state, err := sampler.Resolve(asset.Document, info)
	if err != nil {
		return "", err
	}
	return JoinTexture(imageKey, d.SamplerKey(state)), nil
}

func (d *keyDeriverImpl) TextureImageID(asset Asset, textureID int) (int, error) {
	if asset.Document == nil {
		return 0, ErrNilDocument
	}
	if err := validateID("texture", textureID); err != nil {
		return 0, err
	}
	tex, err := asset.Document.Texture(textureID)
	if err != nil {
		return 0, err
	}

	if ext := tex.Extensions; ext != nil {
		if d.imageFormats.KTX2 && ext.Basisu != nil && ext.Basisu.Source != nil {
			return *ext.Basisu.Source, nil
		}
		if d.imageFormats.WebP && ext.Webp != nil && ext.Webp.Source != nil {
			return *ext.Webp.Source, nil
		}
	}
	if tex.Source == nil {
		return 0, ErrNoImageSource
	}
	return *tex.Source, nil
}

// bufferKey applies the external/embedded rule to a buffer descriptor.
func (d *keyDeriverImpl) bufferKey(asset Asset, ref BufferRef) (string, error) {
	if !ref.Embedded() {
		return d.externalKey(asset, ref.URI)
	}
	documentKey, err := d.DocumentKey(asset)
	if err != nil {
		return "", err
	}
	return EmbeddedBufferKey(documentKey, ref.Index), nil
}

// imageKey applies the external/embedded rule to an image descriptor.
func (d *keyDeriverImpl) imageKey(asset Asset, ref ImageRef) (string, error) {
	if ref.BufferView != nil {
		loc, err := d.rawViewLocation(asset, *ref.BufferView)
		if err != nil {
			return "", err
		}
		return JoinEmbeddedImage(loc.bufferKey, loc.rng), nil
	}
	if ref.URI == "" {
		return "", ErrNoImageLocation
	}
	return d.externalKey(asset, ref.URI)
}

// externalKey resolves uri against the asset's base location.
func (d *keyDeriverImpl) externalKey(asset Asset, uri string) (string, error) {
	base := asset.base()
	if base == "" {
		return "", ErrEmptyLocation
	}
	location, err := d.resolver.Resolve(base, uri)
	if err != nil {
		return "", err
	}
	return ScrubLocation(location), nil
}

// viewLocation is where the bytes behind a buffer view are declared.
type viewLocation struct {
	bufferKey string
	rng       Range
	meshopt   bool
}

// viewLocation follows EXT_meshopt_compression to the compressed source bytes.
func (d *keyDeriverImpl) viewLocation(asset Asset, bufferViewID int) (viewLocation, error) {
	if asset.Document == nil {
		return viewLocation{}, ErrNilDocument
	}
	if err := validateID("bufferView", bufferViewID); err != nil {
		return viewLocation{}, err
	}
	bv, err := asset.Document.BufferView(bufferViewID)
	if err != nil {
		return viewLocation{}, err
	}

	mo := bv.Meshopt()
	if mo == nil {
		return d.rawViewLocation(asset, bufferViewID)
	}
	rng := Range{ByteOffset: mo.ByteOffset, ByteLength: mo.ByteLength}
	if err := validateRange("bufferView", bufferViewID, rng); err != nil {
		return viewLocation{}, err
	}
	bufferKey, err := d.BufferKey(asset, mo.Buffer)
	if err != nil {
		return viewLocation{}, err
	}
	return viewLocation{bufferKey: bufferKey, rng: rng, meshopt: true}, nil
}

// rawViewLocation is the buffer and range a buffer view declares, ignoring extensions.
func (d *keyDeriverImpl) rawViewLocation(asset Asset, bufferViewID int) (viewLocation, error) {
	if asset.Document == nil {
		return viewLocation{}, ErrNilDocument
	}
	if err := validateID("bufferView", bufferViewID); err != nil {
		return viewLocation{}, err
	}
	bv, err := asset.Document.BufferView(bufferViewID)
	if err != nil {
		return viewLocation{}, err
	}
	rng := Range{ByteOffset: bv.ByteOffset, ByteLength: bv.ByteLength}
	if err := validateRange("bufferView", bufferViewID, rng); err != nil {
		return viewLocation{}, err
	}
	bufferKey, err := d.BufferKey(asset, bv.Buffer)
	if err != nil {
		return viewLocation{}, err
	}
	return viewLocation{bufferKey: bufferKey, rng: rng}, nil
}

func validateID(kind string, id int) error {
	if id < 0 {
		return invalidInput("%s id %d is negative", kind, id)
	}
	return nil
}

func validateRange(kind string, id int, r Range) error {
	if r.ByteOffset < 0 || r.ByteLength < 0 {
		return invalidInput("%s %d has negative range %d+%d", kind, id, r.ByteOffset, r.ByteLength)
	}
	return nil
}

func validateAccessor(id int, acc *gltf.Accessor) error {
	if acc.ByteOffset < 0 || acc.Count < 0 {
		return invalidInput("accessor %d has negative offset or count", id)
	}
	switch acc.Type {
	case gltf.AccessorTypeScalar, gltf.AccessorTypeVec2, gltf.AccessorTypeVec3, gltf.AccessorTypeVec4,
		gltf.AccessorTypeMat2, gltf.AccessorTypeMat3, gltf.AccessorTypeMat4:
		return nil
	default:
		return invalidInput("accessor %d has unknown type %q", id, acc.Type)
	}
}

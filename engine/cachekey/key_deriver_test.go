package cachekey

import (
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"unicode"

	"github.com/Carmen-Shannon/oxy-cachekey/engine/gltf"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/sampler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// newTestDocument builds a document with one embedded buffer (0) and one external
// buffer (1, "shared.bin").
func newTestDocument() *gltf.Document {
	return &gltf.Document{
		Asset: gltf.Asset{Version: "2.0"},
		Buffers: []gltf.Buffer{
			{ByteLength: 1024},
			{URI: "shared.bin", ByteLength: 2048},
		},
		BufferViews: []gltf.BufferView{
			{Buffer: 0, ByteOffset: 100, ByteLength: 50},
			{Buffer: 0, ByteOffset: 0, ByteLength: 20},
			{Buffer: 1, ByteOffset: 0, ByteLength: 64},
			{Buffer: 0, ByteOffset: 200, ByteLength: 300},
			{Buffer: 0, ByteOffset: 0, ByteLength: 64},
			{
				Buffer:     0,
				ByteLength: 256,
				Extensions: &gltf.BufferViewExtensions{
					Meshopt: &gltf.MeshoptCompression{Buffer: 1, ByteOffset: 512, ByteLength: 128, ByteStride: 2, Count: 128, Mode: "TRIANGLES"},
				},
			},
			{Buffer: 7, ByteLength: 8},
		},
		Accessors: []gltf.Accessor{
			{BufferView: ptr(0), ByteOffset: 8, ComponentType: gltf.ComponentTypeUnsignedShort, Type: gltf.AccessorTypeScalar, Count: 12},
			{ComponentType: gltf.ComponentTypeFloat, Type: gltf.AccessorTypeVec3, Count: 3},
			{BufferView: ptr(0), ByteOffset: 8, ComponentType: gltf.ComponentTypeUnsignedInt, Type: gltf.AccessorTypeScalar, Count: 6},
			{BufferView: ptr(5), ByteOffset: 4, ComponentType: gltf.ComponentTypeUnsignedShort, Type: gltf.AccessorTypeScalar, Count: 3},
			{BufferView: ptr(42), ComponentType: gltf.ComponentTypeUnsignedShort, Type: gltf.AccessorTypeScalar, Count: 3},
			{BufferView: ptr(0), ComponentType: gltf.ComponentTypeUnsignedShort, Type: "vec 3", Count: 3},
		},
		Images: []gltf.Image{
			{BufferView: ptr(1), MimeType: "image/png"},
			{URI: "atlas.png"},
			{},
			{URI: "atlas.ktx2"},
		},
		Samplers: []gltf.Sampler{
			{MagFilter: ptr(gltf.FilterNearest), MinFilter: ptr(gltf.FilterNearestMipmapLinear)},
			{WrapS: ptr(gltf.WrapRepeat)},
		},
		Textures: []gltf.Texture{
			{Source: ptr(1)},
			{Source: ptr(1), Sampler: ptr(0)},
			{Source: ptr(1), Sampler: ptr(1)},
			{
				Source:     ptr(1),
				Extensions: &gltf.TextureExtensions{Basisu: &gltf.TextureSource{Source: ptr(3)}},
			},
			{Source: ptr(2)},
			{},
			{Source: ptr(1), Sampler: ptr(9)},
		},
	}
}

func newTestAsset(location string) Asset {
	return Asset{Document: newTestDocument(), Location: location}
}

func TestKeyDeriverEndToEnd(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	vertex, err := d.VertexBufferKey(asset, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://host/a.gltf-buffer-0-vertex-buffer-100-50", vertex)

	image, err := d.ImageKey(asset, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://host/a.gltf-buffer-0-image-0-20", image)

	assert.NotEqual(t, vertex, image)
}

func TestKeyDeriverKeys(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	tests := []struct {
		name   string
		derive func() (string, error)
		want   string
	}{
		{
			name:   "document",
			derive: func() (string, error) { return d.DocumentKey(asset) },
			want:   "https://host/a.gltf",
		},
		{
			name:   "embedded buffer",
			derive: func() (string, error) { return d.BufferKey(asset, 0) },
			want:   "https://host/a.gltf-buffer-0",
		},
		{
			name:   "external buffer",
			derive: func() (string, error) { return d.BufferKey(asset, 1) },
			want:   "https://host/shared.bin",
		},
		{
			name:   "buffer view",
			derive: func() (string, error) { return d.BufferViewKey(asset, 2) },
			want:   "https://host/shared.bin-buffer-view-0-64",
		},
		{
			name:   "meshopt buffer view",
			derive: func() (string, error) { return d.BufferViewKey(asset, 5) },
			want:   "https://host/shared.bin-buffer-view-meshopt-512-128",
		},
		{
			name:   "vertex buffer on external buffer",
			derive: func() (string, error) { return d.VertexBufferKey(asset, 2) },
			want:   "https://host/shared.bin-vertex-buffer-0-64",
		},
		{
			name:   "meshopt vertex buffer",
			derive: func() (string, error) { return d.VertexBufferKey(asset, 5) },
			want:   "https://host/shared.bin-vertex-buffer-meshopt-512-128",
		},
		{
			name:   "typed array vertex buffer",
			derive: func() (string, error) { return d.VertexBufferKey(asset, 0, WithTypedArray()) },
			want:   "https://host/a.gltf-buffer-0-vertex-buffer-100-50-typed-array",
		},
		{
			name:   "dequantize is ignored for plain vertex buffers",
			derive: func() (string, error) { return d.VertexBufferKey(asset, 0, WithDequantize()) },
			want:   "https://host/a.gltf-buffer-0-vertex-buffer-100-50",
		},
		{
			name:   "index buffer uses combined offset",
			derive: func() (string, error) { return d.IndexBufferKey(asset, 0) },
			want:   "https://host/a.gltf-buffer-0-index-buffer-108-5123-SCALAR-12",
		},
		{
			name:   "meshopt index buffer",
			derive: func() (string, error) { return d.IndexBufferKey(asset, 3) },
			want:   "https://host/shared.bin-index-buffer-meshopt-512-128-4-5123-SCALAR-3",
		},
		{
			name:   "draco vertex buffer",
			derive: func() (string, error) { return d.DracoVertexBufferKey(asset, DracoAttribute{BufferView: 3, AttributeID: 2}) },
			want:   "https://host/a.gltf-buffer-0-draco-vertex-buffer-200-300-2",
		},
		{
			name: "draco vertex buffer variants",
			derive: func() (string, error) {
				return d.DracoVertexBufferKey(asset, DracoAttribute{BufferView: 3, AttributeID: 2}, WithDequantize(), WithTypedArray())
			},
			want: "https://host/a.gltf-buffer-0-draco-vertex-buffer-200-300-2-dequantize-typed-array",
		},
		{
			name:   "draco index buffer",
			derive: func() (string, error) { return d.DracoIndexBufferKey(asset, 3) },
			want:   "https://host/a.gltf-buffer-0-draco-index-buffer-200-300",
		},
		{
			name:   "external image",
			derive: func() (string, error) { return d.ImageKey(asset, 1) },
			want:   "https://host/atlas.png",
		},
		{
			name:   "texture without sampler",
			derive: func() (string, error) { return d.TextureKey(asset, gltf.TextureInfo{Index: 0}) },
			want:   "https://host/atlas.png-texture-10497-10497-9729-9729",
		},
		{
			name:   "texture with sampler",
			derive: func() (string, error) { return d.TextureKey(asset, gltf.TextureInfo{Index: 1}) },
			want:   "https://host/atlas.png-texture-10497-10497-9986-9728",
		},
		{
			name: "texture transform drops mipmapping",
			derive: func() (string, error) {
				return d.TextureKey(asset, gltf.TextureInfo{
					Index:      1,
					Extensions: &gltf.TextureInfoExtensions{TextureTransform: &gltf.TextureTransform{Rotation: ptr(float32(1))}},
				})
			},
			want: "https://host/atlas.png-texture-10497-10497-9728-9728",
		},
		{
			name:   "basisu source ignored without ktx2 support",
			derive: func() (string, error) { return d.TextureKey(asset, gltf.TextureInfo{Index: 3}) },
			want:   "https://host/atlas.png-texture-10497-10497-9729-9729",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.derive()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.ContainsFunc(got, unicode.IsSpace))
		})
	}
}

func TestKeyDeriverDeterminism(t *testing.T) {
	d := NewKeyDeriver()

	// Two separately built, structurally equal documents.
	a := newTestAsset("https://host/a.gltf")
	b := newTestAsset("https://host/a.gltf")

	for _, derive := range []func(Asset) (string, error){
		func(x Asset) (string, error) { return d.VertexBufferKey(x, 0) },
		func(x Asset) (string, error) { return d.IndexBufferKey(x, 0) },
		func(x Asset) (string, error) { return d.ImageKey(x, 0) },
		func(x Asset) (string, error) { return d.TextureKey(x, gltf.TextureInfo{Index: 1}) },
	} {
		first, err := derive(a)
		require.NoError(t, err)
		second, err := derive(b)
		require.NoError(t, err)
		again, err := derive(a)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, first, again)
	}
}

func TestKeyDeriverExternalReferenceIdentity(t *testing.T) {
	d := NewKeyDeriver()

	a, err := d.BufferKey(newTestAsset("https://host/a.gltf"), 1)
	require.NoError(t, err)
	b, err := d.BufferKey(newTestAsset("https://host/b.gltf"), 1)
	require.NoError(t, err)
	other, err := d.BufferKey(newTestAsset("https://other/b.gltf"), 1)
	require.NoError(t, err)

	assert.Equal(t, a, b, "same uri against the same base must share a key")
	assert.NotEqual(t, a, other, "different resolved locations must not share a key")

	imgA, err := d.ImageKey(newTestAsset("https://host/a.gltf"), 1)
	require.NoError(t, err)
	imgB, err := d.ImageKey(newTestAsset("https://host/b.gltf"), 1)
	require.NoError(t, err)
	assert.Equal(t, imgA, imgB)
}

func TestKeyDeriverBaseLocation(t *testing.T) {
	d := NewKeyDeriver()
	asset := Asset{
		Document:     newTestDocument(),
		Location:     "https://host/tiles/0/a.gltf",
		BaseLocation: "https://cdn/assets/",
	}

	buf, err := d.BufferKey(asset, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/assets/shared.bin", buf)

	// Embedded resources stay scoped to the document, not the base.
	embedded, err := d.BufferKey(asset, 0)
	require.NoError(t, err)
	assert.Equal(t, "https://host/tiles/0/a.gltf-buffer-0", embedded)
}

func TestKeyDeriverEmbeddedScoping(t *testing.T) {
	d := NewKeyDeriver()

	a, err := d.BufferKey(newTestAsset("https://host/a.gltf"), 0)
	require.NoError(t, err)
	b, err := d.BufferKey(newTestAsset("https://host/b.gltf"), 0)
	require.NoError(t, err)
	again, err := d.BufferKey(newTestAsset("https://host/a.gltf"), 0)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, again)
}

func TestKeyDeriverKindNamespacing(t *testing.T) {
	d := NewKeyDeriver()
	doc := newTestDocument()
	doc.Images = append(doc.Images, gltf.Image{BufferView: ptr(4)})
	asset := Asset{Document: doc, Location: "https://host/a.gltf"}

	vertex, err := d.VertexBufferKey(asset, 4)
	require.NoError(t, err)
	image, err := d.ImageKey(asset, len(doc.Images)-1)
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(vertex, "-vertex-buffer-0-64"))
	assert.True(t, strings.HasSuffix(image, "-image-0-64"))
	assert.NotEqual(t, vertex, image)
}

func TestKeyDeriverIndexBufferIncludesElementShape(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	u16, err := d.IndexBufferKey(asset, 0)
	require.NoError(t, err)
	u32, err := d.IndexBufferKey(asset, 2)
	require.NoError(t, err)

	assert.NotEqual(t, u16, u32)
}

func TestKeyDeriverDracoAttributeDisambiguation(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	attr0, err := d.DracoVertexBufferKey(asset, DracoAttribute{BufferView: 3, AttributeID: 0})
	require.NoError(t, err)
	attr1, err := d.DracoVertexBufferKey(asset, DracoAttribute{BufferView: 3, AttributeID: 1})
	require.NoError(t, err)
	attr0Again, err := d.DracoVertexBufferKey(asset, DracoAttribute{BufferView: 3, AttributeID: 0})
	require.NoError(t, err)

	assert.NotEqual(t, attr0, attr1)
	assert.Equal(t, attr0, attr0Again)
}

func TestKeyDeriverTextureSamplerCoupling(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	noSampler, err := d.TextureKey(asset, gltf.TextureInfo{Index: 0})
	require.NoError(t, err)
	nearest, err := d.TextureKey(asset, gltf.TextureInfo{Index: 1})
	require.NoError(t, err)
	explicitDefaults, err := d.TextureKey(asset, gltf.TextureInfo{Index: 2, TexCoord: 1})
	require.NoError(t, err)

	assert.NotEqual(t, noSampler, nearest, "same image sampled differently is a different texture")
	assert.Equal(t, noSampler, explicitDefaults, "omitted and explicit default sampler fields are the same texture")

	imageKey, err := d.ImageKey(asset, 1)
	require.NoError(t, err)
	assert.Equal(t, JoinTexture(imageKey, d.SamplerKey(sampler.Default)), noSampler)
}

func TestKeyDeriverImageFormats(t *testing.T) {
	asset := newTestAsset("https://host/a.gltf")

	d := NewKeyDeriver(WithImageFormats(ImageFormats{KTX2: true}))
	id, err := d.TextureImageID(asset, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, id)

	key, err := d.TextureKey(asset, gltf.TextureInfo{Index: 3})
	require.NoError(t, err)
	assert.Equal(t, "https://host/atlas.ktx2-texture-10497-10497-9729-9729", key)

	id, err = NewKeyDeriver().TextureImageID(asset, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, id)
}

func TestKeyDeriverCustomResolver(t *testing.T) {
	d := NewKeyDeriver(WithResolver(NewURLResolver(WithKeepQuery(false))))
	doc := newTestDocument()
	doc.Buffers[1].URI = "shared.bin?token=abc"

	key, err := d.BufferKey(Asset{Document: doc, Location: "https://host/a.gltf"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "https://host/shared.bin", key)
}

func TestKeyDeriverScrubsLocations(t *testing.T) {
	d := NewKeyDeriver()
	doc := newTestDocument()
	doc.Buffers[1].URI = "a.gltf-buffer-0"
	asset := Asset{Document: doc, Location: "https://host/a.gltf"}

	embedded, err := d.BufferKey(asset, 0)
	require.NoError(t, err)
	external, err := d.BufferKey(asset, 1)
	require.NoError(t, err)
	assert.NotEqual(t, embedded, external)

	location := filepath.Join(t.TempDir(), "my tiles", "a.gltf")
	docKey, err := d.DocumentKey(Asset{Document: doc, Location: location})
	require.NoError(t, err)
	assert.Contains(t, docKey, "my%20tiles")
	assert.False(t, strings.ContainsFunc(docKey, unicode.IsSpace))
}

func TestKeyDeriverErrors(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	tests := []struct {
		name         string
		derive       func() (string, error)
		invalidInput bool
		notFound     bool
		is           error
	}{
		{
			name:         "missing document",
			derive:       func() (string, error) { return d.BufferKey(Asset{Location: "https://host/a.gltf"}, 0) },
			invalidInput: true,
			is:           ErrNilDocument,
		},
		{
			name:         "missing location",
			derive:       func() (string, error) { return d.DocumentKey(Asset{Document: newTestDocument()}) },
			invalidInput: true,
			is:           ErrEmptyLocation,
		},
		{
			name:         "accessor without buffer view",
			derive:       func() (string, error) { return d.IndexBufferKey(asset, 1) },
			invalidInput: true,
			is:           ErrNoBufferView,
		},
		{
			name:         "accessor with unknown type",
			derive:       func() (string, error) { return d.IndexBufferKey(asset, 5) },
			invalidInput: true,
		},
		{
			name:         "negative draco attribute",
			derive:       func() (string, error) { return d.DracoVertexBufferKey(asset, DracoAttribute{BufferView: 3, AttributeID: -1}) },
			invalidInput: true,
		},
		{
			name:         "image without location",
			derive:       func() (string, error) { return d.ImageKey(asset, 2) },
			invalidInput: true,
			is:           ErrNoImageLocation,
		},
		{
			name:         "texture without source",
			derive:       func() (string, error) { return d.TextureKey(asset, gltf.TextureInfo{Index: 5}) },
			invalidInput: true,
			is:           ErrNoImageSource,
		},
		{
			name:     "accessor out of range",
			derive:   func() (string, error) { return d.IndexBufferKey(asset, 99) },
			notFound: true,
		},
		{
			name:     "accessor points at missing buffer view",
			derive:   func() (string, error) { return d.IndexBufferKey(asset, 4) },
			notFound: true,
		},
		{
			name:     "buffer view points at missing buffer",
			derive:   func() (string, error) { return d.VertexBufferKey(asset, 6) },
			notFound: true,
		},
		{
			name:         "negative buffer id",
			derive:       func() (string, error) { return d.BufferKey(asset, -1) },
			invalidInput: true,
		},
		{
			name:         "negative image id",
			derive:       func() (string, error) { return d.ImageKey(asset, -2) },
			invalidInput: true,
		},
		{
			name:     "texture sampler out of range",
			derive:   func() (string, error) { return d.TextureKey(asset, gltf.TextureInfo{Index: 6}) },
			notFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := tt.derive()
			require.Error(t, err)
			assert.Empty(t, key)
			assert.Equal(t, tt.invalidInput, IsInvalidInput(err), "invalid input: %v", err)
			assert.Equal(t, tt.notFound, IsNotFound(err), "not found: %v", err)
			if tt.is != nil {
				assert.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestKeyDeriverConcurrentUse(t *testing.T) {
	d := NewKeyDeriver()
	asset := newTestAsset("https://host/a.gltf")

	want, err := d.TextureKey(asset, gltf.TextureInfo{Index: 1})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]string, 64)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = d.TextureKey(asset, gltf.TextureInfo{Index: 1})
		}()
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

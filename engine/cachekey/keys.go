// Package cachekey derives the identity strings a resource cache uses to decide whether two
// requests for glTF resources, possibly from different model files, refer to the same
// GPU-uploadable payload.
//
// Identity is structural: a key is built from where a resource is declared (document
// location, buffer, byte range) and how it is decoded (accessor shape, draco attribute,
// sampler state). Bytes are never hashed, so equal bytes at different declared locations
// get different keys.
//
// Key composition is pure. Every type in this package is safe for concurrent use.
package cachekey

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Infixes separating a parent key from the sub-key of a resource kind.
const (
	infixBuffer            = "-buffer-"
	infixBufferView        = "-buffer-view-"
	infixVertexBuffer      = "-vertex-buffer-"
	infixIndexBuffer       = "-index-buffer-"
	infixDracoVertexBuffer = "-draco-vertex-buffer-"
	infixDracoIndexBuffer  = "-draco-index-buffer-"
	infixImage             = "-image-"
	infixTexture           = "-texture-"
	infixMeshopt           = "meshopt-"
)

// Range is a contiguous byte range of a buffer.
type Range struct {
	ByteOffset int
	ByteLength int
}

// BufferRef locates a buffer. A buffer with a URI is external and identified by where its
// bytes live; a buffer without one is embedded and identified as buffer Index of its document.
type BufferRef struct {
	URI   string
	Index int
}

// Embedded reports whether the buffer is only reachable through its owning document.
func (b BufferRef) Embedded() bool {
	return b.URI == ""
}

// AccessorLayout is the typed interpretation of a byte range. ByteOffset is the buffer
// view offset plus the accessor's own offset.
type AccessorLayout struct {
	ByteOffset    int
	ComponentType int
	Type          string
	Count         int
}

// DracoAttribute selects one decoded stream of a KHR_draco_mesh_compression block.
type DracoAttribute struct {
	BufferView  int
	AttributeID int
}

// ImageRef locates an image: by URI, or embedded in a buffer view.
type ImageRef struct {
	URI        string
	BufferView *int
}

// RangeKey returns byteOffset-byteLength.
func RangeKey(r Range) string {
	return strconv.Itoa(r.ByteOffset) + "-" + strconv.Itoa(r.ByteLength)
}

// AccessorKey returns byteOffset-componentType-type-count.
func AccessorKey(a AccessorLayout) string {
	return strconv.Itoa(a.ByteOffset) + "-" + strconv.Itoa(a.ComponentType) + "-" + a.Type + "-" + strconv.Itoa(a.Count)
}

// EmbeddedBufferKey scopes buffer index to the document with the given key.
func EmbeddedBufferKey(documentKey string, index int) string {
	return documentKey + infixBuffer + strconv.Itoa(index)
}

// JoinBufferView keys a raw buffer view resource.
func JoinBufferView(bufferKey string, r Range) string {
	return bufferKey + infixBufferView + RangeKey(r)
}

// JoinVertexBuffer keys an untyped vertex buffer uploaded from a byte range.
func JoinVertexBuffer(bufferKey string, r Range) string {
	return bufferKey + infixVertexBuffer + RangeKey(r)
}

// JoinIndexBuffer keys a typed index array.
func JoinIndexBuffer(bufferKey string, a AccessorLayout) string {
	return bufferKey + infixIndexBuffer + AccessorKey(a)
}

// JoinDracoVertexBuffer keys one decoded attribute of a compressed block.
func JoinDracoVertexBuffer(bufferKey string, r Range, attributeID int) string {
	return bufferKey + infixDracoVertexBuffer + RangeKey(r) + "-" + strconv.Itoa(attributeID)
}

// JoinDracoIndexBuffer keys the decoded indices of a compressed block.
func JoinDracoIndexBuffer(bufferKey string, r Range) string {
	return bufferKey + infixDracoIndexBuffer + RangeKey(r)
}

// JoinEmbeddedImage keys an image stored in a byte range of a buffer.
func JoinEmbeddedImage(bufferKey string, r Range) string {
	return bufferKey + infixImage + RangeKey(r)
}

// JoinMeshoptBufferView keys the decoded contents of an EXT_meshopt_compression view whose
// compressed bytes occupy r. The meshopt infix keeps decoded data apart from raw views over
// the same range.
func JoinMeshoptBufferView(bufferKey string, r Range) string {
	return bufferKey + infixBufferView + infixMeshopt + RangeKey(r)
}

// JoinMeshoptVertexBuffer keys a vertex buffer decoded from compressed range r.
func JoinMeshoptVertexBuffer(bufferKey string, r Range) string {
	return bufferKey + infixVertexBuffer + infixMeshopt + RangeKey(r)
}

// JoinMeshoptIndexBuffer keys an index array read from a view decoded from compressed range
// r. The accessor offset is relative to the decoded view, so the compressed range is part
// of the key.
func JoinMeshoptIndexBuffer(bufferKey string, r Range, a AccessorLayout) string {
	return bufferKey + infixIndexBuffer + infixMeshopt + RangeKey(r) + "-" + AccessorKey(a)
}

// JoinTexture couples an image key with a sampler key.
func JoinTexture(imageKey, samplerKey string) string {
	return imageKey + infixTexture + samplerKey
}

// ScrubLocation makes a location safe to compose into a key. '%', '-' and whitespace are
// percent-encoded, so the result never contains a kind infix or whitespace and distinct
// locations stay distinct.
func ScrubLocation(location string) string {
	if !strings.ContainsFunc(location, needsScrub) {
		return location
	}

	var b strings.Builder
	b.Grow(len(location) + 8)
	var buf [utf8.UTFMax]byte
	for _, c := range location {
		if !needsScrub(c) {
			b.WriteRune(c)
			continue
		}
		n := utf8.EncodeRune(buf[:], c)
		for _, octet := range buf[:n] {
			b.WriteByte('%')
			b.WriteByte(upperhex[octet>>4])
			b.WriteByte(upperhex[octet&0x0f])
		}
	}
	return b.String()
}

const upperhex = "0123456789ABCDEF"

func needsScrub(c rune) bool {
	return c == '-' || c == '%' || unicode.IsSpace(c)
}

package cachekey

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
)

func TestRangeKey(t *testing.T) {
	assert.Equal(t, "100-50", RangeKey(Range{ByteOffset: 100, ByteLength: 50}))
	assert.Equal(t, "0-0", RangeKey(Range{}))
}

func TestAccessorKey(t *testing.T) {
	got := AccessorKey(AccessorLayout{ByteOffset: 108, ComponentType: 5123, Type: "SCALAR", Count: 12})
	assert.Equal(t, "108-5123-SCALAR-12", got)
}

func TestJoinFunctionsNamespaceKinds(t *testing.T) {
	r := Range{ByteOffset: 0, ByteLength: 64}
	const buf = "https://host/a.gltf-buffer-0"

	keys := map[string]string{
		"bufferView":          JoinBufferView(buf, r),
		"vertexBuffer":        JoinVertexBuffer(buf, r),
		"dracoVertexBuffer":   JoinDracoVertexBuffer(buf, r, 0),
		"dracoIndexBuffer":    JoinDracoIndexBuffer(buf, r),
		"image":               JoinEmbeddedImage(buf, r),
		"meshoptBufferView":   JoinMeshoptBufferView(buf, r),
		"meshoptVertexBuffer": JoinMeshoptVertexBuffer(buf, r),
	}

	seen := make(map[string]string, len(keys))
	for kind, key := range keys {
		if other, ok := seen[key]; ok {
			t.Fatalf("%s and %s share key %q", kind, other, key)
		}
		seen[key] = kind
	}

	assert.Equal(t, buf+"-vertex-buffer-0-64", keys["vertexBuffer"])
	assert.Equal(t, buf+"-image-0-64", keys["image"])
}

func TestScrubLocation(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     string
	}{
		{name: "plain url is unchanged", location: "https://host/a.gltf", want: "https://host/a.gltf"},
		{name: "hyphen", location: "https://host/my-tiles/a.gltf", want: "https://host/my%2Dtiles/a.gltf"},
		{name: "percent", location: "https://host/a%20b.gltf", want: "https://host/a%2520b.gltf"},
		{name: "space", location: "/data/my tiles/a.gltf", want: "/data/my%20tiles/a.gltf"},
		{name: "tab", location: "/data/a\tb", want: "/data/a%09b"},
		{name: "non-breaking space", location: "/data/a\u00a0b", want: "/data/a%C2%A0b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScrubLocation(tt.location)
			assert.Equal(t, tt.want, got)
			assert.False(t, strings.ContainsFunc(got, unicode.IsSpace))
			assert.NotContains(t, got, "-")
		})
	}
}

func TestScrubLocationKeepsDistinctLocationsDistinct(t *testing.T) {
	// A literal "%2D" must not collide with an escaped hyphen.
	assert.NotEqual(t, ScrubLocation("https://host/a-b"), ScrubLocation("https://host/a%2Db"))
}

func TestEmbeddedKeyCannotBeForgedByExternalLocation(t *testing.T) {
	embedded := EmbeddedBufferKey("https://host/a.gltf", 0)
	forged := ScrubLocation("https://host/a.gltf-buffer-0")

	assert.Equal(t, "https://host/a.gltf-buffer-0", embedded)
	assert.NotEqual(t, embedded, forged)
}

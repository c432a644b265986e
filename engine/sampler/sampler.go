// Package sampler resolves glTF texture sampling parameters into a canonical, fully
// populated State. Keys and GPU samplers are built from a State, never from the raw
// JSON sampler, so two samplers that only differ in which optional fields they omit
// resolve to the same value.
package sampler

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-cachekey/engine/gltf"
)

// State is a canonical sampler: every field holds a glTF enum value, none is optional.
type State struct {
	WrapS     int
	WrapT     int
	MinFilter int
	MagFilter int
}

// Default is the state of a texture without a sampler: repeat wrapping and linear filtering.
// Reference: https://registry.khronos.org/glTF/specs/2.0/glTF-2.0.html#texturesampler
var Default = State{
	WrapS:     gltf.WrapRepeat,
	WrapT:     gltf.WrapRepeat,
	MinFilter: gltf.FilterLinear,
	MagFilter: gltf.FilterLinear,
}

// Document is the read-only lookup surface the resolver needs.
type Document interface {
	Texture(index int) (*gltf.Texture, error)
	Sampler(index int) (*gltf.Sampler, error)
}

// Resolve maps a texture info to the sampler state of the texture it references, with glTF
// defaults filled in. When the texture info carries KHR_texture_transform, mipmapped
// minification collapses to its non-mipmapped base filter.
//
// Parameters:
//   - doc: the document owning the texture
//   - info: the texture info to resolve
//
// Returns:
//   - State: the resolved sampler state
//   - error: not-found error if the texture or its sampler does not exist
func Resolve(doc Document, info gltf.TextureInfo) (State, error) {
	tex, err := doc.Texture(info.Index)
	if err != nil {
		return State{}, err
	}

	state := Default
	if tex.Sampler != nil {
		s, err := doc.Sampler(*tex.Sampler)
		if err != nil {
			return State{}, err
		}
		state = FromSampler(s)
	}

	if info.HasTextureTransform() {
		state.MinFilter = baseMinFilter(state.MinFilter)
	}
	return state, nil
}

// FromSampler default-fills a glTF sampler. A nil sampler yields Default.
func FromSampler(s *gltf.Sampler) State {
	state := Default
	if s == nil {
		return state
	}
	if s.WrapS != nil {
		state.WrapS = *s.WrapS
	}
	if s.WrapT != nil {
		state.WrapT = *s.WrapT
	}
	if s.MinFilter != nil {
		state.MinFilter = *s.MinFilter
	}
	if s.MagFilter != nil {
		state.MagFilter = *s.MagFilter
	}
	return state
}

// Key returns wrapS-wrapT-minFilter-magFilter.
func (s State) Key() string {
	return fmt.Sprintf("%d-%d-%d-%d", s.WrapS, s.WrapT, s.MinFilter, s.MagFilter)
}

// UsesMipmaps reports whether the minification filter samples mip levels.
func (s State) UsesMipmaps() bool {
	switch s.MinFilter {
	case gltf.FilterNearestMipmapNearest, gltf.FilterLinearMipmapNearest,
		gltf.FilterNearestMipmapLinear, gltf.FilterLinearMipmapLinear:
		return true
	default:
		return false
	}
}

// baseMinFilter strips the mipmap component from a minification filter.
func baseMinFilter(minFilter int) int {
	switch minFilter {
	case gltf.FilterNearestMipmapNearest, gltf.FilterNearestMipmapLinear:
		return gltf.FilterNearest
	case gltf.FilterLinearMipmapNearest, gltf.FilterLinearMipmapLinear:
		return gltf.FilterLinear
	default:
		return minFilter
	}
}

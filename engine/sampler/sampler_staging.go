package sampler

import (
	"github.com/Carmen-Shannon/oxy-cachekey/common"
	"github.com/Carmen-Shannon/oxy-cachekey/engine/gltf"

	"github.com/cogentcore/webgpu/wgpu"
)

// StagingData converts the state into engine-ready SamplerStagingData. Equal states
// produce equal staging data.
//
// Returns:
//   - *common.SamplerStagingData: the converted sampler staging data
func (s State) StagingData() *common.SamplerStagingData {
	result := &common.SamplerStagingData{
		AddressModeU:  wrapToAddressMode(s.WrapS),
		AddressModeV:  wrapToAddressMode(s.WrapT),
		AddressModeW:  wgpu.AddressModeRepeat,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}

	if s.MagFilter == gltf.FilterNearest {
		result.MagFilter = wgpu.FilterModeNearest
	}

	switch s.MinFilter {
	case gltf.FilterNearest, gltf.FilterNearestMipmapNearest, gltf.FilterNearestMipmapLinear:
		result.MinFilter = wgpu.FilterModeNearest
	}

	// Non-mipmapped filters keep the nearest mipmap filter so level 0 is always sampled.
	switch s.MinFilter {
	case gltf.FilterNearestMipmapLinear, gltf.FilterLinearMipmapLinear:
		result.MipmapFilter = wgpu.MipmapFilterModeLinear
	}

	return result
}

// wrapToAddressMode converts a glTF wrap mode constant to a wgpu AddressMode.
func wrapToAddressMode(wrap int) wgpu.AddressMode {
	switch wrap {
	case gltf.WrapClampToEdge:
		return wgpu.AddressModeClampToEdge
	case gltf.WrapMirroredRepeat:
		return wgpu.AddressModeMirrorRepeat
	default:
		return wgpu.AddressModeRepeat
	}
}

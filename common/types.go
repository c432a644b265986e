// package common contains plain value types shared between engine packages.
package common

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Two textures share a GPU sampler exactly when their staging data is equal.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range in each dimension (U, V, W).
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail (LOD) for mipmapping.
	LodMinClamp, LodMaxClamp float32
	// Compare specifies the comparison function for comparison samplers. Unset for glTF samplers.
	Compare wgpu.CompareFunction
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// SamplerDescriptor converts the staging data into a wgpu sampler descriptor.
//
// Parameters:
//   - label: the debug label of the sampler
//
// Returns:
//   - *wgpu.SamplerDescriptor: the descriptor ready for Device.CreateSampler
func (s *SamplerStagingData) SamplerDescriptor(label string) *wgpu.SamplerDescriptor {
	return &wgpu.SamplerDescriptor{
		Label:         label,
		AddressModeU:  s.AddressModeU,
		AddressModeV:  s.AddressModeV,
		AddressModeW:  s.AddressModeW,
		MagFilter:     s.MagFilter,
		MinFilter:     s.MinFilter,
		MipmapFilter:  s.MipmapFilter,
		LodMinClamp:   s.LodMinClamp,
		LodMaxClamp:   s.LodMaxClamp,
		Compare:       s.Compare,
		MaxAnisotropy: s.MaxAnisotropy,
	}
}

// Key identifies the GPU sampler the staging data creates. Equal staging data yields equal keys.
func (s *SamplerStagingData) Key() string {
	return fmt.Sprintf("sampler-%s-%s-%s-%s-%s-%s-%g-%g-%d-%d",
		s.AddressModeU, s.AddressModeV, s.AddressModeW,
		s.MagFilter, s.MinFilter, s.MipmapFilter,
		s.LodMinClamp, s.LodMaxClamp, s.Compare, s.MaxAnisotropy,
	)
}

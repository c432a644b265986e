package cachekey

// KeyDeriverBuilderOption is a functional option for configuring a KeyDeriver via NewKeyDeriver.
type KeyDeriverBuilderOption func(*keyDeriverImpl)

// WithResolver is an option builder that sets the LocationResolver used for document,
// external buffer and external image locations.
//
// Parameters:
//   - r: the location resolver
//
// Returns:
//   - KeyDeriverBuilderOption: a function that applies the resolver option to a deriver
func WithResolver(r LocationResolver) KeyDeriverBuilderOption {
	return func(d *keyDeriverImpl) {
		if r != nil {
			d.resolver = r
		}
	}
}

// WithImageFormats is an option builder that sets which optional image encodings are
// preferred when a texture offers them.
//
// Parameters:
//   - formats: the supported image formats
//
// Returns:
//   - KeyDeriverBuilderOption: a function that applies the formats option to a deriver
func WithImageFormats(formats ImageFormats) KeyDeriverBuilderOption {
	return func(d *keyDeriverImpl) {
		d.imageFormats = formats
	}
}

// KeyOption selects the load variant of a geometry key. The default variant is a GPU
// buffer and adds no suffix.
type KeyOption func(*keyOptions)

type keyOptions struct {
	typedArray bool
	dequantize bool
}

// WithTypedArray marks the cached object as a CPU typed array instead of a GPU buffer.
func WithTypedArray() KeyOption {
	return func(o *keyOptions) {
		o.typedArray = true
	}
}

// WithDequantize marks decoded draco attributes as dequantized on decode. It only affects
// DracoVertexBufferKey.
func WithDequantize() KeyOption {
	return func(o *keyOptions) {
		o.dequantize = true
	}
}

func newKeyOptions(opts []KeyOption) keyOptions {
	var o keyOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// suffix renders the variant; dequantize only counts for decoded draco attributes.
func (o keyOptions) suffix(draco bool) string {
	s := ""
	if draco && o.dequantize {
		s += "-dequantize"
	}
	if o.typedArray {
		s += "-typed-array"
	}
	return s
}

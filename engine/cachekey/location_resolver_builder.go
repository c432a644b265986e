package cachekey

// LocationResolverBuilderOption is a functional option for configuring a LocationResolver via NewURLResolver.
type LocationResolverBuilderOption func(*urlResolverImpl)

// WithKeepQuery is an option builder that controls whether query strings stay part of a
// resolved URL. Queries usually select a different server response (tileset versions,
// signed URLs), so they are kept by default.
//
// Parameters:
//   - keep: true to keep the query string
//
// Returns:
//   - LocationResolverBuilderOption: a function that applies the option to a resolver
func WithKeepQuery(keep bool) LocationResolverBuilderOption {
	return func(r *urlResolverImpl) {
		r.keepQuery = keep
	}
}

// WithKeepFragment is an option builder that controls whether fragments stay part of a
// resolved URL. Fragments are never sent to a server and are dropped by default.
//
// Parameters:
//   - keep: true to keep the fragment
//
// Returns:
//   - LocationResolverBuilderOption: a function that applies the option to a resolver
func WithKeepFragment(keep bool) LocationResolverBuilderOption {
	return func(r *urlResolverImpl) {
		r.keepFragment = keep
	}
}

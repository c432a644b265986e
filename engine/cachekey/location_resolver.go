package cachekey

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmgilman/go/errors"
)

// urlResolverImpl is the implementation of the LocationResolver interface.
type urlResolverImpl struct {
	keepQuery    bool
	keepFragment bool
}

// LocationResolver turns a reference into the canonical absolute location that identifies
// an external resource. Implementations must be idempotent: resolving an already
// canonical location against any base returns it unchanged.
type LocationResolver interface {
	// Resolve resolves ref against base.
	// An empty ref canonicalizes base itself, which is how document locations are resolved.
	//
	// Parameters:
	//   - base: the location relative references are resolved against (a URL or a filesystem path)
	//   - ref: a relative or absolute reference, or a data: URI
	//
	// Returns:
	//   - string: the canonical absolute location
	//   - error: invalid-input error if neither argument yields an absolute location
	Resolve(base, ref string) (string, error)
}

var _ LocationResolver = &urlResolverImpl{}

// NewURLResolver creates a LocationResolver for URL and filesystem locations.
//
// URL bases (any scheme of two or more characters) follow RFC 3986 reference resolution,
// including dot-segment removal. Non-hierarchical URLs such as blob: and urn: are kept
// as they are and cannot have relative references resolved against them. Any other base
// is a filesystem path: the reference is joined onto the base's directory (the base itself
// when it ends with a separator), made absolute and converted to forward slashes. data:
// URIs are returned unchanged. By default query strings are kept and fragments are
// dropped, for URLs and filesystem paths alike.
//
// Parameters:
//   - options: a variadic list of LocationResolverBuilderOption functions
//
// Returns:
//   - LocationResolver: the configured resolver
func NewURLResolver(options ...LocationResolverBuilderOption) LocationResolver {
	r := &urlResolverImpl{
		keepQuery:    true,
		keepFragment: false,
	}

	for _, option := range options {
		option(r)
	}
	return r
}

func (r *urlResolverImpl) Resolve(base, ref string) (string, error) {
	if base == "" && ref == "" {
		return "", errors.New(errors.CodeInvalidInput, "cannot resolve an empty location")
	}

	if isDataURI(ref) {
		return ref, nil
	}
	if ref == "" && isDataURI(base) {
		return base, nil
	}

	if isURL(ref) {
		return r.resolveURL(ref, "")
	}
	if isURL(base) {
		return r.resolveURL(base, ref)
	}
	return r.resolvePath(base, ref)
}

// resolveURL resolves ref against an absolute URL base and applies the query/fragment policy.
func (r *urlResolverImpl) resolveURL(base, ref string) (string, error) {
	baseURL, err := url.Parse(base)
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeInvalidInput, "invalid base location %q", base)
	}

	var resolved *url.URL
	if ref != "" {
		refURL, err := url.Parse(ref)
		if err != nil {
			return "", errors.Wrapf(err, errors.CodeInvalidInput, "invalid reference %q", ref)
		}
		if baseURL.Opaque != "" {
			return "", errors.Newf(errors.CodeInvalidInput, "cannot resolve %q against non-hierarchical location %q", ref, base)
		}
		resolved = baseURL.ResolveReference(refURL)
	} else {
		// An empty reference keeps the base but still removes dot segments.
		resolved = baseURL.ResolveReference(&url.URL{})
	}

	resolved.Scheme = strings.ToLower(resolved.Scheme)
	resolved.Host = strings.ToLower(resolved.Host)
	if !r.keepQuery {
		resolved.RawQuery = ""
		resolved.ForceQuery = false
	}
	if !r.keepFragment {
		resolved.Fragment = ""
		resolved.RawFragment = ""
	}
	return resolved.String(), nil
}

// resolvePath resolves ref against a filesystem base the way the glTF parser reads sibling files.
// The query and fragment of ref follow the same policy as URLs; those of base only survive
// when ref is empty.
func (r *urlResolverImpl) resolvePath(base, ref string) (string, error) {
	basePath, baseQuery, baseFragment := splitPath(base)

	var joined, query, fragment string
	switch {
	case ref == "":
		joined, query, fragment = basePath, baseQuery, baseFragment
	default:
		var refPath string
		refPath, query, fragment = splitPath(ref)
		switch {
		case filepath.IsAbs(refPath) || basePath == "":
			joined = refPath
		case strings.HasSuffix(basePath, "/") || strings.HasSuffix(basePath, string(os.PathSeparator)):
			joined = filepath.Join(basePath, refPath)
		default:
			joined = filepath.Join(filepath.Dir(basePath), refPath)
		}
	}

	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", errors.Wrapf(err, errors.CodeInvalidInput, "cannot make %q absolute", joined)
	}

	location := filepath.ToSlash(abs)
	if r.keepQuery {
		location += query
	}
	if r.keepFragment {
		location += fragment
	}
	return location, nil
}

// splitPath cuts a filesystem reference into its path, its "?query" and its "#fragment".
func splitPath(s string) (path, query, fragment string) {
	if i := strings.IndexByte(s, '#'); i >= 0 {
		s, fragment = s[:i], s[i:]
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s, query = s[:i], s[i:]
	}
	return s, query, fragment
}

// isURL reports whether s starts with an RFC 3986 scheme followed by ":". Single-letter
// schemes are rejected so Windows drive paths stay filesystem paths.
func isURL(s string) bool {
	i := strings.IndexByte(s, ':')
	if i < 2 {
		return false
	}
	for j, c := range s[:i] {
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case j > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}

func isDataURI(s string) bool {
	return len(s) >= 5 && strings.EqualFold(s[:5], "data:")
}

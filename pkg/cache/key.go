package cache

import (
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
)

// Key represents the identity of a cacheable request: method plus
// normalized URL. Headers are deliberately ignored; the worker only
// caches GET responses and does not vary on request headers.
type Key struct {
	// Method is the HTTP method (normalized to upper case).
	Method string

	// Scheme and Host identify the origin (host normalized to lower case).
	Scheme string
	Host   string

	// Path is the URL path ("/" if empty).
	Path string

	// Query holds the query parameters.
	Query url.Values
}

// NewKey derives a Key from a request. The URL fragment is dropped and
// an empty method is treated as GET, matching net/http semantics.
func NewKey(req *http.Request) Key {
	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	path := req.URL.Path
	if path == "" {
		path = "/"
	}

	return Key{
		Method: method,
		Scheme: strings.ToLower(req.URL.Scheme),
		Host:   strings.ToLower(req.URL.Host),
		Path:   path,
		Query:  req.URL.Query(),
	}
}

// String generates a deterministic key string.
// Format: sw:METHOD:scheme://host/path:query1=val1:query2=val2
//
// Example:
//
//	sw:GET:https://cdn.example.com/img/feed.jpg:w=640
func (k Key) String() string {
	parts := []string{"sw", k.Method, fmt.Sprintf("%s://%s%s", k.Scheme, k.Host, k.Path)}

	// Query params sorted for determinism
	if len(k.Query) > 0 {
		queryKeys := make([]string, 0, len(k.Query))
		for key := range k.Query {
			queryKeys = append(queryKeys, key)
		}
		sort.Strings(queryKeys)

		for _, key := range queryKeys {
			// Repeated parameters all contribute to the identity;
			// /p?a=1 and /p?a=1&a=2 are distinct resources.
			for _, val := range k.Query[key] {
				parts = append(parts, fmt.Sprintf("%s=%s", key, val))
			}
		}
	}

	return strings.Join(parts, ":")
}

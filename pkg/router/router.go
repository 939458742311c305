// Package router decides, per intercepted request, whether the offline
// worker should intervene at all.
//
// Eligibility rules are evaluated in order, short-circuiting on the
// first exclusion:
//
//  1. non-http(s) scheme: pass through (extension and data URLs are
//     never the worker's business)
//  2. non-GET method: pass through (mutating requests must never be
//     intercepted or cached)
//  3. loopback host: pass through (caching must not interfere with
//     local development)
//
// Everything else is eligible and handed to the fetch strategy engine.
package router

import (
	"net"
	"net/http"
	"strings"
)

// Decision is the outcome of eligibility evaluation. Rule names the
// matched rule for logging.
type Decision struct {
	Eligible bool
	Rule     string
}

type rule struct {
	name     string
	excludes func(*http.Request) bool
}

// Rule order is part of the contract: scheme first (cheapest reject),
// method second (safety invariant), dev hosts last.
var rules = []rule{
	{"scheme", func(req *http.Request) bool {
		scheme := strings.ToLower(req.URL.Scheme)
		return scheme != "http" && scheme != "https"
	}},
	{"method", func(req *http.Request) bool {
		return req.Method != "" && req.Method != http.MethodGet
	}},
	{"local-host", func(req *http.Request) bool {
		return IsLoopbackHost(req.URL.Host)
	}},
}

// Evaluate classifies a request. A non-eligible decision means the
// request must be forwarded untouched.
func Evaluate(req *http.Request) Decision {
	for _, r := range rules {
		if r.excludes(req) {
			return Decision{Eligible: false, Rule: r.name}
		}
	}
	return Decision{Eligible: true, Rule: "default"}
}

// IsLoopbackHost reports whether host (optionally host:port) names the
// local machine: "localhost", "*.localhost", or a loopback IP.
func IsLoopbackHost(host string) bool {
	h := host
	if splitHost, _, err := net.SplitHostPort(host); err == nil {
		h = splitHost
	}
	h = strings.ToLower(strings.Trim(h, "[]"))

	if h == "localhost" || strings.HasSuffix(h, ".localhost") {
		return true
	}
	if ip := net.ParseIP(h); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

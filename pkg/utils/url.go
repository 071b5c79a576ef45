package utils

import "net/url"

// IsValidURL reports whether raw parses as an http or https URL with a host.
func IsValidURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// URLEncode escapes s for use inside a URL query.
func URLEncode(s string) string {
	return url.QueryEscape(s)
}

// URLDecode reverses URLEncode. Input that is not valid escaping is returned unchanged.
func URLDecode(s string) string {
	decoded, err := url.QueryUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

package restyutil

import (
	"net/http"
	"regexp"
	"strings"
)

const Redacted = "[REDACTED]"

// headers whose values are credentials, compared case-insensitively
var secretHeaders = map[string]struct{}{
	"x-tableau-auth": {},
	"authorization":  {},
	"cookie":         {},
	"set-cookie":     {},
}

// "password": "...", "token": "..." in json bodies
var secretJsonFields = regexp.MustCompile(`"(password|token|personalAccessTokenSecret)"(\s*):(\s*)"(?:[^"\\]|\\.)*"`)

// password="..." and token="..." in xml bodies
var secretXmlAttrs = regexp.MustCompile(`\b(password|token|personalAccessTokenSecret)=("[^"]*"|'[^']*')`)

// RedactHeaderValue returns the value to print for a header.
func RedactHeaderValue(key, value string) string {
	if value == "" {
		return ""
	}
	if _, ok := secretHeaders[strings.ToLower(key)]; ok {
		return Redacted
	}
	return value
}

// RedactHeaders returns a copy of `headers` with credential values replaced.
func RedactHeaders(headers http.Header) http.Header {
	out := make(http.Header, len(headers))
	for k, vals := range headers {
		redacted := make([]string, len(vals))
		for i, v := range vals {
			redacted[i] = RedactHeaderValue(k, v)
		}
		out[k] = redacted
	}
	return out
}

// RedactBody masks password and token values in json or xml request and
// response bodies.
func RedactBody(body string) string {
	body = secretJsonFields.ReplaceAllString(body, `"$1"$2:$3"`+Redacted+`"`)
	body = secretXmlAttrs.ReplaceAllString(body, `$1="`+Redacted+`"`)
	return body
}

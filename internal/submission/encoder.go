// Package submission turns a validated field set into the outbound redirect.
package submission

import (
	"context"
	"strings"

	"cryptoquote/internal/fields"
)

// Navigator receives the final redirect URL.
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, url string) error

// Navigate calls f.
func (f NavigatorFunc) Navigate(ctx context.Context, url string) error {
	return f(ctx, url)
}

// DefaultBaseURL is the partner checkout the form redirects to.
const DefaultBaseURL = "https://digitalcoinranker.com/"

// Encode serializes every non-empty field as key=value in the defined key
// order. Values are percent-encoded with the same unreserved set as
// ECMAScript encodeURIComponent.
func Encode(set fields.Set) string {
	var b strings.Builder
	set.Each(func(k fields.Key, v string) {
		if v == "" {
			return
		}
		if b.Len() > 0 {
			b.WriteByte('&')
		}
		b.WriteString(string(k))
		b.WriteByte('=')
		b.WriteString(escape(v))
	})
	return b.String()
}

// URL joins baseURL and the encoded query.
func URL(baseURL string, set fields.Set) string {
	return baseURL + "?" + Encode(set)
}

const upperhex = "0123456789ABCDEF"

func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func unreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// Package common holds small shared identifiers and validators needed by
// several otherwise unrelated packages. Keeping them here avoids pulling the
// document model into low level code.
package common

import (
	"fmt"
	"strings"

	"github.com/gosimple/slug"
)

// LoginSlug is the reserved marker authors may use in navigation selections.
// It never corresponds to an authored page; it resolves to the login page
// slug.
const LoginSlug = "__login"

// HomeSlug is the slug of the site root. Its pretty URL is "/".
const HomeSlug = "home"

// loginPageSlug is what the reserved marker resolves to.
const loginPageSlug = "login"

// NormalizeSlug normalizes and validates a page slug.
//
// Slugs are ASCII, lower case, with words separated by single hyphens. The
// reserved login marker resolves to the login page slug.
func NormalizeSlug(in string) (string, error) {
	s := strings.TrimSpace(in)
	if s == "" {
		return "", fmt.Errorf("slug is empty")
	}
	if s == LoginSlug {
		return loginPageSlug, nil
	}

	out := slug.Make(s)
	if out == "" {
		return "", fmt.Errorf("slug %q has no usable characters", in)
	}
	return out, nil
}

// PrettyURL returns the public path for a page slug: "/" for the home page
// and "/<slug>/" for everything else.
func PrettyURL(s string) string {
	if s == HomeSlug {
		return "/"
	}
	return "/" + s + "/"
}

// PrettySlug returns the slug as shown to authors: "/" for the home page and
// the raw slug otherwise.
func PrettySlug(s string) string {
	if s == HomeSlug {
		return "/"
	}
	return s
}

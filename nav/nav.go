// Package nav derives the public navigation payload and the navigation
// builder ordering from the page catalogue.
package nav

import (
	"cmp"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"github.com/maruel/natural"

	"pbc/document"
)

// Entry is one public navigation link.
type Entry struct {
	Title      string `json:"title"`
	Slug       string `json:"slug"`
	URL        string `json:"url"`
	PrettySlug string `json:"pretty_slug"`
	PrettyURL  string `json:"pretty_url"`
}

// Candidate is one selectable page in the navigation builder catalogue.
type Candidate struct {
	Slug  string
	Title string
}

// Item is one builder row: a candidate with its checked state.
type Item struct {
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Checked bool   `json:"checked"`
}

// URLFor returns the public path of a page slug: the site root for the home
// slug, /<slug>/ otherwise.
func URLFor(s string) string {
	if s == "home" {
		return "/"
	}
	return "/" + s + "/"
}

// Entries derives navigation entries from the catalogue: published pages,
// hidden ones excluded unless requested, in catalogue order.
func Entries(docs []*document.PageDocument, includeHidden bool) []Entry {
	entries := make([]Entry, 0, len(docs))
	for _, d := range sortCatalogue(docs) {
		if d.Status != document.StatusPublished {
			continue
		}
		if !includeHidden && !d.IsVisible {
			continue
		}
		entries = append(entries, Entry{
			Title:      d.Title,
			Slug:       d.Slug,
			URL:        URLFor(d.Slug),
			PrettySlug: d.Slug,
			PrettyURL:  URLFor(d.Slug),
		})
	}
	return entries
}

// BuildPayload resolves an ordered slug selection against the entries.
// Empty, duplicate and unknown slugs drop; selection order is kept.
func BuildPayload(entries []Entry, slugs []string) []Entry {
	bySlug := make(map[string]Entry, len(entries))
	for _, e := range entries {
		bySlug[e.Slug] = e
	}
	payload := make([]Entry, 0, len(slugs))
	seen := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		if s == "" || seen[s] {
			continue
		}
		e, ok := bySlug[s]
		if !ok {
			continue
		}
		payload = append(payload, e)
		seen[s] = true
	}
	return payload
}

// For returns the navigation for one page: nothing when the page hides the
// bar, the resolved explicit selection when one is set, the full entry list
// otherwise.
func For(doc *document.PageDocument, entries []Entry) []Entry {
	if !doc.ShowNavigationBar {
		return []Entry{}
	}
	selection := make([]string, 0, len(doc.CustomNavItems))
	for _, s := range doc.CustomNavItems {
		if s != "" {
			selection = append(selection, s)
		}
	}
	if len(selection) > 0 {
		return BuildPayload(entries, selection)
	}
	return slices.Clone(entries)
}

// Candidates lists every page for the builder, drafts included, in catalogue
// order. The page under edit joins the list when the catalogue does not
// carry it yet (it may be unsaved); an empty title shows as "Current page".
func Candidates(docs []*document.PageDocument, currentSlug, currentTitle string) []Candidate {
	ordered := sortCatalogue(docs)
	candidates := make([]Candidate, 0, len(ordered)+1)
	for _, d := range ordered {
		candidates = append(candidates, Candidate{Slug: d.Slug, Title: d.Title})
	}
	current := slug.Make(currentSlug)
	if current == "" {
		return candidates
	}
	for _, c := range candidates {
		if c.Slug == current {
			return candidates
		}
	}
	if currentTitle == "" {
		currentTitle = "Current page"
	}
	return append(candidates, Candidate{Slug: current, Title: currentTitle})
}

// BuilderItems merges the operator's selection with the catalogue: selected
// pages first in selection order, the rest unchecked in catalogue order.
// Selection slugs that match no candidate drop.
func BuilderItems(selected []string, candidates []Candidate) []Item {
	items := make([]Item, 0, len(candidates))
	seen := make(map[string]bool, len(selected))
	for _, raw := range selected {
		norm := normalizeSlug(raw)
		if norm == "" || seen[norm] {
			continue
		}
		for _, c := range candidates {
			if c.Slug == norm {
				items = append(items, Item{Slug: norm, Title: c.Title, Checked: true})
				seen[norm] = true
				break
			}
		}
	}
	for _, c := range candidates {
		if !seen[c.Slug] {
			items = append(items, Item{Slug: c.Slug, Title: c.Title, Checked: false})
		}
	}
	return items
}

// normalizeSlug matches the payload layer's nav item cleanup: slugify with a
// trimmed fallback, the reserved login marker resolves to the login slug.
func normalizeSlug(s string) string {
	if strings.TrimSpace(s) == "__login" {
		return "login"
	}
	if n := slug.Make(s); n != "" {
		return n
	}
	return strings.TrimSpace(s)
}

func sortCatalogue(docs []*document.PageDocument) []*document.PageDocument {
	ordered := slices.Clone(docs)
	slices.SortStableFunc(ordered, func(a, b *document.PageDocument) int {
		if a.NavigationOrder != b.NavigationOrder {
			return cmp.Compare(a.NavigationOrder, b.NavigationOrder)
		}
		switch {
		case a.Title == b.Title:
			return 0
		case natural.Less(a.Title, b.Title):
			return -1
		default:
			return 1
		}
	})
	return ordered
}

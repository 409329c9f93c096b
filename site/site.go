// Package site assembles the site-wide context payload consumed by the
// builder UI and the public page renderer.
package site

import (
	"context"
	"fmt"
	"slices"

	"pbc/config"
)

// Address is the site's street address as it appears in the payload.
type Address struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	PostalCode string `json:"postal_code"`
	City       string `json:"city"`
	State      string `json:"state"`
	Country    string `json:"country"`
}

// Contact groups the public contact channels.
type Contact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
}

// Social carries the site's profile URLs. Every key is always present in
// the payload; unset profiles serialize as empty strings.
type Social struct {
	Facebook   string `json:"facebook"`
	Instagram  string `json:"instagram"`
	Twitter    string `json:"twitter"`
	TikTok     string `json:"tiktok"`
	YouTube    string `json:"youtube"`
	Spotify    string `json:"spotify"`
	SoundCloud string `json:"soundcloud"`
	Bandcamp   string `json:"bandcamp"`
	LinkedIn   string `json:"linkedin"`
	Mastodon   string `json:"mastodon"`
}

// Context is the site payload: organization identity, address, contact
// channels, social profiles and the content languages pages may carry.
type Context struct {
	Name            string   `json:"name"`
	Logo            string   `json:"logo"`
	Address         Address  `json:"address"`
	Contact         Contact  `json:"contact"`
	Social          Social   `json:"social"`
	Languages       []string `json:"languages"`
	DefaultLanguage string   `json:"default_language"`
}

// OptionBacked reports whether the snapshot carries a value behind one
// option of the contact block's checkbox fields: for contact_fields the
// matching contact channel, for social_fields the matching profile URL.
// The builder renders unbacked options disabled and leaves them out of
// "select all". Unknown fields and options report false.
func (c Context) OptionBacked(field, option string) bool {
	switch field {
	case "contact_fields":
		switch option {
		case "address":
			return c.Address.Street != "" || c.Address.City != ""
		case "phone":
			return c.Contact.Phone != ""
		case "email":
			return c.Contact.Email != ""
		case "website":
			return c.Contact.Website != ""
		}
	case "social_fields":
		return c.socialURL(option) != ""
	}
	return false
}

func (c Context) socialURL(option string) string {
	switch option {
	case "facebook":
		return c.Social.Facebook
	case "instagram":
		return c.Social.Instagram
	case "twitter":
		return c.Social.Twitter
	case "tiktok":
		return c.Social.TikTok
	case "youtube":
		return c.Social.YouTube
	case "spotify":
		return c.Social.Spotify
	case "soundcloud":
		return c.Social.SoundCloud
	case "bandcamp":
		return c.Social.Bandcamp
	case "linkedin":
		return c.Social.LinkedIn
	case "mastodon":
		return c.Social.Mastodon
	}
	return ""
}

// LogoResolver resolves an asset identifier to its public URL.
type LogoResolver interface {
	AssetURL(ctx context.Context, id string) (string, error)
}

// BuildContext assembles the site payload from configuration. When a logo
// asset is configured and a resolver is available its URL is looked up;
// without a resolver the logo stays empty.
func BuildContext(ctx context.Context, cfg config.SiteConfig, assets LogoResolver) (Context, error) {
	sc := Context{
		Name: cfg.Name,
		Address: Address{
			Street:     cfg.Address.Street,
			Number:     cfg.Address.Number,
			PostalCode: cfg.Address.PostalCode,
			City:       cfg.Address.City,
			State:      cfg.Address.State,
			Country:    cfg.Address.Country,
		},
		Contact: Contact{
			Email:   cfg.Contact.Email,
			Phone:   cfg.Contact.Phone,
			Website: cfg.Contact.Website,
		},
		Social:          socialFrom(cfg.Social),
		Languages:       languagesFrom(cfg),
		DefaultLanguage: cfg.DefaultLanguage,
	}
	if cfg.LogoAsset != "" && assets != nil {
		url, err := assets.AssetURL(ctx, cfg.LogoAsset)
		if err != nil {
			return Context{}, fmt.Errorf("unable to resolve logo asset %q: %w", cfg.LogoAsset, err)
		}
		sc.Logo = url
	}
	return sc, nil
}

func socialFrom(m map[string]string) Social {
	return Social{
		Facebook:   m["facebook"],
		Instagram:  m["instagram"],
		Twitter:    m["twitter"],
		TikTok:     m["tiktok"],
		YouTube:    m["youtube"],
		Spotify:    m["spotify"],
		SoundCloud: m["soundcloud"],
		Bandcamp:   m["bandcamp"],
		LinkedIn:   m["linkedin"],
		Mastodon:   m["mastodon"],
	}
}

// languagesFrom returns the configured content languages, making sure the
// default language is always part of the list.
func languagesFrom(cfg config.SiteConfig) []string {
	if len(cfg.Languages) == 0 {
		return []string{cfg.DefaultLanguage}
	}
	langs := slices.Clone(cfg.Languages)
	if !slices.Contains(langs, cfg.DefaultLanguage) {
		langs = append([]string{cfg.DefaultLanguage}, langs...)
	}
	return langs
}

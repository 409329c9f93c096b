package schema

// Numeric constraint helper for blueprint literals.
func fp(v float64) *float64 { return &v }

var contactFieldOptions = []Option{
	{Value: "address", Label: "Address"},
	{Value: "phone", Label: "Phone"},
	{Value: "email", Label: "Email"},
	{Value: "website", Label: "Website"},
}

var contactSocialOptions = []Option{
	{Value: "facebook", Label: "Facebook"},
	{Value: "instagram", Label: "Instagram"},
	{Value: "twitter", Label: "Twitter"},
	{Value: "tiktok", Label: "TikTok"},
	{Value: "youtube", Label: "YouTube"},
	{Value: "spotify", Label: "Spotify"},
	{Value: "soundcloud", Label: "SoundCloud"},
	{Value: "bandcamp", Label: "Bandcamp"},
	{Value: "linkedin", Label: "LinkedIn"},
	{Value: "mastodon", Label: "Mastodon"},
}

var alignmentOptions = []Option{
	{Value: "left", Label: "Left"},
	{Value: "center", Label: "Center"},
	{Value: "right", Label: "Right"},
}

// builtinBlueprints is the complete block catalogue. Defaults are the full
// prop set a fresh block starts with; navlinks fields deliberately have no
// default so a fresh block leaves the selection unset.
var builtinBlueprints = []Blueprint{
	{
		Type:  "navigation",
		Label: "Navigation bar",
		Defaults: map[string]any{
			"show_logo":              true,
			"logo_text":              "",
			"logo_text_auto":         true,
			"logo_image":             "",
			"logo_width":             nil,
			"show_language_switcher": true,
			"layout":                 "center",
		},
		Fields: []FieldSpec{
			{Key: "show_logo", Label: "Show logo", Type: FieldTypeToggle},
			{Key: "logo_text", Label: "Logo text", Type: FieldTypeText,
				Help: "Overrides the site name next to the logo."},
			{Key: "logo_image", Label: "Logo image", Type: FieldTypeAsset,
				AssetKinds: []string{"image"}, AllowUpload: true,
				DisabledWhen: &Condition{Key: "show_logo", Value: false}},
			{Key: "logo_width", Label: "Logo width (px)", Type: FieldTypeNumber,
				Min: fp(40), Max: fp(640), Step: fp(1),
				DisabledWhen: &Condition{Key: "show_logo", Value: false}},
			{Key: "show_language_switcher", Label: "Language switcher", Type: FieldTypeToggle},
			{Key: "layout", Label: "Layout", Type: FieldTypeSelect, Options: alignmentOptions},
			{Key: "links", Label: "Links", Type: FieldTypeNavlinks,
				Help: "Leave unset to derive links from the page tree."},
		},
	},
	{
		Type:  "hero",
		Label: "Hero",
		Defaults: map[string]any{
			"title":            "",
			"subtitle":         "",
			"background_image": "",
			"alignment":        "center",
			"overlay":          0.4,
			"actions":          []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeTextarea},
			{Key: "subtitle", Label: "Subtitle", Type: FieldTypeTextarea},
			{Key: "background_image", Label: "Background image", Type: FieldTypeAsset,
				AssetKinds: []string{"image"}, AllowUpload: true},
			{Key: "alignment", Label: "Alignment", Type: FieldTypeSelect, Options: alignmentOptions},
			{Key: "overlay", Label: "Overlay opacity", Type: FieldTypeRange,
				Min: fp(0), Max: fp(1), Step: fp(0.05)},
			{Key: "actions", Label: "Actions", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "href", Label: "Link", Type: FieldTypeUrl},
					{Key: "style", Label: "Style", Type: FieldTypeSelect, Options: []Option{
						{Value: "primary", Label: "Primary"},
						{Value: "secondary", Label: "Secondary"},
					}},
				},
				ItemDefaults: map[string]any{"label": "", "href": "", "style": "primary"}},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:     "rich_text",
		Label:    "Rich text",
		Defaults: map[string]any{"html": ""},
		Fields: []FieldSpec{
			{Key: "html", Label: "Content", Type: FieldTypeTextarea},
		},
	},
	{
		Type:  "events",
		Label: "Events",
		Defaults: map[string]any{
			"title":            "",
			"limit":            6.0,
			"include_internal": false,
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "limit", Label: "Number of events", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(24), Step: fp(1)},
			{Key: "include_internal", Label: "Include internal events", Type: FieldTypeToggle},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "events_compact",
		Label: "Events (compact)",
		Defaults: map[string]any{
			"title":            "",
			"limit":            3.0,
			"include_internal": false,
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "limit", Label: "Number of events", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(12), Step: fp(1)},
			{Key: "include_internal", Label: "Include internal events", Type: FieldTypeToggle},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "events_archive",
		Label: "Event archive",
		Defaults: map[string]any{
			"title":            "",
			"limit":            12.0,
			"include_internal": false,
			"include_past":     false,
			"category_slugs":   []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "limit", Label: "Number of events", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(48), Step: fp(1)},
			{Key: "include_internal", Label: "Include internal events", Type: FieldTypeToggle},
			{Key: "include_past", Label: "Include past events", Type: FieldTypeToggle},
			{Key: "category_slugs", Label: "Categories", Type: FieldTypeSluglist,
				Help: "Leave empty to show all categories."},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "recurring_events",
		Label: "Recurring events",
		Defaults: map[string]any{
			"title":            "",
			"limit":            6.0,
			"occurrence_limit": 6.0,
			"include_internal": false,
			"include_past":     false,
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "limit", Label: "Number of series", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(24), Step: fp(1)},
			{Key: "occurrence_limit", Label: "Occurrences per series", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(12), Step: fp(1)},
			{Key: "include_internal", Label: "Include internal events", Type: FieldTypeToggle},
			{Key: "include_past", Label: "Include past occurrences", Type: FieldTypeToggle},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "news_latest",
		Label: "Latest news",
		Defaults: map[string]any{
			"title":     "",
			"limit":     3.0,
			"category":  "",
			"link_href": "",
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "limit", Label: "Number of posts", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(12), Step: fp(1)},
			{Key: "category", Label: "Category", Type: FieldTypeText,
				Help: "Leave empty to show all categories."},
			{Key: "link_href", Label: "Read-more link", Type: FieldTypeUrl,
				Help: "Defaults to the news index."},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "news_archive",
		Label: "News archive",
		Defaults: map[string]any{
			"title":    "",
			"limit":    6.0,
			"category": "",
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "limit", Label: "Number of posts", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(48), Step: fp(1)},
			{Key: "category", Label: "Category", Type: FieldTypeText},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "menu",
		Label: "Menu",
		Defaults: map[string]any{
			"title":          "",
			"category_slugs": []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "category_slugs", Label: "Categories", Type: FieldTypeSluglist,
				Help: "Leave empty to show the full menu."},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:     "opening_hours",
		Label:    "Opening hours",
		Defaults: map[string]any{"title": ""},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "contact",
		Label: "Contact",
		Defaults: map[string]any{
			"title":          "",
			"contact_fields": []any{"address", "phone", "email", "website"},
			"social_fields":  []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "contact_fields", Label: "Contact details", Type: FieldTypeCheckboxes,
				Options: contactFieldOptions},
			{Key: "social_fields", Label: "Social profiles", Type: FieldTypeCheckboxes,
				Options: contactSocialOptions},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "footer",
		Label: "Footer",
		Defaults: map[string]any{
			"brand_name":             "",
			"brand_tagline":          "",
			"brand_logo":             "",
			"address_html":           "",
			"show_language_switcher": true,
			"links_heading":          "Explore",
			"legal_heading":          "Legal",
			"social_heading":         "Connect",
			"links":                  []any{},
			"legal":                  []any{},
			"social_links":           []any{},
		},
		Fields: []FieldSpec{
			{Key: "brand_name", Label: "Brand name", Type: FieldTypeText,
				Help: "Defaults to the site name."},
			{Key: "brand_tagline", Label: "Tagline", Type: FieldTypeText},
			{Key: "brand_logo", Label: "Logo", Type: FieldTypeAsset,
				AssetKinds: []string{"image"}, AllowUpload: true},
			{Key: "address_html", Label: "Address", Type: FieldTypeTextarea,
				Help: "Defaults to the site address."},
			{Key: "show_language_switcher", Label: "Language switcher", Type: FieldTypeToggle},
			{Key: "links_heading", Label: "Links heading", Type: FieldTypeText},
			{Key: "links", Label: "Links", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "href", Label: "Link", Type: FieldTypeUrl},
					{Key: "new_tab", Label: "Open in new tab", Type: FieldTypeToggle},
				},
				ItemDefaults: map[string]any{"label": "", "href": "", "new_tab": false}},
			{Key: "legal_heading", Label: "Legal heading", Type: FieldTypeText},
			{Key: "legal", Label: "Legal links", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "href", Label: "Link", Type: FieldTypeUrl},
					{Key: "new_tab", Label: "Open in new tab", Type: FieldTypeToggle},
				},
				ItemDefaults: map[string]any{"label": "", "href": "", "new_tab": false}},
			{Key: "social_heading", Label: "Social heading", Type: FieldTypeText},
			{Key: "social_links", Label: "Social links", Type: FieldTypeList,
				Help: "Leave empty to derive from the site settings.",
				ItemFields: []FieldSpec{
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "href", Label: "Link", Type: FieldTypeUrl},
					{Key: "new_tab", Label: "Open in new tab", Type: FieldTypeToggle},
				},
				ItemDefaults: map[string]any{"label": "", "href": "", "new_tab": true}},
		},
	},
	{
		Type:  "gallery",
		Label: "Gallery",
		Defaults: map[string]any{
			"title": "",
			"items": []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "items", Label: "Images", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "image", Label: "Image", Type: FieldTypeAsset,
						AssetKinds: []string{"image"}, AllowUpload: true},
					{Key: "caption", Label: "Caption", Type: FieldTypeText},
					{Key: "alt", Label: "Alt text", Type: FieldTypeText},
				},
				ItemDefaults: map[string]any{"image": "", "caption": "", "alt": ""}},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "media_carousel",
		Label: "Media carousel",
		Defaults: map[string]any{
			"title":             "",
			"items":             []any{},
			"autoplay":          false,
			"autoplay_interval": 6.0,
			"show_thumbnails":   true,
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "items", Label: "Slides", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "asset", Label: "Media", Type: FieldTypeAsset,
						AssetKinds: []string{"image", "video"}, AllowUpload: true},
					{Key: "caption", Label: "Caption", Type: FieldTypeText},
					{Key: "description", Label: "Description", Type: FieldTypeTextarea},
					{Key: "cta_label", Label: "Button label", Type: FieldTypeText},
					{Key: "cta_url", Label: "Button link", Type: FieldTypeUrl},
				},
				ItemDefaults: map[string]any{
					"asset": nil, "caption": "", "description": "",
					"cta_label": "", "cta_url": "",
				}},
			{Key: "autoplay", Label: "Autoplay", Type: FieldTypeToggle},
			{Key: "autoplay_interval", Label: "Autoplay interval (s)", Type: FieldTypeNumber,
				Min: fp(3), Max: fp(60), Step: fp(1),
				DisabledWhen: &Condition{Key: "autoplay", Value: false}},
			{Key: "show_thumbnails", Label: "Show thumbnails", Type: FieldTypeToggle},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "media_player",
		Label: "Media player",
		Defaults: map[string]any{
			"title":          "",
			"items":          []any{},
			"layout":         "list",
			"show_downloads": false,
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "items", Label: "Media", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "asset", Label: "Media", Type: FieldTypeAsset,
						AssetKinds: []string{"audio", "video"}, AllowUpload: true},
					{Key: "title", Label: "Title", Type: FieldTypeText},
					{Key: "description", Label: "Description", Type: FieldTypeTextarea},
				},
				ItemDefaults: map[string]any{"asset": nil, "title": "", "description": ""}},
			{Key: "layout", Label: "Layout", Type: FieldTypeSelect, Options: []Option{
				{Value: "list", Label: "List"},
				{Value: "grid", Label: "Grid"},
			}},
			{Key: "show_downloads", Label: "Show download buttons", Type: FieldTypeToggle},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "download_list",
		Label: "Download list",
		Defaults: map[string]any{
			"title":      "",
			"items":      []any{},
			"show_icons": true,
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "items", Label: "Files", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "asset", Label: "File", Type: FieldTypeAsset, AllowUpload: true},
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "description", Label: "Description", Type: FieldTypeTextarea},
					{Key: "button_label", Label: "Button label", Type: FieldTypeText},
				},
				ItemDefaults: map[string]any{
					"asset": nil, "label": "", "description": "", "button_label": "Download",
				}},
			{Key: "show_icons", Label: "Show file icons", Type: FieldTypeToggle},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "inventory",
		Label: "Inventory",
		Defaults: map[string]any{
			"title":          "",
			"category_slugs": []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "category_slugs", Label: "Categories", Type: FieldTypeSluglist,
				Help: "Leave empty to show everything marked public."},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
	{
		Type:  "map",
		Label: "Map",
		Defaults: map[string]any{
			"title":            "",
			"auto_location":    true,
			"latitude":         nil,
			"longitude":        nil,
			"zoom":             15.0,
			"address_override": "",
			"transport_items":  []any{},
			"parking_items":    []any{},
		},
		Fields: []FieldSpec{
			{Key: "title", Label: "Title", Type: FieldTypeText},
			{Key: "auto_location", Label: "Use site address", Type: FieldTypeToggle},
			{Key: "latitude", Label: "Latitude", Type: FieldTypeNumber,
				Min: fp(-90), Max: fp(90),
				DisabledWhen: &Condition{Key: "auto_location", Value: true}},
			{Key: "longitude", Label: "Longitude", Type: FieldTypeNumber,
				Min: fp(-180), Max: fp(180),
				DisabledWhen: &Condition{Key: "auto_location", Value: true}},
			{Key: "zoom", Label: "Zoom", Type: FieldTypeNumber,
				Min: fp(1), Max: fp(20), Step: fp(1)},
			{Key: "address_override", Label: "Address override", Type: FieldTypeText,
				Help: "Shown instead of the site address in the map search link."},
			{Key: "transport_items", Label: "Public transport", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "details", Label: "Details", Type: FieldTypeText},
				},
				ItemDefaults: map[string]any{"label": "", "details": ""}},
			{Key: "parking_items", Label: "Parking", Type: FieldTypeList,
				ItemFields: []FieldSpec{
					{Key: "label", Label: "Label", Type: FieldTypeText},
					{Key: "details", Label: "Details", Type: FieldTypeText},
				},
				ItemDefaults: map[string]any{"label": "", "details": ""}},
		},
		StyleTargets: []StyleTarget{{Key: "title", Label: "Title"}},
	},
}

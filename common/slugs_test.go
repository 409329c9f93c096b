package common

import "testing"

func TestNormalizeSlug(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"empty", "", "", true},
		{"spaces only", "   ", "", true},
		{"already clean", "opening-hours", "opening-hours", false},
		{"mixed case", "Opening Hours", "opening-hours", false},
		{"unicode transliterated", "Über uns", "uber-uns", false},
		{"login marker resolves", LoginSlug, "login", false},
		{"punctuation only", "!!!", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeSlug(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NormalizeSlug(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NormalizeSlug(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrettyURL(t *testing.T) {
	tests := []struct {
		slug string
		want string
	}{
		{HomeSlug, "/"},
		{"login", "/login/"},
		{"events", "/events/"},
		{"opening-hours", "/opening-hours/"},
	}

	for _, tt := range tests {
		if got := PrettyURL(tt.slug); got != tt.want {
			t.Errorf("PrettyURL(%q) = %q, want %q", tt.slug, got, tt.want)
		}
	}
}

func TestPrettySlug(t *testing.T) {
	if got := PrettySlug(HomeSlug); got != "/" {
		t.Errorf("PrettySlug(home) = %q, want /", got)
	}
	if got := PrettySlug("menu"); got != "menu" {
		t.Errorf("PrettySlug(menu) = %q, want menu", got)
	}
}

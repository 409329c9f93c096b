package editor_test

import (
	"reflect"
	"testing"

	"pbc/editor"
	"pbc/schema"
)

func TestSessionCommit(t *testing.T) {
	reg := schema.NewRegistry()
	block := mustBlock(t, reg, "rich_text")

	var changes []schema.Block
	s := editor.NewSession(reg, block, "html")
	s.OnChange = func(b schema.Block) { changes = append(changes, b) }

	got, changed := s.Commit(`<script>alert(1)</script><b style="color:red;position:fixed">hi</b>`)
	if !changed {
		t.Fatal("first commit reported no change")
	}
	want := `alert(1)<b style="color: red">hi</b>`
	if got.Props["html"] != want {
		t.Errorf("html = %q, want %q", got.Props["html"], want)
	}
	if len(changes) != 1 {
		t.Fatalf("OnChange fired %d times, want 1", len(changes))
	}
	if changes[0].Props["html"] != want {
		t.Errorf("OnChange saw %q", changes[0].Props["html"])
	}
	if block.Props["html"] != "" {
		t.Errorf("caller's block mutated: %q", block.Props["html"])
	}

	// Committing markup that sanitizes to the same value is a no-op.
	got, changed = s.Commit(`alert(1)<b style="color: red">hi</b>`)
	if changed {
		t.Error("identical commit reported a change")
	}
	if got.Props["html"] != want {
		t.Errorf("block drifted on no-op commit: %q", got.Props["html"])
	}
	if len(changes) != 1 {
		t.Errorf("OnChange fired %d times after no-op, want still 1", len(changes))
	}

	got, changed = s.Commit(`<p>neu</p>`)
	if !changed || got.Props["html"] != "<p>neu</p>" {
		t.Errorf("second edit: changed=%v html=%q", changed, got.Props["html"])
	}
	if len(changes) != 2 {
		t.Errorf("OnChange fired %d times, want 2", len(changes))
	}
}

func TestSessionCommitLogoText(t *testing.T) {
	reg := schema.NewRegistry()
	nav := mustBlock(t, reg, "navigation")

	s := editor.NewSession(reg, nav, "logo_text")
	got, changed := s.Commit("Club Mitte")
	if !changed {
		t.Fatal("commit reported no change")
	}
	if got.Props["logo_text"] != "Club Mitte" {
		t.Errorf("logo_text = %v", got.Props["logo_text"])
	}
	if got.Props["logo_text_auto"] != false {
		t.Errorf("logo_text_auto = %v, want false", got.Props["logo_text_auto"])
	}
}

func TestSessionBlockIsolation(t *testing.T) {
	reg := schema.NewRegistry()
	s := editor.NewSession(reg, mustBlock(t, reg, "rich_text"), "html")
	s.Commit("<p>a</p>")

	view := s.Block()
	view.Props["html"] = "tampered"
	if got := s.Block().Props["html"]; got != "<p>a</p>" {
		t.Errorf("session state leaked through Block(): %q", got)
	}
}

func TestSessionFontUsage(t *testing.T) {
	reg := schema.NewRegistry()
	block := mustBlock(t, reg, "rich_text")
	block.ID = "b-1"

	tracker := editor.NewUsageTracker(func(f string) bool { return f == "CMSFont-ab12cd34ef" })
	s := editor.NewSession(reg, block, "html")
	s.Fonts = tracker

	s.Commit(`<span style="font-family: 'CMSFont-ab12cd34ef', sans-serif">x</span>`)
	if got := tracker.Fonts("b-1"); !reflect.DeepEqual(got, []string{"CMSFont-ab12cd34ef"}) {
		t.Errorf("Fonts = %v", got)
	}

	// Content without registry fonts clears the annotation.
	s.Commit(`<p>plain</p>`)
	if got := tracker.Fonts("b-1"); got != nil {
		t.Errorf("Fonts after plain commit = %v, want nil", got)
	}
}

func TestUsageTracker(t *testing.T) {
	known := map[string]bool{"CMSFont-a": true, "Grotesk Web": true}
	tr := editor.NewUsageTracker(func(f string) bool { return known[f] })

	tr.Record("b1", "html", `<span style="font-family: CMSFont-a">x</span>`)
	tr.Record("b1", "caption", `<span style="font-family: 'Grotesk Web', Arial">y</span>`)
	if got := tr.Fonts("b1"); !reflect.DeepEqual(got, []string{"CMSFont-a", "Grotesk Web"}) {
		t.Errorf("Fonts = %v", got)
	}

	// Unknown families never record.
	tr.Record("b2", "html", `<span style="font-family: Arial, sans-serif">z</span>`)
	if got := tr.Fonts("b2"); got != nil {
		t.Errorf("Fonts(b2) = %v, want nil", got)
	}

	// Both fields referencing one family dedupe.
	tr.Record("b1", "caption", `<span style="font-family: CMSFont-a">y</span>`)
	if got := tr.Fonts("b1"); !reflect.DeepEqual(got, []string{"CMSFont-a"}) {
		t.Errorf("Fonts after dedupe = %v", got)
	}

	tr.Forget("b1")
	if got := tr.Fonts("b1"); got != nil {
		t.Errorf("Fonts after Forget = %v", got)
	}

	// nil matcher counts every family.
	all := editor.NewUsageTracker(nil)
	all.Record("b3", "html", `<span style="font-family: Anything">x</span>`)
	if got := all.Fonts("b3"); !reflect.DeepEqual(got, []string{"Anything"}) {
		t.Errorf("Fonts with nil matcher = %v", got)
	}
}

func TestWidthOverride(t *testing.T) {
	cases := []struct {
		name               string
		natural, requested int
		minWidth, maxWidth int
		want               int
		ok                 bool
	}{
		{"plain resize", 800, 500, 40, 0, 500, true},
		{"near natural clears", 800, 798, 40, 0, 0, false},
		{"exactly natural clears", 800, 800, 40, 0, 0, false},
		{"clamps to minimum", 800, 10, 40, 0, 40, true},
		{"clamps to maximum", 800, 2000, 40, 1200, 1200, true},
		{"clamped result near natural clears", 44, 10, 40, 0, 0, false},
		{"unknown natural never clears", 0, 42, 40, 0, 42, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := editor.WidthOverride(tc.natural, tc.requested, tc.minWidth, tc.maxWidth)
			if got != tc.want || ok != tc.ok {
				t.Errorf("WidthOverride(%d, %d, %d, %d) = (%d, %v), want (%d, %v)",
					tc.natural, tc.requested, tc.minWidth, tc.maxWidth, got, ok, tc.want, tc.ok)
			}
		})
	}
}

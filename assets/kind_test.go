package assets_test

import (
	"testing"

	"pbc/assets"
)

func TestInferKind(t *testing.T) {
	for _, tc := range []struct {
		name     string
		filename string
		mime     string
		hasText  bool
		want     assets.Kind
	}{
		{"text_note", "whatever.png", "image/png", true, assets.KindNote},
		{"mime_image", "x", "image/png", false, assets.KindImage},
		{"mime_video", "x", "video/mp4", false, assets.KindVideo},
		{"mime_audio", "x", "audio/mpeg", false, assets.KindAudio},
		{"mime_font", "x", "font/woff2", false, assets.KindFont},
		{"mime_font_legacy", "x", "application/font-woff", false, assets.KindFont},
		{"mime_pdf", "x", "application/pdf", false, assets.KindPdf},
		{"mime_doc", "x", "application/vnd.openxmlformats-officedocument.wordprocessingml.document", false, assets.KindDoc},
		{"mime_archive", "x", "application/x-7z-compressed", false, assets.KindArchive},
		{"mime_wins_over_ext", "song.png", "audio/mpeg", false, assets.KindAudio},
		{"ext_font", "body.woff", "", false, assets.KindFont},
		{"ext_image", "logo.svg", "", false, assets.KindImage},
		{"ext_image_upper", "PHOTO.JPG", "", false, assets.KindImage},
		{"ext_video", "clip.mov", "", false, assets.KindVideo},
		{"ext_audio", "track.flac", "", false, assets.KindAudio},
		{"ext_pdf", "flyer.pdf", "", false, assets.KindPdf},
		{"ext_doc", "notes.odt", "", false, assets.KindDoc},
		{"ext_archive", "dump.7z", "", false, assets.KindArchive},
		{"unknown_mime_known_ext", "photo.webp", "application/x-whatever", false, assets.KindImage},
		{"nothing_known", "mystery.bin", "", false, assets.KindOther},
		{"empty", "", "", false, assets.KindOther},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := assets.InferKind(tc.filename, tc.mime, tc.hasText); got != tc.want {
				t.Errorf("InferKind(%q, %q, %v) = %s, want %s", tc.filename, tc.mime, tc.hasText, got, tc.want)
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	k, err := assets.ParseKind("archive")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k != assets.KindArchive {
		t.Errorf("ParseKind(archive) = %s", k)
	}
	if _, err := assets.ParseKind("banana"); err == nil {
		t.Error("ParseKind(banana) accepted")
	}
	if !assets.KindFont.IsValid() {
		t.Error("font considered invalid")
	}
	if assets.Kind("banana").IsValid() {
		t.Error("banana considered valid")
	}
}

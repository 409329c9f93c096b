package archive_test

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pbc/archive"
)

func writeBundle(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, body := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(body)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	path := filepath.Join(t.TempDir(), "bundle.zip")
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
	return path
}

var bundleEntries = map[string]string{
	"index.html":          "<!doctype html><title>Home</title>",
	"theme.css":           "body { color: #111111; }",
	"fonts/cmsfont.woff2": "not really a font",
	"manifest.xml":        "<manifest/>",
}

func TestWalk_PrefixFilter(t *testing.T) {
	path := writeBundle(t, bundleEntries)

	var seen []string
	err := archive.Walk(path, "fonts/", func(bundle string, e archive.Entry) error {
		if bundle != path {
			t.Errorf("bundle path = %s, want %s", bundle, path)
		}
		seen = append(seen, e.Name)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk: %v", err)
	}
	if len(seen) != 1 || seen[0] != "fonts/cmsfont.woff2" {
		t.Errorf("prefix walk visited %v", seen)
	}
}

func TestWalk_RejectsTraversal(t *testing.T) {
	for _, name := range []string{"../outside.html", "/etc/passwd", `\windows`} {
		path := writeBundle(t, map[string]string{name: "x"})
		err := archive.Walk(path, "", func(string, archive.Entry) error { return nil })
		if err == nil || !strings.Contains(err.Error(), "unsafe path") {
			t.Errorf("entry %q: err = %v, want unsafe path", name, err)
		}
	}
}

func TestReadFile(t *testing.T) {
	path := writeBundle(t, bundleEntries)

	data, err := archive.ReadFile(path, "theme.css")
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != bundleEntries["theme.css"] {
		t.Errorf("payload = %q", data)
	}

	if _, err := archive.ReadFile(path, "missing.css"); err == nil {
		t.Error("missing entry did not error")
	}
}

func TestVerify(t *testing.T) {
	path := writeBundle(t, bundleEntries)

	count, err := archive.Verify(path)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if count != len(bundleEntries) {
		t.Errorf("verified %d entries, want %d", count, len(bundleEntries))
	}
}

func TestVerify_DamagedPayload(t *testing.T) {
	path := writeBundle(t, bundleEntries)

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// flip bytes in the middle of the file, keeping central directory intact
	for i := len(data) / 4; i < len(data)/4+8; i++ {
		data[i] ^= 0xff
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := archive.Verify(path); err == nil {
		t.Error("damaged bundle passed verification")
	}
}

// Package archive inspects finished page bundles (zip) without extracting
// them: walking entries, reading single members and verifying that every
// payload decompresses cleanly.
package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"path"
	"strings"
)

// Entry is one bundle member visited by Walk.
type Entry struct {
	Name string
	Size uint64

	file *zip.File
}

// Open returns a reader over the entry payload. The caller must close it.
func (e Entry) Open() (io.ReadCloser, error) {
	return e.file.Open()
}

// WalkFunc is called for every matching file entry. Returning an error stops
// the walk.
type WalkFunc func(bundle string, e Entry) error

// Walk visits all file entries of the bundle whose names start with prefix
// (an empty prefix visits everything). Entries that could escape an
// extraction directory - absolute names or names with ".." components -
// fail the walk: a bundle we produced never contains them.
func Walk(bundle, prefix string, walkFn WalkFunc) error {
	r, err := zip.OpenReader(bundle)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		name := f.FileHeader.Name
		if !isSafePath(name) {
			return fmt.Errorf("bundle entry %q: unsafe path (absolute or contains path traversal)", name)
		}
		if f.FileInfo().IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if err := walkFn(bundle, Entry{Name: name, Size: f.UncompressedSize64, file: f}); err != nil {
			return err
		}
	}
	return nil
}

// ReadFile returns the payload of a single named bundle member.
func ReadFile(bundle, name string) ([]byte, error) {
	var data []byte
	found := false
	err := Walk(bundle, name, func(_ string, e Entry) error {
		if e.Name != name || found {
			return nil
		}
		found = true
		rc, err := e.Open()
		if err != nil {
			return err
		}
		defer rc.Close()
		data, err = io.ReadAll(rc)
		return err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("bundle has no entry %q", name)
	}
	return data, nil
}

// Verify reads every file entry end to end, so truncated payloads and CRC
// mismatches surface, and returns the number of entries checked.
func Verify(bundle string) (int, error) {
	count := 0
	err := Walk(bundle, "", func(_ string, e Entry) error {
		rc, err := e.Open()
		if err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
		defer rc.Close()
		if _, err := io.Copy(io.Discard, rc); err != nil {
			return fmt.Errorf("entry %q: %w", e.Name, err)
		}
		count++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// isSafePath returns false for entry names that could escape the extraction
// directory.
func isSafePath(name string) bool {
	if path.IsAbs(name) || strings.HasPrefix(name, "/") || strings.HasPrefix(name, `\`) {
		return false
	}
	for _, part := range strings.Split(name, "/") {
		if part == ".." {
			return false
		}
	}
	return true
}

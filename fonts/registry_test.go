package fonts_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"pbc/fonts"
)

func countingSource(calls *atomic.Int32) fonts.SourceFunc {
	return func(_ context.Context, id string) (fonts.FontAsset, error) {
		calls.Add(1)
		return fonts.FontAsset{
			ID:     id,
			URL:    "/media/fonts/" + id + ".woff2",
			Format: fonts.FontFormatWoff2,
		}, nil
	}
}

func TestRegistry_CacheHit(t *testing.T) {
	var calls atomic.Int32
	reg := fonts.NewRegistry(countingSource(&calls), 0, nil)

	first, err := reg.Asset(context.Background(), "17")
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	second, err := reg.Asset(context.Background(), "17")
	if err != nil {
		t.Fatalf("Asset: %v", err)
	}
	if first != second {
		t.Errorf("cached asset differs: %+v vs %+v", first, second)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestRegistry_EmptyID(t *testing.T) {
	var calls atomic.Int32
	reg := fonts.NewRegistry(countingSource(&calls), 0, nil)
	if _, err := reg.Asset(context.Background(), ""); err == nil {
		t.Error("empty id accepted")
	}
	if calls.Load() != 0 {
		t.Error("empty id reached the source")
	}
}

// Concurrent lookups of one ID must share a single upstream fetch.
func TestRegistry_ConcurrentLookupsShareFetch(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	src := fonts.SourceFunc(func(_ context.Context, id string) (fonts.FontAsset, error) {
		calls.Add(1)
		<-release
		return fonts.FontAsset{ID: id, URL: "/media/fonts/x.woff2", Format: fonts.FontFormatWoff2}, nil
	})
	reg := fonts.NewRegistry(src, 0, nil)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := reg.Asset(context.Background(), "17"); err != nil {
				t.Errorf("Asset: %v", err)
			}
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("upstream calls = %d, want 1", got)
	}
}

func TestRegistry_EvictsOldest(t *testing.T) {
	var calls atomic.Int32
	perID := make(map[string]int)
	var mu sync.Mutex
	src := fonts.SourceFunc(func(_ context.Context, id string) (fonts.FontAsset, error) {
		calls.Add(1)
		mu.Lock()
		perID[id]++
		mu.Unlock()
		return fonts.FontAsset{ID: id, URL: "/f/" + id, Format: fonts.FontFormatWoff}, nil
	})
	reg := fonts.NewRegistry(src, 2, nil)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		if _, err := reg.Asset(ctx, id); err != nil {
			t.Fatalf("Asset(%s): %v", id, err)
		}
	}
	// "a" was evicted when "c" came in; "c" is still cached.
	if _, err := reg.Asset(ctx, "c"); err != nil {
		t.Fatalf("Asset(c): %v", err)
	}
	if _, err := reg.Asset(ctx, "a"); err != nil {
		t.Fatalf("Asset(a): %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if perID["a"] != 2 {
		t.Errorf("fetches for a = %d, want 2 (evicted and refetched)", perID["a"])
	}
	if perID["c"] != 1 {
		t.Errorf("fetches for c = %d, want 1 (still cached)", perID["c"])
	}
}

func TestRegistry_ErrorsNotCached(t *testing.T) {
	var calls atomic.Int32
	src := fonts.SourceFunc(func(_ context.Context, id string) (fonts.FontAsset, error) {
		if calls.Add(1) == 1 {
			return fonts.FontAsset{}, errors.New("upstream down")
		}
		return fonts.FontAsset{ID: id, URL: "/f/" + id, Format: fonts.FontFormatWoff}, nil
	})
	reg := fonts.NewRegistry(src, 0, nil)
	ctx := context.Background()

	if _, err := reg.Asset(ctx, "17"); err == nil {
		t.Fatal("expected first fetch to fail")
	}
	asset, err := reg.Asset(ctx, "17")
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if asset.ID != "17" {
		t.Errorf("asset = %+v", asset)
	}
	if calls.Load() != 2 {
		t.Errorf("upstream calls = %d, want 2", calls.Load())
	}
}

func TestRegistry_Face(t *testing.T) {
	var calls atomic.Int32
	reg := fonts.NewRegistry(countingSource(&calls), 0, nil)

	face, err := reg.Face(context.Background(), "17")
	if err != nil {
		t.Fatalf("Face: %v", err)
	}
	if !strings.HasPrefix(face.Family, "CMSFont-") {
		t.Errorf("family = %q", face.Family)
	}
	if face.URL != "/media/fonts/17.woff2" || face.Format != "woff2" {
		t.Errorf("face = %+v", face)
	}
}

func TestRegistry_FaceRejectsEmptyURL(t *testing.T) {
	src := fonts.SourceFunc(func(_ context.Context, id string) (fonts.FontAsset, error) {
		return fonts.FontAsset{ID: id}, nil
	})
	reg := fonts.NewRegistry(src, 0, nil)
	if _, err := reg.Face(context.Background(), "17"); err == nil {
		t.Error("asset without url produced a face")
	}
}

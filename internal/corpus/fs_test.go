package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/wikirank/wikirank/pkg/errors"
)

func writeDataset(t *testing.T, dir string, pages map[string]struct {
	words string
	links []string
}) {
	t.Helper()
	for _, sub := range []string{"Words", "Links"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			t.Fatal(err)
		}
	}
	for name, page := range pages {
		if err := os.WriteFile(filepath.Join(dir, "Words", name), []byte(page.words), 0o644); err != nil {
			t.Fatal(err)
		}
		links := ""
		for _, l := range page.links {
			links += l + "\n"
		}
		if err := os.WriteFile(filepath.Join(dir, "Links", name), []byte(links), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestFSSourceLoad(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, filepath.Join(root, "Guitars"), map[string]struct {
		words string
		links []string
	}{
		"Electric_guitar": {
			words: "electric guitar pickups amplifier",
			links: []string{"/wiki/Guitar_amplifier", "/wiki/Pickup_%28music%29"},
		},
		"Guitar_amplifier": {
			words: "guitar amplifier tube",
			links: []string{"/wiki/Electric_guitar"},
		},
	})

	docs, err := NewFSSource(root, "Guitars").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("loaded %d docs, want 2", len(docs))
	}

	// sorted by decoded title
	if docs[0].Title != "Electric_guitar" || docs[1].Title != "Guitar_amplifier" {
		t.Errorf("titles = %q, %q; want sorted Electric_guitar, Guitar_amplifier",
			docs[0].Title, docs[1].Title)
	}

	eg := docs[0]
	if len(eg.Words) != 4 || eg.Words[0] != "electric" {
		t.Errorf("words = %v, want 4 tokens starting with \"electric\"", eg.Words)
	}
	if len(eg.Links) != 2 {
		t.Fatalf("links = %v, want 2", eg.Links)
	}
	if eg.Links[0] != "Guitar_amplifier" {
		t.Errorf("link[0] = %q, want prefix stripped", eg.Links[0])
	}
	if eg.Links[1] != "Pickup_(music)" {
		t.Errorf("link[1] = %q, want URL-decoded Pickup_(music)", eg.Links[1])
	}
}

func TestFSSourceDecodesTitles(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, filepath.Join(root, "ds"), map[string]struct {
		words string
		links []string
	}{
		"Pickup_%28music%29": {words: "pickup coil"},
	})

	docs, err := NewFSSource(root, "ds").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if docs[0].Title != "Pickup_(music)" {
		t.Errorf("title = %q, want decoded Pickup_(music)", docs[0].Title)
	}
}

func TestFSSourceSkipsBlankLinkLines(t *testing.T) {
	root := t.TempDir()
	writeDataset(t, filepath.Join(root, "ds"), map[string]struct {
		words string
		links []string
	}{
		"Page": {words: "text", links: []string{"/wiki/Target", "", ""}},
	})

	docs, err := NewFSSource(root, "ds").Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(docs[0].Links) != 1 {
		t.Errorf("links = %v, want only the non-blank line", docs[0].Links)
	}
}

func TestFSSourceMissingDataset(t *testing.T) {
	_, err := NewFSSource(t.TempDir(), "nope").Load(context.Background())
	if !errors.Is(err, apperrors.ErrDatasetNotFound) {
		t.Errorf("err = %v, want ErrDatasetNotFound", err)
	}
}

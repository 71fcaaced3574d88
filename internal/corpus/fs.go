package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "github.com/wikirank/wikirank/pkg/errors"
)

const wikiPrefix = "/wiki/"

// FSSource reads a dataset directory: one file per page under Words/ with
// the cleaned body text, and a matching file under Links/ with one outgoing
// href per line. File names and link lines are URL-escaped page titles.
type FSSource struct {
	dir    string
	logger *slog.Logger
}

// NewFSSource creates a source for datasets/<dataset> under dataDir.
func NewFSSource(dataDir, dataset string) *FSSource {
	return &FSSource{
		dir:    filepath.Join(dataDir, dataset),
		logger: slog.Default().With("component", "fs-corpus", "dataset", dataset),
	}
}

// Load reads every page of the dataset, sorted by decoded title.
func (s *FSSource) Load(ctx context.Context) ([]Document, error) {
	wordsDir := filepath.Join(s.dir, "Words")
	entries, err := os.ReadDir(wordsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.ErrDatasetNotFound, 404, "no dataset at %s", s.dir)
		}
		return nil, fmt.Errorf("reading words directory %s: %w", wordsDir, err)
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		doc, err := s.loadPage(entry.Name())
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	sort.Slice(docs, func(i, j int) bool { return docs[i].Title < docs[j].Title })
	s.logger.Info("corpus loaded", "pages", len(docs))
	return docs, nil
}

func (s *FSSource) loadPage(name string) (Document, error) {
	wordsPath := filepath.Join(s.dir, "Words", name)
	raw, err := os.ReadFile(wordsPath)
	if err != nil {
		return Document{}, fmt.Errorf("reading page text %s: %w", wordsPath, err)
	}

	linksPath := filepath.Join(s.dir, "Links", name)
	rawLinks, err := os.ReadFile(linksPath)
	if err != nil {
		return Document{}, fmt.Errorf("reading page links %s: %w", linksPath, err)
	}

	links := make([]string, 0)
	for _, line := range strings.Split(string(rawLinks), "\n") {
		if len(line) <= 1 {
			continue
		}
		links = append(links, unescape(strings.TrimPrefix(line, wikiPrefix)))
	}

	return Document{
		Title: unescape(name),
		Words: strings.Fields(string(raw)),
		Links: links,
	}, nil
}

// unescape decodes a URL-escaped page title, falling back to the raw string
// for titles that are not valid escapes.
func unescape(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

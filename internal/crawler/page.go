package crawler

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const wikiPrefix = "/wiki/"

var (
	bracketRE  = regexp.MustCompile(`\[[^\]]*\]`)
	nonAlnumRE = regexp.MustCompile(`[^a-zA-Z0-9]+`)

	hatnotePhrases = []string{
		"This article is about",
		"redirects here",
		"(disambiguation)",
		"Not to be confused",
	}

	skippedNamespaces = []string{"File:", "Help:", "Portal:", "Special:", "Wikipedia:"}
)

// ParsedPage is the cleaned body of one wiki article: the lowercase token
// sequence of its prose and the decoded titles of its outgoing wiki links.
type ParsedPage struct {
	Words []string
	Links []string
}

// ParsePage extracts the article body from raw wiki HTML. Navigation
// chrome (hatnotes, table of contents, infobox, maintenance boxes, style
// tags) is dropped, the Notes/References sections and everything after them
// are cut off, the remaining text is lowercased with non-alphanumerics
// collapsed to spaces, and outgoing /wiki/ links are collected with
// namespace pages and fragments stripped.
func ParsePage(r io.Reader) (*ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}

	content := doc.Find("div.mw-parser-output").First()
	if content.Length() == 0 {
		return nil, fmt.Errorf("no article body found")
	}

	truncateAtHeadline(content, "Notes")
	truncateAtHeadline(content, "References")

	content.Find("div.hatnote").Each(func(_ int, s *goquery.Selection) {
		text := s.Text()
		for _, phrase := range hatnotePhrases {
			if strings.Contains(text, phrase) {
				s.Remove()
				return
			}
		}
	})
	content.Find("#toc, table.infobox, div.shortdescription, table.ambox, style").Remove()

	links := collectLinks(content)

	text := strings.ToLower(content.Text())
	text = bracketRE.ReplaceAllString(text, "")
	text = nonAlnumRE.ReplaceAllString(text, " ")

	return &ParsedPage{
		Words: strings.Fields(text),
		Links: links,
	}, nil
}

// truncateAtHeadline removes the section headed by the given headline ID
// and every sibling after it.
func truncateAtHeadline(content *goquery.Selection, id string) {
	headline := content.Find("span.mw-headline#" + id).First()
	if headline.Length() == 0 {
		return
	}
	heading := headline.Closest("h2, h3")
	if heading.Length() == 0 {
		return
	}
	heading.NextAll().Remove()
	heading.Remove()
}

// collectLinks gathers the deduplicated decoded titles of every article
// link in the content.
func collectLinks(content *goquery.Selection) []string {
	seen := make(map[string]struct{})
	links := make([]string, 0)
	content.Find("a").Each(func(_ int, s *goquery.Selection) {
		href, ok := s.Attr("href")
		if !ok || !strings.HasPrefix(href, wikiPrefix) {
			return
		}
		rest := strings.TrimPrefix(href, wikiPrefix)
		for _, ns := range skippedNamespaces {
			if strings.HasPrefix(rest, ns) {
				return
			}
		}
		if strings.Contains(rest, "/") {
			return
		}
		if i := strings.Index(rest, "#"); i != -1 {
			rest = rest[:i]
		}
		if rest == "" {
			return
		}
		title := unescapeTitle(rest)
		if _, dup := seen[title]; dup {
			return
		}
		seen[title] = struct{}{}
		links = append(links, title)
	})
	return links
}

// unescapeTitle decodes a URL-escaped page title, falling back to the raw
// string for titles that are not valid escapes.
func unescapeTitle(s string) string {
	decoded, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return decoded
}

package crawler

import (
	"strings"
	"testing"
)

const sampleArticle = `<html><body>
<div class="mw-parser-output">
  <div class="shortdescription">Type of guitar</div>
  <div class="hatnote">This article is about the instrument. For the album, see <a href="/wiki/Electric_Guitar_%28album%29">Electric Guitar (album)</a>.</div>
  <div class="hatnote">A related topic worth keeping inline.</div>
  <div id="toc"><a href="/wiki/Ignored_toc_link">Contents</a></div>
  <table class="infobox"><tr><td><a href="/wiki/Ignored_infobox_link">details</a></td></tr></table>
  <table class="ambox"><tr><td>This article needs citations.</td></tr></table>
  <style>.mw-parser-output { color: red }</style>
  <p>An <b>electric guitar</b> is a guitar that uses <a href="/wiki/Pickup_%28music%29">pickups</a>[1]
  and an <a href="/wiki/Guitar_amplifier#Tube_amplifiers">amplifier</a>.</p>
  <p>See also <a href="/wiki/File:Strat.jpg">an image</a>, <a href="/wiki/Help:Contents">help</a>,
  <a href="/wiki/Portal:Music">a portal</a>, <a href="/wiki/Special:Random">special</a>,
  <a href="/wiki/Wikipedia:About">project</a>, <a href="/wiki/A/B_testing">nested</a>,
  and <a href="https://example.com/wiki/External">external</a> pages.</p>
  <p>Duplicate <a href="/wiki/Pickup_%28music%29">pickup link</a>.</p>
  <h2><span class="mw-headline" id="References">References</span></h2>
  <p><a href="/wiki/Reference_only_link">buried in references</a> trailing reference text</p>
</div>
</body></html>`

func TestParsePageWords(t *testing.T) {
	page, err := ParsePage(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}

	text := strings.Join(page.Words, " ")
	if !strings.Contains(text, "electric guitar is a guitar") {
		t.Errorf("prose missing from %q", text)
	}
	for _, word := range page.Words {
		if word != strings.ToLower(word) {
			t.Errorf("word %q not lowercased", word)
		}
	}
	// bracketed citation markers are removed before tokenizing
	if strings.Contains(text, "1 and an") {
		t.Errorf("citation marker leaked into text: %q", text)
	}
}

func TestParsePageDropsChrome(t *testing.T) {
	page, err := ParsePage(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}

	text := strings.Join(page.Words, " ")
	for _, gone := range []string{
		"this article is about",
		"type of guitar",
		"needs citations",
		"color red",
		"trailing reference text",
	} {
		if strings.Contains(text, gone) {
			t.Errorf("removed chrome %q still present", gone)
		}
	}
	// a hatnote without a removal phrase survives
	if !strings.Contains(text, "related topic worth keeping") {
		t.Errorf("plain hatnote was removed: %q", text)
	}
}

func TestParsePageLinks(t *testing.T) {
	page, err := ParsePage(strings.NewReader(sampleArticle))
	if err != nil {
		t.Fatalf("ParsePage: %v", err)
	}

	want := map[string]bool{
		"Electric Guitar (album)": false, // hatnote removed with its link
		"Pickup_(music)":          true,
		"Guitar_amplifier":        true, // fragment stripped
	}
	got := make(map[string]bool, len(page.Links))
	for _, l := range page.Links {
		got[l] = true
	}
	for title, wanted := range want {
		if got[title] != wanted {
			t.Errorf("link %q present=%v, want %v (links: %v)", title, got[title], wanted, page.Links)
		}
	}
	for _, banned := range []string{
		"File:Strat.jpg", "Help:Contents", "Portal:Music",
		"Special:Random", "Wikipedia:About", "A/B_testing",
		"Ignored_toc_link", "Ignored_infobox_link", "Reference_only_link",
	} {
		if got[banned] {
			t.Errorf("filtered link %q was collected", banned)
		}
	}
	// duplicates collapse
	count := 0
	for _, l := range page.Links {
		if l == "Pickup_(music)" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Pickup_(music) collected %d times, want 1", count)
	}
}

func TestParsePageNoBody(t *testing.T) {
	if _, err := ParsePage(strings.NewReader("<html><body><p>bare</p></body></html>")); err == nil {
		t.Error("expected error for page without article body")
	}
}

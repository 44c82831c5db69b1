package markdown

import (
	"strings"
	"testing"
)

func TestToHTML_RendersEmphasisAndLists(t *testing.T) {
	html := string(ToHTML("Allergic to **penicillin**.\n\n- ibuprofen 200mg\n- rest"))

	if !strings.Contains(html, "<strong>penicillin</strong>") {
		t.Fatalf("expected bold text, got %s", html)
	}
	if !strings.Contains(html, "<li>ibuprofen 200mg</li>") {
		t.Fatalf("expected list item, got %s", html)
	}
}

func TestToHTML_DropsRawHTMLAndScripts(t *testing.T) {
	html := string(ToHTML("hello <script>alert(1)</script> <img src=x onerror=alert(1)>"))

	if strings.Contains(html, "<script") || strings.Contains(html, "onerror") {
		t.Fatalf("expected raw html to be removed, got %s", html)
	}
	if !strings.Contains(html, "hello") {
		t.Fatalf("expected text to survive, got %s", html)
	}
}

func TestToHTML_RejectsJavascriptLinks(t *testing.T) {
	html := string(ToHTML("[click](javascript:alert(1))"))

	if strings.Contains(html, "javascript:") {
		t.Fatalf("expected javascript url to be stripped, got %s", html)
	}
}

func TestToHTML_ExternalLinksOpenInNewTab(t *testing.T) {
	html := string(ToHTML("[guideline](https://example.org/asthma)"))

	if !strings.Contains(html, `href="https://example.org/asthma"`) {
		t.Fatalf("expected href to survive, got %s", html)
	}
	if !strings.Contains(html, `target="_blank"`) {
		t.Fatalf("expected target blank, got %s", html)
	}
	if !strings.Contains(html, "nofollow") {
		t.Fatalf("expected nofollow rel, got %s", html)
	}
}

func TestToHTML_HighlightsCodeBlocks(t *testing.T) {
	source := "```json\n{\"hba1c\": 6.1}\n```"
	html := string(ToHTML(source))

	if !strings.Contains(html, `class="chroma"`) {
		t.Fatalf("expected chroma class for fenced code block, got %s", html)
	}
	if !strings.Contains(html, "hba1c") {
		t.Fatalf("expected code content in rendered block, got %s", html)
	}
}

func TestToHTML_Empty(t *testing.T) {
	if got := ToHTML("   \n"); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
}

func TestCodeCSS(t *testing.T) {
	if css := string(CodeCSS()); !strings.Contains(css, ".chroma") {
		t.Fatalf("expected chroma stylesheet, got %q", css)
	}
}

func TestExcerpt_StripsMarkdown(t *testing.T) {
	got := Excerpt("## Visit\n\nPatient reports **mild** [headache](https://example.org).\n\n- rest", 300)

	if got != "Visit Patient reports mild headache. rest" {
		t.Fatalf("unexpected excerpt %q", got)
	}
}

func TestExcerpt_TruncatesOnWordBoundary(t *testing.T) {
	got := Excerpt("alpha beta gamma delta", 12)
	if got != "alpha beta..." {
		t.Fatalf("expected graceful word truncation, got %q", got)
	}
}

func TestExcerpt_ZeroLimit(t *testing.T) {
	if got := Excerpt("anything", 0); got != "" {
		t.Fatalf("expected empty excerpt, got %q", got)
	}
}

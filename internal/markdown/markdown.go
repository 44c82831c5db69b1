// Package markdown renders free-text clinical notes.
//
// Notes are authored as Markdown. Raw HTML in the source is dropped, fenced
// blocks (lab printouts, structured readings) are highlighted with chroma and
// the final HTML always passes through a bluemonday policy before it reaches
// a template.
package markdown

import (
	"bytes"
	stdhtml "html"
	"html/template"
	"io"
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	md "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
	"github.com/microcosm-cc/bluemonday"
)

const codeStyle = "friendly"

const lastGoodBreakRatio = 0.8

var (
	markdownCodeBlockPattern        = regexp.MustCompile("(?s)```.*?```")
	markdownTablePattern            = regexp.MustCompile(`(?m)^\|.*\|.*$`)
	markdownImagePattern            = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	markdownHorizontalRulePattern   = regexp.MustCompile(`(?m)^---+$`)
	markdownBoldPattern             = regexp.MustCompile(`\*\*(.*?)\*\*`)
	markdownItalicAsteriskPattern   = regexp.MustCompile(`\*(.*?)\*`)
	markdownItalicUnderscorePattern = regexp.MustCompile(`_(.*?)_`)
	markdownHeadingPattern          = regexp.MustCompile(`(?m)^#{1,6}\s+(.*?)$`)
	markdownStrikethroughPattern    = regexp.MustCompile(`~~(.*?)~~`)
	markdownInlineCodePattern       = regexp.MustCompile("`(.*?)`")
	markdownLinkPattern             = regexp.MustCompile(`\[(.*?)\]\(.*?\)`)
	markdownBlockquotePattern       = regexp.MustCompile(`(?m)^\s*>\s*(.*?)$`)
	markdownListItemPattern         = regexp.MustCompile(`(?m)^\s*(?:[-*+]|\d+\.)\s+(?:\[[ x]\]\s+)?`)
	htmlTagPattern                  = regexp.MustCompile(`<[^>]*>`)
	classAttrPattern                = regexp.MustCompile(`^[a-zA-Z0-9 _-]+$`)
)

var (
	policyOnce sync.Once
	policy     *bluemonday.Policy

	codeCSSOnce sync.Once
	codeCSS     template.CSS
)

func notesPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		p := bluemonday.UGCPolicy()
		p.AllowAttrs("class").Matching(classAttrPattern).OnElements("pre", "code", "span")
		p.RequireNoFollowOnLinks(true)
		p.AddTargetBlankToFullyQualifiedLinks(true)
		policy = p
	})
	return policy
}

// ToHTML renders notes to sanitized HTML. Empty input renders nothing.
func ToHTML(input string) template.HTML {
	if strings.TrimSpace(input) == "" {
		return template.HTML("")
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	doc := p.Parse([]byte(input))

	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags | mdhtml.SkipHTML,
		RenderNodeHook: renderNodeHook,
	})

	rendered := md.Render(doc, renderer)
	return template.HTML(notesPolicy().SanitizeBytes(rendered))
}

// CodeCSS is the stylesheet for highlighted fenced blocks.
func CodeCSS() template.CSS {
	codeCSSOnce.Do(func() {
		style := styles.Get(codeStyle)
		if style == nil {
			style = styles.Fallback
		}

		var buffer bytes.Buffer
		formatter := chromahtml.New(chromahtml.WithClasses(true))
		if err := formatter.WriteCSS(&buffer, style); err == nil {
			codeCSS = template.CSS(buffer.String())
		}
	})
	return codeCSS
}

// Excerpt returns at most maxChars runes of plain text, cut on a word
// boundary when one is close to the limit.
func Excerpt(input string, maxChars int) string {
	if maxChars < 1 {
		return ""
	}

	clean := markdownToPlainText(input)
	if clean == "" {
		return ""
	}

	if utf8.RuneCountInString(clean) <= maxChars {
		return clean
	}

	return truncateRunes(clean, maxChars)
}

func markdownToPlainText(markdown string) string {
	text := markdown
	text = markdownCodeBlockPattern.ReplaceAllString(text, " ")
	text = markdownTablePattern.ReplaceAllString(text, " ")
	text = markdownImagePattern.ReplaceAllString(text, " ")
	text = markdownHorizontalRulePattern.ReplaceAllString(text, " ")

	text = markdownBoldPattern.ReplaceAllString(text, "$1")
	text = markdownItalicAsteriskPattern.ReplaceAllString(text, "$1")
	text = markdownItalicUnderscorePattern.ReplaceAllString(text, "$1")
	text = markdownHeadingPattern.ReplaceAllString(text, "\n$1\n")
	text = markdownStrikethroughPattern.ReplaceAllString(text, "$1")
	text = markdownInlineCodePattern.ReplaceAllString(text, "$1")
	text = markdownLinkPattern.ReplaceAllString(text, "$1")
	text = markdownBlockquotePattern.ReplaceAllString(text, "$1")
	text = markdownListItemPattern.ReplaceAllString(text, "")
	text = htmlTagPattern.ReplaceAllString(text, "")

	return strings.Join(strings.Fields(text), " ")
}

func truncateRunes(text string, maxChars int) string {
	runes := []rune(text)
	if len(runes) <= maxChars {
		return text
	}

	truncateAt := maxChars
	minBreak := int(float64(maxChars) * lastGoodBreakRatio)
	for idx := maxChars - 1; idx >= minBreak; idx-- {
		if unicode.IsSpace(runes[idx]) {
			truncateAt = idx
			break
		}
	}

	truncated := strings.TrimSpace(string(runes[:truncateAt]))
	if truncated == "" {
		truncated = strings.TrimSpace(string(runes[:maxChars]))
	}

	return truncated + "..."
}

func renderNodeHook(writer io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	if !entering {
		return ast.GoToNext, false
	}

	block, ok := node.(*ast.CodeBlock)
	if !ok {
		return ast.GoToNext, false
	}

	renderCodeBlock(writer, block)
	return ast.SkipChildren, true
}

func renderCodeBlock(writer io.Writer, block *ast.CodeBlock) {
	code := string(block.Literal)
	lexer := pickLexer(codeLanguage(block.Info))
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		renderPlainCodeBlock(writer, code)
		return
	}

	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.Format(writer, styles.Fallback, iterator); err != nil {
		renderPlainCodeBlock(writer, code)
	}
}

func renderPlainCodeBlock(writer io.Writer, code string) {
	_, _ = io.WriteString(writer, `<pre class="chroma"><code>`)
	_, _ = io.WriteString(writer, stdhtml.EscapeString(code))
	_, _ = io.WriteString(writer, `</code></pre>`)
}

// pickLexer never guesses from content: notes are mostly prose and the
// analysers misfire on it.
func pickLexer(language string) chroma.Lexer {
	if language != "" {
		if lexer := lexers.Get(language); lexer != nil {
			return lexer
		}
	}
	return lexers.Fallback
}

func codeLanguage(info []byte) string {
	fields := strings.Fields(string(info))
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

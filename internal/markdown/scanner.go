// Copyright 2025 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package markdown

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	ancpkg "github.com/kraklabs/xrefcheck/internal/anchor"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

var ignoreCommentRE = regexp.MustCompile(`(?s)<!--\s*xrefcheck:\s*(.*?)\s*-->`)

// Scan parses Markdown source into a FileInfo plus any parse errors. It
// never aborts on the first error; a partial FileInfo is always returned
// alongside accumulated errors.
func Scan(flavor ancpkg.Flavor, source []byte) (FileInfo, []ParseError) {
	s := &scanner{
		flavor: flavor,
		source: source,
		lines:  newLineIndex(source),
		dedup:  ancpkg.NewDeduplicator(),
	}

	reader := text.NewReader(source)
	doc := md.Parser().Parse(reader)

	s.walkTop(doc)

	return FileInfo{References: s.refs, Anchors: s.anchors}, s.errs
}

type scanner struct {
	flavor ancpkg.Flavor
	source []byte
	lines  *lineIndex
	dedup  *ancpkg.Deduplicator

	refs    []Reference
	anchors []ancpkg.Anchor
	errs    []ParseError

	ignoreAll bool
}

// pendingIgnore is the state produced by one xrefcheck ignore comment,
// consumed by whatever block node follows it.
type pendingIgnore int

const (
	pendingNone pendingIgnore = iota
	pendingIgnoreLink
	pendingIgnoreParagraph
)

// walkTop processes the document's direct children in order, since
// xrefcheck ignore comments are themselves top-level siblings of the
// paragraph/link they annotate.
func (s *scanner) walkTop(doc ast.Node) {
	pending := pendingNone
	sawRealContent := false

	for child := doc.FirstChild(); child != nil; child = child.NextSibling() {
		if comment, text, ok := s.asIgnoreComment(child); ok {
			opt := strings.TrimSpace(text)
			switch {
			case opt == "ignore link":
				pending = pendingIgnoreLink
			case opt == "ignore paragraph":
				pending = pendingIgnoreParagraph
			case opt == "ignore all":
				if sawRealContent {
					s.errs = append(s.errs, ParseError{Position: s.posOf(comment), Kind: IgnoreAllMisplaced})
				} else {
					s.ignoreAll = true
				}
			default:
				s.errs = append(s.errs, ParseError{
					Position: s.posOf(comment),
					Kind:     UnrecognisedIgnoreOption,
					Text:     opt,
				})
			}
			continue
		}

		switch pending {
		case pendingIgnoreLink:
			if !s.consumeIgnoreLink(child) {
				s.errs = append(s.errs, ParseError{Position: s.posOf(child), Kind: ExpectedLinkAfterIgnoreLink})
			}
		case pendingIgnoreParagraph:
			if para, ok := child.(*ast.Paragraph); ok {
				s.walkParagraph(para, false)
			} else {
				s.errs = append(s.errs, ParseError{
					Position: s.posOf(child),
					Kind:     ExpectedParagraphAfterIgnoreParagraph,
					Found:    describeKind(child),
				})
			}
		default:
			s.walkBlock(child)
		}
		pending = pendingNone
		sawRealContent = true
	}
}

// walkBlock dispatches one top-level block node to the right collector.
func (s *scanner) walkBlock(n ast.Node) {
	switch v := n.(type) {
	case *ast.Heading:
		s.collectHeading(v)
	case *ast.Paragraph:
		s.walkParagraph(v, true)
	case *ast.HTMLBlock:
		s.collectHandmadeAnchors(v)
	default:
		// Other block kinds (lists, blockquotes, code blocks, tables) may
		// themselves contain paragraphs/links; descend generically.
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			s.walkBlock(child)
		}
	}
}

// consumeIgnoreLink handles the node immediately following "ignore link":
// it must be a paragraph containing a link, and the first link in it is the
// one ignored.
func (s *scanner) consumeIgnoreLink(n ast.Node) bool {
	para, ok := n.(*ast.Paragraph)
	if !ok {
		return false
	}
	link := firstLinkLike(para)
	if link == nil {
		return false
	}
	s.collectLinkLike(link, false)
	// Any other links in the same paragraph are still verified normally.
	for child := para.FirstChild(); child != nil; child = child.NextSibling() {
		if child == link {
			continue
		}
		s.walkInlineForLinks(child, true)
	}
	return true
}

func (s *scanner) walkParagraph(p *ast.Paragraph, checkEnabled bool) {
	s.walkInlineForLinks(p, checkEnabled)
}

func (s *scanner) walkInlineForLinks(n ast.Node, checkEnabled bool) {
	switch v := n.(type) {
	case *ast.Link:
		s.collectLinkLike(v, checkEnabled)
	case *ast.AutoLink:
		s.collectAutoLink(v, checkEnabled)
	case *ast.RawHTML:
		s.collectHandmadeAnchorsInline(v)
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		s.walkInlineForLinks(child, checkEnabled)
	}
}

func (s *scanner) collectHeading(h *ast.Heading) {
	plain := plainText(h, s.source)
	slug := ancpkg.Slug(s.flavor, plain)
	name := s.dedup.Next(slug)
	s.anchors = append(s.anchors, ancpkg.Anchor{
		Kind:     ancpkg.KindHeader,
		Level:    h.Level,
		Name:     name,
		Position: s.posOf(h),
	})
}

func (s *scanner) collectLinkLike(l *ast.Link, checkEnabled bool) {
	dest := string(l.Destination)
	link, anch, hasAnchor := splitDestAnchor(dest)
	s.refs = append(s.refs, Reference{
		Text:             plainText(l, s.source),
		Link:             link,
		Anchor:           anch,
		HasAnchor:        hasAnchor,
		Position:         s.posOf(l),
		CopyPasteCheck:   checkEnabled && !s.ignoreAll,
		SkipVerification: !checkEnabled || s.ignoreAll,
	})
}

func (s *scanner) collectAutoLink(a *ast.AutoLink, checkEnabled bool) {
	raw := string(a.URL(s.source))
	link, anch, hasAnchor := splitDestAnchor(raw)
	s.refs = append(s.refs, Reference{
		Text:             raw,
		Link:             link,
		Anchor:           anch,
		HasAnchor:        hasAnchor,
		Position:         s.posOf(a),
		CopyPasteCheck:   checkEnabled && !s.ignoreAll,
		SkipVerification: !checkEnabled || s.ignoreAll,
	})
}

// collectHandmadeAnchors scans a raw HTML block for <a name="..."> /
// <a id="..."> constructs.
func (s *scanner) collectHandmadeAnchors(h *ast.HTMLBlock) {
	raw := blockLinesText(h, s.source)
	s.scanHandmadeAnchorText(raw, s.posOf(h))
}

func (s *scanner) collectHandmadeAnchorsInline(r *ast.RawHTML) {
	raw := inlineSegmentsText(r, s.source)
	s.scanHandmadeAnchorText(raw, s.posOf(r))
}

var handmadeAnchorRE = regexp.MustCompile(`<a\s+(?:name|id)="([^"]+)"`)

func (s *scanner) scanHandmadeAnchorText(raw string, pos Position) {
	for _, m := range handmadeAnchorRE.FindAllStringSubmatch(raw, -1) {
		slug := ancpkg.Slug(s.flavor, m[1])
		name := s.dedup.Next(slug)
		s.anchors = append(s.anchors, ancpkg.Anchor{Kind: ancpkg.KindHandmade, Name: name, Position: pos})
	}
}

// asIgnoreComment reports whether n is an HTML comment carrying an
// "xrefcheck: ..." directive, returning its option text.
func (s *scanner) asIgnoreComment(n ast.Node) (ast.Node, string, bool) {
	var raw string
	switch v := n.(type) {
	case *ast.HTMLBlock:
		raw = blockLinesText(v, s.source)
	case *ast.Paragraph:
		// A comment can also stand alone as the sole content of a paragraph
		// in some renderers' parse trees; check its raw HTML children.
		for child := v.FirstChild(); child != nil; child = child.NextSibling() {
			if rh, ok := child.(*ast.RawHTML); ok {
				raw += inlineSegmentsText(rh, s.source)
			}
		}
	default:
		return nil, "", false
	}

	m := ignoreCommentRE.FindStringSubmatch(raw)
	if m == nil {
		return nil, "", false
	}
	return n, m[1], true
}

func firstLinkLike(n ast.Node) *ast.Link {
	if l, ok := n.(*ast.Link); ok {
		return l
	}
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		if l := firstLinkLike(child); l != nil {
			return l
		}
	}
	return nil
}

// splitDestAnchor splits a link destination into its link and anchor
// parts at the first unescaped '#', URL-decoding the anchor.
func splitDestAnchor(dest string) (link, anch string, hasAnchor bool) {
	idx := strings.IndexByte(dest, '#')
	if idx == -1 {
		return dest, "", false
	}
	link = dest[:idx]
	raw := dest[idx+1:]
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		decoded = raw
	}
	return link, decoded, true
}

func describeKind(n ast.Node) string {
	switch n.(type) {
	case *ast.Heading:
		return "a heading"
	case *ast.List:
		return "a list"
	case *ast.Blockquote:
		return "a blockquote"
	case *ast.CodeBlock, *ast.FencedCodeBlock:
		return "a code block"
	case *ast.ThematicBreak:
		return "a thematic break"
	case *ast.HTMLBlock:
		return "an HTML block"
	default:
		return "something else"
	}
}

// plainText collects the text content of n's inline descendants by
// descending the tree, switching on node kind, and accumulating.
func plainText(n ast.Node, source []byte) string {
	var sb strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		switch v := n.(type) {
		case *ast.Text:
			sb.Write(v.Segment.Value(source))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.CodeSpan:
			for child := v.FirstChild(); child != nil; child = child.NextSibling() {
				walk(child)
			}
		default:
			for child := n.FirstChild(); child != nil; child = child.NextSibling() {
				walk(child)
			}
		}
	}
	walk(n)
	return sb.String()
}

func blockLinesText(n ast.Node, source []byte) string {
	lines := n.Lines()
	var sb strings.Builder
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

func inlineSegmentsText(r *ast.RawHTML, source []byte) string {
	var sb strings.Builder
	for i := 0; i < r.Segments.Len(); i++ {
		seg := r.Segments.At(i)
		sb.Write(seg.Value(source))
	}
	return sb.String()
}

func (s *scanner) posOf(n ast.Node) Position {
	if b, ok := n.(interface{ Lines() *text.Segments }); ok {
		lines := b.Lines()
		if lines.Len() > 0 {
			return s.lines.at(lines.At(0).Start)
		}
	}
	return Position{}
}

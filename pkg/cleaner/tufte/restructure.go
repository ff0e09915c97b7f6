package tufte

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	pageSelector       = cascadia.MustCompile("div#page")
	mainSelector       = cascadia.MustCompile("div#main")
	docSelector        = cascadia.MustCompile("div.doc")
	codeSelector       = cascadia.MustCompile("div.code")
	inlineCodeSelector = cascadia.MustCompile("span.inlinecode")
	preSelector        = cascadia.MustCompile("pre")
	divSelector        = cascadia.MustCompile("div")
	anyHeading         = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
)

// blankLines separates paragraphs inside a doc text run: two or more
// consecutive blank lines. A single blank line does not split.
var blankLines = regexp.MustCompile(`[ \t]*\n(?:[ \t]*\n){2,}`)

func headingSelector(level int) cascadia.Selector {
	return cascadia.MustCompile(fmt.Sprintf("h%d.section", level))
}

// renameContainers turns the page and main wrappers into article and
// section. Both are optional.
func (c *Cleaner) renameContainers(doc *goquery.Document, result *Result) {
	if page := doc.FindMatcher(pageSelector).First(); page.Length() > 0 {
		rename(page.Get(0), "article")
		page.RemoveAttr("id")
		page.RemoveAttr("class")
		result.Stats.ContainersRenamed++
	}
	if main := doc.FindMatcher(mainSelector).First(); main.Length() > 0 {
		rename(main.Get(0), "section")
		main.RemoveAttr("id")
		result.Stats.ContainersRenamed++
	}
}

// restructureDocBlocks turns every doc block into a paragraph.
func (c *Cleaner) restructureDocBlocks(doc *goquery.Document, result *Result) {
	doc.FindMatcher(docSelector).Each(func(_ int, block *goquery.Selection) {
		result.Stats.DocBlocks++

		for _, sel := range c.headings {
			c.wrapHeadings(block, sel, result)
		}

		node := block.Get(0)
		rename(node, "p")

		if c.config.SplitTextRuns {
			c.splitTextRuns(node, result)
		}

		if c.config.MarkPreBlocks {
			block.FindMatcher(preSelector).Each(func(_ int, pre *goquery.Selection) {
				insertAfter(pre.Get(0), separator(preSeparator))
				result.Stats.PreSeparators++
			})
		}

		block.RemoveAttr("class")
	})
}

// wrapHeadings moves the anchor emitted right before each section heading so
// that it wraps the heading.
func (c *Cleaner) wrapHeadings(block *goquery.Selection, sel cascadia.Selector, result *Result) {
	block.FindMatcher(sel).Each(func(_ int, hdr *goquery.Selection) {
		lbl := hdr.Prev()
		if lbl.Length() == 0 || goquery.NodeName(lbl) != "a" || lbl.ChildrenMatcher(anyHeading).Length() > 0 {
			result.AddWarning("transform", "section heading has no preceding anchor, left in place",
				goquery.NodeName(hdr)+": "+strings.TrimSpace(hdr.Text()))
			return
		}
		hdr.RemoveAttr("class")
		wrap(lbl.Get(0), hdr.Get(0))
		result.Stats.HeadingsWrapped++
	})
}

// splitTextRuns trims the direct text children of n and splits the ones
// holding several paragraphs, leaving a paragraph separator between the
// fragments.
func (c *Cleaner) splitTextRuns(n *html.Node, result *Result) {
	var runs []*html.Node
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.TextNode {
			runs = append(runs, ch)
		}
	}

	for _, run := range runs {
		run.Data = strings.TrimSpace(run.Data)
		fragments := splitFragments(run.Data)
		if len(fragments) < 2 {
			continue
		}

		run.Data = fragments[0]
		prev := run
		for _, fragment := range fragments[1:] {
			br := separator(paragraphSeparator)
			insertAfter(prev, br)
			txt := &html.Node{Type: html.TextNode, Data: fragment}
			insertAfter(br, txt)
			prev = txt
		}
		result.Stats.TextRunsSplit++
		result.Stats.ParagraphsAdded += len(fragments) - 1
	}
}

// splitFragments splits text on blank-line boundaries and drops empty
// fragments.
func splitFragments(text string) []string {
	var fragments []string
	for _, part := range blankLines.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			fragments = append(fragments, part)
		}
	}
	return fragments
}

// renameCodeBlocks turns code listings into preformatted blocks.
func (c *Cleaner) renameCodeBlocks(doc *goquery.Document, result *Result) {
	doc.FindMatcher(codeSelector).Each(func(_ int, code *goquery.Selection) {
		rename(code.Get(0), "pre")
		if !c.config.KeepCodeClass {
			code.RemoveAttr("class")
		}
		result.Stats.CodeBlocks++
	})
}

// padInlineCode leaves exactly one space on each side of every inline code
// span so it does not run into the surrounding prose.
func (c *Cleaner) padInlineCode(doc *goquery.Document, result *Result) {
	doc.FindMatcher(inlineCodeSelector).Each(func(_ int, span *goquery.Selection) {
		n := span.Get(0)
		if prev := n.PrevSibling; prev != nil && prev.Type == html.TextNode {
			prev.Data = strings.TrimRight(prev.Data, " ") + " "
		} else {
			n.Parent.InsertBefore(textNode(" "), n)
		}
		if next := n.NextSibling; next != nil && next.Type == html.TextNode {
			next.Data = " " + strings.TrimLeft(next.Data, " ")
		} else {
			insertAfter(n, textNode(" "))
		}
		result.Stats.InlineCodeSpans++
	})
}

// stripFooter removes the generator footer: the marker text, the rule above
// it and the link after it.
func (c *Cleaner) stripFooter(doc *goquery.Document, result *Result) {
	mark := findText(doc.Get(0), func(s string) bool {
		return strings.HasPrefix(strings.TrimLeft(s, " \t\r\n"), c.config.FooterMarker)
	})
	if mark == nil {
		return
	}
	if hr := siblingElement(mark, "hr", func(n *html.Node) *html.Node { return n.PrevSibling }); hr != nil {
		hr.Parent.RemoveChild(hr)
	} else {
		result.AddWarning("transform", "footer has no preceding rule", c.config.FooterMarker)
	}
	if a := siblingElement(mark, "a", func(n *html.Node) *html.Node { return n.NextSibling }); a != nil {
		a.Parent.RemoveChild(a)
	} else {
		result.AddWarning("transform", "footer has no trailing link", c.config.FooterMarker)
	}
	mark.Parent.RemoveChild(mark)
	result.Stats.FooterRemoved = true
}

// pruneEmptyDivs removes every div without text content. Divs nested in
// an already removed div are not counted again.
func (c *Cleaner) pruneEmptyDivs(doc *goquery.Document, result *Result) {
	root := doc.Nodes[0]
	doc.FindMatcher(divSelector).Each(func(_ int, div *goquery.Selection) {
		if !attached(div.Nodes[0], root) {
			return
		}
		if strings.TrimSpace(div.Text()) == "" {
			div.Remove()
			result.Stats.EmptyDivsPruned++
		}
	})
}

// attached reports whether n is still reachable from root.
func attached(n, root *html.Node) bool {
	for ; n != nil; n = n.Parent {
		if n == root {
			return true
		}
	}
	return false
}

func rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// separator returns a placeholder line break carrying a marker class.
func separator(class string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "br",
		DataAtom: atom.Br,
		Attr:     []html.Attribute{{Key: "class", Val: class}},
	}
}

func insertAfter(ref, n *html.Node) {
	ref.Parent.InsertBefore(n, ref.NextSibling)
}

// wrap detaches wrapper and puts it where n was, with n as its last child.
func wrap(wrapper, n *html.Node) {
	wrapper.Parent.RemoveChild(wrapper)
	parent := n.Parent
	parent.InsertBefore(wrapper, n)
	parent.RemoveChild(n)
	wrapper.AppendChild(n)
}

// findText returns the first text node, in document order, accepted by match.
func findText(n *html.Node, match func(string) bool) *html.Node {
	if n.Type == html.TextNode && match(n.Data) {
		return n
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if t := findText(ch, match); t != nil {
			return t
		}
	}
	return nil
}

// siblingElement walks from n using step and returns the first element
// named tag.
func siblingElement(n *html.Node, tag string, step func(*html.Node) *html.Node) *html.Node {
	for s := step(n); s != nil; s = step(s) {
		if s.Type == html.ElementNode && s.Data == tag {
			return s
		}
	}
	return nil
}

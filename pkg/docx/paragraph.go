package docx

import (
	"strconv"
	"strings"
)

// Pt converts points to twentieths of a point, the unit WordprocessingML
// uses for indentation and paragraph spacing.
func Pt(points int) (twips int) {
	twips = points * 20
	return twips
}

// HalfPoints converts points to the half-point unit used for run font sizes.
func HalfPoints(points int) (halfPoints int) {
	halfPoints = points * 2
	return halfPoints
}

// ppKind identifies the paragraph-property children the rewriter needs to
// read or mutate. Everything else rides along as ppRaw.
type ppKind int

const (
	ppRaw ppKind = iota
	ppStyle
	ppKeepNext
	ppKeepLines
	ppWidowControl
	ppNumPr
	ppSpacing
	ppInd
)

// schema order within w:pPr, used when a property is inserted into a
// paragraph that does not have it yet.
var ppRank = map[ppKind]int{
	ppStyle:        0,
	ppKeepNext:     1,
	ppKeepLines:    2,
	ppWidowControl: 3,
	ppNumPr:        4,
	ppSpacing:      5,
	ppInd:          6,
}

type ppNode struct {
	kind  ppKind
	raw   []byte    // complete element for ppRaw, keep flags and ppNumPr
	val   string    // style ID for ppStyle
	attrs []xmlAttr // for ppSpacing and ppInd
}

// ParagraphContent is a child of a paragraph: a *Run, or RawContent for
// hyperlinks, bookmarks and anything else passed through untouched.
type ParagraphContent interface {
	paragraphContent()
}

// RawContent is paragraph content preserved verbatim.
type RawContent struct {
	data []byte
}

func (RawContent) paragraphContent() {}

// Run is a contiguous stretch of text with uniform formatting. Runs parsed
// from an existing document keep their original bytes and serialize
// unchanged; runs created through AddRun serialize from their fields.
type Run struct {
	raw  []byte
	text string
	bold bool
	font string
	size int // half-points, 0 inherits from the paragraph style
}

func (*Run) paragraphContent() {}

// Text returns the run's text content.
func (r *Run) Text() (text string) {
	text = r.text
	return text
}

// SetBold marks a built run bold.
func (r *Run) SetBold(bold bool) {
	r.bold = bold
}

// SetFont sets the font family on a built run, covering the ASCII, high
// ANSI, East Asian and complex script slots so Word honors it everywhere.
func (r *Run) SetFont(name string) {
	r.font = name
}

// SetSize sets the font size in half-points on a built run.
func (r *Run) SetSize(halfPoints int) {
	r.size = halfPoints
}

// Paragraph is one w:p element. Recognized paragraph properties are typed so
// the rewriter can clone and adjust them; unrecognized properties and content
// round-trip as raw bytes in their original positions.
type Paragraph struct {
	attrs   string // raw attribute text from the w:p start tag
	props   []ppNode
	content []ParagraphContent
}

func (*Paragraph) bodyElement() {}

// parseParagraph builds a Paragraph from the complete bytes of a w:p element.
func parseParagraph(data []byte) (p *Paragraph, err error) {
	p = &Paragraph{}

	end, _ := findTagEnd(data, 0)
	if end > 0 {
		nameEnd := 1
		for nameEnd < end && !isSpaceByte(data[nameEnd]) && data[nameEnd] != '/' {
			nameEnd++
		}
		p.attrs = strings.TrimRight(string(data[nameEnd:end]), "/")
	}

	var children []rawChild
	children, err = splitChildren(innerXML(data))
	if err != nil {
		return p, err
	}

	for _, child := range children {
		switch child.name {
		case "w:pPr":
			err = p.parseProps(child.data)
			if err != nil {
				return p, err
			}
		case "w:r":
			p.content = append(p.content, parseRun(child.data))
		default:
			p.content = append(p.content, RawContent{data: child.data})
		}
	}

	return p, err
}

func (p *Paragraph) parseProps(pPr []byte) (err error) {
	var children []rawChild
	children, err = splitChildren(innerXML(pPr))
	if err != nil {
		return err
	}

	for _, child := range children {
		switch child.name {
		case "w:pStyle":
			val, _ := attrValue(tagAttrs(child.data), "w:val")
			p.props = append(p.props, ppNode{kind: ppStyle, val: val})
		case "w:keepNext":
			p.props = append(p.props, ppNode{kind: ppKeepNext, raw: child.data})
		case "w:keepLines":
			p.props = append(p.props, ppNode{kind: ppKeepLines, raw: child.data})
		case "w:widowControl":
			p.props = append(p.props, ppNode{kind: ppWidowControl, raw: child.data})
		case "w:numPr":
			p.props = append(p.props, ppNode{kind: ppNumPr, raw: child.data})
		case "w:spacing":
			p.props = append(p.props, ppNode{kind: ppSpacing, attrs: tagAttrs(child.data)})
		case "w:ind":
			p.props = append(p.props, ppNode{kind: ppInd, attrs: tagAttrs(child.data)})
		default:
			p.props = append(p.props, ppNode{kind: ppRaw, raw: child.data})
		}
	}

	return err
}

// parseRun extracts the text of a w:r element while keeping its bytes for
// round-tripping. Tabs and breaks map to \t and \n the way document text
// extraction expects.
func parseRun(data []byte) (run *Run) {
	run = &Run{raw: data}

	children, err := splitChildren(innerXML(data))
	if err != nil {
		return run
	}

	var b strings.Builder
	for _, child := range children {
		switch child.name {
		case "w:t":
			b.WriteString(unescapeXML(string(innerXML(child.data))))
		case "w:tab":
			b.WriteString("\t")
		case "w:br", "w:cr":
			b.WriteString("\n")
		}
	}
	run.text = b.String()

	return run
}

// Text returns the concatenated text of the paragraph's runs.
func (p *Paragraph) Text() (text string) {
	var b strings.Builder
	for _, c := range p.content {
		if r, ok := c.(*Run); ok {
			b.WriteString(r.text)
		}
	}
	text = b.String()
	return text
}

// StyleID returns the paragraph's explicit style reference, or "" when the
// paragraph inherits the default style.
func (p *Paragraph) StyleID() (id string) {
	for _, n := range p.props {
		if n.kind == ppStyle {
			id = n.val
			return id
		}
	}
	return id
}

// SetStyleID sets or replaces the paragraph's style reference.
func (p *Paragraph) SetStyleID(id string) {
	if id == "" {
		return
	}
	for i := range p.props {
		if p.props[i].kind == ppStyle {
			p.props[i].val = id
			return
		}
	}
	p.insertProp(ppNode{kind: ppStyle, val: id})
}

// HasNumbering reports whether the paragraph carries a numbering reference,
// which is what renders it as a bulleted or numbered list item.
func (p *Paragraph) HasNumbering() (has bool) {
	for _, n := range p.props {
		if n.kind == ppNumPr {
			has = true
			return has
		}
	}
	return has
}

// CopyNumberingFrom clones the source paragraph's numbering reference so the
// rendered list marker matches the original formatting. A source without
// numbering leaves the destination unchanged.
func (p *Paragraph) CopyNumberingFrom(src *Paragraph) {
	var srcNum []byte
	for _, n := range src.props {
		if n.kind == ppNumPr {
			srcNum = n.raw
			break
		}
	}
	if srcNum == nil {
		return
	}

	clone := append([]byte(nil), srcNum...)
	for i := range p.props {
		if p.props[i].kind == ppNumPr {
			p.props[i].raw = clone
			return
		}
	}
	p.insertProp(ppNode{kind: ppNumPr, raw: clone})
}

// CopyFormatFrom clones style, indentation, spacing and pagination flags from
// a template paragraph. Numbering is copied separately; unrecognized template
// properties are not carried over.
func (p *Paragraph) CopyFormatFrom(src *Paragraph) {
	p.SetStyleID(src.StyleID())

	for _, n := range src.props {
		switch n.kind {
		case ppKeepNext, ppKeepLines, ppWidowControl:
			p.setRawProp(n.kind, append([]byte(nil), n.raw...))
		case ppSpacing:
			attrs := filterAttrs(n.attrs, "w:before", "w:after", "w:line", "w:lineRule")
			if len(attrs) > 0 {
				p.setAttrProp(ppSpacing, attrs)
			}
		case ppInd:
			attrs := filterAttrs(n.attrs, "w:left", "w:firstLine", "w:hanging")
			if len(attrs) > 0 {
				p.setAttrProp(ppInd, attrs)
			}
		}
	}
}

// SetSpaceBefore sets the space before the paragraph, in twips.
func (p *Paragraph) SetSpaceBefore(twips int) {
	p.setSpacingAttr("w:before", strconv.Itoa(twips))
}

// SetSpaceAfter sets the space after the paragraph, in twips.
func (p *Paragraph) SetSpaceAfter(twips int) {
	p.setSpacingAttr("w:after", strconv.Itoa(twips))
}

// SetIndent sets the left indent and a hanging indent, in twips. A hanging
// value of zero clears any first-line adjustment.
func (p *Paragraph) SetIndent(left, hanging int) {
	attrs := []xmlAttr{{name: "w:left", value: strconv.Itoa(left)}}
	if hanging != 0 {
		attrs = append(attrs, xmlAttr{name: "w:hanging", value: strconv.Itoa(hanging)})
	}
	p.setAttrProp(ppInd, attrs)
}

// SpaceAfter returns the paragraph's space-after in twips, or -1 when the
// value is inherited.
func (p *Paragraph) SpaceAfter() (twips int) {
	twips = -1
	for _, n := range p.props {
		if n.kind != ppSpacing {
			continue
		}
		if v, found := attrValue(n.attrs, "w:after"); found {
			if parsed, err := strconv.Atoi(v); err == nil {
				twips = parsed
			}
		}
		return twips
	}
	return twips
}

// ClearRuns removes every run from the paragraph, leaving other content
// (hyperlinks, bookmarks) in place.
func (p *Paragraph) ClearRuns() {
	var kept []ParagraphContent
	for _, c := range p.content {
		if _, ok := c.(*Run); !ok {
			kept = append(kept, c)
		}
	}
	p.content = kept
}

// AddRun appends a run with the given text to the paragraph.
func (p *Paragraph) AddRun(text string) (run *Run) {
	run = &Run{text: text}
	p.content = append(p.content, run)
	return run
}

// Runs returns the paragraph's runs in document order.
func (p *Paragraph) Runs() (runs []*Run) {
	for _, c := range p.content {
		if r, ok := c.(*Run); ok {
			runs = append(runs, r)
		}
	}
	return runs
}

// ForceFont applies a font family, and optionally a size in half-points
// (0 keeps the inherited size), to every run built on this paragraph.
func (p *Paragraph) ForceFont(name string, halfPoints int) {
	for _, r := range p.Runs() {
		if r.raw != nil {
			continue
		}
		r.font = name
		if halfPoints > 0 {
			r.size = halfPoints
		}
	}
}

func (p *Paragraph) setSpacingAttr(name, value string) {
	for i := range p.props {
		if p.props[i].kind != ppSpacing {
			continue
		}
		p.props[i].attrs = setAttr(p.props[i].attrs, name, value)
		return
	}
	p.insertProp(ppNode{kind: ppSpacing, attrs: []xmlAttr{{name: name, value: value}}})
}

func (p *Paragraph) setAttrProp(kind ppKind, attrs []xmlAttr) {
	for i := range p.props {
		if p.props[i].kind == kind {
			p.props[i].attrs = attrs
			return
		}
	}
	p.insertProp(ppNode{kind: kind, attrs: attrs})
}

func (p *Paragraph) setRawProp(kind ppKind, raw []byte) {
	for i := range p.props {
		if p.props[i].kind == kind {
			p.props[i].raw = raw
			return
		}
	}
	p.insertProp(ppNode{kind: kind, raw: raw})
}

// insertProp places a new typed property at its schema position, leaving raw
// properties where they were parsed.
func (p *Paragraph) insertProp(node ppNode) {
	rank := ppRank[node.kind]
	for i, existing := range p.props {
		if existing.kind == ppRaw {
			continue
		}
		if ppRank[existing.kind] > rank {
			p.props = append(p.props[:i], append([]ppNode{node}, p.props[i:]...)...)
			return
		}
	}
	p.props = append(p.props, node)
}

// xml serializes the paragraph back to WordprocessingML.
func (p *Paragraph) xml() (data []byte) {
	var b strings.Builder
	b.WriteString("<w:p")
	b.WriteString(p.attrs)
	b.WriteString(">")

	if len(p.props) > 0 {
		b.WriteString("<w:pPr>")
		for _, n := range p.props {
			b.WriteString(n.xml())
		}
		b.WriteString("</w:pPr>")
	}

	for _, c := range p.content {
		switch v := c.(type) {
		case *Run:
			b.WriteString(v.xml())
		case RawContent:
			b.Write(v.data)
		}
	}

	b.WriteString("</w:p>")
	data = []byte(b.String())
	return data
}

func (n ppNode) xml() (data string) {
	switch n.kind {
	case ppStyle:
		data = `<w:pStyle w:val="` + escapeXML(n.val) + `"/>`
	case ppSpacing:
		data = selfClosingTag("w:spacing", n.attrs)
	case ppInd:
		data = selfClosingTag("w:ind", n.attrs)
	default:
		data = string(n.raw)
	}
	return data
}

func (r *Run) xml() (data string) {
	if r.raw != nil {
		data = string(r.raw)
		return data
	}

	var b strings.Builder
	b.WriteString("<w:r>")

	if r.font != "" || r.bold || r.size > 0 {
		b.WriteString("<w:rPr>")
		if r.font != "" {
			f := escapeXML(r.font)
			b.WriteString(`<w:rFonts w:ascii="` + f + `" w:hAnsi="` + f + `" w:eastAsia="` + f + `" w:cs="` + f + `"/>`)
		}
		if r.bold {
			b.WriteString("<w:b/>")
		}
		if r.size > 0 {
			sz := strconv.Itoa(r.size)
			b.WriteString(`<w:sz w:val="` + sz + `"/><w:szCs w:val="` + sz + `"/>`)
		}
		b.WriteString("</w:rPr>")
	}

	b.WriteString(`<w:t xml:space="preserve">` + escapeXML(r.text) + `</w:t>`)
	b.WriteString("</w:r>")
	data = b.String()
	return data
}

func selfClosingTag(name string, attrs []xmlAttr) (data string) {
	var b strings.Builder
	b.WriteString("<" + name)
	for _, a := range attrs {
		b.WriteString(" " + a.name + `="` + escapeXML(a.value) + `"`)
	}
	b.WriteString("/>")
	data = b.String()
	return data
}

func filterAttrs(attrs []xmlAttr, names ...string) (filtered []xmlAttr) {
	for _, a := range attrs {
		for _, n := range names {
			if a.name == n {
				filtered = append(filtered, a)
				break
			}
		}
	}
	return filtered
}

func setAttr(attrs []xmlAttr, name, value string) (updated []xmlAttr) {
	updated = attrs
	for i := range updated {
		if updated[i].name == name {
			updated[i].value = value
			return updated
		}
	}
	updated = append(updated, xmlAttr{name: name, value: value})
	return updated
}

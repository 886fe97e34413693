// Package docx reads and writes WordprocessingML (.docx) documents at the
// paragraph level. Paragraph styles, run formatting, indentation, spacing and
// list numbering references are exposed as typed values; every other part of
// the package (tables, section properties, styles, numbering definitions,
// relationships) passes through byte-for-byte, so a document saved without
// mutation keeps its text, styles and numbering intact.
package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

const documentPart = "word/document.xml"
const stylesPart = "word/styles.xml"

// BodyElement is a top-level child of the document body: a *Paragraph, or a
// RawElement for tables, section properties and anything else left untouched.
type BodyElement interface {
	bodyElement()
}

// RawElement is a body element preserved verbatim.
type RawElement struct {
	data []byte
}

func (RawElement) bodyElement() {}

// Document is a .docx package with its body parsed into an ordered, mutable
// sequence of elements. A Document is not safe for concurrent mutation; each
// optimization run owns its own instance.
type Document struct {
	parts      map[string][]byte
	partOrder  []string
	bodyPrefix []byte
	bodySuffix []byte
	body       []BodyElement
	styleNames map[string]string
}

// Load reads a .docx file from disk.
func Load(path string) (doc *Document, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read document: %s", path)
		return doc, err
	}

	doc, err = LoadBytes(data)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse document: %s", path)
		return doc, err
	}

	return doc, err
}

// LoadBytes parses a .docx package from memory.
func LoadBytes(data []byte) (doc *Document, err error) {
	var zr *zip.Reader
	zr, err = zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		err = errors.Wrap(err, "not a valid .docx archive")
		return doc, err
	}

	doc = &Document{
		parts:      make(map[string][]byte),
		styleNames: make(map[string]string),
	}

	for _, f := range zr.File {
		var rc io.ReadCloser
		rc, err = f.Open()
		if err != nil {
			err = errors.Wrapf(err, "failed to open archive entry: %s", f.Name)
			return doc, err
		}
		var content []byte
		content, err = io.ReadAll(rc)
		rc.Close()
		if err != nil {
			err = errors.Wrapf(err, "failed to read archive entry: %s", f.Name)
			return doc, err
		}
		doc.parts[f.Name] = content
		doc.partOrder = append(doc.partOrder, f.Name)
	}

	docXML, hasDoc := doc.parts[documentPart]
	if !hasDoc {
		err = errors.New("archive has no word/document.xml part")
		return doc, err
	}

	err = doc.parseBody(docXML)
	if err != nil {
		err = errors.Wrap(err, "failed to parse document body")
		return doc, err
	}

	if styles, hasStyles := doc.parts[stylesPart]; hasStyles {
		err = doc.parseStyles(styles)
		if err != nil {
			err = errors.Wrap(err, "failed to parse style definitions")
			return doc, err
		}
	}

	return doc, err
}

func (d *Document) parseBody(docXML []byte) (err error) {
	open := bytes.Index(docXML, []byte("<w:body"))
	if open < 0 {
		err = errors.New("document has no w:body element")
		return err
	}
	openEnd, selfClosing := findTagEnd(docXML, open)
	if openEnd < 0 || selfClosing {
		err = errors.New("document body is empty or malformed")
		return err
	}
	close := bytes.LastIndex(docXML, []byte("</w:body>"))
	if close < openEnd {
		err = errors.New("document body has no closing tag")
		return err
	}

	d.bodyPrefix = docXML[:openEnd+1]
	d.bodySuffix = docXML[close:]

	var children []rawChild
	children, err = splitChildren(docXML[openEnd+1 : close])
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.name == "w:p" {
			var p *Paragraph
			p, err = parseParagraph(child.data)
			if err != nil {
				return err
			}
			d.body = append(d.body, p)
			continue
		}
		d.body = append(d.body, RawElement{data: child.data})
	}

	return err
}

// parseStyles builds the styleId to friendly-name table used for heading
// detection.
func (d *Document) parseStyles(styles []byte) (err error) {
	open := bytes.Index(styles, []byte("<w:styles"))
	if open < 0 {
		return err
	}

	var root []byte
	root, _, err = scanElement(styles, open)
	if err != nil {
		return err
	}

	var children []rawChild
	children, err = splitChildren(innerXML(root))
	if err != nil {
		return err
	}

	for _, child := range children {
		if child.name != "w:style" {
			continue
		}
		id, _ := attrValue(tagAttrs(child.data), "w:styleId")
		if id == "" {
			continue
		}
		var styleChildren []rawChild
		styleChildren, err = splitChildren(innerXML(child.data))
		if err != nil {
			return err
		}
		for _, sc := range styleChildren {
			if sc.name == "w:name" {
				name, _ := attrValue(tagAttrs(sc.data), "w:val")
				d.styleNames[id] = name
				break
			}
		}
	}

	return err
}

// Paragraphs returns the document's body paragraphs in order. Tables and
// other non-paragraph elements are not included.
func (d *Document) Paragraphs() (paragraphs []*Paragraph) {
	for _, e := range d.body {
		if p, ok := e.(*Paragraph); ok {
			paragraphs = append(paragraphs, p)
		}
	}
	return paragraphs
}

// Text returns the document's paragraph texts joined by newlines.
func (d *Document) Text() (text string) {
	var lines []string
	for _, p := range d.Paragraphs() {
		lines = append(lines, p.Text())
	}
	text = strings.Join(lines, "\n")
	return text
}

// StyleName resolves a paragraph's style reference to the friendly style
// name defined in word/styles.xml. Paragraphs without an explicit style, or
// with a style the document does not define, resolve to "".
func (d *Document) StyleName(p *Paragraph) (name string) {
	name = d.styleNames[p.StyleID()]
	return name
}

// InsertParagraphAfter inserts a new empty paragraph immediately following
// anchor and returns it.
func (d *Document) InsertParagraphAfter(anchor *Paragraph) (p *Paragraph) {
	p = &Paragraph{}
	for i, e := range d.body {
		if e == BodyElement(anchor) {
			d.body = append(d.body[:i+1], append([]BodyElement{p}, d.body[i+1:]...)...)
			return p
		}
	}
	d.body = append(d.body, p)
	return p
}

// RemoveParagraph deletes a paragraph from the body. Removing invalidates
// paragraph indices, so callers working from indices remove in reverse order.
func (d *Document) RemoveParagraph(p *Paragraph) {
	for i, e := range d.body {
		if e == BodyElement(p) {
			d.body = append(d.body[:i], d.body[i+1:]...)
			return
		}
	}
}

// Bytes serializes the document back into a .docx package. All parts other
// than word/document.xml are written exactly as they were read.
func (d *Document) Bytes() (data []byte, err error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, name := range d.partOrder {
		content := d.parts[name]
		if name == documentPart {
			content = d.documentXML()
		}
		var w io.Writer
		w, err = zw.Create(name)
		if err != nil {
			err = errors.Wrapf(err, "failed to create archive entry: %s", name)
			return data, err
		}
		_, err = w.Write(content)
		if err != nil {
			err = errors.Wrapf(err, "failed to write archive entry: %s", name)
			return data, err
		}
	}

	err = zw.Close()
	if err != nil {
		err = errors.Wrap(err, "failed to finalize archive")
		return data, err
	}

	data = buf.Bytes()
	return data, err
}

// Save writes the document to disk.
func (d *Document) Save(path string) (err error) {
	var data []byte
	data, err = d.Bytes()
	if err != nil {
		return err
	}

	err = os.WriteFile(path, data, 0644)
	if err != nil {
		err = errors.Wrapf(err, "failed to write document: %s", path)
		return err
	}

	return err
}

func (d *Document) documentXML() (data []byte) {
	var buf bytes.Buffer
	buf.Write(d.bodyPrefix)
	for _, e := range d.body {
		switch v := e.(type) {
		case *Paragraph:
			buf.Write(v.xml())
		case RawElement:
			buf.Write(v.data)
		}
	}
	buf.Write(d.bodySuffix)
	data = buf.Bytes()
	return data
}

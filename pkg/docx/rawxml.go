package docx

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// rawChild is a single child element carved out of a parent's inner XML,
// kept as the exact bytes it occupied in the source document.
type rawChild struct {
	name string
	data []byte
}

// xmlAttr is one attribute of a start tag.
type xmlAttr struct {
	name  string
	value string
}

// splitChildren splits the inner XML of an element into its child elements.
// Inter-element text (whitespace, in WordprocessingML) is discarded. Names are
// matched as written in the file, qualified prefix included (w:p, w:tbl).
func splitChildren(inner []byte) (children []rawChild, err error) {
	i := 0
	for i < len(inner) {
		if inner[i] != '<' {
			i++
			continue
		}

		// Skip comments and processing instructions.
		if hasPrefixAt(inner, i, "<!--") {
			end := indexFrom(inner, i, "-->")
			if end < 0 {
				err = errors.New("unterminated XML comment")
				return children, err
			}
			i = end + 3
			continue
		}
		if hasPrefixAt(inner, i, "<?") {
			end := indexFrom(inner, i, "?>")
			if end < 0 {
				err = errors.New("unterminated processing instruction")
				return children, err
			}
			i = end + 2
			continue
		}
		if hasPrefixAt(inner, i, "</") {
			err = errors.Errorf("unexpected close tag at offset %d", i)
			return children, err
		}

		var elem []byte
		var name string
		elem, name, err = scanElement(inner, i)
		if err != nil {
			return children, err
		}

		children = append(children, rawChild{name: name, data: elem})
		i += len(elem)
	}

	return children, err
}

// scanElement returns the complete element starting at data[pos], which must
// be the '<' of a start tag, along with the element name.
func scanElement(data []byte, pos int) (elem []byte, name string, err error) {
	name = tagName(data, pos)
	if name == "" {
		err = errors.Errorf("malformed start tag at offset %d", pos)
		return elem, name, err
	}

	end, selfClosing := findTagEnd(data, pos)
	if end < 0 {
		err = errors.Errorf("unterminated start tag at offset %d", pos)
		return elem, name, err
	}
	if selfClosing {
		elem = data[pos : end+1]
		return elem, name, err
	}

	// Walk nested tags until this element's depth returns to zero.
	depth := 1
	i := end + 1
	for i < len(data) {
		if data[i] != '<' {
			i++
			continue
		}
		if hasPrefixAt(data, i, "<!--") {
			c := indexFrom(data, i, "-->")
			if c < 0 {
				err = errors.New("unterminated XML comment")
				return elem, name, err
			}
			i = c + 3
			continue
		}
		closing := hasPrefixAt(data, i, "</")
		var tagClose int
		var self bool
		tagClose, self = findTagEnd(data, i)
		if tagClose < 0 {
			err = errors.Errorf("unterminated tag at offset %d", i)
			return elem, name, err
		}
		if closing {
			depth--
			if depth == 0 {
				elem = data[pos : tagClose+1]
				return elem, name, err
			}
		} else if !self {
			depth++
		}
		i = tagClose + 1
	}

	err = errors.Errorf("no closing tag for <%s>", name)
	return elem, name, err
}

// tagName extracts the qualified name of the tag starting at data[pos].
func tagName(data []byte, pos int) (name string) {
	i := pos + 1
	if i < len(data) && data[i] == '/' {
		i++
	}
	start := i
	for i < len(data) {
		c := data[i]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '>' || c == '/' {
			break
		}
		i++
	}
	name = string(data[start:i])
	return name
}

// findTagEnd returns the index of the '>' closing the tag that starts at
// data[pos], honoring quoted attribute values.
func findTagEnd(data []byte, pos int) (end int, selfClosing bool) {
	var quote byte
	for i := pos + 1; i < len(data); i++ {
		c := data[i]
		if quote != 0 {
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '>':
			end = i
			selfClosing = data[i-1] == '/'
			return end, selfClosing
		}
	}
	end = -1
	return end, selfClosing
}

// innerXML strips the start and end tags from a complete element.
// Self-closing elements have no inner content.
func innerXML(elem []byte) (inner []byte) {
	end, selfClosing := findTagEnd(elem, 0)
	if end < 0 || selfClosing {
		return inner
	}
	close := strings.LastIndex(string(elem), "</")
	if close <= end {
		return inner
	}
	inner = elem[end+1 : close]
	return inner
}

// tagAttrs parses the attributes of the start tag at the beginning of elem.
func tagAttrs(elem []byte) (attrs []xmlAttr) {
	end, _ := findTagEnd(elem, 0)
	if end < 0 {
		return attrs
	}

	// Skip past the element name.
	i := 1
	for i < end && !isSpaceByte(elem[i]) && elem[i] != '/' {
		i++
	}

	for i < end {
		for i < end && isSpaceByte(elem[i]) {
			i++
		}
		if i >= end || elem[i] == '/' {
			break
		}
		nameStart := i
		for i < end && elem[i] != '=' && !isSpaceByte(elem[i]) {
			i++
		}
		name := string(elem[nameStart:i])
		for i < end && (isSpaceByte(elem[i]) || elem[i] == '=') {
			i++
		}
		if i >= end || (elem[i] != '"' && elem[i] != '\'') {
			break
		}
		quote := elem[i]
		i++
		valStart := i
		for i < end && elem[i] != quote {
			i++
		}
		attrs = append(attrs, xmlAttr{name: name, value: unescapeXML(string(elem[valStart:i]))})
		i++
	}

	return attrs
}

func attrValue(attrs []xmlAttr, name string) (value string, found bool) {
	for _, a := range attrs {
		if a.name == name {
			value = a.value
			found = true
			return value, found
		}
	}
	return value, found
}

func hasPrefixAt(data []byte, pos int, prefix string) (has bool) {
	if pos+len(prefix) > len(data) {
		return has
	}
	has = string(data[pos:pos+len(prefix)]) == prefix
	return has
}

func indexFrom(data []byte, pos int, sub string) (index int) {
	index = strings.Index(string(data[pos:]), sub)
	if index >= 0 {
		index += pos
	}
	return index
}

func isSpaceByte(c byte) (space bool) {
	space = c == ' ' || c == '\t' || c == '\r' || c == '\n'
	return space
}

// escapeXML escapes text content for insertion into an XML document.
func escapeXML(s string) (escaped string) {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '"':
			b.WriteString("&quot;")
		default:
			b.WriteRune(r)
		}
	}
	escaped = b.String()
	return escaped
}

// unescapeXML resolves the predefined entities and numeric character
// references found in WordprocessingML text nodes.
func unescapeXML(s string) (text string) {
	if !strings.Contains(s, "&") {
		text = s
		return text
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] != '&' {
			b.WriteByte(s[i])
			i++
			continue
		}
		semi := strings.IndexByte(s[i:], ';')
		if semi < 0 {
			b.WriteByte(s[i])
			i++
			continue
		}
		entity := s[i+1 : i+semi]
		switch {
		case entity == "amp":
			b.WriteByte('&')
		case entity == "lt":
			b.WriteByte('<')
		case entity == "gt":
			b.WriteByte('>')
		case entity == "quot":
			b.WriteByte('"')
		case entity == "apos":
			b.WriteByte('\'')
		case strings.HasPrefix(entity, "#x") || strings.HasPrefix(entity, "#X"):
			if n, convErr := strconv.ParseInt(entity[2:], 16, 32); convErr == nil {
				b.WriteRune(rune(n))
			}
		case strings.HasPrefix(entity, "#"):
			if n, convErr := strconv.ParseInt(entity[1:], 10, 32); convErr == nil {
				b.WriteRune(rune(n))
			}
		default:
			// Unknown entity, keep verbatim.
			b.WriteString(s[i : i+semi+1])
		}
		i += semi + 1
	}

	text = b.String()
	return text
}

package markup

import (
	gohtml "html"
	"strings"
)

// SkipList holds the elements whose whole subtree is kept out of the token
// stream. Nested elements of the same name are tracked by depth.
var SkipList = map[string]bool{
	"head":   true,
	"script": true,
	"style":  true,
}

// Tokenizer turns a markup string into a flat token sequence in a single
// left-to-right scan. It never fails: truncated tags, open comments and
// dangling quotes degrade to a partial result.
type Tokenizer struct {
	input     string
	buf       strings.Builder
	inTag     bool
	skipDepth int
	inTitle   bool
	title     string
	tokens    []Token
}

// NewTokenizer strips comments from markup and prepares a scan over the rest.
func NewTokenizer(markup string) *Tokenizer {
	return &Tokenizer{input: StripComments(markup)}
}

// Tokenize returns the tokens of markup and the captured document title.
func Tokenize(markup string) ([]Token, string) {
	t := NewTokenizer(markup)
	tokens := t.Tokens()
	return tokens, t.Title()
}

// Tokens runs the scan and returns the token sequence.
func (t *Tokenizer) Tokens() []Token {
	if t.tokens != nil {
		return t.tokens
	}
	t.tokens = make([]Token, 0)
	for i := 0; i < len(t.input); i++ {
		c := t.input[i]
		switch {
		case c == '<' && !t.inTag:
			t.endText()
			t.inTag = true
		case c == '>' && t.inTag:
			t.inTag = false
			t.endTag(t.buf.String())
			t.buf.Reset()
		default:
			// A '<' inside a tag stays part of the tag text and a '>' outside
			// a tag is ordinary character data.
			t.buf.WriteByte(c)
		}
	}
	if !t.inTag && t.skipDepth == 0 {
		if text := strings.TrimSpace(t.buf.String()); text != "" {
			t.tokens = append(t.tokens, TextToken(gohtml.UnescapeString(text)))
		}
	}
	t.buf.Reset()
	return t.tokens
}

// Title returns the raw text found inside <title>, or "" when the document
// has none. Only meaningful after Tokens.
func (t *Tokenizer) Title() string {
	return t.title
}

func (t *Tokenizer) endText() {
	raw := t.buf.String()
	t.buf.Reset()
	if raw == "" {
		return
	}
	if t.inTitle {
		t.title = raw
		return
	}
	if t.skipDepth > 0 {
		return
	}
	if text := strings.TrimSpace(raw); text != "" {
		t.tokens = append(t.tokens, TextToken(gohtml.UnescapeString(text)))
	}
}

func (t *Tokenizer) endTag(raw string) {
	if raw == "" {
		return
	}
	// DOCTYPE, comment remnants and <?xml ...?> processing instructions
	if strings.Contains(strings.ToUpper(raw), "!DOCTYPE") || strings.Contains(raw, "!--") || raw[0] == '?' {
		return
	}
	name, attrs, closing := ParseTag(raw)
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "title" {
		t.inTitle = !t.inTitle
	}
	if SkipList[name] {
		if closing {
			if t.skipDepth > 0 {
				t.skipDepth--
			}
		} else {
			t.skipDepth++
		}
		return
	}
	if name == "" || name == "--" || t.skipDepth > 0 {
		return
	}
	t.tokens = append(t.tokens, ElementToken(name, attrs, closing))
}

// StripComments removes every <!-- ... --> section. A comment that is never
// closed swallows the rest of the input.
func StripComments(markup string) string {
	var sb strings.Builder
	rest := markup
	for {
		start := strings.Index(rest, "<!--")
		if start < 0 {
			sb.WriteString(rest)
			break
		}
		sb.WriteString(rest[:start])
		rest = rest[start+len("<!--"):]
		end := strings.Index(rest, "-->")
		if end < 0 {
			break
		}
		rest = rest[end+len("-->"):]
	}
	return sb.String()
}

// ParseTag splits the text between '<' and '>' into a lowercased name, its
// attributes and whether it is a closing tag. It is a pure function of raw.
func ParseTag(raw string) (name string, attrs map[string]string, closing bool) {
	attrs = make(map[string]string)
	if raw == "" {
		return "", attrs, false
	}
	p := &tagParser{input: raw}
	if p.input[0] == '/' {
		closing = true
		p.pos++
	}
	p.skipWhitespace()
	name = p.readName()
	for {
		p.skipWhitespace()
		if p.pos >= len(p.input) {
			break
		}
		if p.input[p.pos] == '/' {
			// <br/> and stray slashes between attributes
			p.pos++
			continue
		}
		key := p.readAttributeName()
		p.skipWhitespace()
		value := ""
		if p.pos < len(p.input) && p.input[p.pos] == '=' {
			p.pos++
			p.skipWhitespace()
			value = p.readAttributeValue()
		}
		if key != "" {
			attrs[strings.ToLower(key)] = value
		}
	}
	return strings.ToLower(name), attrs, closing
}

type tagParser struct {
	input string
	pos   int
}

func (p *tagParser) readName() string {
	start := p.pos
	for p.pos < len(p.input) && !isSpace(p.input[p.pos]) && p.input[p.pos] != '/' {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *tagParser) readAttributeName() string {
	start := p.pos
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if c == '=' || c == '/' || isSpace(c) {
			break
		}
		p.pos++
	}
	return p.input[start:p.pos]
}

// readAttributeValue reads a quoted or unquoted value. An unterminated quote
// runs to the end of the tag.
func (p *tagParser) readAttributeValue() string {
	if p.pos >= len(p.input) {
		return ""
	}
	quote := p.input[p.pos]
	if quote == '"' || quote == '\'' {
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		value := p.input[start:p.pos]
		if p.pos < len(p.input) {
			p.pos++
		}
		return value
	}
	start := p.pos
	for p.pos < len(p.input) && !isSpace(p.input[p.pos]) {
		p.pos++
	}
	return p.input[start:p.pos]
}

func (p *tagParser) skipWhitespace() {
	for p.pos < len(p.input) && isSpace(p.input[p.pos]) {
		p.pos++
	}
}

// isSpace matches ASCII whitespace only so UTF-8 continuation bytes are
// never mistaken for separators.
func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

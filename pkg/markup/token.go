package markup

import (
	"sort"
	"strings"
)

type TokenType int

const (
	TokenText TokenType = iota
	TokenElement
)

func (t TokenType) String() string {
	switch t {
	case TokenText:
		return "text"
	case TokenElement:
		return "element"
	}
	return "unknown"
}

// Token is either a run of character data or a single tag.
type Token struct {
	Type       TokenType
	Text       string            // TokenText only
	Name       string            // TokenElement only, lowercased
	Attributes map[string]string // TokenElement only, never nil
	Closing    bool              // True when the tag text began with '/'
}

// TextToken returns a text token.
func TextToken(text string) Token {
	return Token{Type: TokenText, Text: text}
}

// ElementToken returns an element token. A nil attribute map is replaced
// with an empty one.
func ElementToken(name string, attrs map[string]string, closing bool) Token {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return Token{Type: TokenElement, Name: name, Attributes: attrs, Closing: closing}
}

// IsElement reports whether the token is a tag named name.
func (t Token) IsElement(name string) bool {
	return t.Type == TokenElement && t.Name == name
}

// String reconstructs markup for the token. Attributes are written in
// sorted order, each value quoted with whichever quote it does not contain.
func (t Token) String() string {
	if t.Type == TokenText {
		return t.Text
	}
	var sb strings.Builder
	sb.WriteByte('<')
	if t.Closing {
		sb.WriteByte('/')
	}
	sb.WriteString(t.Name)
	keys := make([]string, 0, len(t.Attributes))
	for k := range t.Attributes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v := t.Attributes[k]
		quote := byte('"')
		if strings.IndexByte(v, '"') >= 0 {
			quote = '\''
		}
		sb.WriteByte(' ')
		sb.WriteString(k)
		sb.WriteByte('=')
		sb.WriteByte(quote)
		sb.WriteString(v)
		sb.WriteByte(quote)
	}
	sb.WriteByte('>')
	return sb.String()
}

package markup

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func el(name string, closing bool) Token {
	return ElementToken(name, nil, closing)
}

func TestTokenize_Sequences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Token
	}{
		{"bold then text", "<b>hi</b> there", []Token{
			el("b", false), TextToken("hi"), el("b", true), TextToken("there"),
		}},
		{"comment elided", "<!-- x --><p>y</p>", []Token{
			el("p", false), TextToken("y"), el("p", true),
		}},
		{"script skipped", "<script>alert(1)</script>ok", []Token{
			TextToken("ok"),
		}},
		{"nested skip depth", "<style><style>a</style>b</style>c", []Token{
			TextToken("c"),
		}},
		{"unbalanced skip close floors at zero", "</script>x", []Token{
			TextToken("x"),
		}},
		{"head subtree", "<html><head><meta charset=utf-8></head><body>Hi</body></html>", []Token{
			el("html", false), el("body", false), TextToken("Hi"), el("body", true), el("html", true),
		}},
		{"doctype dropped", "<!DOCTYPE html><p>a</p>", []Token{
			el("p", false), TextToken("a"), el("p", true),
		}},
		{"lowercase doctype dropped", "<!doctype html>a", []Token{
			TextToken("a"),
		}},
		{"processing instruction dropped", `<?xml version="1.0"?>a`, []Token{
			TextToken("a"),
		}},
		{"whitespace text dropped", "<p>   \n\t </p>", []Token{
			el("p", false), el("p", true),
		}},
		{"text trimmed", "<p>  spaced out  </p>", []Token{
			el("p", false), TextToken("spaced out"), el("p", true),
		}},
		{"uppercase tag", "<B>x</B>", []Token{
			el("b", false), TextToken("x"), el("b", true),
		}},
		{"unterminated comment swallows", "a<!-- never closed <p>b</p>", []Token{
			TextToken("a"),
		}},
		{"truncated tag dropped", "a<p", []Token{
			TextToken("a"),
		}},
		{"entities decoded", "<p>fish &amp; chips</p>", []Token{
			el("p", false), TextToken("fish & chips"), el("p", true),
		}},
		{"bare greater-than is text", "a > b", []Token{
			TextToken("a > b"),
		}},
		{"empty tag ignored", "<>a< >b", []Token{
			TextToken("a"), TextToken("b"),
		}},
		{"self closing", "a<br/>b", []Token{
			TextToken("a"), el("br", false), TextToken("b"),
		}},
		{"empty input", "", []Token{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Tokenize(tt.input)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTokenize_Title(t *testing.T) {
	tokens, title := Tokenize("<html><head><title>My Page</title></head><body>x</body></html>")
	assert.Equal(t, "My Page", title)
	for _, tok := range tokens {
		assert.NotEqual(t, "My Page", tok.Text)
	}

	tokens, title = Tokenize("<title>My Page</title>")
	assert.Equal(t, "My Page", title)
	assert.Equal(t, []Token{el("title", false), el("title", true)}, tokens)
}

func TestTokenize_TitleIsRaw(t *testing.T) {
	_, title := Tokenize("<title>  padded  </title>")
	assert.Equal(t, "  padded  ", title)
}

func TestTokenize_NoTitle(t *testing.T) {
	_, title := Tokenize("<p>x</p>")
	assert.Empty(t, title)
}

func TestTokenize_Attributes(t *testing.T) {
	tokens, _ := Tokenize(`<a href="https://example.com/Path" class='Big' data-x=1 hidden>link</a>`)
	require.Len(t, tokens, 3)
	assert.Equal(t, map[string]string{
		"href":   "https://example.com/Path",
		"class":  "Big",
		"data-x": "1",
		"hidden": "",
	}, tokens[0].Attributes)
	assert.False(t, tokens[0].Closing)
	assert.Empty(t, tokens[2].Attributes)
	assert.NotNil(t, tokens[2].Attributes)
}

func TestTokenize_Idempotent(t *testing.T) {
	tz := NewTokenizer("<p>a</p>")
	first := tz.Tokens()
	second := tz.Tokens()
	assert.Equal(t, first, second)
}

func TestStripComments(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"a<!-- b -->c", "ac"},
		{"<!---->x", "x"},
		{"a<!-- 1 -->b<!-- 2 -->c", "abc"},
		{"a<!-- open", "a"},
		{"no comments", "no comments"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.in))
		})
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		raw     string
		name    string
		attrs   map[string]string
		closing bool
	}{
		{"", "", map[string]string{}, false},
		{"p", "p", map[string]string{}, false},
		{"/p", "p", map[string]string{}, true},
		{"/ p", "p", map[string]string{}, true},
		{"DIV id=Main", "div", map[string]string{"id": "Main"}, false},
		{`img src="a b.png" alt='x "y"'`, "img", map[string]string{"src": "a b.png", "alt": `x "y"`}, false},
		{"a href = x", "a", map[string]string{"href": "x"}, false},
		{"a x=1 x=2", "a", map[string]string{"x": "2"}, false},
		{`a title="unterminated`, "a", map[string]string{"title": "unterminated"}, false},
		{"a title=", "a", map[string]string{"title": ""}, false},
		{"input disabled/", "input", map[string]string{"disabled": ""}, false},
		{"br/", "br", map[string]string{}, false},
		{"a =x", "a", map[string]string{}, false},
		{"script <asd", "script", map[string]string{"<asd": ""}, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			name, attrs, closing := ParseTag(tt.raw)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.attrs, attrs)
			assert.Equal(t, tt.closing, closing)
			assert.NotContains(t, name, "/")
		})
	}
}

func TestParseTag_RoundTrip(t *testing.T) {
	inputs := []string{
		`<a href="https://example.com" title='say "hi"'>x</a>`,
		`<img src=photo.png alt="A photo" width=20>`,
		`<p CLASS="Lead">y</p>`,
	}
	for _, in := range inputs {
		tokens, _ := Tokenize(in)
		for _, tok := range tokens {
			if tok.Type != TokenElement {
				continue
			}
			s := tok.String()
			require.True(t, strings.HasPrefix(s, "<") && strings.HasSuffix(s, ">"), s)
			name, attrs, closing := ParseTag(s[1 : len(s)-1])
			assert.Equal(t, tok.Name, name)
			assert.Equal(t, tok.Attributes, attrs)
			assert.Equal(t, tok.Closing, closing)
		}
	}
}

func TestToken_String(t *testing.T) {
	assert.Equal(t, "</b>", el("b", true).String())
	assert.Equal(t, `<a href="x" id="y">`, ElementToken("a", map[string]string{"id": "y", "href": "x"}, false).String())
	assert.Equal(t, "hello", TextToken("hello").String())
	assert.Equal(t, "element", TokenElement.String())
}

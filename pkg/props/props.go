// Package props parses flat "name: value;" property lists and applies them
// to the layout configuration.
package props

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	propsLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
		{Name: "Color", Pattern: `#[0-9A-Fa-f]+`},
		{Name: "Number", Pattern: `[-+]?(?:\d+\.\d*|\.\d+|\d+)(?:px|pt|em|%)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_-][A-Za-z0-9_-]*`},
		{Name: "Colon", Pattern: `:`},
		{Name: "Punct", Pattern: `[(),./!+*%]`},
	})

	declParser = participle.MustBuild[declaration](
		participle.Lexer(propsLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)
)

type declaration struct {
	Pos   lexer.Position
	Name  string   `parser:"@Ident ':'"`
	Value []string `parser:"@(Ident | Number | Color | String | Punct)+"`
}

// DeclError reports one declaration that was skipped.
type DeclError struct {
	Decl string
	Err  error
}

func (e *DeclError) Error() string {
	return fmt.Sprintf("%q: %v", e.Decl, e.Err)
}

func (e *DeclError) Unwrap() error { return e.Err }

// Errors collects every skipped declaration of one Parse call.
type Errors []*DeclError

func (es Errors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return "props: " + strings.Join(msgs, "; ")
}

// Parse reads a property list. Names are lowercased and the last value of a
// repeated name wins. A malformed declaration is skipped up to the next ';'
// and reported in the returned Errors; the good declarations are still
// returned.
func Parse(src string) (map[string]string, error) {
	out := make(map[string]string)
	var errs Errors
	for _, raw := range strings.Split(src, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		decl, err := declParser.ParseString("", raw)
		if err != nil {
			errs = append(errs, &DeclError{Decl: raw, Err: err})
			continue
		}
		expand(out, strings.ToLower(decl.Name), strings.Join(decl.Value, " "))
	}
	if len(errs) > 0 {
		return out, errs
	}
	return out, nil
}

// expand writes a property, splitting the margin shorthand into its sides.
func expand(out map[string]string, name, value string) {
	if name != "margin" {
		out[name] = value
		return
	}
	parts := strings.Fields(value)
	if len(parts) == 0 {
		return
	}
	var top, right, bottom, left string
	switch len(parts) {
	case 1:
		top, right, bottom, left = parts[0], parts[0], parts[0], parts[0]
	case 2:
		top, bottom = parts[0], parts[0]
		right, left = parts[1], parts[1]
	case 3:
		top, bottom = parts[0], parts[2]
		right, left = parts[1], parts[1]
	default:
		top, right, bottom, left = parts[0], parts[1], parts[2], parts[3]
	}
	out["margin-top"] = top
	out["margin-right"] = right
	out["margin-bottom"] = bottom
	out["margin-left"] = left
}

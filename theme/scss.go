package theme

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Variable is top level SCSS variable declaration.
type Variable struct {
	Name  string
	Value string
	// declared with !default flag
	Default bool
}

// Sheet is what scanner learned about SCSS source.
type Sheet struct {
	Variables []Variable
	Imports   []string
	// number of top level blocks
	Blocks int
}

// Variable returns value of the last declaration of variable.
func (s *Sheet) Variable(name string) (string, bool) {
	for i := len(s.Variables) - 1; i >= 0; i-- {
		if s.Variables[i].Name == name {
			return s.Variables[i].Value, true
		}
	}
	return "", false
}

// Scanner looks at SCSS sources without compiling them. Plain CSS lexer is
// enough to find variables, imports and to make sure braces and strings are
// balanced.
type Scanner struct {
	log *zap.Logger
}

func NewScanner(log *zap.Logger) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{log: log.Named("scss")}
}

// Scan lexes data. Unterminated strings, urls, comments and unbalanced braces
// are reported as errors.
func (s *Scanner) Scan(data []byte, source string) (*Sheet, error) {
	sheet := &Sheet{}
	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(stripLineComments(data))))

	var (
		depth int
		// pending top level statement
		stmt []token
	)
	for {
		tt, text := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%s: %w", source, err)
			}
			if depth != 0 {
				return nil, fmt.Errorf("%s: %d unclosed block(s)", source, depth)
			}
			sheet.statement(stmt)
			s.log.Debug("Scanned SCSS",
				zap.String("source", source),
				zap.Int("variables", len(sheet.Variables)),
				zap.Int("imports", len(sheet.Imports)),
				zap.Int("blocks", sheet.Blocks))
			return sheet, nil
		case css.BadStringToken, css.BadURLToken:
			return nil, fmt.Errorf("%s: malformed token %q", source, text)
		case css.CommentToken:
			if bytes.HasPrefix(text, []byte("/*")) && !bytes.HasSuffix(text, []byte("*/")) {
				return nil, fmt.Errorf("%s: unterminated comment", source)
			}
		case css.LeftBraceToken:
			if depth == 0 {
				sheet.Blocks++
				stmt = nil
			}
			depth++
		case css.RightBraceToken:
			if depth == 0 {
				return nil, fmt.Errorf("%s: unexpected '}'", source)
			}
			depth--
		case css.SemicolonToken:
			if depth == 0 {
				sheet.statement(stmt)
				stmt = nil
			}
		default:
			if depth == 0 {
				stmt = append(stmt, token{tt, string(text)})
			}
		}
	}
}

// stripLineComments blanks SCSS "//" comments which CSS lexer does not
// know about. Comment must start a line or follow whitespace or
// punctuation, so "http://" survives.
func stripLineComments(data []byte) []byte {
	out := bytes.Clone(data)
	var quote byte
	for i := 0; i < len(out); i++ {
		c := out[i]
		switch {
		case quote != 0:
			if c == '\\' {
				i++
			} else if c == quote || c == '\n' {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '/' && i+1 < len(out) && out[i+1] == '*':
			end := bytes.Index(out[i+2:], []byte("*/"))
			if end < 0 {
				return out
			}
			i += end + 3
		case c == '/' && i+1 < len(out) && out[i+1] == '/' && (i == 0 || strings.IndexByte(" \t\r\n;{}", out[i-1]) >= 0):
			for ; i < len(out) && out[i] != '\n'; i++ {
				out[i] = ' '
			}
		}
	}
	return out
}

type token struct {
	tt   css.TokenType
	text string
}

// statement records variable declaration or import, anything else is
// ignored.
func (s *Sheet) statement(tokens []token) {
	for len(tokens) > 0 && tokens[0].tt == css.WhitespaceToken {
		tokens = tokens[1:]
	}
	if len(tokens) < 2 {
		return
	}

	switch {
	case tokens[0].tt == css.AtKeywordToken && tokens[0].text == "@import":
		for _, t := range tokens[1:] {
			if t.tt == css.StringToken {
				s.Imports = append(s.Imports, strings.Trim(t.text, `"'`))
			}
		}
	case tokens[0].tt == css.DelimToken && tokens[0].text == "$" && tokens[1].tt == css.IdentToken:
		rest := tokens[2:]
		for len(rest) > 0 && rest[0].tt == css.WhitespaceToken {
			rest = rest[1:]
		}
		if len(rest) == 0 || rest[0].tt != css.ColonToken {
			return
		}
		var value strings.Builder
		for _, t := range rest[1:] {
			if t.tt != css.CommentToken {
				value.WriteString(t.text)
			}
		}
		v := Variable{Name: tokens[1].text, Value: strings.TrimSpace(value.String())}
		if rest, ok := strings.CutSuffix(v.Value, "!default"); ok {
			v.Value, v.Default = strings.TrimSpace(rest), true
		}
		s.Variables = append(s.Variables, v)
	}
}

// Variables returns top level variable declarations found in data.
func Variables(data []byte) ([]Variable, error) {
	sheet, err := NewScanner(nil).Scan(data, "scss")
	if err != nil {
		return nil, err
	}
	return sheet.Variables, nil
}

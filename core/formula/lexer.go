package formula

import (
	"fmt"

	"github.com/shopspring/decimal"

	"price-list/internal/errors"
)

type tokenKind int

const (
	tokenEOF tokenKind = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenLParen
	tokenRParen
)

func (k tokenKind) String() string {
	switch k {
	case tokenEOF:
		return "end of formula"
	case tokenNumber:
		return "number"
	case tokenIdent:
		return "identifier"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	default:
		return "unknown"
	}
}

type token struct {
	kind  tokenKind
	text  string
	pos   int
	value decimal.Decimal
}

func (t token) String() string {
	if t.kind == tokenEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%q", t.text)
}

// tokenize splits src into tokens. Anything outside the formula alphabet is
// rejected here, before the parser sees it.
func tokenize(src string) ([]token, error) {
	var tokens []token
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case isDigit(c) || c == '.':
			start := i
			seenDot := false
			for i < len(src) && (isDigit(src[i]) || src[i] == '.') {
				if src[i] == '.' {
					if seenDot {
						return nil, errors.FormulaSyntax(i, "malformed number %q", src[start:i+1]).
							WithContext("token", src[start:i+1])
					}
					seenDot = true
				}
				i++
			}
			text := src[start:i]
			if text == "." {
				return nil, errors.FormulaSyntax(start, "unexpected token %q", text).WithContext("token", text)
			}
			if i < len(src) && isIdentStart(src[i]) {
				end := i
				for end < len(src) && isIdentPart(src[end]) {
					end++
				}
				return nil, errors.FormulaSyntax(start, "malformed number %q", src[start:end]).
					WithContext("token", src[start:end])
			}
			literal := text
			if literal[0] == '.' {
				literal = "0" + literal
			}
			if literal[len(literal)-1] == '.' {
				literal += "0"
			}
			value, err := decimal.NewFromString(literal)
			if err != nil {
				return nil, errors.Wrap(errors.TypeFormulaSyntax, fmt.Sprintf("malformed number %q", text), err).
					WithContext("position", start).WithContext("token", text)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, pos: start, value: value})
		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: src[start:i], pos: start})
		default:
			kind, ok := operators[c]
			if !ok {
				text := string(rune(c))
				if c >= 0x80 {
					text = fmt.Sprintf("\\x%02x", c)
				}
				return nil, errors.FormulaSyntax(i, "unexpected character %q", text).WithContext("token", text)
			}
			tokens = append(tokens, token{kind: kind, text: string(c), pos: i})
			i++
		}
	}
	return append(tokens, token{kind: tokenEOF, pos: len(src)}), nil
}

var operators = map[byte]tokenKind{
	'+': tokenPlus,
	'-': tokenMinus,
	'*': tokenStar,
	'/': tokenSlash,
	'(': tokenLParen,
	')': tokenRParen,
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

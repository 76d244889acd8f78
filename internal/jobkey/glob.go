package jobkey

import "strings"

// globMeta are the characters that turn a key segment into a pattern.
const globMeta = "*?["

// HasWildcard reports whether s contains any glob metacharacter.
func HasWildcard(s string) bool {
	return strings.ContainsAny(s, globMeta)
}

type tokenKind int

const (
	tokLiteral tokenKind = iota
	tokAny               // ?
	tokStar              // *
	tokClass             // [...]
)

type runeRange struct{ lo, hi rune }

type token struct {
	kind   tokenKind
	lit    rune
	negate bool
	ranges []runeRange
}

func (t token) matches(r rune) bool {
	switch t.kind {
	case tokLiteral:
		return t.lit == r
	case tokAny:
		return true
	case tokClass:
		in := false
		for _, rg := range t.ranges {
			if rg.lo <= r && r <= rg.hi {
				in = true
				break
			}
		}
		return in != t.negate
	}
	return false
}

// Glob is a compiled shell-style pattern with fnmatch semantics:
//
//	*       any run of characters, including '/' and the empty string
//	?       exactly one character
//	[seq]   one character in seq; ranges like a-z are allowed
//	[!seq]  one character not in seq
//
// A ']' directly after '[' or '[!' is part of the set. An unterminated '['
// matches itself. There is no escape character.
type Glob struct {
	pattern string
	tokens  []token
}

// CompileGlob translates pattern into a matcher. Every string is a valid pattern.
func CompileGlob(pattern string) Glob {
	rs := []rune(pattern)
	var tokens []token

	for i := 0; i < len(rs); {
		switch rs[i] {
		case '*':
			if n := len(tokens); n == 0 || tokens[n-1].kind != tokStar {
				tokens = append(tokens, token{kind: tokStar})
			}
			i++
		case '?':
			tokens = append(tokens, token{kind: tokAny})
			i++
		case '[':
			tok, next, ok := compileClass(rs, i+1)
			if !ok {
				tokens = append(tokens, token{kind: tokLiteral, lit: '['})
				i++
				continue
			}
			tokens = append(tokens, tok)
			i = next
		default:
			tokens = append(tokens, token{kind: tokLiteral, lit: rs[i]})
			i++
		}
	}

	return Glob{pattern: pattern, tokens: tokens}
}

// compileClass parses a bracket expression whose body starts at rs[start].
// It returns the index just past the closing ']', or ok=false if there is none.
func compileClass(rs []rune, start int) (token, int, bool) {
	k := start
	tok := token{kind: tokClass}
	if k < len(rs) && rs[k] == '!' {
		tok.negate = true
		k++
	}
	bodyStart := k
	if k < len(rs) && rs[k] == ']' {
		k++
	}
	for k < len(rs) && rs[k] != ']' {
		k++
	}
	if k >= len(rs) {
		return token{}, 0, false
	}

	body := rs[bodyStart:k]
	for j := 0; j < len(body); {
		if j+2 < len(body) && body[j+1] == '-' {
			tok.ranges = append(tok.ranges, runeRange{body[j], body[j+2]})
			j += 3
			continue
		}
		tok.ranges = append(tok.ranges, runeRange{body[j], body[j]})
		j++
	}

	return tok, k + 1, true
}

// String returns the source pattern.
func (g Glob) String() string {
	return g.pattern
}

// Match reports whether s matches the whole pattern.
func (g Glob) Match(s string) bool {
	rs := []rune(s)
	p, i := 0, 0
	starP, starI := -1, 0

	for i < len(rs) {
		if p < len(g.tokens) {
			t := g.tokens[p]
			if t.kind == tokStar {
				starP, starI = p, i
				p++
				continue
			}
			if t.matches(rs[i]) {
				p++
				i++
				continue
			}
		}
		// Mismatch: let the most recent star swallow one more character.
		if starP >= 0 {
			p = starP + 1
			starI++
			i = starI
			continue
		}
		return false
	}

	for p < len(g.tokens) && g.tokens[p].kind == tokStar {
		p++
	}
	return p == len(g.tokens)
}

// Match compiles pattern and matches s against it.
func Match(pattern, s string) bool {
	return CompileGlob(pattern).Match(s)
}

package indicator

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type node struct {
	name   string
	number float64
	args   []*node
	isNum  bool
}

func (n *node) String() string {
	if n.isNum {
		return strconv.FormatFloat(n.number, 'g', -1, 64)
	}
	if len(n.args) == 0 {
		return n.name
	}

	parts := make([]string, len(n.args))
	for i, a := range n.args {
		parts[i] = a.String()
	}
	return n.name + "(" + strings.Join(parts, ",") + ")"
}

type parser struct {
	src string
	pos int
}

func parse(ref string) (*node, error) {
	p := &parser{src: strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, ref)}

	n, err := p.parseRef()
	if err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrInvalidReference, ref, err)
	}
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("%w %q: unexpected %q at %d", ErrInvalidReference, ref, p.src[p.pos:], p.pos)
	}

	return n, nil
}

func (p *parser) parseRef() (*node, error) {
	start := p.pos
	for p.pos < len(p.src) && isIdent(p.src[p.pos]) {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("expected indicator name at %d", p.pos)
	}

	n := &node{name: strings.ToLower(p.src[start:p.pos])}
	if !p.accept('(') {
		return n, nil
	}

	for {
		arg, err := p.parseArg()
		if err != nil {
			return nil, err
		}
		n.args = append(n.args, arg)

		if p.accept(')') {
			return n, nil
		}
		if !p.accept(',') {
			return nil, fmt.Errorf("expected ',' or ')' at %d", p.pos)
		}
	}
}

func (p *parser) parseArg() (*node, error) {
	if p.pos < len(p.src) && isNumStart(p.src[p.pos]) {
		start := p.pos
		p.pos++
		for p.pos < len(p.src) && (isDigit(p.src[p.pos]) || p.src[p.pos] == '.') {
			p.pos++
		}

		v, err := strconv.ParseFloat(p.src[start:p.pos], 64)
		if err != nil {
			return nil, fmt.Errorf("bad number %q", p.src[start:p.pos])
		}
		return &node{number: v, isNum: true}, nil
	}

	return p.parseRef()
}

func (p *parser) accept(c byte) bool {
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func isIdent(c byte) bool {
	return c == '_' || c == '%' || isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isNumStart(c byte) bool {
	return isDigit(c) || c == '-' || c == '.'
}

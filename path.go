package glreflect

import (
	"strconv"
	"strings"
)

// A uniform name as reported by the front-end is parsed once into a path:
//
//	name    = segment { "." segment }
//	segment = ident [ "[" digits "]" ]
//	ident   = ( letter | "_" ) { letter | digit | "_" }
//
// "lights[1].color" is the path [lights[1], color]. GLSL ES has no arrays of
// arrays, so a segment carries at most one index. Indices are decimal
// without leading zeros and fit in 32 bits, so every name has exactly one
// spelling.

// segment is one component of a uniform path.
type segment struct {
	Name  string
	Index int64 // -1 when the segment is not indexed
}

func (s segment) indexed() bool { return s.Index >= 0 }

// key returns the segment as written in a uniform name.
func (s segment) key() string {
	if !s.indexed() {
		return s.Name
	}
	return s.Name + "[" + strconv.FormatInt(s.Index, 10) + "]"
}

type path []segment

// String joins the path back into a uniform name.
func (p path) String() string {
	parts := make([]string, len(p))
	for i, s := range p {
		parts[i] = s.key()
	}
	return strings.Join(parts, ".")
}

// parsePath parses a uniform name. Malformed names fail with ErrMalformedName.
func parsePath(name string) (path, error) {
	if name == "" {
		return nil, newError(ErrMalformedName, name, "empty name")
	}
	parts := strings.Split(name, ".")
	p := make(path, 0, len(parts))
	for _, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, newError(ErrMalformedName, name, "%s", err.Error())
		}
		p = append(p, seg)
	}
	return p, nil
}

type pathError string

func (e pathError) Error() string { return string(e) }

func parseSegment(s string) (segment, error) {
	open := strings.IndexByte(s, '[')
	ident := s
	if open >= 0 {
		ident = s[:open]
	}
	if !isIdent(ident) {
		return segment{}, pathError("invalid identifier " + strconv.Quote(ident))
	}
	if open < 0 {
		return segment{Name: ident, Index: -1}, nil
	}
	rest := s[open+1:]
	closing := strings.IndexByte(rest, ']')
	if closing < 0 {
		return segment{}, pathError("unterminated index in " + strconv.Quote(s))
	}
	if closing != len(rest)-1 {
		return segment{}, pathError("unexpected text after index in " + strconv.Quote(s))
	}
	digits := rest[:closing]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return segment{}, pathError("non-numeric index in " + strconv.Quote(s))
	}
	if len(digits) > 1 && digits[0] == '0' {
		return segment{}, pathError("leading zero in index in " + strconv.Quote(s))
	}
	idx, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return segment{}, pathError("index out of range in " + strconv.Quote(s))
	}
	return segment{Name: ident, Index: int64(idx)}, nil
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

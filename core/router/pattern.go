package router

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// segmentKind discriminates compiled pattern segments.
type segmentKind uint8

const (
	segLiteral segmentKind = iota
	segParam
	segWildcard
)

// wildcardUnbounded marks a wildcard with no upper count limit.
const wildcardUnbounded = -1

// segment is one compiled unit of a route pattern.
type segment struct {
	kind      segmentKind
	literal   string
	name      string   // capture name; empty for anonymous wildcards
	forbidden []string // param values that must not match
	min, max  int      // wildcard count range; max may be wildcardUnbounded
	catchAll  bool     // bare "*": consume the rest of the path and stop
}

// pattern is a compiled route pattern.
type pattern struct {
	raw    string
	static bool // no params or wildcards; matched by string comparison
	segs   []segment
}

// compilePattern parses a pattern string into matchable segments.
// Supported syntax per path segment:
//
//	literal         exact match
//	:name           named parameter, one segment
//	:name!a!b       named parameter with forbidden values
//	*               catch-all, rest of the path
//	*:name          named catch-all
//	*2 *1-3 *2-     counted wildcard (fixed, range, unbounded max)
//	*1-2:name       named counted wildcard
func compilePattern(raw string) (*pattern, error) {
	if len(raw) == 0 || raw[0] != '/' {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, raw)
	}

	p := &pattern{raw: raw}
	if !strings.ContainsAny(raw, ":*") {
		p.static = true
		return p, nil
	}

	seen := make(map[string]bool)
	for _, tok := range splitPath(raw) {
		seg, err := compileSegment(tok)
		if err != nil {
			return nil, fmt.Errorf("%w in %q", err, raw)
		}
		if seg.name != "" {
			if seen[seg.name] {
				return nil, fmt.Errorf("%w: %q in %q", ErrDuplicateParam, seg.name, raw)
			}
			seen[seg.name] = true
		}
		p.segs = append(p.segs, seg)
	}
	return p, nil
}

func compileSegment(tok string) (segment, error) {
	switch {
	case strings.HasPrefix(tok, ":"):
		parts := strings.Split(tok[1:], "!")
		if parts[0] == "" {
			return segment{}, ErrEmptyParamName
		}
		seg := segment{kind: segParam, name: parts[0]}
		if len(parts) > 1 {
			seg.forbidden = parts[1:]
		}
		return seg, nil

	case strings.HasPrefix(tok, "*"):
		return compileWildcard(tok[1:])

	default:
		return segment{literal: tok}, nil
	}
}

// compileWildcard parses the remainder of a "*" token: an optional count
// spec followed by an optional ":name" suffix.
func compileWildcard(rest string) (segment, error) {
	seg := segment{kind: segWildcard}

	if i := strings.IndexByte(rest, ':'); i >= 0 {
		seg.name = rest[i+1:]
		if seg.name == "" {
			return segment{}, ErrEmptyParamName
		}
		rest = rest[:i]
	}

	if rest == "" {
		seg.catchAll = true
		return seg, nil
	}

	lo, hi, ok := strings.Cut(rest, "-")
	min, err := strconv.Atoi(lo)
	if err != nil || min < 0 {
		return segment{}, fmt.Errorf("%w: %q", ErrInvalidWildcard, rest)
	}
	seg.min = min

	switch {
	case !ok:
		seg.max = min
	case hi == "":
		seg.max = wildcardUnbounded
	default:
		max, err := strconv.Atoi(hi)
		if err != nil || max < min {
			return segment{}, fmt.Errorf("%w: %q", ErrInvalidWildcard, rest)
		}
		seg.max = max
	}
	return seg, nil
}

// splitPath breaks a slash-delimited path into its segments.
// The root path yields no segments.
func splitPath(path string) []string {
	path = strings.TrimPrefix(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// match tests the pattern against a full path. The path must already be
// normalized (single leading slash, no trailing slash except root).
func (p *pattern) match(path string) (params map[string]string, captures map[string][]string, ok bool) {
	if p.static {
		if p.raw == path {
			return nil, nil, true
		}
		return nil, nil, false
	}

	segs := splitPath(path)
	params, captures, consumed, ok := matchSegments(p.segs, segs)
	if !ok || consumed != len(segs) {
		return nil, nil, false
	}
	return params, captures, true
}

// matchSegments matches pattern segments against path segments left to
// right and reports how many path segments were consumed. Counted
// wildcards backtrack by trying every count ascending from min and
// recursively matching the remaining pattern; the first count that lets
// the rest of the pattern succeed wins. Only the caller decides whether
// full path consumption is required, so the same matcher serves both the
// top-level and the recursive case.
func matchSegments(segs []segment, path []string) (params map[string]string, captures map[string][]string, consumed int, ok bool) {
	j := 0
	for i := range segs {
		seg := &segs[i]
		switch seg.kind {
		case segLiteral:
			if j >= len(path) || path[j] != seg.literal {
				return nil, nil, 0, false
			}
			j++

		case segParam:
			if j >= len(path) || slices.Contains(seg.forbidden, path[j]) {
				return nil, nil, 0, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.name] = path[j]
			j++

		case segWildcard:
			if seg.catchAll {
				// Rest-of-path terminator: everything after it in the
				// pattern is unreachable.
				if seg.name != "" {
					if captures == nil {
						captures = make(map[string][]string)
					}
					captures[seg.name] = path[j:]
				}
				return params, captures, len(path), true
			}

			rem := len(path) - j
			max := seg.max
			if max == wildcardUnbounded || max > rem {
				max = rem
			}
			for count := seg.min; count <= max; count++ {
				rest := path[j+count:]
				subParams, subCaptures, subN, ok := matchSegments(segs[i+1:], rest)
				// A count is only viable if the rest of the pattern eats
				// the rest of the path; a partial suffix match must not
				// commit, or a larger viable count would be lost.
				if !ok || subN != len(rest) {
					continue
				}
				params = mergeParams(params, subParams)
				captures = mergeCaptures(captures, subCaptures)
				if seg.name != "" {
					if captures == nil {
						captures = make(map[string][]string)
					}
					captures[seg.name] = path[j : j+count]
				}
				return params, captures, j + count + subN, true
			}
			return nil, nil, 0, false
		}
	}
	return params, captures, j, true
}

func mergeParams(dst, src map[string]string) map[string]string {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func mergeCaptures(dst, src map[string][]string) map[string][]string {
	if src == nil {
		return dst
	}
	if dst == nil {
		return src
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

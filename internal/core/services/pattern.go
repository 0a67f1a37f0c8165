package services

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

// PatternSet is a compiled list of path patterns.
//
// Pattern syntax, matched against the whole node path:
//
//	**       any run of characters, "/" included
//	*        any run of characters except "/"
//	?        one character except "/"
//	[abc]    character class, [!abc] negates
//	{regex}  an embedded regular expression
//	\x       the literal character x
type PatternSet struct {
	sources []string
	res     []*regexp.Regexp
}

// CompilePatterns compiles patterns. Surrounding whitespace is trimmed and
// blank entries are ignored.
func CompilePatterns(patterns []string, ignoreCase bool) (*PatternSet, error) {
	set := &PatternSet{}
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		re, err := compilePattern(p, ignoreCase)
		if err != nil {
			return nil, err
		}
		set.sources = append(set.sources, p)
		set.res = append(set.res, re)
	}
	return set, nil
}

// Len returns the number of compiled patterns.
func (s *PatternSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.res)
}

// Match reports whether any pattern matches path.
func (s *PatternSet) Match(path string) bool {
	if s == nil {
		return false
	}
	for _, re := range s.res {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Sources returns the trimmed pattern strings.
func (s *PatternSet) Sources() []string {
	if s == nil {
		return nil
	}
	return s.sources
}

func compilePattern(pattern string, ignoreCase bool) (*regexp.Regexp, error) {
	expr, err := globToRegexp(pattern)
	if err != nil {
		return nil, err
	}
	if ignoreCase {
		expr = "(?i)" + expr
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, domain.NewConfigError("pattern", "%q: %v", pattern, err)
	}
	return re, nil
}

//nolint:gocyclo // single-pass translator, one case per token
func globToRegexp(pattern string) (string, error) {
	var b strings.Builder
	b.WriteString("^(?:")

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '\\':
			if i+1 >= len(runes) {
				return "", domain.NewConfigError("pattern", "%q: trailing backslash", pattern)
			}
			i++
			b.WriteString(regexp.QuoteMeta(string(runes[i])))
		case '*':
			if i+1 < len(runes) && runes[i+1] == '*' {
				b.WriteString(".*")
				i++
			} else {
				b.WriteString("[^/]*")
			}
		case '?':
			b.WriteString("[^/]")
		case '[':
			end := closingBracket(runes, i)
			if end < 0 {
				return "", domain.NewConfigError("pattern", "%q: unterminated character class", pattern)
			}
			class := runes[i+1 : end]
			b.WriteByte('[')
			if len(class) > 0 && (class[0] == '!' || class[0] == '^') {
				b.WriteByte('^')
				class = class[1:]
			}
			for _, cc := range class {
				if cc == '\\' || cc == '[' || cc == ']' {
					b.WriteByte('\\')
				}
				b.WriteRune(cc)
			}
			b.WriteByte(']')
			i = end
		case '{':
			end := closingBrace(runes, i)
			if end < 0 {
				return "", domain.NewConfigError("pattern", "%q: unterminated regex group", pattern)
			}
			b.WriteString("(?:")
			b.WriteString(string(runes[i+1 : end]))
			b.WriteByte(')')
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(")$")
	return b.String(), nil
}

// closingBracket returns the index of the "]" ending the class opened at start.
// A "]" directly after "[" or "[!" is literal.
func closingBracket(runes []rune, start int) int {
	i := start + 1
	if i < len(runes) && (runes[i] == '!' || runes[i] == '^') {
		i++
	}
	if i < len(runes) && runes[i] == ']' {
		i++
	}
	for ; i < len(runes); i++ {
		if runes[i] == ']' {
			return i
		}
	}
	return -1
}

// closingBrace returns the index of the "}" balancing the "{" at start.
// Escaped braces inside the embedded expression do not count.
func closingBrace(runes []rune, start int) int {
	depth := 0
	for i := start; i < len(runes); i++ {
		switch runes[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repotree/internal/core/domain"
)

func TestCompilePatterns_Semantics(t *testing.T) {
	tests := []struct {
		pattern string
		path    string
		want    bool
	}{
		{"/groupA", "/groupA", true},
		{"/groupA", "/groupA/repo", false},
		{"/groupA/*", "/groupA/repo", true},
		{"/groupA/*", "/groupA/sub/repo", false},
		{"/groupA/**", "/groupA/sub/repo", true},
		{"/groupA/subgroup1**", "/groupA/subgroup1", true},
		{"/groupA/subgroup1**", "/groupA/subgroup1/repo1", true},
		{"/groupA/subgroup1**", "/groupA/repo2", false},
		{"**/repo?", "/groupA/sub/repo1", true},
		{"**/repo?", "/groupA/sub/repo12", false},
		{"/group?/x", "/group//x", false},
		{"/[gh]roup", "/group", true},
		{"/[gh]roup", "/froup", false},
		{"/[!gh]roup", "/froup", true},
		{"/[!gh]roup", "/group", false},
		{"/{[w].*}", "/web/frontend", true},
		{"/{[w].*}", "/api", false},
		{"/{api|web}/*", "/api/x", true},
		{"/{api|web}/*", "/cli/x", false},
		{"/a.b", "/a.b", true},
		{"/a.b", "/aXb", false},
		{"/with\\*star", "/with*star", true},
		{"/with\\*star", "/withXstar", false},
		{"/Group", "/group", false},
	}

	for _, tt := range tests {
		t.Run(tt.pattern+" "+tt.path, func(t *testing.T) {
			set, err := CompilePatterns([]string{tt.pattern}, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, set.Match(tt.path))
		})
	}
}

func TestCompilePatterns_IgnoreCase(t *testing.T) {
	set, err := CompilePatterns([]string{"/Group/**"}, true)
	require.NoError(t, err)
	assert.True(t, set.Match("/group/repo"))
}

func TestCompilePatterns_Invalid(t *testing.T) {
	for _, p := range []string{"/[abc", "/{unclosed", "/{(}", "/trailing\\"} {
		t.Run(p, func(t *testing.T) {
			_, err := CompilePatterns([]string{p}, false)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrConfiguration)
		})
	}
}

func TestCompilePatterns_TrimsAndSkipsBlank(t *testing.T) {
	set, err := CompilePatterns([]string{" /a ", "", "  "}, false)
	require.NoError(t, err)
	assert.Equal(t, 1, set.Len())
	assert.Equal(t, []string{"/a"}, set.Sources())
	assert.True(t, set.Match("/a"))
}

func TestPatternSet_NilAndEmpty(t *testing.T) {
	var nilSet *PatternSet
	assert.Equal(t, 0, nilSet.Len())
	assert.False(t, nilSet.Match("/x"))
	assert.Nil(t, nilSet.Sources())

	empty, err := CompilePatterns(nil, false)
	require.NoError(t, err)
	assert.False(t, empty.Match("/x"))
}

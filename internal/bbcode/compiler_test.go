package bbcode

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vse/abbc3-migrate/internal/errors"
)

func TestCompileKnownTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		match    string
		template string
		want     CompiledTag
	}{
		{
			name:     "argument with utf8 and text",
			match:    "[font={INTTEXT}]{TEXT}[/font]",
			template: `<span style="font-family: {INTTEXT};">{TEXT}</span>`,
			want: CompiledTag{
				Tag:               "font=",
				FirstPassMatch:    `!\[font\=([\p{L}\p{N}\-+,_. ]+)\](.*?)\[/font\]!ius`,
				FirstPassReplace:  `[font=${1}:$uid]${2}[/font:$uid]`,
				SecondPassMatch:   `!\[font\=([\p{L}\p{N}\-+,_. ]+):$uid\](.*?)\[/font:$uid\]!su`,
				SecondPassReplace: `<span style="font-family: ${1};">${2}</span>`,
			},
		},
		{
			name:     "plain text tag",
			match:    "[s]{TEXT}[/s]",
			template: `<span style="text-decoration: line-through;">{TEXT}</span>`,
			want: CompiledTag{
				Tag:               "s",
				FirstPassMatch:    `!\[s\](.*?)\[/s\]!is`,
				FirstPassReplace:  `[s:$uid]${1}[/s:$uid]`,
				SecondPassMatch:   `!\[s:$uid\](.*?)\[/s:$uid\]!s`,
				SecondPassReplace: `<span style="text-decoration: line-through;">${1}</span>`,
			},
		},
		{
			name:     "colour argument",
			match:    "[highlight={COLOR}]{TEXT}[/highlight]",
			template: `<span style="background-color: {COLOR};">{TEXT}</span>`,
			want: CompiledTag{
				Tag:               "highlight=",
				FirstPassMatch:    `!\[highlight\=([a-z]+|#[0-9abcdef]+)\](.*?)\[/highlight\]!is`,
				FirstPassReplace:  `[highlight=${1}:$uid]${2}[/highlight:$uid]`,
				SecondPassMatch:   `!\[highlight\=([a-zA-Z]+|#[0-9abcdefABCDEF]+):$uid\](.*?)\[/highlight:$uid\]!s`,
				SecondPassReplace: `<span style="background-color: ${1};">${2}</span>`,
			},
		},
		{
			name:     "no tokens",
			match:    "[hr]",
			template: "<hr />",
			want: CompiledTag{
				Tag:               "hr",
				FirstPassMatch:    `!\[hr\]!i`,
				FirstPassReplace:  `[hr:$uid]`,
				SecondPassMatch:   `[hr:$uid]`,
				SecondPassReplace: "",
			},
		},
	}

	compiler := NewCompiler()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := compiler.Compile(tt.match, tt.template)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompileLowercasesMixedCaseTag(t *testing.T) {
	t.Parallel()

	got, err := NewCompiler().Compile(
		"[BBvideo={NUMBER1},{NUMBER2}]{URL}[/BBvideo]",
		`<a href="{URL}" class="bbvideo" data-bbvideo="{NUMBER1},{NUMBER2}" target="_blank">{URL}</a>`,
	)
	require.NoError(t, err)

	assert.Equal(t, "bbvideo=", got.Tag)
	assert.NotContains(t, got.FirstPassMatch, "BBvideo")
	assert.NotContains(t, got.SecondPassMatch, "BBvideo")
	assert.Equal(t, `[bbvideo=${1},${2}:$uid]${3}[/bbvideo:$uid]`, got.FirstPassReplace)
	assert.Equal(t, `<a href="${3}" class="bbvideo" data-bbvideo="${1},${2}" target="_blank">${3}</a>`, got.SecondPassReplace)
	assert.True(t, got.HasTokens())
}

func TestCompileKeepsLanguagePlaceholders(t *testing.T) {
	t.Parallel()

	got, err := NewCompiler().Compile(
		"[mod={TEXT1}]{TEXT2}[/mod]",
		`<td class="rowuser">{TEXT1} {L_MESSAGE}:</td><td class="rowtext">{TEXT2}</td>`,
	)
	require.NoError(t, err)
	assert.Equal(t, `<td class="rowuser">${1} {L_MESSAGE}:</td><td class="rowtext">${2}</td>`, got.SecondPassReplace)
}

func TestCompileEscapesDollarInTemplate(t *testing.T) {
	t.Parallel()

	got, err := NewCompiler().Compile("[price]{NUMBER}[/price]", "<b>${NUMBER}</b>")
	require.NoError(t, err)
	assert.Equal(t, "<b>$$${1}</b>", got.SecondPassReplace)
}

func TestCompileErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		match    string
		template string
		sentinel error
	}{
		{"no opening tag", "{TEXT}", "<b>{TEXT}</b>", ErrInvalidTag},
		{"empty tag name", "[=x]{TEXT}[/x]", "<b>{TEXT}</b>", ErrInvalidTag},
		{"duplicate token", "[x={TEXT}]{TEXT}[/x]", "<b>{TEXT}</b>", ErrDuplicateToken},
		{"unbound template token", "[x]{TEXT}[/x]", `<a href="{URL}">{TEXT}</a>`, ErrUnboundToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewCompiler().Compile(tt.match, tt.template)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.True(t, errors.IsCategory(err, errors.CategoryCompile))
		})
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	t.Parallel()

	defs, err := Catalog()
	require.NoError(t, err)

	compiler := NewCompiler()
	for _, def := range defs {
		first, err := compiler.Compile(def.Match, def.Template)
		require.NoError(t, err, def.Name)
		second, err := compiler.Compile(def.Match, def.Template)
		require.NoError(t, err, def.Name)
		assert.Equal(t, first, second, def.Name)
	}
}

func TestCatalogCompilesToValidExpressions(t *testing.T) {
	t.Parallel()

	defs, err := Catalog()
	require.NoError(t, err)

	compiler := NewCompiler()
	for _, def := range defs {
		t.Run(def.Name, func(t *testing.T) {
			t.Parallel()
			c, err := compiler.Compile(def.Match, def.Template)
			require.NoError(t, err)

			assert.Regexp(t, `^[a-z0-9_-]+=?$`, c.Tag)
			// The catalog name either is the tag or starts with it.
			assert.True(t, strings.HasPrefix(strings.ToLower(def.Name), c.Tag) || strings.ToLower(def.Name)+"=" == c.Tag,
				"name %q tag %q", def.Name, c.Tag)

			for _, stored := range []string{c.FirstPassMatch, strings.ReplaceAll(c.SecondPassMatch, UIDPlaceholder, "1a2b")} {
				expr, err := GoExpression(stored)
				require.NoError(t, err)
				_, err = regexp.Compile(expr)
				require.NoError(t, err, expr)
			}
		})
	}
}

func TestGoExpression(t *testing.T) {
	t.Parallel()

	tests := []struct {
		stored  string
		want    string
		wantErr bool
	}{
		{`!\[s\](.*?)\[/s\]!is`, `(?is)\[s\](.*?)\[/s\]`, false},
		{`!\[b\]!`, `\[b\]`, false},
		{`!([\p{L}]+)!u`, `([\p{L}]+)`, false},
		{`!a\!b!i`, `(?i)a\!b`, false},
		{`!abc!e`, "", true},
		{`abc`, "", true},
		{`!`, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.stored, func(t *testing.T) {
			t.Parallel()
			got, err := GoExpression(tt.stored)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidExpression)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

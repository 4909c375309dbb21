package bbcode

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/vse/abbc3-migrate/internal/errors"
)

// UIDPlaceholder is substituted with the post's bbcode uid at render time.
const UIDPlaceholder = "$uid"

// Sentinel errors for compile failures
var (
	ErrInvalidTag        = errors.NewStd("invalid bbcode tag")
	ErrDuplicateToken    = errors.NewStd("duplicate token in match pattern")
	ErrUnboundToken      = errors.NewStd("template token missing from match pattern")
	ErrInvalidExpression = errors.NewStd("compiled expression is not a valid regular expression")
)

var (
	tokenPattern = regexp.MustCompile(`(?i)\{(URL|LOCAL_URL|RELATIVE_URL|EMAIL|TEXT|SIMPLETEXT|INTTEXT|IDENTIFIER|COLOR|NUMBER)[0-9]*\}`)

	openTagPattern        = regexp.MustCompile(`^\[(.*?)\]`)
	closeTagPattern       = regexp.MustCompile(`\[/(.*?)\]$`)
	quotedOpenTagPattern  = regexp.MustCompile(`^\\\[(.*?)\\\]`)
	quotedCloseTagPattern = regexp.MustCompile(`\\\[/(.*?)\\\]$`)

	tagNamePattern  = regexp.MustCompile(`(?i)\[([a-z0-9_-]+=?)`)
	validTagPattern = regexp.MustCompile(`^[a-z0-9_-]+=?$`)
)

// RegexpCompiler turns a Definition's match pattern and template into a
// CompiledTag. It is pure and safe for concurrent use.
type RegexpCompiler struct{}

// NewCompiler returns a RegexpCompiler.
func NewCompiler() *RegexpCompiler {
	return &RegexpCompiler{}
}

// Compile builds the two-pass rewrite rules for one tag.
func (c *RegexpCompiler) Compile(match, template string) (CompiledTag, error) {
	match = strings.TrimSpace(match)
	template = strings.TrimSpace(template)

	tag, search, err := extractTag(match)
	if err != nil {
		return CompiledTag{}, compileError(err, match)
	}

	utf8 := strings.Contains(match, "INTTEXT")

	fpMatch := quotePattern(match)
	fpReplace := openTagPattern.ReplaceAllString(match, "[${1}:$$uid]")
	fpReplace = closeTagPattern.ReplaceAllString(fpReplace, "[/${1}:$$uid]")

	spMatch := quotedOpenTagPattern.ReplaceAllString(fpMatch, `\[${1}:$$uid\]`)
	spMatch = quotedCloseTagPattern.ReplaceAllString(spMatch, `\[/${1}:$$uid\]`)
	spReplace := strings.ReplaceAll(template, "$", "$$")

	modifiers := "i"
	if utf8 {
		modifiers += "u"
	}

	found := tokenPattern.FindAllStringSubmatch(match, -1)
	if err := checkTokens(found, template); err != nil {
		return CompiledTag{}, compileError(err, match)
	}

	if len(found) == 0 {
		// Plain string replacement is enough for the second pass.
		compiled := CompiledTag{
			Tag:               tag,
			FirstPassMatch:    "!" + fpMatch + "!" + modifiers,
			FirstPassReplace:  fpReplace,
			SecondPassMatch:   fpReplace,
			SecondPassReplace: "",
		}
		return finish(compiled, search, match)
	}

	for n, m := range found {
		token, tokenType := m[0], strings.ToUpper(m[1])
		rule := tokenRules[tokenType]
		backref := "${" + strconv.Itoa(n+1) + "}"

		for _, flag := range rule.firstPassFlags {
			if !strings.ContainsRune(modifiers, flag) {
				modifiers += string(flag)
			}
		}

		fpMatch = strings.ReplaceAll(fpMatch, quotePattern(token), rule.firstPass)
		fpReplace = strings.ReplaceAll(fpReplace, token, backref)
		spMatch = strings.ReplaceAll(spMatch, quotePattern(token), rule.secondPass)
		spReplace = strings.ReplaceAll(spReplace, token, backref)
	}

	spModifiers := "s"
	if utf8 {
		spModifiers += "u"
	}

	compiled := CompiledTag{
		Tag:               tag,
		FirstPassMatch:    "!" + fpMatch + "!" + modifiers,
		FirstPassReplace:  fpReplace,
		SecondPassMatch:   "!" + spMatch + "!" + spModifiers,
		SecondPassReplace: spReplace,
	}
	return finish(compiled, search, match)
}

// finish canonicalises tag casing and validates the stored expressions.
func finish(c CompiledTag, search, match string) (CompiledTag, error) {
	c = lowercaseTagNames(c, search)
	if err := validate(c, match); err != nil {
		return CompiledTag{}, err
	}
	return c, nil
}

// extractTag returns the lowercased tag (with '=' when the opening tag takes
// an argument) and the bare tag name.
func extractTag(match string) (tag, search string, err error) {
	m := tagNamePattern.FindStringSubmatch(match)
	if m == nil {
		return "", "", fmt.Errorf("%w: no opening tag in %q", ErrInvalidTag, match)
	}

	tag = lowerTag(m[1])
	if !validTagPattern.MatchString(tag) {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidTag, tag)
	}
	return tag, strings.TrimSuffix(tag, "="), nil
}

// checkTokens rejects repeated match tokens and template tokens the match
// does not capture. Language placeholders such as {L_MESSAGE} are not tokens.
func checkTokens(found [][]string, template string) error {
	declared := make(map[string]bool, len(found))
	for _, m := range found {
		if declared[m[0]] {
			return fmt.Errorf("%w: %s", ErrDuplicateToken, m[0])
		}
		declared[m[0]] = true
	}

	for _, token := range tokenPattern.FindAllString(template, -1) {
		if !declared[token] {
			return fmt.Errorf("%w: %s", ErrUnboundToken, token)
		}
	}
	return nil
}

// lowercaseTagNames lowercases every "[name" and "[/name" occurrence so that
// stored patterns match the canonical tag regardless of catalog casing.
func lowercaseTagNames(c CompiledTag, search string) CompiledTag {
	re := regexp.MustCompile(`(?i)\[/?` + regexp.QuoteMeta(search))
	lower := func(s string) string {
		return re.ReplaceAllStringFunc(s, lowerTag)
	}
	c.FirstPassMatch = lower(c.FirstPassMatch)
	c.FirstPassReplace = lower(c.FirstPassReplace)
	c.SecondPassMatch = lower(c.SecondPassMatch)
	c.SecondPassReplace = lower(c.SecondPassReplace)
	return c
}

// validate checks that the stored match patterns translate to valid Go expressions.
func validate(c CompiledTag, match string) error {
	patterns := []string{c.FirstPassMatch}
	if c.HasTokens() {
		patterns = append(patterns, c.SecondPassMatch)
	}

	for _, stored := range patterns {
		expr, err := GoExpression(strings.ReplaceAll(stored, UIDPlaceholder, "0"))
		if err != nil {
			return compileError(err, match)
		}
		if _, err := regexp.Compile(expr); err != nil {
			return compileError(fmt.Errorf("%w: %w", ErrInvalidExpression, err), match)
		}
	}
	return nil
}

// GoExpression converts a stored "!body!flags" pattern to Go regexp syntax.
// The u modifier is implied since Go expressions always operate on UTF-8.
func GoExpression(stored string) (string, error) {
	last := strings.LastIndexByte(stored, '!')
	if len(stored) < 2 || stored[0] != '!' || last == 0 {
		return "", fmt.Errorf("%w: pattern %q is not delimited", ErrInvalidExpression, stored)
	}

	body, modifiers := stored[1:last], stored[last+1:]
	var flags strings.Builder
	for _, m := range modifiers {
		switch m {
		case 'i', 's':
			flags.WriteRune(m)
		case 'u':
		default:
			return "", fmt.Errorf("%w: unsupported modifier %q", ErrInvalidExpression, m)
		}
	}

	if flags.Len() == 0 {
		return body, nil
	}
	return "(?" + flags.String() + ")" + body, nil
}

// quotePattern escapes regular expression metacharacters and the '!' delimiter.
func quotePattern(s string) string {
	const special = `.\+*?[^]$(){}=!<>|:-#`

	var b strings.Builder
	b.Grow(len(s) * 2)
	for _, r := range s {
		if strings.ContainsRune(special, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func lowerTag(s string) string {
	return cases.Lower(language.Und).String(s)
}

func compileError(err error, match string) error {
	return errors.New(err).
		Component("bbcode").
		Category(errors.CategoryCompile).
		Context("match", match).
		Build()
}

package bbcode

import (
	"html"
	"regexp"
	"strings"

	"github.com/patrickmn/go-cache"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var langPlaceholder = regexp.MustCompile(`\{L_([A-Z0-9_]+)\}`)

// Renderer runs compiled tags over post text the way the forum displays them:
// the first pass tags raw markup with the post uid, the second pass turns
// uid-tagged markup into HTML. Compiled expressions are cached by pattern.
type Renderer struct {
	patterns *cache.Cache
	lang     map[string]string
}

// NewRenderer returns a Renderer resolving {L_*} placeholders from lang.
// Missing keys fall back to the key in title case, e.g. L_MESSAGE becomes "Message".
func NewRenderer(lang map[string]string) *Renderer {
	return &Renderer{
		patterns: cache.New(cache.NoExpiration, 0),
		lang:     lang,
	}
}

// Apply escapes text and runs both passes.
func (r *Renderer) Apply(c CompiledTag, template, text, uid string) (string, error) {
	tagged, err := r.FirstPass(c, html.EscapeString(text), uid)
	if err != nil {
		return "", err
	}
	return r.SecondPass(c, template, tagged, uid)
}

// FirstPass rewrites raw markup into its uid-tagged form.
func (r *Renderer) FirstPass(c CompiledTag, text, uid string) (string, error) {
	re, err := r.compile(c.FirstPassMatch)
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(text, strings.ReplaceAll(c.FirstPassReplace, UIDPlaceholder, uid)), nil
}

// SecondPass rewrites uid-tagged markup into HTML. Tags without tokens use
// template as a plain string replacement.
func (r *Renderer) SecondPass(c CompiledTag, template, text, uid string) (string, error) {
	if !c.HasTokens() {
		search := strings.ReplaceAll(c.SecondPassMatch, UIDPlaceholder, uid)
		return strings.ReplaceAll(text, search, r.resolveLang(template, false)), nil
	}

	re, err := r.compile(strings.ReplaceAll(c.SecondPassMatch, UIDPlaceholder, regexp.QuoteMeta(uid)))
	if err != nil {
		return "", err
	}
	return re.ReplaceAllString(text, r.resolveLang(c.SecondPassReplace, true)), nil
}

// compile converts and compiles a stored pattern, reusing earlier results.
func (r *Renderer) compile(stored string) (*regexp.Regexp, error) {
	if cached, ok := r.patterns.Get(stored); ok {
		if re, ok := cached.(*regexp.Regexp); ok {
			return re, nil
		}
	}

	expr, err := GoExpression(stored)
	if err != nil {
		return nil, compileError(err, stored)
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, compileError(err, stored)
	}

	r.patterns.SetDefault(stored, re)
	return re, nil
}

// resolveLang substitutes language placeholders. When the result is used as
// a regexp replacement, '$' in translations is escaped.
func (r *Renderer) resolveLang(template string, expand bool) string {
	return langPlaceholder.ReplaceAllStringFunc(template, func(placeholder string) string {
		key := langPlaceholder.FindStringSubmatch(placeholder)[1]
		value, ok := r.lang[key]
		if !ok {
			value = cases.Title(language.Und).String(strings.ToLower(strings.ReplaceAll(key, "_", " ")))
		}
		if expand {
			value = strings.ReplaceAll(value, "$", "$$")
		}
		return value
	})
}

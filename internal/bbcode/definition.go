// Package bbcode holds the ABBC3 tag catalog and compiles tag definitions
// into the two-pass search/replace rules stored in the forum's bbcodes table.
package bbcode

// Definition is one catalog entry: a bracket-tag syntax and the HTML it renders to.
type Definition struct {
	Name     string `yaml:"name"`     // catalog key, e.g. "font=" or "align=center"
	Helpline string `yaml:"helpline"` // language key of the posting help text
	Match    string `yaml:"match"`    // bracket syntax with {TOKEN} placeholders
	Template string `yaml:"template"` // HTML with the same placeholders
}

// CompiledTag is the output of compiling a Definition.
//
// Match patterns are stored delimited by '!' followed by modifier letters
// (i, s, u), the format the forum's bbcodes table uses. The literal
// placeholder $uid stands for the per-post bbcode uid.
type CompiledTag struct {
	Tag               string // lowercased opening tag, with a trailing '=' when it takes an argument
	FirstPassMatch    string
	FirstPassReplace  string
	SecondPassMatch   string
	SecondPassReplace string
}

// HasTokens reports whether the second pass is a regular expression. Tags
// without placeholders store the uid-tagged markup verbatim as the second
// pass match and an empty second pass replacement.
func (c CompiledTag) HasTokens() bool {
	return c.SecondPassMatch != c.FirstPassReplace || c.SecondPassReplace != ""
}

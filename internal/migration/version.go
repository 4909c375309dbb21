package migration

import (
	"strings"

	"golang.org/x/mod/semver"
)

// VersionAtLeast reports whether current >= want. Both are dotted versions
// with an optional "v" prefix; suffixes such as "-b1" or "-RC1" are
// pre-releases of the base version, with b sorting before rc. An empty or
// unparsable current version is never at least want.
func VersionAtLeast(current, want string) bool {
	c, w := canonical(current), canonical(want)
	if !semver.IsValid(c) || !semver.IsValid(w) {
		return false
	}
	return semver.Compare(c, w) >= 0
}

func canonical(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == "" {
		return ""
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	return v
}

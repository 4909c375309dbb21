package bbcode

// tokenRule describes how one placeholder type is matched in each pass.
// Every expression contains exactly one capturing group.
type tokenRule struct {
	firstPass      string
	firstPassFlags string
	secondPass     string
}

var tokenRules = map[string]tokenRule{
	"URL": {
		firstPass:      `((?:(?:https?|ftp)://|www\.)[^\s"'<>\[\]]+)`,
		firstPassFlags: "i",
		secondPass:     `(?i)((?:(?:https?|ftp)://|www\.)[^\s"'<>\[\]]+)(?-i)`,
	},
	"LOCAL_URL": {
		firstPass:  `([a-zA-Z0-9\-._~\!$&()*+,;=:@|/%?#]+)`,
		secondPass: `(?i)([a-zA-Z0-9\-._~\!$&()*+,;=:@|/%?#]+)(?-i)`,
	},
	"RELATIVE_URL": {
		firstPass:  `([a-zA-Z0-9\-._~\!$&()*+,;=:@|/%?#]+)`,
		secondPass: `(?i)([a-zA-Z0-9\-._~\!$&()*+,;=:@|/%?#]+)(?-i)`,
	},
	"EMAIL": {
		firstPass:      `([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`,
		firstPassFlags: "i",
		secondPass:     `([a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,})`,
	},
	"TEXT": {
		firstPass:      `(.*?)`,
		firstPassFlags: "s",
		secondPass:     `(.*?)`,
	},
	"SIMPLETEXT": {
		firstPass:  `([a-zA-Z0-9\-+.,_ ]+)`,
		secondPass: `([a-zA-Z0-9\-+.,_ ]+)`,
	},
	"INTTEXT": {
		firstPass:      `([\p{L}\p{N}\-+,_. ]+)`,
		firstPassFlags: "u",
		secondPass:     `([\p{L}\p{N}\-+,_. ]+)`,
	},
	"IDENTIFIER": {
		firstPass:  `([a-zA-Z0-9\-_]+)`,
		secondPass: `([a-zA-Z0-9\-_]+)`,
	},
	"COLOR": {
		firstPass:      `([a-z]+|#[0-9abcdef]+)`,
		firstPassFlags: "i",
		secondPass:     `([a-zA-Z]+|#[0-9abcdefABCDEF]+)`,
	},
	"NUMBER": {
		firstPass:  `([0-9]+)`,
		secondPass: `([0-9]+)`,
	},
}

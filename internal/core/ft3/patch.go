package ft3

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrFieldNotFound = errors.New("ft3_tactics field not found")

var (
	// ft3_tactics: [...] with an optional trailing comment and trailing blanks.
	flowTactics = regexp.MustCompile(`(?m)^(ft3_tactics:[ \t]*\[[^\n]*?\])([ \t]*#[^\r\n]*)?[ \t]*(\r?)$`)
	// ft3_tactics: followed by zero or more "- item" lines. Comment and
	// blank lines are taken only when another item follows them.
	blockTactics = regexp.MustCompile(`(?m)^ft3_tactics:[ \t]*(\r?\n)((?:(?:[ \t]*(?:#[^\n]*)?\r?\n)*[ \t]*-[ \t]+[^\n]*\n)*)`)
)

// TacticsLine renders the replacement field as a single flow sequence.
func TacticsLine(ids []string) string {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, fmt.Sprintf("%q", id))
	}
	return "ft3_tactics: [" + strings.Join(quoted, ", ") + "]"
}

// PatchTactics rewrites the first ft3_tactics field in a YAML header to
// hold ids and leaves every other byte untouched. A trailing comment on a
// flow sequence is kept. Patching twice with the same ids is a no-op.
func PatchTactics(header string, ids []string) (string, error) {
	line := TacticsLine(ids)

	if loc := flowTactics.FindStringSubmatchIndex(header); loc != nil {
		comment := submatch(header, loc, 2)
		cr := submatch(header, loc, 3)
		return header[:loc[0]] + line + comment + cr + header[loc[1]:], nil
	}

	if loc := blockTactics.FindStringSubmatchIndex(header); loc != nil {
		eol := submatch(header, loc, 1)
		return header[:loc[0]] + line + eol + header[loc[1]:], nil
	}

	return header, ErrFieldNotFound
}

func submatch(s string, loc []int, n int) string {
	if loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

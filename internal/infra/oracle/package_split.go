package oracle

import (
	"regexp"
	"strings"

	"github.com/chandueddala/Migration-Oracle-Sql-v-2--sub002/internal/core/domain"
)

// Member is one procedure or function extracted from a package body.
type Member struct {
	Name string
	Kind domain.ObjectKind
	Text string
}

// memberStart matches a top-of-line PROCEDURE or FUNCTION declaration
// inside a package body. Nested declarations are indented under their
// parent's IS/AS block, so requiring two or fewer leading spaces keeps
// locals out of the split.
var memberStart = regexp.MustCompile(`(?im)^[ \t]{0,2}(PROCEDURE|FUNCTION)\s+([A-Za-z][A-Za-z0-9_$#]*)`)

// SplitPackage decomposes a package body into standalone members, each
// rewritten as a CREATE OR REPLACE statement so it can be migrated like
// any other code object. The input is the body source as stored in
// ALL_SOURCE (without the CREATE wrapper).
func SplitPackage(body string) []Member {
	matches := memberStart.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		return nil
	}

	members := make([]Member, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		keyword := strings.ToUpper(body[m[2]:m[3]])
		name := strings.ToUpper(body[m[4]:m[5]])

		kind := domain.KindProcedure
		if keyword == "FUNCTION" {
			kind = domain.KindFunction
		}

		text := strings.TrimSpace(body[start:end])
		text = strings.TrimSuffix(text, "/")
		text = strings.TrimSpace(text)
		// Trailing END <package>; of the body belongs to the wrapper,
		// not the last member.
		text = trimPackageEnd(text)

		members = append(members, Member{
			Name: name,
			Kind: kind,
			Text: "CREATE OR REPLACE " + text,
		})
	}
	return members
}

var packageEnd = regexp.MustCompile(`(?is)\bEND\s+[A-Za-z][A-Za-z0-9_$#]*\s*;\s*$`)

func trimPackageEnd(text string) string {
	// A member ends with "END;" or "END <member>;". When the final
	// member drags the package terminator along, both END clauses are
	// present and the last one names the package.
	loc := packageEnd.FindStringIndex(text)
	if loc == nil {
		return text
	}
	before := strings.TrimSpace(text[:loc[0]])
	if strings.HasSuffix(strings.ToUpper(before), "END;") || packageEnd.MatchString(before) {
		return before
	}
	return text
}

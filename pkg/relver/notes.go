package relver

import (
	"fmt"
	"strings"
)

// Notes renders grouped release notes in markdown from the commits since the
// last release. The groups follow the conventional commit types; commits
// without a conventional subject end up under "Other Changes".
func Notes(version Version, commits []Commit) string {
	var (
		breaking []Commit
		features []Commit
		fixes    []Commit
		other    []Commit
	)

	for _, c := range commits {
		ctype, _, _, ok := conventional(c.Subject)

		switch {
		case isBreaking(c):
			breaking = append(breaking, c)
		case ok && ctype == "feat":
			features = append(features, c)
		case ok && (ctype == "fix" || ctype == "perf"):
			fixes = append(fixes, c)
		default:
			other = append(other, c)
		}
	}

	buf := new(strings.Builder)
	fmt.Fprintf(buf, "## %s\n", version.String())

	section := func(title string, commits []Commit) {
		if len(commits) == 0 {
			return
		}

		fmt.Fprintf(buf, "\n### %s\n\n", title)
		for _, c := range commits {
			subject := c.Subject
			_, _, desc, ok := conventional(c.Subject)
			if ok {
				subject = desc
			}

			if c.Hash == "" {
				fmt.Fprintf(buf, "* %s\n", subject)
			} else {
				fmt.Fprintf(buf, "* %s (%s)\n", subject, c.ShortHash())
			}
		}
	}

	section("Breaking Changes", breaking)
	section("Features", features)
	section("Fixes", fixes)
	section("Other Changes", other)

	return buf.String()
}

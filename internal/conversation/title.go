package conversation

import (
	"github.com/rivo/uniseg"
)

// TitleLength is the number of characters kept when deriving a title.
const TitleLength = 40

const ellipsis = "..."

// Title derives a record title from the input that created it: the first
// TitleLength characters, followed by "..." only if the input was longer.
// Characters are grapheme clusters, so combined emoji are never split.
func Title(input string) string {
	g := uniseg.NewGraphemes(input)
	n := 0
	for g.Next() {
		n++
		if n == TitleLength {
			_, end := g.Positions()
			if g.Next() {
				return input[:end] + ellipsis
			}
			return input
		}
	}
	return input
}

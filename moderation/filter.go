// Package moderation masks forbidden words in user-authored content before
// it is persisted or pushed. Matching runs over a normalized view of the
// text (lowercased, leet substitutions undone, separators stripped) so that
// trivial obfuscation does not defeat the word list, while masking is
// applied to the original runes to preserve spacing.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// leet maps common look-alike characters back to the letter they stand for.
var leet = map[rune]rune{
	'4': 'a', '@': 'a',
	'3': 'e', '€': 'e',
	'1': 'i', '!': 'i', '|': 'i',
	'0': 'o',
	'5': 's', '$': 's',
}

// Filter holds a compiled Aho-Corasick automaton over the word list.
// A Filter is immutable after construction and safe for concurrent use.
type Filter struct {
	machine *goahocorasick.Machine
	mask    rune
	empty   bool
}

// New compiles the word list. An empty list yields a pass-through filter.
func New(words []string, mask rune) (*Filter, error) {
	if len(words) == 0 {
		return &Filter{mask: mask, empty: true}, nil
	}
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if norm, _ := normalize(w); len(norm) > 0 {
			patterns = append(patterns, norm)
		}
	}
	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	return &Filter{machine: machine, mask: mask}, nil
}

// Mask returns s with every listed word overwritten by the mask rune.
func (f *Filter) Mask(s string) string {
	if f.empty {
		return s
	}
	norm, origIdx := normalize(s)
	if len(norm) == 0 {
		return s
	}
	terms := f.machine.MultiPatternSearch(norm, false)
	if len(terms) == 0 {
		return s
	}

	out := []rune(s)
	for _, term := range terms {
		start := term.Pos
		end := start + len(term.Word)
		if start < 0 || end > len(origIdx) {
			continue
		}
		// origIdx maps normalized positions back onto the original runes;
		// the span between the first and last matched rune is masked whole,
		// separator noise included.
		for i := origIdx[start]; i <= origIdx[end-1]; i++ {
			out[i] = f.mask
		}
	}
	return string(out)
}

// normalize lowercases, undoes leet substitutions, and drops separator
// runes. The second return value maps each normalized position to the index
// of the originating rune in the input.
func normalize(s string) ([]rune, []int) {
	in := []rune(s)
	norm := make([]rune, 0, len(in))
	origIdx := make([]int, 0, len(in))
	for i, r := range in {
		if sub, ok := leet[r]; ok {
			r = sub
		}
		if unicode.IsSpace(r) || r == '.' || r == '-' || r == '_' || r == '*' {
			continue
		}
		norm = append(norm, unicode.ToLower(r))
		origIdx = append(origIdx, i)
	}
	return norm, origIdx
}

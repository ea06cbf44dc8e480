package projector

import (
	"regexp"
	"sort"
)

// linkPattern matches [text], [text][ref] and [text](url). Images are excluded by the caller
// checking the byte before the match.
var linkPattern = regexp.MustCompile(`\[([^\]]+)\](?:\[([^\]]+)\]|\(.*?\))?`)

// LinkSet is the set of link-reference names used in a document.
type LinkSet map[string]bool

// Has reports whether name is used. A nil set reports every name as used.
func (s LinkSet) Has(name string) bool {
	if s == nil {
		return true
	}
	return s[name]
}

// Names returns the used names sorted.
func (s LinkSet) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ReferencedLinks scans content for reference-style link usages. For [text][ref] the name is ref;
// for a bare [ref] not followed by "(" the name is ref; inline links [text](url) and images are
// not references.
func ReferencedLinks(content string) LinkSet {
	used := LinkSet{}
	for _, m := range linkPattern.FindAllStringSubmatchIndex(content, -1) {
		if m[0] > 0 && content[m[0]-1] == '!' {
			continue
		}
		if m[4] >= 0 {
			used[content[m[4]:m[5]]] = true
			continue
		}
		// inline link: the whole match runs past the closing bracket of the text
		if m[1] > m[3]+1 {
			continue
		}
		used[content[m[2]:m[3]]] = true
	}
	return used
}

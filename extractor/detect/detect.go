// Package detect picks the extraction profile for a statement from its
// filename and text.
package detect

import (
	"strings"

	"github.com/aqlanhadi/stmtsense/extractor/common"
	"github.com/cloudflare/ahocorasick"
)

// Detector matches provider markers. It is safe for concurrent use.
type Detector struct {
	matcher *ahocorasick.Matcher
	// owners maps a dictionary index to the position of its profile.
	owners   []int
	profiles []common.ProfileID
	fallback common.ProfileID
}

// New builds a detector over the markers of the given profiles. Earlier
// profiles win when markers of several profiles match the same input.
func New(profiles []common.Profile) *Detector {
	d := &Detector{fallback: common.ProfileGeneric}

	var dictionary [][]byte
	for i, p := range profiles {
		d.profiles = append(d.profiles, p.ID)
		for _, marker := range p.Markers {
			marker = strings.ToLower(strings.TrimSpace(marker))
			if marker == "" {
				continue
			}
			dictionary = append(dictionary, []byte(marker))
			d.owners = append(d.owners, i)
		}
	}

	if len(dictionary) > 0 {
		d.matcher = ahocorasick.NewMatcher(dictionary)
	}
	return d
}

// Detect searches the filename first and the text second. The first input
// with any marker decides the profile; no marker at all means generic.
func (d *Detector) Detect(filename, sampleText string) common.ProfileID {
	for _, input := range []string{filename, sampleText} {
		if id, ok := d.match(input); ok {
			return id
		}
	}
	return d.fallback
}

func (d *Detector) match(input string) (common.ProfileID, bool) {
	if d.matcher == nil || input == "" {
		return "", false
	}

	hits := d.matcher.MatchThreadSafe([]byte(strings.ToLower(input)))
	best := -1
	for _, idx := range hits {
		if idx < 0 || idx >= len(d.owners) {
			continue
		}
		if owner := d.owners[idx]; best == -1 || owner < best {
			best = owner
		}
	}

	if best == -1 {
		return "", false
	}
	return d.profiles[best], true
}

package common

import "regexp"

type ProfileID string

const (
	ProfileMpesa   ProfileID = "mpesa"
	ProfileEquity  ProfileID = "equity"
	ProfileKCB     ProfileID = "kcb"
	ProfileGeneric ProfileID = "generic"
)

// KnownProfiles is the closed set of profile ids, in default detection priority.
var KnownProfiles = []ProfileID{ProfileMpesa, ProfileEquity, ProfileKCB, ProfileGeneric}

func IsKnownProfile(id ProfileID) bool {
	for _, known := range KnownProfiles {
		if known == id {
			return true
		}
	}
	return false
}

// DateOrder is the day/month convention of slash and dash dates.
type DateOrder string

const (
	DayFirst   DateOrder = "dmy"
	MonthFirst DateOrder = "mdy"
)

// Profile is the extraction rule set for one statement provider. Profiles are
// built once by the config loader and only read afterwards.
type Profile struct {
	ID        ProfileID
	Markers   []string
	Currency  string
	DateOrder DateOrder

	SectionHeader string
	ColumnHeader  string
	Labels        []string

	Patterns       []*regexp.Regexp
	FallbackDate   *regexp.Regexp
	FallbackAmount *regexp.Regexp
}

// MobileMoney reports whether the profile uses the labelled-section layout
// instead of dated patterns.
func (p Profile) MobileMoney() bool {
	return p.SectionHeader != "" && len(p.Labels) > 0
}

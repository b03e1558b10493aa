package auth

import (
	"fmt"
	"sort"
	"strings"
)

// Capability names a single permission an evaluator account can hold.
type Capability uint8

// Capabilities understood by the access-control gate. The order is part of the
// bit layout of Set and must only ever be appended to.
const (
	ViewAdminStats Capability = iota
	EditContests
	DeleteContests
	AddContests
	AddEntries
	EditEntries
	DeleteEntries
	AddUsers
	ViewJudgingSettings
	ViewTimeline
	EditUserProfiles
	ViewAllEvaluations
	AssignEntryGroups
	ViewAllTasks
	EditAllTasks
	DeleteAllTasks
	ManageAnnouncements
	ViewErrors
	DeleteErrors
	AddTasks
	ViewAllUsers
	JudgeEntries
	ManageWinners
	AssignEvaluatorGroups
	EditAllEvaluations
	DeleteAllEvaluations
	ManageJudgingGroups
	DeleteUsers
	ChangeUserPermissions
	VoteEntries

	capabilityCount
)

var capabilityNames = [capabilityCount]string{
	ViewAdminStats:        "view_admin_stats",
	EditContests:          "edit_contests",
	DeleteContests:        "delete_contests",
	AddContests:           "add_contests",
	AddEntries:            "add_entries",
	EditEntries:           "edit_entries",
	DeleteEntries:         "delete_entries",
	AddUsers:              "add_users",
	ViewJudgingSettings:   "view_judging_settings",
	ViewTimeline:          "view_timeline",
	EditUserProfiles:      "edit_user_profiles",
	ViewAllEvaluations:    "view_all_evaluations",
	AssignEntryGroups:     "assign_entry_groups",
	ViewAllTasks:          "view_all_tasks",
	EditAllTasks:          "edit_all_tasks",
	DeleteAllTasks:        "delete_all_tasks",
	ManageAnnouncements:   "manage_announcements",
	ViewErrors:            "view_errors",
	DeleteErrors:          "delete_errors",
	AddTasks:              "add_tasks",
	ViewAllUsers:          "view_all_users",
	JudgeEntries:          "judge_entries",
	ManageWinners:         "manage_winners",
	AssignEvaluatorGroups: "assign_evaluator_groups",
	EditAllEvaluations:    "edit_all_evaluations",
	DeleteAllEvaluations:  "delete_all_evaluations",
	ManageJudgingGroups:   "manage_judging_groups",
	DeleteUsers:           "delete_users",
	ChangeUserPermissions: "change_user_permissions",
	VoteEntries:           "vote_entries",
}

var capabilityByName = func() map[string]Capability {
	index := make(map[string]Capability, capabilityCount)
	for i, name := range capabilityNames {
		index[name] = Capability(i)
	}
	return index
}()

// String returns the wire name of the capability.
func (c Capability) String() string {
	if c >= capabilityCount {
		return fmt.Sprintf("capability(%d)", uint8(c))
	}
	return capabilityNames[c]
}

// ParseCapability resolves a wire name such as "judge_entries".
func ParseCapability(name string) (Capability, bool) {
	c, ok := capabilityByName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// AllCapabilities lists every known capability in declaration order.
func AllCapabilities() []Capability {
	all := make([]Capability, 0, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		all = append(all, c)
	}
	return all
}

// Set is a permission bag backed by a bitmask.
type Set uint64

// NewSet builds a set holding the given capabilities.
func NewSet(caps ...Capability) Set {
	var s Set
	for _, c := range caps {
		s = s.Add(c)
	}
	return s
}

// Has reports whether the capability is granted.
func (s Set) Has(c Capability) bool {
	if c >= capabilityCount {
		return false
	}
	return s&(1<<c) != 0
}

// Add returns a copy of the set with c granted.
func (s Set) Add(c Capability) Set {
	if c >= capabilityCount {
		return s
	}
	return s | (1 << c)
}

// Remove returns a copy of the set with c revoked.
func (s Set) Remove(c Capability) Set {
	if c >= capabilityCount {
		return s
	}
	return s &^ (1 << c)
}

// Names returns the granted capability names sorted alphabetically.
func (s Set) Names() []string {
	names := make([]string, 0)
	for c := Capability(0); c < capabilityCount; c++ {
		if s.Has(c) {
			names = append(names, c.String())
		}
	}
	sort.Strings(names)
	return names
}

// ToMap renders the set as the named-boolean bag stored on evaluator rows and in tokens.
func (s Set) ToMap() map[string]bool {
	out := make(map[string]bool, capabilityCount)
	for c := Capability(0); c < capabilityCount; c++ {
		out[c.String()] = s.Has(c)
	}
	return out
}

// FromMap converts a named-boolean bag into a Set. Unknown names are returned
// separately so callers can reject or log them instead of silently ignoring a typo.
func FromMap(bag map[string]interface{}) (Set, []string) {
	var s Set
	var unknown []string
	for name, raw := range bag {
		c, ok := ParseCapability(name)
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		if truthy(raw) {
			s = s.Add(c)
		}
	}
	sort.Strings(unknown)
	return s, unknown
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes":
			return true
		}
	}
	return false
}

package models

import "strings"

// Level is the skill classification of an entry or of a single evaluation.
type Level string

// Known skill levels.
const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
	LevelTBD          Level = "TBD"
)

// Levels lists the assignable levels in ascending order.
var Levels = []Level{LevelBeginner, LevelIntermediate, LevelAdvanced}

// ParseLevel resolves a level name case-insensitively.
func ParseLevel(value string) (Level, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "beginner":
		return LevelBeginner, true
	case "intermediate":
		return LevelIntermediate, true
	case "advanced":
		return LevelAdvanced, true
	case "tbd", "":
		return LevelTBD, true
	}
	return "", false
}

// Rank orders levels Beginner < Intermediate < Advanced < TBD.
func (l Level) Rank() int {
	switch l {
	case LevelBeginner:
		return 1
	case LevelIntermediate:
		return 2
	case LevelAdvanced:
		return 3
	default:
		return 4
	}
}

// Assignable reports whether the level is a concrete skill level.
func (l Level) Assignable() bool {
	return l == LevelBeginner || l == LevelIntermediate || l == LevelAdvanced
}

// LevelRankSQL orders a level column the same way Rank does.
func LevelRankSQL(column string) string {
	return "CASE " + column +
		" WHEN 'Beginner' THEN 1" +
		" WHEN 'Intermediate' THEN 2" +
		" WHEN 'Advanced' THEN 3" +
		" ELSE 4 END"
}

// ConsensusLevel picks the level most evaluators agreed on. Ties go to the
// higher level; no votes yield TBD.
func ConsensusLevel(tally map[Level]int) Level {
	best := LevelTBD
	bestVotes := 0
	for _, level := range Levels {
		votes := tally[level]
		if votes == 0 {
			continue
		}
		if votes > bestVotes || (votes == bestVotes && level.Rank() > best.Rank()) {
			best = level
			bestVotes = votes
		}
	}
	return best
}

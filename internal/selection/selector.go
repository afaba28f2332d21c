package selection

import (
	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/diversity"
	"github.com/spigell/hire-picker/internal/logger"
)

const (
	// DefaultTeamSize is the number of picks of an auto-select run.
	DefaultTeamSize = 5
	// DefaultMinGroups is the number of distinct groups a team spans when the pool allows it.
	DefaultMinGroups = 2
)

// Pick is one selected candidate.
type Pick struct {
	Rank      int
	Candidate *candidate.Candidate
	Group     string
	Reason    string
}

// Result is the ordered team, best pick first.
type Result struct {
	Picks []Pick
}

func (r *Result) Len() int {
	return len(r.Picks)
}

func (r *Result) IDs() []int {
	ids := make([]int, 0, len(r.Picks))
	for _, p := range r.Picks {
		ids = append(ids, p.Candidate.ID)
	}
	return ids
}

// Selector picks a team by merging diversity groups by score.
type Selector struct {
	minGroups int
	logger    *zap.Logger
}

func NewSelector(minGroups int, log *zap.Logger) *Selector {
	if minGroups <= 0 {
		minGroups = DefaultMinGroups
	}
	return &Selector{minGroups: minGroups, logger: logger.OrNop(log)}
}

type cursor struct {
	group *diversity.Group
	next  int
}

func (c *cursor) head() *candidate.Candidate {
	if c.next >= len(c.group.Members) {
		return nil
	}
	return c.group.Members[c.next]
}

// Select picks teamSize candidates from the groups.
//
// Every step takes the single best unclaimed candidate across all groups (ties by
// ascending id). The team must span min(minGroups, non-empty groups) groups: once the
// groups still missing are as many as the slots left, the step only looks at groups
// without a pick. With minGroups >= 2 a team never comes from a single group while
// another group has candidates.
func (s *Selector) Select(groups diversity.Groups, teamSize int) (*Result, error) {
	if teamSize <= 0 {
		teamSize = DefaultTeamSize
	}

	if have := groups.Len(); have < teamSize {
		return nil, &InsufficientCandidatesError{Have: have, Need: teamSize}
	}

	cursors := make([]*cursor, 0, len(groups))
	for _, key := range groups.Keys() {
		if groups[key].Len() > 0 {
			cursors = append(cursors, &cursor{group: groups[key]})
		}
	}

	target := min(s.minGroups, len(cursors), teamSize)

	result := &Result{Picks: make([]Pick, 0, teamSize)}
	for len(result.Picks) < teamSize {
		left := teamSize - len(result.Picks)

		represented := 0
		for _, c := range cursors {
			if c.next > 0 {
				represented++
			}
		}
		missing := target - represented
		restrict := missing > 0 && missing >= left

		var best *cursor
		for _, c := range cursors {
			head := c.head()
			if head == nil || (restrict && c.next > 0) {
				continue
			}
			if best == nil || candidate.Less(head, best.head()) {
				best = c
			}
		}

		if best == nil {
			// Unreachable while the pool holds at least teamSize candidates.
			return nil, &InsufficientCandidatesError{Have: len(result.Picks), Need: teamSize}
		}

		picked := best.head()
		pick := Pick{
			Rank:      len(result.Picks) + 1,
			Candidate: picked,
			Group:     best.group.Label,
			Reason:    reason(best.group.Label, best.next, picked.Score),
		}
		best.next++
		result.Picks = append(result.Picks, pick)

		s.logger.Debug("candidate picked",
			append(logger.CandidateFields(picked.ID, picked.Name),
				zap.Int("rank", pick.Rank),
				zap.String(logger.FieldGroup, pick.Group),
				zap.Float64("score", picked.Score),
				zap.Bool("coverage", restrict),
			)...,
		)
	}

	return result, nil
}

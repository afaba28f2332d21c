package diversity

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/logger"
)

// UnknownGroup collects candidates without a value for the diversity key.
const UnknownGroup = "unknown"

// Key is the categorical attribute candidates are grouped by.
type Key string

const (
	KeyLocation  Key = "location"
	KeySkill     Key = "skill"
	KeyEducation Key = "education"
)

var keyFields = map[Key]string{
	KeyLocation:  candidate.CandidateLocationField,
	KeySkill:     candidate.CandidateSkillField,
	KeyEducation: candidate.CandidateEducationField,
}

// ParseKey validates a configured diversity key. Empty means location.
func ParseKey(s string) (Key, error) {
	k := Key(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return KeyLocation, nil
	}
	if _, ok := keyFields[k]; !ok {
		return "", fmt.Errorf("unsupported diversity key %q (supported: location, skill, education)", s)
	}
	return k, nil
}

// Group is one diversity group, members ordered best first.
type Group struct {
	Key     string
	Label   string
	Members []*candidate.Candidate
}

func (g *Group) Len() int {
	return len(g.Members)
}

// Head returns the best member or nil for an empty group.
func (g *Group) Head() *candidate.Candidate {
	if len(g.Members) == 0 {
		return nil
	}
	return g.Members[0]
}

// Groups maps a folded group key to its group.
type Groups map[string]*Group

// Len returns the number of candidates across all groups.
func (g Groups) Len() int {
	total := 0
	for _, group := range g {
		total += group.Len()
	}
	return total
}

// Keys returns group keys ordered by their best member (score desc, id asc).
// Empty groups come last, by key.
func (g Groups) Keys() []string {
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := g[keys[i]].Head(), g[keys[j]].Head()
		switch {
		case a == nil && b == nil:
			return keys[i] < keys[j]
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return candidate.Less(a, b)
	})
	return keys
}

// Partitioner groups a candidate pool by a single categorical attribute.
type Partitioner struct {
	key    Key
	field  string
	logger *zap.Logger
}

func New(key Key, log *zap.Logger) *Partitioner {
	field, ok := keyFields[key]
	if !ok {
		key, field = KeyLocation, keyFields[KeyLocation]
	}
	return &Partitioner{
		key:    key,
		field:  field,
		logger: logger.OrNop(log),
	}
}

func (p *Partitioner) Key() Key {
	return p.key
}

// Partition puts every candidate into exactly one group. Values are NFKC-normalized
// and matched case-insensitively; the label keeps the first spelling seen. Members of each
// group are sorted by score desc, ties by ascending id.
func (p *Partitioner) Partition(pool *candidate.Pool) Groups {
	fold := cases.Fold()
	groups := make(Groups)

	for _, c := range pool.Items {
		label := norm.NFKC.String(c.GetStringField(p.field))
		key := fold.String(label)
		if key == "" || key == UnknownGroup {
			key, label = UnknownGroup, UnknownGroup
		}

		group, ok := groups[key]
		if !ok {
			group = &Group{Key: key, Label: label}
			groups[key] = group
		}
		group.Members = append(group.Members, c)
	}

	for _, group := range groups {
		sort.SliceStable(group.Members, func(i, j int) bool {
			return candidate.Less(group.Members[i], group.Members[j])
		})
	}

	p.logger.Debug("pool partitioned",
		zap.String("diversity_key", string(p.key)),
		zap.Int("groups", len(groups)),
		zap.Int("candidates", pool.Len()),
	)

	return groups
}

package scoring

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/logger"
)

// Scores are reported on a 0..MaxScore scale.
const MaxScore = 100.0

const neutral = 0.5

// Factors is the per-factor breakdown of a score, every factor within [0, 1].
type Factors struct {
	Skills       float64
	Experience   float64
	Education    float64
	Availability float64
	Salary       float64
}

// SalaryBand is the range of salary expectations seen in the pool.
type SalaryBand struct {
	Min int
	Max int
}

// Scorer computes a deterministic quality score per candidate.
type Scorer struct {
	targets       map[string]struct{}
	targetCount   int
	experienceCap float64
	weights       Weights
	band          *SalaryBand
	profile       string
	memo          *Memo
	logger        *zap.Logger
}

// New creates a scorer. Scores are cached in memo; nil gives the scorer a private memo.
func New(cfg Config, band *SalaryBand, memo *Memo, log *zap.Logger) *Scorer {
	targets := make(map[string]struct{}, len(cfg.TargetSkills))
	for _, skill := range cfg.TargetSkills {
		if s := candidate.NormalizeSkill(skill); s != "" {
			targets[s] = struct{}{}
		}
	}

	capYears := cfg.ExperienceCap
	if !(capYears > 0) || math.IsInf(capYears, 0) {
		capYears = defaultExperienceCap
	}

	if memo == nil {
		memo = NewMemo(0)
	}

	s := &Scorer{
		targets:       targets,
		targetCount:   len(targets),
		experienceCap: capYears,
		weights:       cfg.Weights.normalized(),
		band:          band,
		memo:          memo,
		logger:        logger.OrNop(log),
	}
	s.profile = s.describe()

	return s
}

// describe renders every setting the score depends on besides the candidate itself.
func (s *Scorer) describe() string {
	targets := slices.Sorted(maps.Keys(s.targets))

	band := "-"
	if s.band != nil {
		band = strconv.Itoa(s.band.Min) + ".." + strconv.Itoa(s.band.Max)
	}

	w := s.weights
	return fmt.Sprintf("%s|%g|%g,%g,%g,%g,%g|%s",
		strings.Join(targets, ","),
		s.experienceCap,
		w.Skills, w.Experience, w.Education, w.Availability, w.Salary,
		band,
	)
}

// NewForPool creates a scorer whose salary band is taken from the pool.
// Candidates without a salary expectation count as zero when the band is
// derived, as the seed step of the dashboard always did.
func NewForPool(cfg Config, pool *candidate.Pool, memo *Memo, log *zap.Logger) *Scorer {
	return New(cfg, BandOf(pool), memo, log)
}

// BandOf returns the salary band of the pool, or nil for an empty pool.
func BandOf(pool *candidate.Pool) *SalaryBand {
	if pool == nil || pool.Len() == 0 {
		return nil
	}

	band := &SalaryBand{Min: math.MaxInt, Max: math.MinInt}
	for _, c := range pool.Items {
		s := c.Salary()
		band.Min = min(band.Min, s)
		band.Max = max(band.Max, s)
	}
	return band
}

// Score returns the score of the candidate. It fails only when identity fields are missing.
func (s *Scorer) Score(c *candidate.Candidate) (float64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	key := s.fingerprint(c)
	if cached, ok := s.memo.get(key); ok {
		return cached, nil
	}

	f := s.Factors(c)
	w := s.weights
	total := f.Skills*w.Skills +
		f.Experience*w.Experience +
		f.Education*w.Education +
		f.Availability*w.Availability +
		f.Salary*w.Salary

	score := clamp(total/w.sum(), 0, 1) * MaxScore
	s.memo.set(key, score)

	return score, nil
}

// Factors returns the breakdown the score is built from.
func (s *Scorer) Factors(c *candidate.Candidate) Factors {
	return Factors{
		Skills:       s.skillMatch(c),
		Experience:   s.experience(c.ExperienceYears),
		Education:    educationFactor(c.Education),
		Availability: availabilityFactor(c.Availability),
		Salary:       s.salaryFit(c),
	}
}

// ScorePool annotates every valid candidate with its score and returns them as a new pool.
// Invalid records are logged and skipped without failing the batch; their errors are returned.
func (s *Scorer) ScorePool(pool *candidate.Pool) (*candidate.Pool, []error) {
	scored := &candidate.Pool{Items: make([]*candidate.Candidate, 0, pool.Len())}
	var errs []error

	for _, c := range pool.Items {
		if c.Prescored && isFinite(c.Score) {
			if err := c.Validate(); err != nil {
				s.skip(c, err)
				errs = append(errs, err)
				continue
			}
			scored.Items = append(scored.Items, c)
			continue
		}

		score, err := s.Score(c)
		if err != nil {
			s.skip(c, err)
			errs = append(errs, err)
			continue
		}

		c.Score = score
		c.Prescored = false
		scored.Items = append(scored.Items, c)

		if ce := s.logger.Check(zap.DebugLevel, "candidate scored"); ce != nil {
			f := s.Factors(c)
			ce.Write(append(logger.CandidateFields(c.ID, c.Name),
				zap.Float64("score", score),
				zap.Float64("skills", f.Skills),
				zap.Float64("experience", f.Experience),
				zap.Float64("education", f.Education),
				zap.Float64("availability", f.Availability),
				zap.Float64("salary", f.Salary),
			)...)
		}
	}

	return scored, errs
}

func (s *Scorer) skip(c *candidate.Candidate, err error) {
	var id int
	var name string
	if c != nil {
		id, name = c.ID, c.Name
	}
	logger.WithCandidate(s.logger, id, name).Warn("skipping invalid candidate", zap.Error(err))
}

func (s *Scorer) skillMatch(c *candidate.Candidate) float64 {
	if s.targetCount == 0 {
		return 0
	}

	matches := 0
	for _, skill := range c.NormalizedSkills() {
		if _, ok := s.targets[skill]; ok {
			matches++
		}
	}
	return float64(matches) / float64(s.targetCount)
}

func (s *Scorer) experience(years float64) float64 {
	switch {
	case math.IsNaN(years) || years <= 0:
		return 0
	case math.IsInf(years, 1):
		return 1
	}
	return min(years/s.experienceCap, 1)
}

// salaryFit prefers lower expectations within the band; unknown salaries are neutral.
func (s *Scorer) salaryFit(c *candidate.Candidate) float64 {
	if !c.HasSalary() || s.band == nil || s.band.Max == s.band.Min {
		return neutral
	}
	span := float64(s.band.Max) - float64(s.band.Min)
	return clamp((float64(s.band.Max)-float64(c.Salary()))/span, 0, 1)
}

func educationFactor(level string) float64 {
	hl := strings.ToLower(strings.TrimSpace(level))
	switch {
	case hl == "":
		return 0
	case strings.Contains(hl, "phd"), strings.Contains(hl, "ph.d"), strings.Contains(hl, "doctor"):
		return 1.0
	case strings.Contains(hl, "master"), strings.Contains(hl, "m.s"), strings.Contains(hl, "msc"):
		return 0.8
	case strings.Contains(hl, "bachelor"), strings.Contains(hl, "b.sc"), strings.Contains(hl, "b.s"),
		strings.Contains(hl, "b.tech"), strings.Contains(hl, "b.e"), strings.Contains(hl, "b.a"):
		return 0.6
	default:
		return 0.4
	}
}

func availabilityFactor(availability []string) float64 {
	a := strings.ToLower(strings.Join(availability, ","))
	switch {
	case strings.TrimSpace(strings.ReplaceAll(a, ",", "")) == "":
		return neutral
	case strings.Contains(a, "immediate"), strings.Contains(a, "now"):
		return 1.0
	case strings.Contains(a, "2 weeks"), strings.Contains(a, "two weeks"):
		return 0.8
	case strings.Contains(a, "month"):
		return 0.5
	default:
		return 0.6
	}
}

// fingerprint identifies the scorer profile and the scored attribute tuple of a candidate.
func (s *Scorer) fingerprint(c *candidate.Candidate) string {
	skills := c.NormalizedSkills()
	slices.Sort(skills)

	availability := make([]string, 0, len(c.Availability))
	for _, a := range c.Availability {
		availability = append(availability, strings.ToLower(strings.TrimSpace(a)))
	}
	slices.Sort(availability)

	salary := "-"
	if c.HasSalary() {
		salary = strconv.Itoa(c.Salary())
	}

	raw := fmt.Sprintf("%s#%s|%s|%s|%s|%s",
		s.profile,
		strings.Join(skills, ","),
		strconv.FormatFloat(c.ExperienceYears, 'g', -1, 64),
		strings.ToLower(strings.TrimSpace(c.Education)),
		strings.Join(availability, ","),
		salary,
	)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return max(lo, min(v, hi))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

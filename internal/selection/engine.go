package selection

import (
	"go.uber.org/zap"

	"github.com/spigell/hire-picker/internal/candidate"
	"github.com/spigell/hire-picker/internal/diversity"
	"github.com/spigell/hire-picker/internal/logger"
)

// Config configures an auto-select run.
type Config struct {
	TeamSize     int    `mapstructure:"team-size"`
	DiversityKey string `mapstructure:"diversity-key"`
	MinGroups    int    `mapstructure:"min-groups"`
}

func DefaultConfig() Config {
	return Config{
		TeamSize:     DefaultTeamSize,
		DiversityKey: string(diversity.KeyLocation),
		MinGroups:    DefaultMinGroups,
	}
}

// Engine partitions a scored pool and selects a team from it.
type Engine struct {
	teamSize    int
	partitioner *diversity.Partitioner
	selector    *Selector
	logger      *zap.Logger
}

func NewEngine(cfg Config, log *zap.Logger) (*Engine, error) {
	key, err := diversity.ParseKey(cfg.DiversityKey)
	if err != nil {
		return nil, err
	}

	teamSize := cfg.TeamSize
	if teamSize <= 0 {
		teamSize = DefaultTeamSize
	}

	log = logger.OrNop(log)
	return &Engine{
		teamSize:    teamSize,
		partitioner: diversity.New(key, log),
		selector:    NewSelector(cfg.MinGroups, log),
		logger:      log,
	}, nil
}

func (e *Engine) TeamSize() int {
	return e.teamSize
}

// Run selects a team from an already scored pool. The pool is not modified.
func (e *Engine) Run(pool *candidate.Pool) (*Result, error) {
	groups := e.partitioner.Partition(pool)

	result, err := e.selector.Select(groups, e.teamSize)
	if err != nil {
		return nil, err
	}

	e.logger.Info("team selected",
		zap.Ints("selected", result.IDs()),
		zap.Int("pool", pool.Len()),
		zap.Int("groups", len(groups)),
		zap.String("diversity_key", string(e.partitioner.Key())),
	)

	return result, nil
}

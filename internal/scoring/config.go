package scoring

// DefaultTargetSkills are the skills a team is hired for when none are configured.
var DefaultTargetSkills = []string{
	"python", "llms", "prompt engineering", "flask", "fastapi", "sql", "docker", "aws", "gcp",
	"airflow", "annotation tooling", "react", "next.js", "java", "c++", "ci/cd", "mysql",
	"postgres", "kubernetes",
}

const defaultExperienceCap = 10.0

// Weights sets the share of every factor in the final score.
type Weights struct {
	Skills       float64 `mapstructure:"skills"`
	Experience   float64 `mapstructure:"experience"`
	Education    float64 `mapstructure:"education"`
	Availability float64 `mapstructure:"availability"`
	Salary       float64 `mapstructure:"salary"`
}

// Config configures the scorer.
type Config struct {
	TargetSkills  []string `mapstructure:"target-skills"`
	ExperienceCap float64  `mapstructure:"experience-cap"`
	Weights       Weights  `mapstructure:"weights"`
}

func DefaultWeights() Weights {
	return Weights{
		Skills:       0.40,
		Experience:   0.20,
		Education:    0.10,
		Availability: 0.15,
		Salary:       0.15,
	}
}

func DefaultConfig() Config {
	return Config{
		TargetSkills:  DefaultTargetSkills,
		ExperienceCap: defaultExperienceCap,
		Weights:       DefaultWeights(),
	}
}

func (w Weights) sum() float64 {
	return w.Skills + w.Experience + w.Education + w.Availability + w.Salary
}

// normalized drops negative or non-finite weights and falls back to defaults when nothing is left.
func (w Weights) normalized() Weights {
	w.Skills = sanitize(w.Skills)
	w.Experience = sanitize(w.Experience)
	w.Education = sanitize(w.Education)
	w.Availability = sanitize(w.Availability)
	w.Salary = sanitize(w.Salary)
	if !(w.sum() > 0) {
		return DefaultWeights()
	}
	return w
}

func sanitize(weight float64) float64 {
	if !isFinite(weight) || weight < 0 {
		return 0
	}
	return weight
}

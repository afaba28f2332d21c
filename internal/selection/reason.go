package selection

import "fmt"

// reason explains a pick from its rank inside its group.
// prior is the number of candidates already taken from the same group.
func reason(group string, prior int, score float64) string {
	if prior == 0 {
		return "highest score in " + group
	}
	return fmt.Sprintf("next-best fit after %d selections from %s, score %.2f", prior, group, score)
}

// internal/reward/rubric.go
//
// Weighted rubric over the reward functions.
// Defaults: exact_match 1, partial_credit 1, turn_discounted 1, format 0.2.
// Every function is reported by name; the total is the weighted sum.

package reward

// Func scores a completion against the episode's answer.
type Func func(p *Parser, completion Transcript, answer string) float64

// Weighted is a named reward function with its weight in the total.
type Weighted struct {
	Name   string
	Fn     Func
	Weight float64
}

// Weights configures the default rubric.
type Weights struct {
	ExactMatch     float64 `json:"exactMatch" yaml:"exact_match"`
	PartialCredit  float64 `json:"partialCredit" yaml:"partial_credit"`
	TurnDiscounted float64 `json:"turnDiscounted" yaml:"turn_discounted"`
	Format         float64 `json:"format" yaml:"format"`
}

// DefaultWeights: the three game rewards at 1.0, format at 0.2.
func DefaultWeights() Weights {
	return Weights{ExactMatch: 1, PartialCredit: 1, TurnDiscounted: 1, Format: 0.2}
}

// Rubric combines reward functions into a weighted total.
type Rubric struct {
	Parser *Parser
	Funcs  []Weighted
}

// Scores is the rubric output for one completion.
type Scores struct {
	Total   float64            `json:"total"`
	Rewards map[string]float64 `json:"rewards"`
}

// NewRubric returns the standard rubric for parser p.
func NewRubric(p *Parser, w Weights) *Rubric {
	return &Rubric{
		Parser: p,
		Funcs: []Weighted{
			{Name: "exact_match", Fn: ExactMatch, Weight: w.ExactMatch},
			{Name: "partial_credit", Fn: func(p *Parser, c Transcript, _ string) float64 { return PartialCredit(p, c) }, Weight: w.PartialCredit},
			{Name: "turn_discounted", Fn: TurnDiscounted, Weight: w.TurnDiscounted},
			{Name: "format", Fn: func(p *Parser, c Transcript, _ string) float64 { return Format(p, c) }, Weight: w.Format},
		},
	}
}

// Score evaluates every function; functions with zero weight are still
// reported but do not move the total.
func (r *Rubric) Score(completion Transcript, answer string) Scores {
	s := Scores{Rewards: make(map[string]float64, len(r.Funcs))}
	for _, f := range r.Funcs {
		v := f.Fn(r.Parser, completion, answer)
		s.Rewards[f.Name] = v
		s.Total += f.Weight * v
	}
	return s
}

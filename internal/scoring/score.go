// Package scoring computes a task's gamified XP from a configurable
// multiplicative model. Every function here is pure: the effective date,
// the configuration and the task collection are always passed in.
package scoring

import (
	"math"
	"sort"
	"time"
)

// Breakdown is the full result of scoring one task.
type Breakdown struct {
	TaskID string

	BaseScore      float64
	FieldBonus     float64
	StartDateBonus float64
	StreakBonus    float64
	Base           float64

	AttributeMultiplier float64
	AgeMultiplier       float64
	DueMultiplier       float64
	TagMultiplier       float64
	ProjectMultiplier   float64

	DependencyBonus float64
	Raw             float64

	XP      int
	Penalty int
	Net     int
}

// Scorer is a single scoring pass over one effective date. Full scores of
// tasks in the collection are memoised for the life of the Scorer, so build
// a new one whenever the date, config or collection changes.
type Scorer struct {
	cfg       *Config
	effective time.Time
	graph     *Graph

	memo     map[string]int
	visiting map[string]bool
	path     []string
}

// NewScorer prepares a pass. With a nil collection tasks are scored in
// isolation and no dependency bonus is computed. A non-nil collection is
// checked for duplicate IDs and dependency cycles up front.
func NewScorer(cfg *Config, effective time.Time, all []Task) (*Scorer, error) {
	s := &Scorer{
		cfg:       cfg,
		effective: Day(effective),
		memo:      map[string]int{},
		visiting:  map[string]bool{},
	}
	if all == nil {
		return s, nil
	}
	g, err := NewGraph(all)
	if err != nil {
		return nil, err
	}
	if err := g.CheckCycles(); err != nil {
		return nil, err
	}
	s.graph = g
	return s, nil
}

// Score returns the rounded XP score of t.
func (s *Scorer) Score(t *Task) (int, error) {
	b, err := s.Breakdown(t)
	if err != nil {
		return 0, err
	}
	return b.XP, nil
}

func (s *Scorer) Breakdown(t *Task) (Breakdown, error) {
	if s.graph != nil && t.DependsOn(t.ID) {
		return Breakdown{}, &CircularDependencyError{Cycle: []string{t.ID, t.ID}}
	}
	return s.breakdown(t)
}

func (s *Scorer) breakdown(t *Task) (Breakdown, error) {
	if s.visiting[t.ID] {
		return Breakdown{}, &CircularDependencyError{Cycle: cyclePath(s.path, t.ID)}
	}
	s.visiting[t.ID] = true
	s.path = append(s.path, t.ID)
	defer func() {
		delete(s.visiting, t.ID)
		s.path = s.path[:len(s.path)-1]
	}()

	cfg := s.cfg
	b := Breakdown{
		TaskID:              t.ID,
		BaseScore:           cfg.BaseScore,
		FieldBonus:          FieldPresenceBonus(t, cfg),
		StartDateBonus:      StartDateBonus(t, cfg, s.effective),
		StreakBonus:         StreakBonus(t, cfg),
		AttributeMultiplier: AttributeMultiplier(t, cfg),
		AgeMultiplier:       AgeMultiplier(t, cfg, s.effective),
		DueMultiplier:       DueDateMultiplier(t, cfg, s.effective),
		TagMultiplier:       TagMultiplier(t, cfg),
		ProjectMultiplier:   ProjectMultiplier(t, cfg),
	}
	b.Base = b.BaseScore + b.FieldBonus + b.StartDateBonus + b.StreakBonus
	b.Raw = b.Base * b.AttributeMultiplier * b.AgeMultiplier * b.DueMultiplier * b.TagMultiplier * b.ProjectMultiplier

	if s.graph != nil && cfg.DependencyChain.Enabled {
		bonus, err := s.dependencyBonus(t)
		if err != nil {
			return Breakdown{}, err
		}
		b.DependencyBonus = bonus
		b.Raw += bonus
	}

	b.XP = round(b.Raw)
	if !t.IsComplete && cfg.DailyPenalty.ApplyPenalty {
		b.Penalty = round(cfg.DailyPenalty.PenaltyPoints)
	}
	b.Net = b.XP - b.Penalty
	return b, nil
}

// dependencyBonus credits t with a share of the full score of every open
// task that depends on it. Those scores include their own dependency bonus,
// so credit compounds up the chain.
func (s *Scorer) dependencyBonus(t *Task) (float64, error) {
	sum := 0
	for _, id := range s.graph.Dependents(t.ID) {
		dep, _ := s.graph.Task(id)
		if dep.IsComplete {
			continue
		}
		score, err := s.fullScore(dep)
		if err != nil {
			return 0, err
		}
		sum += score
	}
	if sum == 0 {
		return 0, nil
	}
	return s.cfg.DependencyChain.DependentScorePercentage * float64(sum), nil
}

func (s *Scorer) fullScore(t *Task) (int, error) {
	if score, ok := s.memo[t.ID]; ok {
		return score, nil
	}
	b, err := s.breakdown(t)
	if err != nil {
		return 0, err
	}
	s.memo[t.ID] = b.XP
	return b.XP, nil
}

// round is math.Round: halves round away from zero.
func round(x float64) int {
	return int(math.Round(x))
}

// CalculateScore scores one task. Pass the full collection as all to include
// the dependency-chain bonus, or nil to score the task in isolation.
func CalculateScore(t *Task, all []Task, cfg *Config, effective time.Time) (int, error) {
	s, err := NewScorer(cfg, effective, all)
	if err != nil {
		return 0, err
	}
	return s.Score(t)
}

// CalculateTaskScores is CalculateScore with the XP, penalty and every
// intermediate factor broken out.
func CalculateTaskScores(t *Task, all []Task, cfg *Config, effective time.Time) (Breakdown, error) {
	s, err := NewScorer(cfg, effective, all)
	if err != nil {
		return Breakdown{}, err
	}
	return s.Breakdown(t)
}

type Ranked struct {
	Task      Task
	Breakdown Breakdown
}

// RankTasks scores every open task of the collection in one pass, highest
// XP first.
func RankTasks(tasks []Task, cfg *Config, effective time.Time) ([]Ranked, error) {
	s, err := NewScorer(cfg, effective, tasks)
	if err != nil {
		return nil, err
	}
	var out []Ranked
	for i := range tasks {
		t := &tasks[i]
		if t.IsComplete {
			continue
		}
		b, err := s.Breakdown(t)
		if err != nil {
			return nil, err
		}
		out = append(out, Ranked{Task: *t, Breakdown: b})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Breakdown.XP != out[j].Breakdown.XP {
			return out[i].Breakdown.XP > out[j].Breakdown.XP
		}
		if out[i].Task.Title != out[j].Task.Title {
			return out[i].Task.Title < out[j].Task.Title
		}
		return out[i].Task.ID < out[j].Task.ID
	})
	return out, nil
}

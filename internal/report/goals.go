package report

import (
	"time"

	"deltafin/internal/core"
)

// GoalProgress is the derived view of a single savings goal.
type GoalProgress struct {
	Percentage float64    `json:"percentage"`
	Saved      core.Money `json:"saved"`
	Remaining  core.Money `json:"remaining"`
}

// Progress computes completion for a goal. The percentage is clamped to 100
// even when the accumulated amount exceeds the target.
func Progress(g core.SavingsGoal) GoalProgress {
	var pct float64
	if g.TargetAmount.Cents > 0 {
		pct = float64(g.CurrentAmount.Cents) / float64(g.TargetAmount.Cents) * 100
		if pct > 100 {
			pct = 100
		}
	}
	return GoalProgress{
		Percentage: pct,
		Saved:      g.CurrentAmount,
		Remaining:  Remaining(g),
	}
}

// Remaining is the amount still missing, floored at zero.
func Remaining(g core.SavingsGoal) core.Money {
	rem := g.TargetAmount.Cents - g.CurrentAmount.Cents
	if rem < 0 {
		rem = 0
	}
	return core.Money{Cents: rem}
}

// RecommendedContribution splits the remaining amount over the given number
// of months. Months must be positive.
func RecommendedContribution(g core.SavingsGoal, months int) core.Money {
	if months <= 0 {
		return core.Money{}
	}
	return core.Money{Cents: Remaining(g).Cents / int64(months)}
}

// EstimatedCompletion projects how many whole months of the given
// contribution are needed to close the goal, and the resulting date counted
// from now. ok is false when the contribution is not positive, in which case
// the estimate is undefined.
func EstimatedCompletion(g core.SavingsGoal, monthly core.Money, now time.Time) (months int, date time.Time, ok bool) {
	if monthly.Cents <= 0 {
		return 0, time.Time{}, false
	}
	rem := Remaining(g).Cents
	months = int((rem + monthly.Cents - 1) / monthly.Cents)
	return months, now.AddDate(0, months, 0), true
}

// GoalsByStatus partitions goals into completed, in-progress and
// not-started sets.
func GoalsByStatus(goals []core.SavingsGoal) (completed, inProgress, notStarted []core.SavingsGoal) {
	for _, g := range goals {
		switch {
		case g.CurrentAmount.Cents >= g.TargetAmount.Cents:
			completed = append(completed, g)
		case g.CurrentAmount.Cents > 0:
			inProgress = append(inProgress, g)
		default:
			notStarted = append(notStarted, g)
		}
	}
	return completed, inProgress, notStarted
}

// TotalSaved sums accumulated amounts across all goals.
func TotalSaved(goals []core.SavingsGoal) core.Money {
	var cents int64
	for _, g := range goals {
		cents += g.CurrentAmount.Cents
	}
	return core.Money{Cents: cents}
}

// TotalTarget sums target amounts across all goals.
func TotalTarget(goals []core.SavingsGoal) core.Money {
	var cents int64
	for _, g := range goals {
		cents += g.TargetAmount.Cents
	}
	return core.Money{Cents: cents}
}

// OverallProgress is the aggregate completion percentage across all goals,
// zero when there is no target.
func OverallProgress(goals []core.SavingsGoal) float64 {
	target := TotalTarget(goals).Cents
	if target == 0 {
		return 0
	}
	return float64(TotalSaved(goals).Cents) / float64(target) * 100
}

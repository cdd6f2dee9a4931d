package workflow

import "github.com/calebhart/drift/internal/provider"

// Trimmer reduces a transcript view to fit the model's context budget.
type Trimmer interface {
	Trim(messages []provider.Message) []provider.Message
}

// BudgetTrimmer keeps system messages and the most recent conversation that
// fits a token budget. Token counts are estimated at four characters per
// token, which is close enough for budget enforcement.
type BudgetTrimmer struct {
	tokenBudget int
}

// NewBudgetTrimmer creates a trimmer with the given token budget.
func NewBudgetTrimmer(tokenBudget int) *BudgetTrimmer {
	if tokenBudget < 1 {
		panic("tokenBudget must be >= 1")
	}
	return &BudgetTrimmer{tokenBudget: tokenBudget}
}

// Trim drops the oldest non-system messages until the estimate fits the
// budget. System messages always survive; the most recent message always
// survives even if it alone exceeds the budget.
func (t *BudgetTrimmer) Trim(messages []provider.Message) []provider.Message {
	total := 0
	for _, m := range messages {
		total += estimateTokens(m)
	}
	if total <= t.tokenBudget {
		return messages
	}

	var system, rest []provider.Message
	for _, m := range messages {
		if m.Role == provider.RoleSystem {
			system = append(system, m)
		} else {
			rest = append(rest, m)
		}
	}

	budget := t.tokenBudget
	for _, m := range system {
		budget -= estimateTokens(m)
	}

	// Walk backwards keeping the newest messages that fit.
	keepFrom := len(rest)
	used := 0
	for i := len(rest) - 1; i >= 0; i-- {
		cost := estimateTokens(rest[i])
		if used+cost > budget && keepFrom < len(rest) {
			break
		}
		used += cost
		keepFrom = i
	}

	out := make([]provider.Message, 0, len(system)+len(rest)-keepFrom)
	out = append(out, system...)
	out = append(out, rest[keepFrom:]...)
	return out
}

func estimateTokens(m provider.Message) int {
	return len(m.Content)/4 + 1
}

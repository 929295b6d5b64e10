package routing

import (
	"sort"
	"strings"

	"github.com/turnflow/turnflow/domain"
)

// Resolver evaluates a domain's routing rules. Rules are ordered once at
// construction: ascending priority, declaration order breaking ties. A
// Resolver is immutable and safe for concurrent use.
type Resolver struct {
	cfg     *domain.Config
	ordered []domain.RoutingRule
}

// New builds a resolver for the given domain configuration.
func New(cfg *domain.Config) *Resolver {
	ordered := make([]domain.RoutingRule, len(cfg.Rules))
	copy(ordered, cfg.Rules)
	// Stable sort keeps declaration order among equal priorities, which is
	// the documented tie-break.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Priority < ordered[j].Priority
	})
	return &Resolver{cfg: cfg, ordered: ordered}
}

// Resolve tokenizes input and returns the target of the first rule (in
// priority order) whose keyword set intersects the input keywords. Rule
// keywords containing whitespace additionally match as substrings of the
// normalized input. If no rule matches, the domain's default agent is
// returned; a missing or unknown default agent is a configuration error.
func (r *Resolver) Resolve(input string) (string, error) {
	normalized := strings.ToLower(input)
	set := keywordSet(Keywords(input))
	for _, rule := range r.ordered {
		if ruleMatches(rule, set, normalized) {
			return rule.TargetAgentID, nil
		}
	}
	return r.defaultAgent()
}

// ResolveKeywords evaluates the rules against an already-extracted keyword
// set, with no substring matching.
func (r *Resolver) ResolveKeywords(keywords []string) (string, error) {
	set := keywordSet(keywords)
	for _, rule := range r.ordered {
		if ruleMatches(rule, set, "") {
			return rule.TargetAgentID, nil
		}
	}
	return r.defaultAgent()
}

func (r *Resolver) defaultAgent() (string, error) {
	if r.cfg.DefaultAgentID == "" || !r.cfg.HasAgent(r.cfg.DefaultAgentID) {
		return "", &domain.ConfigurationError{
			Domain: r.cfg.Name,
			Field:  "default_agent_id",
			Reason: "routing fell through to an invalid default agent",
		}
	}
	return r.cfg.DefaultAgentID, nil
}

func ruleMatches(rule domain.RoutingRule, set map[string]struct{}, normalizedInput string) bool {
	for _, kw := range rule.Keywords {
		n := NormalizeKeyword(kw)
		if n == "" {
			continue
		}
		if _, ok := set[n]; ok {
			return true
		}
		if normalizedInput != "" && strings.Contains(n, " ") && strings.Contains(normalizedInput, n) {
			return true
		}
	}
	return false
}

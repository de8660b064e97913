package ben

import "math"

// incorporationEpsilon bounds the updated belief away from the 0/1
// asymptotes of the logit function (spec.md §4.2).
const incorporationEpsilon = 1e-6

// logit is the log-odds of p, p clamped to (0,1) first to avoid ±Inf.
func logit(p float64) float64 {
	p = clampUnit(p, incorporationEpsilon)
	return math.Log(p / (1 - p))
}

// sigmoid is the inverse of logit.
func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func clampUnit(p, eps float64) float64 {
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}

// IncorporateEvidence folds a node's current evidence ring into its prior
// via a logistic combination: logit(p') = logit(prior) + Σ effective_weight
// · (2·membership_degree − 1), clamped to [ε, 1-ε] (spec.md §4.2). The
// result becomes the node's starting belief for the next propagation pass;
// it does not itself run propagation.
func (n *Node) IncorporateEvidence() float64 {
	acc := logit(n.Prior)
	for _, e := range n.Evidence() {
		acc += e.EffectiveWeight() * (2*e.MembershipDegree - 1)
	}
	p := clampUnit(sigmoid(acc), incorporationEpsilon)
	n.CurrentBelief = p
	return p
}

// IncorporateAll runs IncorporateEvidence over every node in the network,
// the step that precedes any propagation algorithm (spec.md §4.2, §4.3).
func (n *Network) IncorporateAll() {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, node := range n.nodes {
		node.IncorporateEvidence()
	}
}

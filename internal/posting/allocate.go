package posting

import "github.com/clearbooks-io/clearbooks/internal/money"

// AllocateProportionally splits total cents across weights using a
// running remainder, so every cent lands somewhere and the last
// nonzero weight absorbs the leftover. Allocating 7 cents across
// weights 6000 and 4000 yields 4 and 3, never 4 and 2 or 5 and 3.
func AllocateProportionally(total int64, weights []int64) []int64 {
	out := make([]int64, len(weights))
	var weightSum int64
	for _, w := range weights {
		weightSum += w
	}
	if weightSum == 0 {
		if len(out) > 0 {
			out[len(out)-1] = total
		}
		return out
	}
	last := -1
	for i, w := range weights {
		if w != 0 {
			last = i
		}
	}
	var allocated int64
	for i, w := range weights {
		if i == last {
			out[i] = total - allocated
			break
		}
		out[i] = money.RoundHalfAway(total*w, weightSum)
		allocated += out[i]
	}
	return out
}

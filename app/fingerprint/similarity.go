package fingerprint

import (
	"sort"
	"strings"
)

// Similarity computes a symmetric token-set similarity between two
// normalized signatures, scaled to 0-100. Word order and repeated tokens
// do not matter; shared tokens are compared against each side's
// remainder and the best alignment wins. Empty input on either side
// scores 0, so malformed signatures are treated as distinct.
func Similarity(a, b string) int {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	tokensA := tokenSet(a)
	tokensB := tokenSet(b)

	var common, diffA, diffB []string
	for t := range tokensA {
		if tokensB[t] {
			common = append(common, t)
		} else {
			diffA = append(diffA, t)
		}
	}
	for t := range tokensB {
		if !tokensA[t] {
			diffB = append(diffB, t)
		}
	}

	sort.Strings(common)
	sort.Strings(diffA)
	sort.Strings(diffB)

	base := strings.Join(common, " ")
	full := func(diff []string) string {
		if base == "" {
			return strings.Join(diff, " ")
		}
		if len(diff) == 0 {
			return base
		}
		return base + " " + strings.Join(diff, " ")
	}

	combinedA := full(diffA)
	combinedB := full(diffB)

	best := ratio(base, combinedA)
	if r := ratio(base, combinedB); r > best {
		best = r
	}
	if r := ratio(combinedA, combinedB); r > best {
		best = r
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, t := range strings.Fields(s) {
		set[t] = true
	}
	return set
}

// ratio is the normalized indel similarity of two strings:
// 2*LCS / (len(a)+len(b)), scaled to 0-100.
func ratio(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	la, lb := len(a), len(b)
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}

	lcs := prev[lb]
	return (2 * lcs * 100) / (la + lb)
}

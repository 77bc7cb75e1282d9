// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package types

// AddToSet returns set ∪ {id}. The input slice is never modified and order of
// existing members is preserved.
func AddToSet(set []string, id string) []string {
	out := make([]string, 0, len(set)+1)
	seen := make(map[string]struct{}, len(set)+1)

	for _, v := range set {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}

	if _, ok := seen[id]; !ok {
		out = append(out, id)
	}

	return out
}

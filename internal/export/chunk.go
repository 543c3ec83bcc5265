// Package export writes the accounting CSV batches for the invoice and bill
// imports.
package export

import "sort"

// ChunkByGroup splits rows into chunks of at most ceiling rows without
// splitting a group. Groups are taken in key order; rows keep their order
// inside a group. A group larger than ceiling gets a chunk of its own.
func ChunkByGroup[T any](rows []T, key func(T) string, ceiling int) [][]T {
	groups := map[string][]T{}
	var keys []string
	for _, r := range rows {
		k := key(r)
		if _, seen := groups[k]; !seen {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], r)
	}
	sort.Strings(keys)

	var chunks [][]T
	var current []T
	for _, k := range keys {
		group := groups[k]
		if len(current) > 0 && len(current)+len(group) > ceiling {
			chunks = append(chunks, current)
			current = nil
		}
		current = append(current, group...)
	}
	if len(current) > 0 {
		chunks = append(chunks, current)
	}
	return chunks
}

// Package dedupe collapses repeated lookups of the same domain within a batch
package dedupe

// Result carries the collapsed key set and the members behind each key
type Result[T any] struct {
	// Keys in first-seen order
	Keys []string
	// Members maps a key to every item that produced it, in input order
	Members map[string][]T
	// Dropped counts the duplicate items collapsed away
	Dropped int
}

// ByKey groups items by key(item) preserving first-seen key order.
// Items whose key is empty are skipped and counted as dropped
func ByKey[T any](items []T, key func(T) string) Result[T] {
	r := Result[T]{Members: make(map[string][]T, len(items))}
	for _, it := range items {
		k := key(it)
		if k == "" {
			r.Dropped++
			continue
		}
		if _, seen := r.Members[k]; !seen {
			r.Keys = append(r.Keys, k)
		} else {
			r.Dropped++
		}
		r.Members[k] = append(r.Members[k], it)
	}
	return r
}

package ident

// Identifiable is implemented by entities whose equality is decided by their
// identifier alone.
type Identifiable[K comparable] interface {
	Identity() K
}

// Same reports whether a and b are the same logical entity.
func Same[K comparable, T Identifiable[K]](a, b T) bool {
	return a.Identity() == b.Identity()
}

// Index maps each item by its identity. When several items share an identity
// the last one wins.
func Index[K comparable, T Identifiable[K]](items []T) map[K]T {
	out := make(map[K]T, len(items))
	for _, it := range items {
		out[it.Identity()] = it
	}
	return out
}

// Dedup returns items with later duplicates (by identity) removed. Order of
// first occurrence is preserved.
func Dedup[K comparable, T Identifiable[K]](items []T) []T {
	seen := make(map[K]struct{}, len(items))
	out := make([]T, 0, len(items))
	for _, it := range items {
		k := it.Identity()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, it)
	}
	return out
}

// Contains reports whether items holds an entity with the same identity as x.
func Contains[K comparable, T Identifiable[K]](items []T, x T) bool {
	k := x.Identity()
	for _, it := range items {
		if it.Identity() == k {
			return true
		}
	}
	return false
}

package collectionutils

// Associate transforms a slice of items into a map by applying the transform function to each item.
// The transform function returns a key-value pair for each item, which is then added to the resulting map.
func Associate[T any, K comparable, V any](items []T, transform func(T) (K, V)) map[K]V {
	m := make(map[K]V, len(items))
	for _, item := range items {
		k, v := transform(item)
		m[k] = v
	}

	return m
}

// GetOrDefault returns the value associated with the given key from the map `m`.
// If the key does not exist in the map, it returns the provided `defaultValue`.
func GetOrDefault[K comparable, T any](m map[K]T, key K, defaultValue T) T {
	v, ok := m[key]
	if !ok {
		return defaultValue
	}
	return v
}

func ToSet[T comparable](items []T) map[T]struct{} {
	set := make(map[T]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// Intersect returns the items of a that are also in b, keeping the order of a
// and dropping duplicates.
func Intersect[T comparable](a, b []T) []T {
	inB := ToSet(b)
	seen := make(map[T]struct{}, len(a))
	var result []T
	for _, item := range a {
		if _, ok := inB[item]; !ok {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		result = append(result, item)
	}
	return result
}

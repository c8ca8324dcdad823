package recipe

// Features is the free-form attribute map of a recipe ("cuisine", "diet", ...).
type Features map[string]any

// CuisineKey is the features key holding the cuisine name.
const CuisineKey = "cuisine"

// String returns the string value at key, or def when absent or not a string.
func (f Features) String(key, def string) string {
	v, ok := f[key]
	if !ok {
		return def
	}
	s, ok := v.(string)
	if !ok {
		return def
	}
	return s
}

// Cuisine returns the cuisine name, empty when unspecified.
func (f Features) Cuisine() string {
	return f.String(CuisineKey, "")
}

// Clone returns a shallow copy; nil becomes an empty map.
func (f Features) Clone() Features {
	out := make(Features, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

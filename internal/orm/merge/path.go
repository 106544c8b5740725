package merge

// Get walks path through nested maps.
func Get(tree map[string]any, path ...string) (any, bool) {
	var cur any = tree
	for _, key := range path {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Unset returns a copy of tree without the value at path. Missing paths
// return an unchanged copy.
func Unset(tree map[string]any, path ...string) map[string]any {
	out, _ := Clone(tree).(map[string]any)
	if out == nil {
		out = map[string]any{}
	}
	if len(path) == 0 {
		return out
	}

	cur := out
	for _, key := range path[:len(path)-1] {
		next, ok := cur[key].(map[string]any)
		if !ok {
			return out
		}
		cur = next
	}
	delete(cur, path[len(path)-1])
	return out
}

package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMerge_OverlayScalarWins(t *testing.T) {
	base := map[string]any{"type": "varchar", "len": 255}
	overlay := map[string]any{"len": 100}

	got := Merge(base, overlay)

	assert.Equal(t, map[string]any{"type": "varchar", "len": 100}, got)
	assert.Equal(t, 255, base["len"], "base must not be modified")
}

func TestMerge_NestedMaps(t *testing.T) {
	base := map[string]any{
		"fields": map[string]any{
			"name": map[string]any{"type": "varchar"},
		},
	}
	overlay := map[string]any{
		"fields": map[string]any{
			"name":  map[string]any{"notStorable": true},
			"email": map[string]any{"type": "email"},
		},
	}

	got := Merge(base, overlay)

	fields := got["fields"].(map[string]any)
	assert.Equal(t, map[string]any{"type": "varchar", "notStorable": true}, fields["name"])
	assert.Equal(t, map[string]any{"type": "email"}, fields["email"])
}

func TestMerge_ListsReplaceByDefault(t *testing.T) {
	got := Merge(
		map[string]any{"list": []any{"a", "b"}},
		map[string]any{"list": []any{"c"}},
	)
	assert.Equal(t, []any{"c"}, got["list"])
}

func TestMergeWith_AppendScalarLists(t *testing.T) {
	got := MergeWith(Append,
		map[string]any{"list": []any{"a", "b"}},
		map[string]any{"list": []any{"b", "c"}},
	)
	assert.Equal(t, []any{"a", "b", "c"}, got["list"])
}

func TestMergeWith_AppendReplacesListsOfMaps(t *testing.T) {
	got := MergeWith(Append,
		map[string]any{"list": []any{map[string]any{"a": 1}}},
		map[string]any{"list": []any{map[string]any{"b": 2}}},
	)
	assert.Equal(t, []any{map[string]any{"b": 2}}, got["list"])
}

func TestMerge_Idempotent(t *testing.T) {
	a := map[string]any{"x": map[string]any{"y": 1, "l": []any{"p"}}}
	b := map[string]any{"x": map[string]any{"z": 2, "l": []any{"q"}}}

	for _, mode := range []Mode{Replace, Append} {
		once := MergeWith(mode, a, b)
		twice := MergeWith(mode, once, b)
		assert.Equal(t, once, twice, mode.String())
	}
}

func TestMerge_Associative(t *testing.T) {
	a := map[string]any{"k": map[string]any{"a": 1, "l": []any{"x"}}, "s": "a"}
	b := map[string]any{"k": map[string]any{"b": 2, "l": []any{"y", "x"}}}
	c := map[string]any{"k": map[string]any{"a": 3, "l": []any{"z"}}, "s": "c"}

	for _, mode := range []Mode{Replace, Append} {
		left := MergeWith(mode, MergeWith(mode, a, b), c)
		right := MergeWith(mode, a, MergeWith(mode, b, c))
		assert.Equal(t, left, right, mode.String())
	}
}

func TestMerge_DoesNotAliasInputs(t *testing.T) {
	overlay := map[string]any{"m": map[string]any{"v": 1}}
	got := Merge(nil, overlay)

	got["m"].(map[string]any)["v"] = 2
	assert.Equal(t, 1, overlay["m"].(map[string]any)["v"])
}

func TestValue_NilOverlayKeepsBase(t *testing.T) {
	assert.Equal(t, "a", Value("a", nil))
	assert.Equal(t, "b", Value("a", "b"))
}

func TestNormalize_InterfaceKeys(t *testing.T) {
	got := Normalize(map[any]any{"a": map[any]any{1: "x"}, "l": []string{"p"}})
	assert.Equal(t, map[string]any{
		"a": map[string]any{"1": "x"},
		"l": []any{"p"},
	}, got)
}

func TestUnset(t *testing.T) {
	tree := map[string]any{
		"Account": map[string]any{
			"fields": map[string]any{
				"name": map[string]any{"type": "varchar", "len": 255},
			},
		},
	}

	got := Unset(tree, "Account", "fields", "name", "len")

	v, ok := Get(got, "Account", "fields", "name")
	require.True(t, ok)
	assert.Equal(t, map[string]any{"type": "varchar"}, v)

	_, ok = Get(tree, "Account", "fields", "name", "len")
	assert.True(t, ok, "original tree must keep the attribute")

	unchanged := Unset(tree, "Contact", "fields", "name")
	assert.Equal(t, tree, unchanged)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("append")
	require.NoError(t, err)
	assert.Equal(t, Append, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Replace, m)

	_, err = ParseMode("zip")
	assert.Error(t, err)
}

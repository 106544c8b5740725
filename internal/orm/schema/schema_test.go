package schema

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func accountFragment() *Schema {
	e := NewEntity()
	e.Fields.Set("id", &Field{Type: TypeID, DBType: "varchar", Len: Int(24)})
	e.Fields.Set("name", &Field{Type: TypeVarchar, Len: Int(255)})
	e.Relations.Set("contacts", &Relation{Type: RelationHasMany, Entity: "Contact", ForeignKey: "accountId"})
	return Single("Account", e)
}

func TestSchema_MergeKeepsInputsIntact(t *testing.T) {
	base := accountFragment()

	overlayEntity := NewEntity()
	overlayEntity.Fields.Set("name", &Field{Len: Int(100), NotNull: Bool(true)})
	overlay := Single("Account", overlayEntity)

	merged := base.Merge(overlay)

	e, ok := merged.Entity("Account")
	require.True(t, ok)
	name, ok := e.Field("name")
	require.True(t, ok)
	assert.Equal(t, TypeVarchar, name.Type)
	assert.Equal(t, 100, *name.Len)
	assert.True(t, *name.NotNull)

	original, _ := base.Entity("Account")
	origName, _ := original.Field("name")
	assert.Equal(t, 255, *origName.Len)
	assert.Nil(t, origName.NotNull)
}

func TestSchema_MergeIdempotent(t *testing.T) {
	base := accountFragment()
	e := NewEntity()
	e.Fields.Set("email", &Field{Type: TypeEmail})
	overlay := Single("Account", e)

	once := base.Merge(overlay)
	twice := once.Merge(overlay)

	a, err := json.Marshal(once)
	require.NoError(t, err)
	b, err := json.Marshal(twice)
	require.NoError(t, err)
	assert.JSONEq(t, string(a), string(b))
}

func TestSchema_MergeAssociative(t *testing.T) {
	a := accountFragment()

	be := NewEntity()
	be.Fields.Set("name", &Field{Len: Int(150)})
	b := Single("Account", be)

	ce := NewEntity()
	ce.Fields.Set("id", &Field{DBType: "int"})
	c := Single("Contact", NewEntity()).Merge(Single("Account", ce))

	left, err := json.Marshal(a.Merge(b).Merge(c))
	require.NoError(t, err)
	right, err := json.Marshal(a.Merge(b.Merge(c)))
	require.NoError(t, err)
	assert.Equal(t, string(left), string(right))
}

func TestSchema_MergeAppendsNewEntitiesInOrder(t *testing.T) {
	s := Single("Zeta", NewEntity()).Merge(Single("Alpha", NewEntity()))
	assert.Equal(t, []string{"Zeta", "Alpha"}, s.Names())
}

func TestSchema_Unset(t *testing.T) {
	s := accountFragment()

	out, err := s.Unset(
		AttributePath("Account", "name", "len"),
		Path{Entity: "Account", Section: SectionRelations, Name: "contacts"},
		FieldPath("Missing", "x"),
	)
	require.NoError(t, err)

	e, _ := out.Entity("Account")
	name, _ := e.Field("name")
	assert.Nil(t, name.Len)
	assert.False(t, e.Relations.Has("contacts"))

	orig, _ := s.Entity("Account")
	assert.True(t, orig.Relations.Has("contacts"))
}

func TestSchema_UnsetUnknownAttribute(t *testing.T) {
	_, err := accountFragment().Unset(AttributePath("Account", "name", "bogus"))
	assert.Error(t, err)
}

func TestOrdered_JSONPreservesOrder(t *testing.T) {
	o := NewOrdered[int]()
	o.Set("b", 1)
	o.Set("a", 2)
	o.Set("c", 3)
	o.Set("b", 4)

	data, err := json.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, `{"b":4,"a":2,"c":3}`, string(data))

	o.Delete("a")
	assert.Equal(t, []string{"b", "c"}, o.Keys())
}

func TestOrdered_YAMLPreservesOrder(t *testing.T) {
	o := NewOrdered[string]()
	o.Set("z", "last")
	o.Set("a", "first")

	data, err := yaml.Marshal(o)
	require.NoError(t, err)
	assert.Equal(t, "z: last\na: first\n", string(data))
}

func TestField_Set(t *testing.T) {
	f := &Field{}
	require.NoError(t, f.Set("type", "varchar"))
	require.NoError(t, f.Set("len", "100"))
	require.NoError(t, f.Set("notNull", 1))
	require.NoError(t, f.Set("unique", "nameEmail"))
	require.NoError(t, f.Set("index", true))

	assert.Equal(t, TypeVarchar, f.Type)
	assert.Equal(t, 100, *f.Len)
	assert.True(t, *f.NotNull)
	assert.Equal(t, "nameEmail", f.Unique.IndexName("name"))
	assert.Equal(t, "name", f.Index.IndexName("name"))

	assert.Error(t, f.Set("len", "long"))
	assert.Error(t, f.Set("color", "red"))
}

func TestIndexFlag_Marshal(t *testing.T) {
	data, err := json.Marshal(&Field{Unique: IndexOn(), Index: IndexNamed("parent")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"unique":true,"index":"parent"}`, string(data))
}

func TestIndex_Kind(t *testing.T) {
	assert.Equal(t, KindUnique, (&Index{Type: KindUnique}).Kind())
	assert.Equal(t, KindFullText, (&Index{Flags: []string{FlagFullText}}).Kind())
	assert.Equal(t, KindIndex, (&Index{Columns: []string{"name"}}).Kind())
}

func TestPath_String(t *testing.T) {
	assert.Equal(t, "Account.fields.name.len", AttributePath("Account", "name", "len").String())
	assert.Equal(t, "Account.fields.name", FieldPath("Account", "name").String())
	assert.Equal(t, "Account", Path{Entity: "Account"}.String())
}

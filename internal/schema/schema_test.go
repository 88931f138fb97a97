package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentic-research/bidsgraph/api"
)

func chainSchema(t *testing.T) *Schema {
	t.Helper()
	s, err := New(api.Schema{
		Version: "2.1.0",
		Types: []api.TypeDef{
			// Declared out of order on purpose: C before its supers.
			{Name: "C", Super: "B", Members: []api.MemberDef{
				{Name: "c1", Type: "str"},
				{Name: "shared", Type: "A"},
			}},
			{Name: "A", Members: []api.MemberDef{
				{Name: "a1", Type: "str"},
				{Name: "a2", Type: "int"},
				{Name: "shared", Type: "str"},
			}},
			{Name: "B", Super: "A", Members: []api.MemberDef{
				{Name: "b1", Type: "str"},
			}},
			{Name: "Bare", Super: "A"},
		},
	})
	require.NoError(t, err)
	return s
}

func memberNames(members []Member) []string {
	names := make([]string, len(members))
	for i, m := range members {
		names[i] = m.Name
	}
	return names
}

func TestMembersOf_InheritanceOrder(t *testing.T) {
	s := chainSchema(t)

	got := s.MembersOf(s.Type("C"), true)
	assert.Equal(t, []string{"a1", "a2", "shared", "b1", "c1", "shared"}, memberNames(got))

	// The redeclared member resolves to a model type on C, a literal on A.
	assert.Nil(t, got[2].Type)
	assert.Equal(t, "str", got[2].TypeName())
	require.NotNil(t, got[5].Type)
	assert.Equal(t, "A", got[5].TypeName())
}

func TestMembersOf_WithoutAncestors(t *testing.T) {
	s := chainSchema(t)
	got := s.MembersOf(s.Type("C"), false)
	assert.Equal(t, []string{"c1", "shared"}, memberNames(got))
}

func TestMembersOf_NoTableContributesNothing(t *testing.T) {
	s := chainSchema(t)
	assert.Empty(t, s.MembersOf(s.Type("Bare"), false))
	assert.Equal(t, []string{"a1", "a2", "shared"}, memberNames(s.MembersOf(s.Type("Bare"), true)))
	assert.Empty(t, s.MembersOf(s.Type(BaseType), true))
	assert.Empty(t, s.MembersOf(nil, true))
}

func TestMemberNames_Unique(t *testing.T) {
	s := chainSchema(t)
	assert.Equal(t, []string{"a1", "a2", "shared", "b1", "c1"}, s.MemberNames(s.Type("C")))
	assert.True(t, s.HasMember(s.Type("C"), "b1"))
	assert.False(t, s.HasMember(s.Type("B"), "c1"))
}

func TestNew_Errors(t *testing.T) {
	_, err := New(api.Schema{Types: []api.TypeDef{{Name: "X", Super: "Missing"}}})
	assert.Error(t, err)

	_, err = New(api.Schema{Types: []api.TypeDef{
		{Name: "X", Super: "Y"},
		{Name: "Y", Super: "X"},
	}})
	assert.Error(t, err)

	_, err = New(api.Schema{Version: "not a version"})
	assert.Error(t, err)
}

func TestMapObject_Nested(t *testing.T) {
	s := Default()
	raw := map[string]any{
		"Name":        "ds005",
		"BIDSVersion": "1.0.0rc2",
		"Unknown":     true,
		"Authors":     []any{"A", "B"},
		"GeneratedBy": []any{
			map[string]any{
				"Name":      "fmriprep",
				"Version":   "23.1.0",
				"Container": map[string]any{"Type": "docker", "Tag": "nipreps/fmriprep"},
			},
		},
	}

	obj := s.MapObject(s.Type("DerivativeDatasetDescriptionFile"), raw)
	assert.Equal(t, "ds005", obj.String("Name"))
	assert.Equal(t, "1.0.0rc2", obj.String("BIDSVersion"))
	assert.False(t, obj.Has("Unknown"))
	authors, _ := obj.Get("Authors")
	assert.Equal(t, []any{"A", "B"}, authors)

	gen := obj.Objects("GeneratedBy")
	require.Len(t, gen, 1)
	assert.Equal(t, "GeneratedBy", gen[0].Type().Name)
	assert.Equal(t, "fmriprep", gen[0].String("Name"))
	container := gen[0].Object("Container")
	require.NotNil(t, container)
	assert.Equal(t, "docker", container.String("Type"))

	back := obj.ToMap()
	assert.Equal(t, "nipreps/fmriprep", back["GeneratedBy"].([]any)[0].(map[string]any)["Container"].(map[string]any)["Tag"])
}

func TestMapObject_EmptyListStaysRaw(t *testing.T) {
	s := Default()
	obj := s.MapObject(s.Type("DatasetDescriptionFile"), map[string]any{"GeneratedBy": []any{}})
	v, ok := obj.Get("GeneratedBy")
	require.True(t, ok)
	assert.Equal(t, []any{}, v)
	assert.Empty(t, obj.Objects("GeneratedBy"))
}

func TestObject_UpdateKeepsOrder(t *testing.T) {
	a := NewObject(nil)
	a.Set("x", 1)
	a.Set("y", 2)
	b := NewObject(nil)
	b.Set("y", 3)
	b.Set("z", 4)
	a.Update(b)
	assert.Equal(t, []string{"x", "y", "z"}, a.Keys())
	assert.Equal(t, "3", a.String("y"))
}

func TestProcessEntityValue(t *testing.T) {
	s := Default()
	tests := []struct {
		name  string
		key   string
		value any
		want  any
	}{
		{"index padded", "run", "001", 1},
		{"index large", "run", "000230", 230},
		{"index non numeric", "run", "abc", "abc"},
		{"label untouched", "sub", "01", "01"},
		{"unknown key", "foo", "007", "007"},
		{"empty", "run", "", ""},
		{"index list", "echo", []any{"01", nil, "x"}, []any{1, nil, "x"}},
		{"string list", "run", []string{"02", "3"}, []any{2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, s.ProcessEntityValue(tt.key, tt.value))
		})
	}
}

func TestFuzzyMatchEntityKey(t *testing.T) {
	s := Default()
	assert.Equal(t, "sub", s.FuzzyMatchEntityKey("subj"))
	assert.Equal(t, "sub", s.FuzzyMatchEntityKey("subject"))
	assert.Equal(t, "sub", s.FuzzyMatchEntityKey("subjetc"))
	assert.Equal(t, "ses", s.FuzzyMatchEntityKey("sess"))
	assert.Equal(t, "acq", s.FuzzyMatchEntityKey("acquisiton"))
	assert.Equal(t, "run", s.FuzzyMatchEntityKey("run"))

	// Degenerate input still yields some canonical key.
	for _, k := range []string{"", "zzzz", "%%"} {
		_, ok := s.Entity(s.FuzzyMatchEntityKey(k))
		assert.True(t, ok, "key %q", k)
	}
}

func TestCanonicalKey(t *testing.T) {
	s := Default()
	assert.Equal(t, "sub", s.CanonicalKey("sub"))
	assert.Equal(t, "ses", s.CanonicalKey("session"))
}

func TestEntityLookup(t *testing.T) {
	s := Default()
	e, ok := s.Entity("run")
	require.True(t, ok)
	assert.True(t, e.IsIndex())
	assert.Equal(t, "run", e.String())

	e, ok = s.EntityByName("subject")
	require.True(t, ok)
	assert.Equal(t, "sub", e.Key)
	assert.False(t, e.IsIndex())

	_, ok = s.Entity("nope")
	assert.False(t, ok)
}

func TestVersion(t *testing.T) {
	s := Default()
	require.NotNil(t, s.Version())
	assert.Equal(t, uint64(1), s.Version().Major())
	assert.True(t, s.Compatible("1.0.0rc2"))
	assert.True(t, s.Compatible("1.9.0"))
	assert.False(t, s.Compatible("2.0.0"))
	assert.True(t, s.Compatible(""))

	v, err := ParseVersion("1.0.0rc2")
	require.NoError(t, err)
	assert.Equal(t, "rc2", v.Prerelease())
}

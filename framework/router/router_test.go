package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTable(t *testing.T) *Table[string] {
	t.Helper()

	table, err := NewTable(
		Route[string]{Pattern: "/", View: "home"},
		Route[string]{Pattern: "/add-patient", View: "add"},
		Route[string]{Pattern: "/edit-patient/:id", View: "edit"},
	)
	require.NoError(t, err)
	return table
}

func TestTableMatch(t *testing.T) {
	table := newTestTable(t)

	tests := []struct {
		name        string
		path        string
		expectedOK  bool
		expectedPat string
		expectedID  string
	}{
		{name: "root", path: "/", expectedOK: true, expectedPat: "/"},
		{name: "add patient", path: "/add-patient", expectedOK: true, expectedPat: "/add-patient"},
		{name: "edit patient", path: "/edit-patient/42", expectedOK: true, expectedPat: "/edit-patient/:id", expectedID: "42"},
		{name: "edit escaped slash", path: "/edit-patient/a%2Fb", expectedOK: true, expectedPat: "/edit-patient/:id", expectedID: "a/b"},
		{name: "edit escaped space", path: "/edit-patient/jane%20doe", expectedOK: true, expectedPat: "/edit-patient/:id", expectedID: "jane doe"},
		{name: "empty path", path: "", expectedOK: false},
		{name: "double slash root", path: "//", expectedOK: false},
		{name: "add trailing slash", path: "/add-patient/", expectedOK: false},
		{name: "add suffix", path: "/add-patient/extra", expectedOK: false},
		{name: "add prefix only", path: "/add", expectedOK: false},
		{name: "add case", path: "/Add-Patient", expectedOK: false},
		{name: "edit empty id", path: "/edit-patient/", expectedOK: false},
		{name: "edit missing id", path: "/edit-patient", expectedOK: false},
		{name: "edit extra segment", path: "/edit-patient/1/2", expectedOK: false},
		{name: "edit bad escape", path: "/edit-patient/%zz", expectedOK: false},
		{name: "unknown", path: "/patients", expectedOK: false},
		{name: "add escaped hyphen", path: "/add%2Dpatient", expectedOK: false},
		{name: "add escaped letter", path: "/%61dd-patient", expectedOK: false},
		{name: "edit escaped static", path: "/edit%2Dpatient/42", expectedOK: false},
		{name: "edit escaped id hyphen", path: "/edit-patient/a%2Db", expectedOK: true, expectedPat: "/edit-patient/:id", expectedID: "a-b"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			match, ok := table.Match(tc.path)
			require.Equal(t, tc.expectedOK, ok, "match %q", tc.path)
			if !tc.expectedOK {
				return
			}

			assert.Equal(t, tc.expectedPat, match.Pattern)
			if tc.expectedID == "" {
				assert.Empty(t, match.Params)
				return
			}

			id, ok := match.Params.Get("id")
			require.True(t, ok)
			assert.Equal(t, tc.expectedID, id)
		})
	}
}

func TestTableMatchBindsAnySegment(t *testing.T) {
	table := newTestTable(t)

	for _, value := range []string{"1", "x", "3f1c0e4a-8d5b-4c1e-9a1f-2b6d7e8f9a0b", "add-patient", "édith", "a.b", "~"} {
		match, ok := table.Match("/edit-patient/" + value)
		require.True(t, ok, "expected match for %q", value)
		assert.Equal(t, "edit", match.View)
		assert.Equal(t, Params{"id": value}, match.Params)
	}
}

func TestTableStaticPrecedence(t *testing.T) {
	table, err := NewTable(
		Route[string]{Pattern: "/patients/:id", View: "patient"},
		Route[string]{Pattern: "/patients/new", View: "new"},
	)
	require.NoError(t, err)

	match, ok := table.Match("/patients/new")
	require.True(t, ok)
	assert.Equal(t, "new", match.View)

	match, ok = table.Match("/patients/7")
	require.True(t, ok)
	assert.Equal(t, "patient", match.View)
}

func TestTableRoutesKeepDeclarationOrder(t *testing.T) {
	table := newTestTable(t)

	first := table.Routes()
	require.Len(t, first, 3)
	assert.Equal(t, 3, table.Len())
	assert.Equal(t, []Route[string]{
		{Pattern: "/", View: "home"},
		{Pattern: "/add-patient", View: "add"},
		{Pattern: "/edit-patient/:id", View: "edit"},
	}, first)

	first[0].View = "mutated"
	assert.Equal(t, "home", table.Routes()[0].View)
	assert.Equal(t, first[1:], table.Routes()[1:])
}

func TestTableMatchReturnsFreshParams(t *testing.T) {
	table := newTestTable(t)

	first, ok := table.Match("/edit-patient/1")
	require.True(t, ok)
	first.Params["id"] = "changed"

	second, ok := table.Match("/edit-patient/1")
	require.True(t, ok)
	assert.Equal(t, "1", second.Params["id"])
}

func TestTableLookup(t *testing.T) {
	table := newTestTable(t)

	view, ok := table.Lookup("/edit-patient/:id")
	require.True(t, ok)
	assert.Equal(t, "edit", view)

	_, ok = table.Lookup("/edit-patient/1")
	assert.False(t, ok)
}

func TestNewTableRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name   string
		routes []Route[string]
	}{
		{name: "empty", routes: nil},
		{name: "duplicate", routes: []Route[string]{{Pattern: "/a"}, {Pattern: "/a"}}},
		{name: "param conflict", routes: []Route[string]{{Pattern: "/a/:id"}, {Pattern: "/a/:key"}}},
		{name: "relative", routes: []Route[string]{{Pattern: "a"}}},
		{name: "empty segment", routes: []Route[string]{{Pattern: "/a//b"}}},
		{name: "trailing slash", routes: []Route[string]{{Pattern: "/a/"}}},
		{name: "bad param name", routes: []Route[string]{{Pattern: "/a/:1d"}}},
		{name: "empty param name", routes: []Route[string]{{Pattern: "/a/:"}}},
		{name: "repeated param", routes: []Route[string]{{Pattern: "/a/:id/b/:id"}}},
		{name: "wildcard static", routes: []Route[string]{{Pattern: "/a/*"}}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTable(tc.routes...)
			assert.Error(t, err)
		})
	}
}

func TestBuild(t *testing.T) {
	path, err := Build("/edit-patient/:id", map[string]string{"id": "a/b c"})
	require.NoError(t, err)
	assert.Equal(t, "/edit-patient/a%2Fb%20c", path)

	table := newTestTable(t)
	match, ok := table.Match(path)
	require.True(t, ok)
	assert.Equal(t, Params{"id": "a/b c"}, match.Params)

	root, err := Build("/", nil)
	require.NoError(t, err)
	assert.Equal(t, "/", root)

	_, err = Build("/edit-patient/:id", nil)
	assert.Error(t, err)
}

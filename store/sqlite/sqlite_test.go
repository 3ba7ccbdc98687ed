package sqlite_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/funding-engine/generic"
	"github.com/warp/funding-engine/store/sqlite"
)

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLite_Courses(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveCourse(ctx, generic.CourseRecord{
		Ref: "60003456", Title: "BTEC Level 3 National Diploma in IT", Level: "3", Payload: []byte(`{"a":1}`),
	}))
	require.NoError(t, store.SaveCourse(ctx, generic.CourseRecord{
		Ref: "50117729", Title: "Certificate in Customer Service", Level: "2", Payload: []byte(`{"b":2}`),
	}))

	got, err := store.GetCourse(ctx, "60003456")
	require.NoError(t, err)
	assert.Equal(t, "3", got.Level)
	assert.JSONEq(t, `{"a":1}`, string(got.Payload))

	_, err = store.GetCourse(ctx, "00000000")
	assert.ErrorIs(t, err, generic.ErrCourseNotFound)

	all, err := store.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "50117729", all[0].Ref)
}

func TestSQLite_SaveCourseReplaces(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	rec := generic.CourseRecord{Ref: "60003456", Title: "Old title", Payload: []byte(`{}`)}
	require.NoError(t, store.SaveCourse(ctx, rec))
	rec.Title = "New title"
	require.NoError(t, store.SaveCourse(ctx, rec))

	all, err := store.ListCourses(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "New title", all[0].Title)
}

func TestSQLite_SearchCourses(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	for _, rec := range []generic.CourseRecord{
		{Ref: "60003456", Title: "BTEC Diploma in Information Technology", Payload: []byte(`{}`)},
		{Ref: "50117729", Title: "Customer Service 100%", Payload: []byte(`{}`)},
		{Ref: "6010123X", Title: "Diplôme École Hôtelière", Payload: []byte(`{}`)},
	} {
		require.NoError(t, store.SaveCourse(ctx, rec))
	}

	tests := []struct {
		term string
		want []string
	}{
		{"information", []string{"60003456"}},
		{"BTEC", []string{"60003456"}},
		{"5011", []string{"50117729"}},
		{"%", []string{"50117729"}},
		{"_", []string{}},
		{"", []string{}},
		{"plumbing", []string{}},
		{"école", []string{"6010123X"}},
		{"HÔTELIÈRE", []string{"6010123X"}},
		{"6010123x", []string{"6010123X"}},
		{"diplo", []string{"60003456"}},
	}

	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			got, err := store.SearchCourses(ctx, tt.term)
			require.NoError(t, err)
			refs := []string{}
			for _, rec := range got {
				refs = append(refs, rec.Ref)
			}
			assert.Equal(t, tt.want, refs)
		})
	}
}

func TestSQLite_Ping(t *testing.T) {
	store := newStore(t)
	require.NoError(t, store.Ping(context.Background()))

	require.NoError(t, store.Close())
	assert.Error(t, store.Ping(context.Background()))
}

func TestSQLite_Authorities(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SaveAuthorities(ctx, map[string]string{
		"SW1A1AA": "Westminster (ESFA)",
		"M11AE":   "Greater Manchester (GMCA)",
	}))
	require.NoError(t, store.SaveAuthorities(ctx, map[string]string{
		"M11AE": "Manchester (GMCA)",
	}))

	label, ok, err := store.LookupAuthority(ctx, "M11AE")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Manchester (GMCA)", label)

	_, ok, err = store.LookupAuthority(ctx, "ZZ99ZZ")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := store.CountAuthorities(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	all, err := store.AllAuthorities(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Westminster (ESFA)", all["SW1A1AA"])

	require.NoError(t, store.Reset(ctx))
	n, err = store.CountAuthorities(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

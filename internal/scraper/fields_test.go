package scraper

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFields(t *testing.T) {
	set, err := ParseFields("title, Actors,,poster")
	require.NoError(t, err)
	assert.Equal(t, Fields(FieldTitle, FieldActors, FieldPoster), set)
	assert.Equal(t, "title,poster,actors", set.String())

	all, err := ParseFields("all")
	require.NoError(t, err)
	assert.Equal(t, AllFields, all)

	_, err = ParseFields("title,plot")
	assert.Error(t, err)
}

func TestFieldSet_Operations(t *testing.T) {
	s := Fields(FieldTitle, FieldRating)
	with := s.With(FieldActors)

	assert.False(t, s.Has(FieldActors), "With must not mutate the receiver")
	assert.True(t, with.Has(FieldActors))
	assert.Equal(t, 3, with.Len())
	assert.Equal(t, Fields(FieldTitle), with.Intersect(Fields(FieldTitle, FieldPoster)))
	assert.True(t, with.Without(FieldTitle).Without(FieldRating).Without(FieldActors).Empty())
	assert.True(t, with.HasAny(FieldPoster, FieldRating))

	if diff := cmp.Diff([]Field{FieldTitle, FieldRating, FieldActors}, with.Fields()); diff != "" {
		t.Errorf("Fields() mismatch (-want +got):\n%s", diff)
	}
}

func TestKindsFor(t *testing.T) {
	routes := newFakeProvider().routes

	tests := []struct {
		name   string
		fields FieldSet
		want   []RequestKind
	}{
		{"title only", Fields(FieldTitle), []RequestKind{KindInfo}},
		{"director implies cast", Fields(FieldDirector), []RequestKind{KindCast}},
		{"poster implies images", Fields(FieldPoster, FieldBackdrop), []RequestKind{KindImages}},
		{"title and actors", Fields(FieldTitle, FieldActors), []RequestKind{KindInfo, KindCast}},
		{"certification", Fields(FieldCertification), []RequestKind{KindReleases}},
		{"nothing", 0, []RequestKind{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, KindsFor(routes, tt.fields)); diff != "" {
				t.Errorf("KindsFor() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestKindsFor_AlwaysRoute(t *testing.T) {
	routes := []Route{
		{Kind: KindInfo, Fields: Fields(FieldTitle), Always: true},
		{Kind: KindCast, Fields: Fields(FieldActors)},
	}
	assert.Equal(t, []RequestKind{KindInfo, KindCast}, KindsFor(routes, Fields(FieldActors)))
}

func TestValidateRoutes(t *testing.T) {
	require.NoError(t, ValidateRoutes(newFakeProvider().routes))

	err := ValidateRoutes([]Route{
		{Kind: KindInfo, Fields: Fields(FieldTitle, FieldCertification)},
		{Kind: KindReleases, Fields: Fields(FieldCertification)},
	})
	assert.True(t, errors.Is(err, ErrOverlappingOwnership))

	err = ValidateRoutes([]Route{{Kind: KindInfo}, {Kind: KindInfo}})
	assert.ErrorIs(t, err, ErrOverlappingOwnership)
}

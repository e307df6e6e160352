package publish

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func boolPtr(v bool) *bool { return &v }

func TestApply(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	earlier := now.Add(-48 * time.Hour)

	tests := []struct {
		name      string
		current   State
		requested *bool
		want      State
	}{
		{"publish", State{}, boolPtr(true), State{Published: true, PublishedAt: &now}},
		{"unpublish", State{Published: true, PublishedAt: &earlier}, boolPtr(false), State{}},
		{"stay unpublished", State{}, boolPtr(false), State{}},
		{"omitted keeps published", State{Published: true, PublishedAt: &earlier}, nil, State{Published: true, PublishedAt: &earlier}},
		{"omitted keeps unpublished", State{}, nil, State{}},
		{"republish keeps timestamp", State{Published: true, PublishedAt: &earlier}, boolPtr(true), State{Published: true, PublishedAt: &earlier}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(tt.current, tt.requested, now)
			require.Equal(t, tt.want.Published, got.Published)
			if tt.want.PublishedAt == nil {
				require.Nil(t, got.PublishedAt)
				return
			}
			require.NotNil(t, got.PublishedAt)
			require.True(t, tt.want.PublishedAt.Equal(*got.PublishedAt))
		})
	}
}

func TestApplyUnpublishedRowWithStaleTimestamp(t *testing.T) {
	now := time.Now()
	stale := now.Add(-time.Hour)

	got := Apply(State{PublishedAt: &stale}, boolPtr(true), now)
	require.True(t, got.Published)
	require.True(t, now.Equal(*got.PublishedAt))
}

func TestToggle(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	on := Toggle(State{}, now)
	require.True(t, on.Published)
	require.True(t, now.Equal(*on.PublishedAt))

	off := Toggle(on, now.Add(time.Minute))
	require.False(t, off.Published)
	require.Nil(t, off.PublishedAt)
}

func TestInitial(t *testing.T) {
	now := time.Now()
	require.Equal(t, State{}, Initial(nil, now))
	require.Equal(t, State{}, Initial(boolPtr(false), now))

	published := Initial(boolPtr(true), now)
	require.True(t, published.Published)
	require.NotNil(t, published.PublishedAt)
}

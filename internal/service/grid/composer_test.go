package grid

import (
	"testing"

	"habitgrid/internal/model"
	"habitgrid/internal/period"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(tiles []Tile) []string {
	var out []string
	for _, t := range tiles {
		if !t.Placeholder {
			out = append(out, t.HabitID)
		}
	}
	return out
}

func TestCompose_ViewerFirstThenCaseInsensitiveNameThenID(t *testing.T) {
	habits := []model.Habit{
		{ID: "a", UserID: "viewer", Title: "Yoga", Cadence: period.Daily, Marker: "*"},
		{ID: "b2", UserID: "u-amy", Title: "Run", Cadence: period.Weekly, Marker: "+"},
		{ID: "b1", UserID: "u-amy-lower", Title: "Run", Cadence: period.Weekly, Marker: "+"},
	}
	names := map[string]string{"viewer": "Zara", "u-amy": "Amy", "u-amy-lower": "amy"}

	g := Compose(habits, names, nil, "viewer", LayoutFluid)
	assert.Equal(t, []string{"a", "b1", "b2"}, ids(g.Tiles))
}

func TestCompose_Ordering(t *testing.T) {
	habits := []model.Habit{
		{ID: "1", UserID: "u-emile", Title: "Read"},
		{ID: "2", UserID: "u-eve", Title: "Swim"},
		{ID: "3", UserID: "u-eve", Title: "bike"},
		{ID: "4", UserID: "u-anon", Title: "Walk"},
		{ID: "5", UserID: "me", Title: "Write"},
		{ID: "6", UserID: "me", Title: "Cook"},
	}
	names := map[string]string{
		"u-emile": "Émile",
		"u-eve":   "eve",
		"me":      "Zed",
	}

	g := Compose(habits, names, nil, "me", LayoutFluid)
	// own habits by title; unnamed owner sorts as ""; accents ignored (Émile < eve)
	assert.Equal(t, []string{"6", "5", "4", "1", "3", "2"}, ids(g.Tiles))
}

func TestCompose_DiacriticsAndCaseTieFallsBackToTitle(t *testing.T) {
	habits := []model.Habit{
		{ID: "x", UserID: "u1", Title: "Zumba"},
		{ID: "y", UserID: "u2", Title: "archery"},
	}
	names := map[string]string{"u1": "Zoë", "u2": "zoe"}

	g := Compose(habits, names, nil, "", LayoutFluid)
	assert.Equal(t, []string{"y", "x"}, ids(g.Tiles))
}

func TestCompose_DeterministicRegardlessOfInputOrder(t *testing.T) {
	habits := []model.Habit{
		{ID: "c", UserID: "u1", Title: "Same"},
		{ID: "a", UserID: "u2", Title: "Same"},
		{ID: "b", UserID: "u3", Title: "same"},
	}
	names := map[string]string{"u1": "Kim", "u2": "kim", "u3": "KIM"}

	first := Compose(habits, names, nil, "", LayoutSquare)
	reversed := []model.Habit{habits[2], habits[1], habits[0]}
	second := Compose(reversed, names, nil, "", LayoutSquare)

	assert.Equal(t, []string{"a", "b", "c"}, ids(first.Tiles))
	assert.Equal(t, first, second)
}

func TestCompose_TileFields(t *testing.T) {
	habits := []model.Habit{
		{ID: "h1", UserID: "viewer", Title: "Yoga", Cadence: period.Daily, Marker: "🧘"},
		{ID: "h2", UserID: "other", Title: "Call mum", Cadence: period.Weekly, Marker: "☎"},
		{ID: "h3", UserID: "ghost", Title: "Budget", Cadence: period.Monthly, Marker: "$"},
	}
	names := map[string]string{"viewer": "Zara", "other": "  Amy  ", "ghost": "   "}
	totals := map[string]int{"h1": 3, "h2": 1}

	g := Compose(habits, names, totals, "viewer", LayoutFluid)
	require.Len(t, g.Tiles, 3)

	own := g.Tiles[0]
	assert.Equal(t, "h1", own.HabitID)
	assert.Equal(t, "Zara", own.Name)
	assert.Equal(t, "days", own.CadenceLabel)
	assert.Equal(t, 3, own.Total)
	assert.Equal(t, "🧘🧘🧘", own.Progress)
	assert.True(t, own.CanLog)

	ghost := g.Tiles[1]
	assert.Equal(t, "h3", ghost.HabitID)
	assert.Equal(t, UnnamedPlaceholder, ghost.Name)
	assert.Equal(t, "months", ghost.CadenceLabel)
	assert.Equal(t, 0, ghost.Total)
	assert.Empty(t, ghost.Progress)
	assert.False(t, ghost.CanLog)

	other := g.Tiles[2]
	assert.Equal(t, "Amy", other.Name)
	assert.Equal(t, "weeks", other.CadenceLabel)
	assert.False(t, other.CanLog)
}

func TestComputeLayout_Square(t *testing.T) {
	tests := []struct {
		n, cols, empty int
	}{
		{0, 0, 0},
		{1, 1, 0},
		{2, 2, 0},
		{3, 2, 1},
		{4, 2, 0},
		{5, 3, 4},
		{9, 3, 0},
		{10, 4, 6},
	}
	for _, tt := range tests {
		l := ComputeLayout(tt.n, LayoutSquare)
		assert.Equal(t, tt.cols, l.Columns, "n=%d", tt.n)
		assert.Equal(t, tt.empty, l.EmptySlots, "n=%d", tt.n)
	}
}

func TestComputeLayout_Fluid(t *testing.T) {
	l := ComputeLayout(5, LayoutFluid)
	assert.Equal(t, Layout{Policy: LayoutFluid}, l)
}

func TestCompose_PlaceholdersAppendedAfterRealTiles(t *testing.T) {
	var habits []model.Habit
	for _, id := range []string{"e", "d", "c", "b", "a"} {
		habits = append(habits, model.Habit{ID: id, UserID: "u", Title: "t"})
	}

	g := Compose(habits, nil, nil, "", LayoutSquare)
	require.Len(t, g.Tiles, 9)
	assert.Equal(t, 3, g.Layout.Columns)
	assert.Equal(t, 4, g.Layout.EmptySlots)
	for i, tile := range g.Tiles {
		assert.Equal(t, i >= 5, tile.Placeholder, "tile %d", i)
	}
}

func TestCompose_Empty(t *testing.T) {
	g := Compose(nil, nil, nil, "viewer", LayoutSquare)
	assert.Empty(t, g.Tiles)
	assert.Equal(t, 0, g.Layout.Columns)
	assert.Equal(t, 0, g.Layout.EmptySlots)
}

func TestCompose_DoesNotMutateInput(t *testing.T) {
	habits := []model.Habit{{ID: "b", UserID: "u2"}, {ID: "a", UserID: "u1"}}
	_ = Compose(habits, map[string]string{"u1": "A", "u2": "B"}, nil, "", LayoutFluid)
	assert.Equal(t, "b", habits[0].ID)
}

func TestParseLayout(t *testing.T) {
	assert.Equal(t, LayoutFluid, ParseLayout("Fluid"))
	assert.Equal(t, LayoutSquare, ParseLayout(""))
	assert.Equal(t, LayoutSquare, ParseLayout("nonsense"))
}

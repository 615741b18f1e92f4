// Package grid orders public habits into the shared progress grid.
package grid

import (
	"math"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"habitgrid/internal/model"
	"habitgrid/internal/period"
)

// UnnamedPlaceholder 是没有 display name 的用户在格子里显示的名字
const UnnamedPlaceholder = "Someone"

// LayoutPolicy 决定是否补齐为正方形
type LayoutPolicy string

const (
	// LayoutSquare 补空格子直到 columns²
	LayoutSquare LayoutPolicy = "square"
	// LayoutFluid 由前端 auto-fill，不补空格子，Columns 为 0
	LayoutFluid LayoutPolicy = "fluid"
)

func ParseLayout(s string) LayoutPolicy {
	if LayoutPolicy(strings.ToLower(strings.TrimSpace(s))) == LayoutFluid {
		return LayoutFluid
	}
	return LayoutSquare
}

type Tile struct {
	HabitID      string         `json:"habit_id,omitempty"`
	OwnerID      string         `json:"owner_id,omitempty"`
	Name         string         `json:"name,omitempty"`
	Title        string         `json:"title,omitempty"`
	Cadence      period.Cadence `json:"cadence,omitempty"`
	CadenceLabel string         `json:"cadence_label,omitempty"`
	Marker       string         `json:"progress_marker,omitempty"`
	Total        int            `json:"total"`
	Progress     string         `json:"progress,omitempty"`
	CanLog       bool           `json:"can_log"`
	Placeholder  bool           `json:"placeholder,omitempty"`
}

type Layout struct {
	Policy     LayoutPolicy `json:"policy"`
	Columns    int          `json:"columns"`
	EmptySlots int          `json:"empty_slots"`
}

type Grid struct {
	Tiles  []Tile `json:"tiles"`
	Layout Layout `json:"layout"`
}

// Compose 是纯函数：相同输入总是得到相同顺序。
// 排序：viewer 自己的 habit 在前；然后按 display name、title（忽略大小写和变音符号）；
// 最后按 habit id 字节序保证全序。
func Compose(habits []model.Habit, namesByUser map[string]string, totals map[string]int, viewerID string, policy LayoutPolicy) Grid {
	sorted := make([]model.Habit, len(habits))
	copy(sorted, habits)

	col := collate.New(language.Und, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth)
	name := func(h model.Habit) string { return strings.TrimSpace(namesByUser[h.UserID]) }

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]

		aMine, bMine := a.UserID == viewerID, b.UserID == viewerID
		if aMine != bMine {
			return aMine
		}
		if c := col.CompareString(name(a), name(b)); c != 0 {
			return c < 0
		}
		if c := col.CompareString(strings.TrimSpace(a.Title), strings.TrimSpace(b.Title)); c != 0 {
			return c < 0
		}
		return a.ID < b.ID
	})

	layout := ComputeLayout(len(sorted), policy)
	tiles := make([]Tile, 0, len(sorted)+layout.EmptySlots)
	for _, h := range sorted {
		tiles = append(tiles, newTile(h, name(h), totals[h.ID], viewerID))
	}
	for i := 0; i < layout.EmptySlots; i++ {
		tiles = append(tiles, Tile{Placeholder: true})
	}

	return Grid{Tiles: tiles, Layout: layout}
}

// ComputeLayout: n ≤ 2 时列数为 n，否则 ceil(sqrt(n)) 并补齐到 cols²；n = 0 时列数和空格子都为 0
func ComputeLayout(n int, policy LayoutPolicy) Layout {
	if policy == LayoutFluid {
		return Layout{Policy: LayoutFluid}
	}
	if n <= 0 {
		return Layout{Policy: LayoutSquare}
	}

	// 一两个 habit 时只占一行，不补空格子
	if n <= 2 {
		return Layout{Policy: LayoutSquare, Columns: n}
	}

	cols := int(math.Ceil(math.Sqrt(float64(n))))
	return Layout{Policy: LayoutSquare, Columns: cols, EmptySlots: max(0, cols*cols-n)}
}

func newTile(h model.Habit, name string, total int, viewerID string) Tile {
	if name == "" {
		name = UnnamedPlaceholder
	}
	if total < 0 {
		total = 0
	}
	return Tile{
		HabitID:      h.ID,
		OwnerID:      h.UserID,
		Name:         name,
		Title:        h.Title,
		Cadence:      h.Cadence,
		CadenceLabel: period.Label(h.Cadence),
		Marker:       h.Marker,
		Total:        total,
		Progress:     strings.Repeat(h.Marker, total),
		CanLog:       h.UserID == viewerID,
	}
}

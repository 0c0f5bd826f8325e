// Package gallery projects the media catalog through category filters and a
// single-item detail viewer.
package gallery

import (
	"errors"

	"festival-media-center/internal/models"
)

// ErrItemNotFound is returned when selecting an id the catalog does not hold
var ErrItemNotFound = errors.New("gallery item not found")

// FilterState is a bitset over the closed category set
type FilterState uint8

const (
	FilterImage FilterState = 1 << iota
	FilterVideo

	FilterAll = FilterImage | FilterVideo
)

func bitFor(c models.MediaCategory) FilterState {
	switch c {
	case models.CategoryImage:
		return FilterImage
	case models.CategoryVideo:
		return FilterVideo
	case models.CategoryEither:
		return FilterAll
	}
	return 0
}

// Enabled reports whether the category is switched on
func (f FilterState) Enabled(c models.MediaCategory) bool {
	bit := bitFor(c)
	return bit != 0 && f&bit == bit
}

// With returns the state with one category switched on or off
func (f FilterState) With(c models.MediaCategory, enabled bool) FilterState {
	if enabled {
		return f | bitFor(c)
	}
	return f &^ bitFor(c)
}

// ViewerKind tells how the detail view renders an item
type ViewerKind string

const (
	ViewerImage ViewerKind = "inline-image"
	ViewerVideo ViewerKind = "video-player"
)

// Viewer is the detail view of one selected item
type Viewer struct {
	Item     models.MediaItem `json:"item"`
	Kind     ViewerKind       `json:"kind"`
	Controls bool             `json:"controls"`
	Autoplay bool             `json:"autoplay"`
	Caption  string           `json:"caption,omitempty"`
}

// ViewerFor builds the detail view of an item
func ViewerFor(item models.MediaItem) Viewer {
	v := Viewer{Item: item, Kind: ViewerImage, Caption: item.Caption}
	if item.Category == models.CategoryVideo {
		v.Kind = ViewerVideo
		v.Controls = true
		v.Autoplay = true
	}
	return v
}

// ResetAction is the one-step way back to every category enabled
type ResetAction struct {
	Label   string      `json:"label"`
	Filters FilterState `json:"filters"`
}

// Gallery holds a fixed catalog and the UI state projected over it.
// Like the page it backs, it has a single owner and is not safe for concurrent use.
type Gallery struct {
	catalog  []models.MediaItem
	filters  FilterState
	selected *models.MediaItem

	visible []models.MediaItem
	stale   bool
}

// New creates a gallery with every category enabled
func New(catalog []models.MediaItem) *Gallery {
	return &Gallery{
		catalog: append([]models.MediaItem(nil), catalog...),
		filters: FilterAll,
		stale:   true,
	}
}

// Filters returns the current filter state
func (g *Gallery) Filters() FilterState {
	return g.filters
}

// SetFilter switches one category on or off
func (g *Gallery) SetFilter(c models.MediaCategory, enabled bool) {
	next := g.filters.With(c, enabled)
	if next != g.filters {
		g.filters = next
		g.stale = true
	}
}

// Toggle flips one category
func (g *Gallery) Toggle(c models.MediaCategory) {
	g.SetFilter(c, !g.filters.Enabled(c))
}

// Reset enables every category again
func (g *Gallery) Reset() {
	g.SetFilter(models.CategoryEither, true)
}

// VisibleItems returns the catalog items of enabled categories in catalog
// order. The subset is recomputed only after the filters change.
func (g *Gallery) VisibleItems() []models.MediaItem {
	if g.stale {
		g.visible = g.visible[:0]
		for _, item := range g.catalog {
			if g.filters.Enabled(item.Category) {
				g.visible = append(g.visible, item)
			}
		}
		g.stale = false
	}
	return append([]models.MediaItem(nil), g.visible...)
}

// Empty reports whether the current filters hide everything
func (g *Gallery) Empty() bool {
	return len(g.VisibleItems()) == 0
}

// ResetAction returns the action offered by the empty view
func (g *Gallery) ResetAction() *ResetAction {
	if !g.Empty() {
		return nil
	}
	return &ResetAction{Label: "Reset filters", Filters: FilterAll}
}

// Select opens the detail view for the item with the given id
func (g *Gallery) Select(id string) (Viewer, error) {
	for i := range g.catalog {
		if g.catalog[i].ID == id {
			item := g.catalog[i]
			g.selected = &item
			return ViewerFor(item), nil
		}
	}
	return Viewer{}, ErrItemNotFound
}

// Close dismisses the detail view
func (g *Gallery) Close() {
	g.selected = nil
}

// Detail returns the open detail view, if any
func (g *Gallery) Detail() *Viewer {
	if g.selected == nil {
		return nil
	}
	v := ViewerFor(*g.selected)
	return &v
}

// View is the full render projection of the gallery state
type View struct {
	Items   []models.MediaItem `json:"items"`
	Filters map[string]bool    `json:"filters"`
	Empty   bool               `json:"empty"`
	Message string             `json:"message,omitempty"`
	Reset   *ResetAction       `json:"reset,omitempty"`
	Detail  *Viewer            `json:"detail,omitempty"`
}

// View renders the current state
func (g *Gallery) View() View {
	items := g.VisibleItems()
	v := View{
		Items: items,
		Filters: map[string]bool{
			string(models.CategoryImage): g.filters.Enabled(models.CategoryImage),
			string(models.CategoryVideo): g.filters.Enabled(models.CategoryVideo),
		},
		Empty:  len(items) == 0,
		Reset:  g.ResetAction(),
		Detail: g.Detail(),
	}
	if v.Empty {
		v.Message = "No items match the current filters."
	}
	return v
}

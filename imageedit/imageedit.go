// Package imageedit implements the image region editing session. Unlike
// text blocks there is no active sub-state: every extracted region is
// selectable at once and independently carries a none, delete, or replace
// action until commit or discard.
package imageedit

import (
	"errors"
	"fmt"

	"github.com/wudi/pdfedit/commit"
	"github.com/wudi/pdfedit/coords"
	"github.com/wudi/pdfedit/extract"
	"github.com/wudi/pdfedit/observability"
	"github.com/wudi/pdfedit/raster"
)

// ErrNoRegionAt is returned by hit-testing when no region contains the point.
var ErrNoRegionAt = errors.New("imageedit: no region at point")

// Region is one editable image placement and its pending action.
type Region struct {
	Rect        coords.Rect
	Action      commit.Action
	Replacement []byte
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(log observability.Logger) Option {
	return func(s *Session) { s.log = log }
}

// Session holds the pending per-region actions for one page.
type Session struct {
	log     observability.Logger
	regions []Region
}

// New builds a session from extracted image placements.
func New(placements []extract.Placement, opts ...Option) *Session {
	s := &Session{log: observability.NopLogger{}}
	for _, opt := range opts {
		opt(s)
	}
	s.regions = make([]Region, 0, len(placements))
	for _, p := range placements {
		s.regions = append(s.regions, Region{Rect: p.Rect()})
	}
	s.log.Debug("image session opened", observability.Int("regions", len(s.regions)))
	return s
}

// Regions returns the current region states in extraction order.
func (s *Session) Regions() []Region { return s.regions }

// RegionAt returns the index of the first region containing the document
// point.
func (s *Session) RegionAt(p coords.Point) (int, error) {
	for i, r := range s.regions {
		if r.Rect.Contains(p) {
			return i, nil
		}
	}
	return 0, ErrNoRegionAt
}

// MarkDelete sets the region's pending action to delete.
func (s *Session) MarkDelete(i int) error {
	return s.set(i, commit.ActionDelete, nil)
}

// MarkReplace sets the region's pending action to replace with the given
// encoded image bytes.
func (s *Session) MarkReplace(i int, replacement []byte) error {
	if len(replacement) == 0 {
		return errors.New("imageedit: empty replacement")
	}
	return s.set(i, commit.ActionReplace, replacement)
}

// ClearAction resets the region back to none, discarding any replacement.
func (s *Session) ClearAction(i int) error {
	return s.set(i, commit.ActionNone, nil)
}

func (s *Session) set(i int, a commit.Action, replacement []byte) error {
	if i < 0 || i >= len(s.regions) {
		return fmt.Errorf("imageedit: region %d out of range", i)
	}
	s.regions[i].Action = a
	s.regions[i].Replacement = replacement
	return nil
}

// HasChanges reports whether any region has a pending action.
func (s *Session) HasChanges() bool {
	for _, r := range s.regions {
		if r.Action != commit.ActionNone {
			return true
		}
	}
	return false
}

// Edits converts pending actions into commit records. Regions left at none
// produce nothing.
func (s *Session) Edits(background raster.Color) []commit.ImageEdit {
	var out []commit.ImageEdit
	for _, r := range s.regions {
		if r.Action == commit.ActionNone {
			continue
		}
		out = append(out, commit.ImageEdit{
			Rect:        r.Rect,
			Action:      r.Action,
			Replacement: r.Replacement,
			Background:  background,
		})
	}
	return out
}

// Discard resets every pending action, matching exit-without-commit.
func (s *Session) Discard() {
	for i := range s.regions {
		s.regions[i].Action = commit.ActionNone
		s.regions[i].Replacement = nil
	}
}

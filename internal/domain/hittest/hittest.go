// Package hittest maps a stage point onto the hotspot catalog.
package hittest

import "github.com/okian/spotcheck/internal/domain/model"

// Contains reports whether p lies inside h. Edges count as inside.
func Contains(h model.Hotspot, p model.Point) bool {
	return p.X >= h.X && p.X <= h.X+h.W && p.Y >= h.Y && p.Y <= h.Y+h.H
}

// Test returns the first hotspot, in catalog order, that contains p and has
// not been found yet. Neither hotspots nor found is modified.
func Test(p model.Point, hotspots []model.Hotspot, found map[int]struct{}) (model.Hotspot, bool) {
	for _, h := range hotspots {
		if _, done := found[h.ID]; done {
			continue
		}
		if Contains(h, p) {
			return h, true
		}
	}
	return model.Hotspot{}, false
}

package repository

import (
	"sort"

	"github.com/Death-Raider13/CAPS-TEAM/app/models"
)

// prepare checks the id and fills the defaults every adapter applies before a write.
func prepare[T any, PT stamped[T]](item *T) error {
	p := PT(item)
	if p.Record().ID == 0 {
		return ErrMissingID
	}
	p.Record().Normalize()
	if p.Stamp().IsZero() {
		*p.Stamp() = models.Now()
	}
	return nil
}

// sortNewestFirst orders items by their timestamp, newest first, then by id.
func sortNewestFirst[T any, PT stamped[T]](items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := PT(&items[i]), PT(&items[j])
		if !a.Stamp().Equal(b.Stamp().Time) {
			return a.Stamp().After(b.Stamp().Time)
		}
		return a.Record().ID > b.Record().ID
	})
}

// stripPhotos drops photo payloads in place unless the caller asked for them.
func stripPhotos[T any, PT stamped[T]](items []T, opts ListOptions) {
	if opts.WithPhotos {
		return
	}
	for i := range items {
		PT(&items[i]).Record().Photos = nil
	}
}

package datastore

import (
	"sort"

	"github.com/aleister1102/pricefeed/internal/models"
)

// DefaultSampleLimit caps the number of price changes kept in a diff.
const DefaultSampleLimit = 10

// DiffPrices compares two versions of a supplier list keyed by brand and code.
// Duplicate keys keep their last occurrence.
func DiffPrices(supplier string, previous, current []models.PriceRecord, sampleLimit int) models.PriceDiff {
	diff := models.PriceDiff{Supplier: supplier, HasPrevious: previous != nil}

	prev := indexRecords(previous)
	curr := indexRecords(current)

	var changes []models.PriceChange
	for key, record := range curr {
		old, ok := prev[key]
		switch {
		case !ok:
			diff.Added++
		case old.Precio != record.Precio:
			diff.Changed++
			changes = append(changes, models.PriceChange{
				Codigo:   record.Codigo,
				Marca:    record.Marca,
				OldPrice: old.Precio,
				NewPrice: record.Precio,
			})
		default:
			diff.Unchanged++
		}
	}
	for key := range prev {
		if _, ok := curr[key]; !ok {
			diff.Removed++
		}
	}

	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Marca != changes[j].Marca {
			return changes[i].Marca < changes[j].Marca
		}
		return changes[i].Codigo < changes[j].Codigo
	})
	if sampleLimit >= 0 && len(changes) > sampleLimit {
		changes = changes[:sampleLimit]
	}
	diff.SampleChanges = changes
	return diff
}

func indexRecords(records []models.PriceRecord) map[string]models.PriceRecord {
	index := make(map[string]models.PriceRecord, len(records))
	for _, r := range records {
		index[r.Key()] = r
	}
	return index
}

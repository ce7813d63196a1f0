package repository

import "plate-registry/internal/model"

// pageSize is the hard per-request row cap of the remote backend.
const pageSize = 1000

// fetchPaged retrieves total rows through fetch in fixed-size pages.
// Pages are addressed by non-overlapping offset ranges and the last
// page is clamped to the remaining rows, so the concatenation holds
// exactly total rows with no gap and no duplicate. fetch must keep a
// stable ordering across calls for the page boundaries to hold.
func fetchPaged(total int64, size int, fetch func(offset, limit int) ([]model.PlateRecord, error)) ([]model.PlateRecord, error) {
	if total <= 0 {
		return []model.PlateRecord{}, nil
	}

	records := make([]model.PlateRecord, 0, total)
	for offset := 0; offset < int(total); offset += size {
		limit := size
		if remaining := int(total) - offset; remaining < limit {
			limit = remaining
		}
		page, err := fetch(offset, limit)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
	}
	return records, nil
}

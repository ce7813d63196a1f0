// Package transfer moves plate records in and out of the registry in
// bulk: duplicate-screened imports, full exports and snapshots of the
// remote set into the local flat store for offline use.
package transfer

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"plate-registry/internal/model"
	"plate-registry/internal/repository"
	"plate-registry/internal/service"
)

// Row is one external row handed over by the import collaborator.
// Line is the 1-based position in the source, kept for error reports.
type Row struct {
	Plate       string `json:"plate"`
	Company     string `json:"company"`
	Association string `json:"association"`
	Line        int    `json:"line"`
}

// Summary is the structured outcome of one import batch.
type Summary struct {
	Inserted   int    `json:"inserted"`
	Duplicates int    `json:"duplicates"`
	Errors     int    `json:"errors"`
	Processed  int    `json:"processed"`
	Source     string `json:"source"`
}

type Bridge struct {
	svc     *service.PlateService
	offline *repository.FlatRepository
	log     zerolog.Logger
}

// NewBridge wires the bridge to the record store and to the flat store
// that receives offline snapshots.
func NewBridge(svc *service.PlateService, offline *repository.FlatRepository, log zerolog.Logger) *Bridge {
	return &Bridge{svc: svc, offline: offline, log: log}
}

// OfflineStore exposes the snapshot target.
func (b *Bridge) OfflineStore() *repository.FlatRepository {
	return b.offline
}

// Import registers each row, screening duplicates against the whole
// active set first when skipDuplicates is set. A failing row is counted
// and the batch continues.
func (b *Bridge) Import(ctx context.Context, rows []Row, actor, source string, skipDuplicates bool) Summary {
	summary := Summary{Processed: len(rows), Source: source}

	for _, row := range rows {
		if skipDuplicates {
			existing, err := b.svc.FindByIdentity(ctx, row.Plate)
			if err != nil {
				b.log.Warn().Err(err).Int("line", row.Line).Msg("duplicate screening failed")
				summary.Errors++
				continue
			}
			if existing != nil {
				summary.Duplicates++
				continue
			}
		}

		_, err := b.svc.Register(ctx, service.RegisterInput{
			Plate:       row.Plate,
			Company:     row.Company,
			Association: row.Association,
			Actor:       actor,
		})
		switch {
		case err == nil:
			summary.Inserted++
		case errors.Is(err, service.ErrDuplicatePlate):
			summary.Duplicates++
		default:
			b.log.Warn().Err(err).Int("line", row.Line).Str("plate", row.Plate).Msg("import row failed")
			summary.Errors++
		}
	}

	return summary
}

// Export hands the export collaborator the full current set in search
// order; serialization is the collaborator's job.
func (b *Bridge) Export(ctx context.Context) ([]model.PlateRecord, error) {
	return b.svc.Search(ctx, "")
}

// Snapshot copies the full active set into the offline flat store. The
// service keeps its tier; the snapshot is picked up on a later start
// when the remote backend is down.
func (b *Bridge) Snapshot(ctx context.Context) (int, error) {
	records, err := b.svc.Search(ctx, "")
	if err != nil {
		return 0, err
	}
	if err := b.offline.ReplaceAll(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

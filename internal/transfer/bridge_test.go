package transfer

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"plate-registry/internal/repository"
	"plate-registry/internal/service"
)

func newBridge(t *testing.T) (*Bridge, *service.PlateService) {
	t.Helper()
	dir := t.TempDir()
	backend := repository.NewFlatRepository(filepath.Join(dir, "plates.json"))
	offline := repository.NewFlatRepository(filepath.Join(dir, "offline.json"))
	svc := service.NewPlateService(backend, zerolog.Nop())
	return NewBridge(svc, offline, zerolog.Nop()), svc
}

func TestImportScreensDuplicatesAndSurvivesBadRows(t *testing.T) {
	ctx := context.Background()
	bridge, svc := newBridge(t)

	_, err := svc.Register(ctx, service.RegisterInput{Plate: "ABC-123"})
	require.NoError(t, err)

	rows := []Row{
		{Plate: "abc 123", Line: 1},  // identity-equal to the existing record
		{Plate: "XYZ-999", Line: 2},  // fresh
		{Plate: "A", Line: 3},        // implausible, must not stop the batch
		{Plate: "1234-QR", Line: 4},  // fresh
		{Plate: "1234 qr", Line: 5},  // duplicate of the row just inserted
	}

	summary := bridge.Import(ctx, rows, "importer", "fleet.csv", true)

	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 2, summary.Duplicates)
	assert.Equal(t, 1, summary.Errors)
	assert.Equal(t, 5, summary.Processed)
	assert.Equal(t, "fleet.csv", summary.Source)

	assert.EqualValues(t, 3, svc.Count(ctx))

	inserted, err := svc.FindByIdentity(ctx, "XYZ999")
	require.NoError(t, err)
	require.NotNil(t, inserted)
	assert.Equal(t, "importer", inserted.RegisteredBy)
}

func TestImportWithoutScreeningStillCatchesDuplicates(t *testing.T) {
	ctx := context.Background()
	bridge, _ := newBridge(t)

	rows := []Row{
		{Plate: "AA-11", Line: 1},
		{Plate: "aa 11", Line: 2},
	}

	summary := bridge.Import(ctx, rows, "", "raw.csv", false)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, 1, summary.Duplicates, "the register pre-check still applies")
}

func TestExportReturnsFullSet(t *testing.T) {
	ctx := context.Background()
	bridge, svc := newBridge(t)

	for _, p := range []string{"BB-22", "AA-11"} {
		_, err := svc.Register(ctx, service.RegisterInput{Plate: p})
		require.NoError(t, err)
	}

	records, err := bridge.Export(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "AA-11", records[0].Plate, "export keeps search order")
}

func TestSnapshotCopiesSetIntoFlatStore(t *testing.T) {
	ctx := context.Background()
	bridge, svc := newBridge(t)

	for _, p := range []string{"AA-11", "BB-22", "CC-33"} {
		_, err := svc.Register(ctx, service.RegisterInput{Plate: p})
		require.NoError(t, err)
	}

	n, err := bridge.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	count, err := bridge.OfflineStore().Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestReadRows(t *testing.T) {
	input := strings.Join([]string{
		"PLATE,COMPANY,ASSOCIATION",
		"ABC-123,Acme,Norte",
		",skipped,row",
		"XYZ-999",
		"",
	}, "\n")

	rows, err := ReadRows(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, Row{Plate: "ABC-123", Company: "Acme", Association: "Norte", Line: 2}, rows[0])
	assert.Equal(t, Row{Plate: "XYZ-999", Line: 4}, rows[1])
}

func TestWriteRecordsRoundTrip(t *testing.T) {
	ctx := context.Background()
	bridge, svc := newBridge(t)

	_, err := svc.Register(ctx, service.RegisterInput{Plate: "ABC-123", Company: "Acme", Actor: "tester"})
	require.NoError(t, err)

	records, err := bridge.Export(ctx)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, records))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "PLATE,COMPANY,ASSOCIATION,REGISTERED AT,REGISTERED BY", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ABC-123,Acme,,"))
	assert.True(t, strings.HasSuffix(lines[1], ",tester"))
}

package export_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alejandrodnm/accuracybot/internal/adapters/docs"
	"github.com/alejandrodnm/accuracybot/internal/adapters/export"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCollection(t *testing.T, dir, collection, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, collection+".json"), []byte(body), 0o644))
}

func TestFileSource_LoadSnapshot(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, docs.CollectionListings, `[
		{"id": "l1", "data": {"pricingStrategy": {"listingPrice": 100}, "itemIdentification": {"name": "Desk", "category": "furniture"}}},
		{"id": "l2", "data": {"pricingStrategy": {"optimal": 40}}},
		{"id": "l3", "data": "not an object"}
	]`)
	writeCollection(t, dir, docs.CollectionFeedbackEvents, `[
		{"id": "f1", "data": {"listingId": "l1", "stage": "sold", "value": {"actualPrice": 90}}}
	]`)
	writeCollection(t, dir, docs.CollectionSoldPrices, `[{"data": {}}, {"data": {}}]`)
	// listings_temp no existe: colección vacía

	snap, err := export.NewFileSource(dir).LoadSnapshot(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Predictions, 2)
	assert.Equal(t, "l1", snap.Predictions[0].StorageID)
	assert.Equal(t, "furniture", snap.Predictions[0].Category)
	assert.Equal(t, 3, snap.ListingDocs)
	assert.Equal(t, 1, snap.SkippedDocs)
	assert.Equal(t, 0, snap.TempListingDocs)
	assert.Equal(t, 2, snap.SoldPriceRecords)
	require.Len(t, snap.Outcomes, 1)
	assert.Equal(t, 90.0, snap.Outcomes[0].ActualPrice)
}

func TestReadDir_GeneratesMissingIDs(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, docs.CollectionTempListings, `[{"data": {"wasSold": true}}, {"id": "t9", "data": {}}]`)

	raws, err := export.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, raws, 2)
	assert.Equal(t, "listings_temp-0", raws[0].ID)
	assert.Equal(t, "t9", raws[1].ID)
	assert.Equal(t, docs.CollectionTempListings, raws[0].Collection)
}

func TestReadDir_EmptyDirectory(t *testing.T) {
	raws, err := export.ReadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, raws)
}

func TestReadDir_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	writeCollection(t, dir, docs.CollectionListings, `{"id": "not an array"}`)

	_, err := export.ReadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "export.ReadDir")
}

package industrial

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "static", "persistent_anomalies.geojson")
	store := NewSnapshotStore(path)

	locations := []PersistentLocation{
		{
			Latitude:         41.65025,
			Longitude:        -87.12025,
			DetectionCount:   6,
			UniqueDays:       3,
			DetectionsPerDay: 2.0,
			FirstDetection:   time.Date(2025, 8, 10, 0, 0, 0, 0, time.UTC),
			LastDetection:    time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC),
		},
		{
			Latitude:         35.2,
			Longitude:        -101.8,
			DetectionCount:   14,
			UniqueDays:       7,
			DetectionsPerDay: 2.0,
			FirstDetection:   time.Date(2025, 7, 25, 0, 0, 0, 0, time.UTC),
			LastDetection:    time.Date(2025, 8, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	require.NoError(t, store.Save(locations))

	loaded, err := store.Load()
	require.NoError(t, err)
	if diff := cmp.Diff(locations, loaded); diff != "" {
		t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
	}
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.geojson")
	store := NewSnapshotStore(path)

	require.NoError(t, store.Save([]PersistentLocation{
		{Latitude: 1, Longitude: 2, DetectionCount: 5, UniqueDays: 5, DetectionsPerDay: 1},
		{Latitude: 3, Longitude: 4, DetectionCount: 7, UniqueDays: 7, DetectionsPerDay: 1},
	}))
	require.NoError(t, store.Save([]PersistentLocation{
		{Latitude: 5, Longitude: 6, DetectionCount: 9, UniqueDays: 3, DetectionsPerDay: 3},
	}))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 9, loaded[0].DetectionCount)
}

func TestSnapshotStore_LoadMissingFile(t *testing.T) {
	store := NewSnapshotStore(filepath.Join(t.TempDir(), "missing.geojson"))

	_, err := store.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSnapshotStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.geojson")
	require.NoError(t, os.WriteFile(path, []byte("not geojson"), 0o644))

	store := NewSnapshotStore(path)
	_, err := store.Load()
	require.Error(t, err)
}

func TestSnapshotStore_EmptySnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.geojson")
	store := NewSnapshotStore(path)

	require.NoError(t, store.Save(nil))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

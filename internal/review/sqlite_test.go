package review

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "reviews.db")
	store, err := NewSQLiteStore(dbPath)
	require.NoError(t, err)
	return store
}

func TestNewSQLiteStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reviews.db")

	store, err := NewSQLiteStore(dbPath)

	require.NoError(t, err)
	require.NotNil(t, store)
	defer store.Close()

	_, err = os.Stat(dbPath)
	assert.NoError(t, err, "Database file should exist")
}

func TestSQLiteStore_Save(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	r := &Review{
		PatientID: "p01",
		Reviewer:  "dr-smith",
		Verdict:   VerdictAccurate,
		Notes:     "Matches the chart",
	}

	err := store.Save(ctx, r)

	require.NoError(t, err)
	assert.NotZero(t, r.ID, "ID should be assigned")
	assert.False(t, r.CreatedAt.IsZero(), "CreatedAt should be set")
	assert.False(t, r.UpdatedAt.IsZero(), "UpdatedAt should be set")
}

func TestSQLiteStore_Save_Update(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	r := &Review{
		PatientID: "p01",
		Reviewer:  "dr-smith",
		Verdict:   VerdictAccurate,
	}
	require.NoError(t, store.Save(ctx, r))
	originalID := r.ID

	// Same patient and reviewer: replaces the first review.
	r.Verdict = VerdictIncomplete
	r.Notes = "Missing the renal history"
	require.NoError(t, store.Save(ctx, r))

	assert.Equal(t, originalID, r.ID, "Should update existing record")

	retrieved, err := store.Get(ctx, "p01", "dr-smith")
	require.NoError(t, err)
	require.NotNil(t, retrieved)
	assert.Equal(t, VerdictIncomplete, retrieved.Verdict)
	assert.Equal(t, "Missing the renal history", retrieved.Notes)
}

func TestSQLiteStore_Get_NotFound(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	retrieved, err := store.Get(context.Background(), "p99", "")

	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestSQLiteStore_List(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	for _, patientID := range []string{"p01", "p02", "p03"} {
		require.NoError(t, store.Save(ctx, &Review{
			PatientID: patientID,
			Verdict:   VerdictAccurate,
		}))
	}

	all, err := store.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := store.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)
}

func TestSQLiteStore_Count(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &Review{PatientID: "p01", Verdict: VerdictAccurate}))
	require.NoError(t, store.Save(ctx, &Review{PatientID: "p02", Verdict: VerdictInaccurate}))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestSQLiteStore_Delete(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	r := &Review{PatientID: "p01", Verdict: VerdictAccurate}
	require.NoError(t, store.Save(ctx, r))

	require.NoError(t, store.Delete(ctx, r.ID))

	retrieved, err := store.Get(ctx, "p01", "")
	require.NoError(t, err)
	assert.Nil(t, retrieved)
}

func TestSQLiteStore_ExportJSON(t *testing.T) {
	store := createTestStore(t)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, &Review{
		PatientID: "p01",
		Reviewer:  "dr-smith",
		Verdict:   VerdictAccurate,
	}))

	var buf bytes.Buffer
	require.NoError(t, store.ExportJSON(ctx, &buf))

	var export Export
	require.NoError(t, json.Unmarshal(buf.Bytes(), &export))
	assert.Equal(t, "1.0", export.Version)
	assert.Equal(t, 1, export.Count)
	require.Len(t, export.Reviews, 1)
	assert.Equal(t, "p01", export.Reviews[0].PatientID)
}

func TestVerdict_IsValid(t *testing.T) {
	assert.True(t, VerdictAccurate.IsValid())
	assert.True(t, VerdictIncomplete.IsValid())
	assert.True(t, VerdictInaccurate.IsValid())
	assert.False(t, Verdict("great").IsValid())
	assert.False(t, Verdict("").IsValid())
}

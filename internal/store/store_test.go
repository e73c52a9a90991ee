package store

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/DevonyRamirez/prosperia-challenge-mini/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *float64 { return &v }

func sample(id string, created time.Time) *Receipt {
	return &Receipt{
		ID:        id,
		FileName:  id + ".png",
		CreatedAt: created,
		Record: &models.ReceiptRecord{
			RawText:    "Total 10.00",
			Amount:     amount(10),
			VendorName: "Acme Corp",
		},
	}
}

func TestMemorySaveAndGet(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	r := sample("r1", time.Now())
	require.NoError(t, m.Save(ctx, r))

	got, err := m.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "r1.png", got.FileName)
	assert.Equal(t, "Acme Corp", got.Record.VendorName)
	require.NotNil(t, got.Record.Amount)
	assert.Equal(t, 10.0, *got.Record.Amount)
}

func TestMemoryGetMissing(t *testing.T) {
	_, err := NewMemory().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryListNewestFirst(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, m.Save(ctx, sample("old", base.Add(-2*time.Hour))))
	require.NoError(t, m.Save(ctx, sample("new", base)))
	require.NoError(t, m.Save(ctx, sample("mid", base.Add(-time.Hour))))

	list, err := m.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "mid", list[1].ID)
	assert.Equal(t, "old", list[2].ID)

	limited, err := m.List(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestMemoryListNoLimitReturnsEverything(t *testing.T) {
	// A limit <= 0 means no limit, even past the default page size the API
	// uses for listings. Stats aggregation depends on this.
	m := NewMemory()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 150; i++ {
		id := "r" + strconv.Itoa(i)
		require.NoError(t, m.Save(ctx, sample(id, base.Add(time.Duration(i)*time.Second))))
	}

	all, err := m.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 150)

	all, err = m.List(ctx, -1)
	require.NoError(t, err)
	assert.Len(t, all, 150)
}

func TestMemoryDelete(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	require.NoError(t, m.Save(ctx, sample("r1", time.Now())))
	require.NoError(t, m.Delete(ctx, "r1"))

	_, err := m.Get(ctx, "r1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, m.Delete(ctx, "r1"), ErrNotFound)
}

package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintHistory_Empty(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printHistory(context.Background(), &out, memoryStore(t), 10))
	assert.Contains(t, out.String(), "No sortings recorded yet")
}

func TestPrintHistory(t *testing.T) {
	ctx := context.Background()
	store := memoryStore(t)

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	records := []model.SortingRecord{
		{SourceName: "old.png", Category: sorting.Houses[0].Name, Crop: model.Square(0, 0, 10), CreatedAt: base},
		{SourceName: "mid.png", Category: sorting.Houses[0].Name, Crop: model.Square(0, 0, 10), CreatedAt: base.Add(time.Hour)},
		{SourceName: "new.png", Category: sorting.Houses[2].Name, Crop: model.Square(0, 0, 10), CreatedAt: base.Add(2 * time.Hour)},
	}
	for i := range records {
		records[i].SourceSHA256 = "abc"
	}
	require.NoError(t, store.SaveSortings(ctx, records))

	var out bytes.Buffer
	require.NoError(t, printHistory(ctx, &out, store, 2))

	text := out.String()
	assert.Contains(t, text, "new.png")
	assert.Contains(t, text, "mid.png")
	assert.NotContains(t, text, "old.png")
	assert.Contains(t, text, "Totals (3 sorted)")
	assert.Contains(t, text, sorting.Houses[2].Name)
}

func TestHouseOf(t *testing.T) {
	assert.Equal(t, sorting.Houses[1], houseOf(sorting.Houses[1].Name))

	unknown := houseOf("Durmstrang")
	assert.Equal(t, "Durmstrang", unknown.Name)
	assert.Equal(t, -1, unknown.Index)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcd…", truncate("abcdefgh", 5))
}

func TestInspect(t *testing.T) {
	suggester, err := raster.NewSuggester(nil)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, inspect(context.Background(), &out, "portrait.png", testImage(t, 64, 48, 2), suggester, true))

	text := out.String()
	assert.Contains(t, text, "portrait.png")
	assert.Contains(t, text, "Format: png")
	assert.Contains(t, text, "Size:   64x48")
	assert.Contains(t, text, "--size")
}

func TestInspect_NotAnImage(t *testing.T) {
	err := inspect(context.Background(), &bytes.Buffer{}, "x.txt", []byte("hello"), nil, false)
	assert.Error(t, err)
}

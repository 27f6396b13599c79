package main

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/sorting-hat/internal/common"
	"github.com/Veraticus/sorting-hat/internal/model"
	"github.com/Veraticus/sorting-hat/internal/raster"
	"github.com/Veraticus/sorting-hat/internal/session"
	"github.com/Veraticus/sorting-hat/internal/sorting"
	"github.com/Veraticus/sorting-hat/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testImage(t *testing.T, w, h int, seed uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x*3) + seed, G: uint8(y), B: seed * 7, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func memoryStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(storage.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))
	return store
}

type failingRecorder struct{}

func (failingRecorder) SaveSorting(context.Context, *model.SortingRecord) error {
	return errors.New("disk full")
}

func TestAssign_SortsAndRecords(t *testing.T) {
	ctx := context.Background()
	store := memoryStore(t)
	var out bytes.Buffer

	result, err := assign(ctx, &out, assignRequest{
		Session:  session.New(),
		Recorder: store,
		Name:     "portrait.png",
		Data:     testImage(t, 160, 120, 3),
		Options:  assignOptions{X: 20, Y: 10, Size: 64},
	})
	require.NoError(t, err)

	assert.Equal(t, model.Square(20, 10, 64), result.Crop)
	assert.Equal(t, "portrait.png", result.SourceName)
	assert.Len(t, result.SourceSHA256, 64)
	assert.Equal(t, sorting.Assign(result.Hash, sorting.Houses), result.Category)
	assert.Contains(t, out.String(), result.Category.Name)

	records, err := store.ListSortings(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, result.Category.Name, records[0].Category)
	assert.Equal(t, result.Hash, records[0].Hash)
	assert.Equal(t, result.Crop, records[0].Crop)
}

func TestAssign_Deterministic(t *testing.T) {
	data := testImage(t, 140, 140, 9)
	opts := assignOptions{X: 5, Y: 15, Size: 80}

	first, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{Session: session.New(), Name: "a.png", Data: data, Options: opts})
	require.NoError(t, err)
	second, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{Session: session.New(), Name: "b.png", Data: data, Options: opts})
	require.NoError(t, err)

	assert.Equal(t, first.Hash, second.Hash)
	assert.Equal(t, first.Category, second.Category)
}

func TestAssign_DefaultSizeAndClamp(t *testing.T) {
	result, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{
		Session: session.New(session.WithDefaultCropSize(50)),
		Name:    "small.png",
		Data:    testImage(t, 80, 60, 1),
		Options: assignOptions{X: 70, Y: 70},
	})
	require.NoError(t, err)

	assert.Equal(t, model.Square(30, 10, 50), result.Crop)
}

func TestAssign_DisplaySize(t *testing.T) {
	result, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{
		Session: session.New(),
		Name:    "big.png",
		Data:    testImage(t, 200, 100, 4),
		Options: assignOptions{X: 90, Size: 40, DisplayWidth: 100, DisplayHeight: 50},
	})
	require.NoError(t, err)

	// Crop coordinates are displayed pixels, bounded by the display size.
	assert.Equal(t, model.Square(60, 0, 40), result.Crop)
}

func TestAssign_WritesCrop(t *testing.T) {
	out := filepath.Join(t.TempDir(), "crop.png")

	_, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{
		Session: session.New(),
		Name:    "portrait.png",
		Data:    testImage(t, 100, 100, 2),
		Options: assignOptions{Size: 32, Out: out},
	})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	img, err := raster.Decode(context.Background(), "crop.png", data)
	require.NoError(t, err)
	assert.Equal(t, 32, img.NaturalWidth)
	assert.Equal(t, 32, img.NaturalHeight)
}

func TestAssign_Reveal(t *testing.T) {
	var out bytes.Buffer
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := assign(ctx, &out, assignRequest{
		Session: session.New(session.WithRevealDelay(time.Millisecond)),
		Name:    "portrait.png",
		Data:    testImage(t, 100, 100, 5),
		Options: assignOptions{Size: 50, Reveal: true},
	})
	require.NoError(t, err)

	for _, line := range sorting.Messages[:3] {
		assert.Contains(t, out.String(), line)
	}
	assert.Contains(t, out.String(), result.Category.Name)
}

func TestAssign_Suggest(t *testing.T) {
	suggester, err := raster.NewSuggester(nil)
	require.NoError(t, err)

	result, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{
		Session:   session.New(),
		Suggester: suggester,
		Name:      "portrait.png",
		Data:      testImage(t, 120, 90, 6),
		Options:   assignOptions{X: 999, Size: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, result.Crop.Width, result.Crop.Height)
	assert.Greater(t, result.Crop.Width, 1)
	assert.LessOrEqual(t, result.Crop.X+result.Crop.Width, 120)
}

func TestAssign_Errors(t *testing.T) {
	_, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{
		Session: session.New(),
		Name:    "notes.txt",
		Data:    []byte("not an image"),
	})
	assert.ErrorIs(t, err, common.ErrUnreadableImage)

	result, err := assign(context.Background(), &bytes.Buffer{}, assignRequest{
		Session:  session.New(),
		Recorder: failingRecorder{},
		Name:     "portrait.png",
		Data:     testImage(t, 100, 100, 1),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.False(t, result.Category.IsZero())
}

func TestReadImage_Missing(t *testing.T) {
	_, err := readImage(filepath.Join(t.TempDir(), "missing.png"))

	var userErr *common.UserError
	require.ErrorAs(t, err, &userErr)
	assert.Contains(t, common.Describe(err), "Cannot open")
}

func TestNewSession_UsesSettings(t *testing.T) {
	saved := settings
	t.Cleanup(func() { settings = saved })

	settings.CropSize = 42
	settings.RevealDelay = 3 * time.Second
	settings.Interpolator = "bilinear"

	sess, err := newSession()
	require.NoError(t, err)
	assert.Equal(t, model.Square(0, 0, 42), sess.Snapshot().Crop)
	assert.Equal(t, 3*time.Second, sess.RevealDelay())

	settings.Interpolator = "lanczos"
	_, err = newSession()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestHousesCmd(t *testing.T) {
	cmd := housesCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())

	for _, h := range sorting.Houses {
		assert.Contains(t, out.String(), h.Name)
		assert.Contains(t, out.String(), h.Accent.Color)
	}
}

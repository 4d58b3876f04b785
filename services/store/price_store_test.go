package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppendAndLatestOne(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	now := time.Now()

	require.NoError(t, s.Append("usd", decimal.NewFromInt(100), now))

	value, err := s.LatestOne("USD")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(100)), "got %s", value)

	// A newer point replaces the latest value
	require.NoError(t, s.Append("usd", decimal.NewFromInt(200), now.Add(time.Minute)))

	value, err = s.LatestOne("usd")
	require.NoError(t, err)
	assert.True(t, value.Equal(decimal.NewFromInt(200)), "got %s", value)
}

func TestLatestOne_NotFound(t *testing.T) {
	s := NewPriceStore(newTestDB(t))

	_, err := s.LatestOne("XYZ")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestLatest_DescendingRecency(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	t1 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, s.Append("USD", decimal.NewFromFloat(100.0), t1))
	require.NoError(t, s.Append("USD", decimal.NewFromFloat(200.0), t2))

	points, err := s.Latest("USD", 10)
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.True(t, points[0].Value.Equal(decimal.NewFromFloat(200.0)))
	assert.True(t, points[1].Value.Equal(decimal.NewFromFloat(100.0)))
	assert.Equal(t, t2, points[0].Timestamp.UTC())
	assert.Equal(t, t1, points[1].Timestamp.UTC())
}

func TestLatest_RespectsLimit(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	base := time.Now()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append("usd", decimal.NewFromInt(int64(i)), base.Add(time.Duration(i)*time.Second)))
	}

	points, err := s.Latest("usd", 3)
	require.NoError(t, err)
	assert.Len(t, points, 3)
	assert.True(t, points[0].Value.Equal(decimal.NewFromInt(4)))
}

func TestWindow_AscendingChronological(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	base := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 4; i++ {
		require.NoError(t, s.Append("eur", decimal.NewFromInt(int64(50+i)), base.Add(time.Duration(i)*time.Hour)))
	}

	points, err := s.Window("EUR", base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 3)
	for i := 1; i < len(points); i++ {
		assert.True(t, points[i].Timestamp.After(points[i-1].Timestamp))
	}
}

func TestWindow_OtherCurrencyExcluded(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	now := time.Now()

	require.NoError(t, s.Append("usd", decimal.NewFromInt(1), now))
	require.NoError(t, s.Append("eur", decimal.NewFromInt(2), now))

	points, err := s.Window("USD", now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "USD", points[0].Currency)
}

func TestAppend_NormalizesCurrencyUppercase(t *testing.T) {
	s := NewPriceStore(newTestDB(t))

	require.NoError(t, s.Append("inr", decimal.NewFromInt(5000000), time.Now()))

	points, err := s.Latest("inr", 1)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "INR", points[0].Currency)
}

func TestAppend_DuplicateTimestampBothPersist(t *testing.T) {
	s := NewPriceStore(newTestDB(t))
	now := time.Now()

	require.NoError(t, s.Append("usd", decimal.NewFromInt(100), now))
	require.NoError(t, s.Append("usd", decimal.NewFromInt(100), now))

	points, err := s.Latest("usd", 10)
	require.NoError(t, err)
	assert.Len(t, points, 2)
}

func TestWriteSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	prices := map[string]decimal.Decimal{
		"usd": decimal.NewFromFloat(65000.5),
		"eur": decimal.NewFromInt(58000),
	}

	require.NoError(t, WriteSnapshot(path, prices))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got map[string]decimal.Decimal
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got, 2)
	assert.True(t, got["usd"].Equal(prices["usd"]))
	assert.True(t, got["eur"].Equal(prices["eur"]))
}

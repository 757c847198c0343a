package queue

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumer_HandleAppendsLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "booking.log")
	c := NewConsumer("", path, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ev := BookingStatusChanged{
		BookingID:   "b1",
		BookingType: "GUIDE_HIRE",
		TouristID:   "t1",
		GuideID:     "g1",
		From:        "PENDING",
		To:          "CONFIRMED",
		ChangedBy:   "g1",
		Role:        "GUIDE",
		TotalPrice:  "150",
		ChangedAt:   time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	body, err := json.Marshal(ev)
	require.NoError(t, err)

	require.NoError(t, c.handle(body))
	require.NoError(t, c.handle(body))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t,
		"[2026-05-01T10:00:00Z] Booking CONFIRMED | booking_id=b1 | type=GUIDE_HIRE | tourist_id=t1 | guide_id=g1 | PENDING -> CONFIRMED | by=g1 (GUIDE) | total=150",
		lines[0])
}

func TestConsumer_HandleRejectsGarbage(t *testing.T) {
	c := NewConsumer("", filepath.Join(t.TempDir(), "booking.log"), slog.Default())
	assert.Error(t, c.handle([]byte("{not json")))
}

func TestNextBackoff(t *testing.T) {
	assert.Equal(t, 2*time.Second, nextBackoff(time.Second))
	assert.Equal(t, maxBackoff, nextBackoff(20*time.Second))
}

func TestSleep_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, sleep(ctx, time.Hour))
}

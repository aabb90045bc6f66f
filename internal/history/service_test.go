package history

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqhub/aqhub/internal/airquality"
)

const station = "bangkok-bangkok-thailand"

func testServiceAt(now time.Time) *Service {
	svc := NewService(NewInMemoryRepository())
	svc.now = func() time.Time { return now }
	return svc
}

func record(t *testing.T, svc *Service, ts time.Time, aqi int) {
	t.Helper()
	err := svc.Record(context.Background(), &airquality.Reading{
		StationID:  station,
		AQI:        airquality.AQI{US: aqi},
		Pollutants: airquality.NewPollutants(),
		ObservedAt: ts,
	})
	require.NoError(t, err)
}

func TestService_RecordAndList(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := testServiceAt(now)

	record(t, svc, now.Add(-2*time.Hour), 80)
	record(t, svc, now.Add(-time.Hour), 90)
	record(t, svc, now, 100)

	list, err := svc.List(context.Background(), Filter{StationID: station})
	require.NoError(t, err)
	require.Len(t, list, 3)

	// Newest first.
	assert.Equal(t, 100, list[0].AQI)
	assert.Equal(t, 80, list[2].AQI)
	assert.Contains(t, list[0].ID, "rdg_")
}

func TestService_List_Bounds(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := testServiceAt(now)

	record(t, svc, now.Add(-3*time.Hour), 70)
	record(t, svc, now.Add(-2*time.Hour), 80)
	record(t, svc, now.Add(-time.Hour), 90)

	list, err := svc.List(context.Background(), Filter{
		StationID: station,
		Start:     now.Add(-150 * time.Minute),
		End:       now.Add(-90 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 80, list[0].AQI)
}

func TestService_Statistics(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := testServiceAt(now)

	record(t, svc, now.Add(-48*time.Hour), 60)
	record(t, svc, now.Add(-24*time.Hour), 120)
	record(t, svc, now.Add(-time.Hour), 90)
	// Outside the 7 day window, must be ignored.
	record(t, svc, now.AddDate(0, 0, -10), 500)

	stats, err := svc.Statistics(context.Background(), station, 7)
	require.NoError(t, err)
	require.NotNil(t, stats)

	assert.Equal(t, 3, stats.Count)
	assert.Equal(t, 90, stats.Average)
	assert.Equal(t, 60, stats.Min)
	assert.Equal(t, 120, stats.Max)
	assert.Equal(t, 90, stats.Current, "current is the most recent reading")
	assert.Equal(t, now.Add(-48*time.Hour), stats.StartDate)
	assert.Equal(t, now.Add(-time.Hour), stats.EndDate)
}

func TestService_Statistics_Empty(t *testing.T) {
	svc := testServiceAt(time.Now())

	stats, err := svc.Statistics(context.Background(), "nowhere", 7)
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestService_HourlyAverages(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := testServiceAt(now)

	// Two readings in the 10:00 hour, one in the 11:00 hour.
	record(t, svc, time.Date(2026, 8, 28, 10, 5, 0, 0, time.UTC), 80)
	record(t, svc, time.Date(2026, 8, 28, 10, 45, 0, 0, time.UTC), 90)
	record(t, svc, time.Date(2026, 8, 28, 11, 30, 0, 0, time.UTC), 110)

	averages, err := svc.HourlyAverages(context.Background(), station, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, averages, 2)

	assert.Equal(t, 85, averages[0].AQI)
	assert.Equal(t, 2, averages[0].Count)
	assert.Equal(t, 110, averages[1].AQI)
	assert.Equal(t, 1, averages[1].Count)
	assert.True(t, averages[0].Timestamp.Before(averages[1].Timestamp))
}

func TestService_Prune(t *testing.T) {
	now := time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC)
	svc := testServiceAt(now)

	record(t, svc, now.AddDate(0, 0, -40), 50)
	record(t, svc, now.AddDate(0, 0, -35), 55)
	record(t, svc, now.AddDate(0, 0, -5), 60)

	dropped, err := svc.Prune(context.Background(), 30)
	require.NoError(t, err)
	assert.Equal(t, int64(2), dropped)

	list, err := svc.List(context.Background(), Filter{StationID: station})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

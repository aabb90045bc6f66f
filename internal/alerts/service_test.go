package alerts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqhub/aqhub/internal/airquality"
)

func testService() *Service {
	return NewService(NewInMemoryRepository())
}

func threshold(v float64) *float64 { return &v }

func TestService_Create_Defaults(t *testing.T) {
	svc := testService()

	alert, err := svc.Create(context.Background(), "usr_1", &CreateRequest{
		Threshold: threshold(100),
	})
	require.NoError(t, err)

	assert.Contains(t, alert.ID, "alr_")
	assert.Equal(t, PollutantAQI, alert.Pollutant)
	assert.Equal(t, NotifyEmail, alert.Method)
	assert.True(t, alert.Enabled)
}

func TestService_Create_Validation(t *testing.T) {
	svc := testService()

	_, err := svc.Create(context.Background(), "usr_1", &CreateRequest{})
	assert.Error(t, err, "threshold is required")

	_, err = svc.Create(context.Background(), "usr_1", &CreateRequest{Threshold: threshold(-1)})
	assert.Error(t, err, "negative threshold rejected")

	_, err = svc.Create(context.Background(), "usr_1", &CreateRequest{
		Threshold: threshold(50),
		Pollutant: "co2",
	})
	assert.Error(t, err, "unknown pollutant rejected")

	_, err = svc.Create(context.Background(), "usr_1", &CreateRequest{
		Threshold: threshold(50),
		Method:    "carrier-pigeon",
	})
	assert.Error(t, err, "unknown notification method rejected")
}

func TestService_Update(t *testing.T) {
	svc := testService()
	alert, err := svc.Create(context.Background(), "usr_1", &CreateRequest{Threshold: threshold(100)})
	require.NoError(t, err)

	enabled := false
	pollutant := PollutantPM25
	updated, err := svc.Update(context.Background(), "usr_1", alert.ID, &UpdateRequest{
		Threshold: threshold(35.4),
		Pollutant: &pollutant,
		Enabled:   &enabled,
	})
	require.NoError(t, err)

	assert.Equal(t, 35.4, updated.Threshold)
	assert.Equal(t, PollutantPM25, updated.Pollutant)
	assert.False(t, updated.Enabled)
	assert.Equal(t, NotifyEmail, updated.Method, "unset field stays unchanged")
}

func TestService_UserScoping(t *testing.T) {
	svc := testService()
	alert, err := svc.Create(context.Background(), "usr_1", &CreateRequest{Threshold: threshold(100)})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "usr_2", alert.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = svc.Delete(context.Background(), "usr_2", alert.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestEvaluate(t *testing.T) {
	pm25 := 45.0
	reading := &airquality.Reading{
		AQI:        airquality.AQI{US: 120},
		Pollutants: airquality.NewPollutants(),
	}
	reading.Pollutants[airquality.PollutantPM25] = &pm25

	tests := []struct {
		name  string
		alert Alert
		fired bool
	}{
		{"aqi above threshold", Alert{Pollutant: PollutantAQI, Threshold: 100, Enabled: true}, true},
		{"aqi below threshold", Alert{Pollutant: PollutantAQI, Threshold: 150, Enabled: true}, false},
		{"aqi equal to threshold", Alert{Pollutant: PollutantAQI, Threshold: 120, Enabled: true}, false},
		{"pm25 above threshold", Alert{Pollutant: PollutantPM25, Threshold: 35.4, Enabled: true}, true},
		{"pm25 below threshold", Alert{Pollutant: PollutantPM25, Threshold: 55.4, Enabled: true}, false},
		{"pm10 missing from reading", Alert{Pollutant: PollutantPM10, Threshold: 0, Enabled: true}, false},
		{"disabled never fires", Alert{Pollutant: PollutantAQI, Threshold: 0, Enabled: false}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.fired, Evaluate(reading, &tt.alert))
		})
	}
}

func TestService_EvaluateReading(t *testing.T) {
	svc := testService()

	tripped, err := svc.Create(context.Background(), "usr_1", &CreateRequest{Threshold: threshold(50)})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), "usr_2", &CreateRequest{Threshold: threshold(200)})
	require.NoError(t, err)

	disabled, err := svc.Create(context.Background(), "usr_3", &CreateRequest{Threshold: threshold(50)})
	require.NoError(t, err)
	off := false
	_, err = svc.Update(context.Background(), "usr_3", disabled.ID, &UpdateRequest{Enabled: &off})
	require.NoError(t, err)

	reading := &airquality.Reading{
		AQI:        airquality.AQI{US: 120},
		Pollutants: airquality.NewPollutants(),
	}

	fired, err := svc.EvaluateReading(context.Background(), reading)
	require.NoError(t, err)
	require.Len(t, fired, 1)
	assert.Equal(t, tripped.ID, fired[0].ID)
}

func TestEvaluate_NilInputs(t *testing.T) {
	assert.False(t, Evaluate(nil, &Alert{Enabled: true}))
	assert.False(t, Evaluate(&airquality.Reading{Pollutants: airquality.NewPollutants()}, nil))
}

package util

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitializeTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "local timezone", timezone: "Local"},
		{name: "UTC timezone", timezone: "UTC"},
		{name: "valid timezone America/Chicago", timezone: "America/Chicago"},
		{name: "empty timezone defaults to Local", timezone: ""},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InitializeTimeProvider(tt.timezone)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timezone")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, globalTimeProvider)
			}
		})
	}
}

func TestGetTimeProvider(t *testing.T) {
	mu.Lock()
	globalTimeProvider = nil
	mu.Unlock()

	provider := GetTimeProvider()
	assert.NotNil(t, provider)
	assert.Same(t, provider, GetTimeProvider())
}

func TestTimeProvider_SetNowFunc(t *testing.T) {
	provider := NewTimeProvider()
	require.NoError(t, provider.SetTimezone("UTC"))

	fixed := time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)
	provider.SetNowFunc(func() time.Time { return fixed })

	assert.True(t, fixed.Equal(provider.Now()))
	assert.Equal(t, "2024-03-15", provider.FormatNow("2006-01-02"))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), provider.Today())

	provider.SetNowFunc(nil)
	assert.WithinDuration(t, time.Now(), provider.Now(), time.Minute)
}

func TestTimeProvider_In(t *testing.T) {
	provider := NewTimeProvider()
	require.NoError(t, provider.SetTimezone("America/Chicago"))

	utcTime := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	local := provider.In(utcTime)

	assert.True(t, utcTime.Equal(local))
	assert.Equal(t, "America/Chicago", local.Location().String())
	assert.Equal(t, 6, local.Hour())
}

func TestTimeProvider_Today_UsesZone(t *testing.T) {
	provider := NewTimeProvider()
	require.NoError(t, provider.SetTimezone("America/New_York"))
	// 02:00 UTC is still the previous evening in New York.
	provider.SetNowFunc(func() time.Time { return time.Date(2024, 6, 15, 2, 0, 0, 0, time.UTC) })

	today := provider.Today()
	assert.Equal(t, 14, today.Day())
	assert.Equal(t, 0, today.Hour())
}

func TestTimeProvider_Format(t *testing.T) {
	provider := NewTimeProvider()
	require.NoError(t, provider.SetTimezone("UTC"))

	testTime := time.Date(2024, 3, 15, 14, 30, 45, 0, time.UTC)

	tests := []struct {
		name     string
		layout   string
		expected string
	}{
		{name: "RFC3339", layout: time.RFC3339, expected: "2024-03-15T14:30:45Z"},
		{name: "date only", layout: "2006-01-02", expected: "2024-03-15"},
		{name: "twelve hour clock", layout: "03:04 PM", expected: "02:30 PM"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, provider.Format(testTime, tt.layout))
		})
	}
}

func TestTimeProvider_Concurrency(t *testing.T) {
	provider := NewTimeProvider()
	require.NoError(t, provider.SetTimezone("UTC"))

	var wg sync.WaitGroup
	errs := make(chan error, 20)

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = provider.Now()
			_ = provider.Today()
			_ = provider.Format(time.Now(), time.RFC3339)
		}()
	}

	timezones := []string{"UTC", "America/Chicago", "America/New_York", "Europe/London"}
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := provider.SetTimezone(timezones[idx%len(timezones)]); err != nil {
				errs <- err
			}
		}(i)
	}

	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent operation error: %v", err)
	}
}

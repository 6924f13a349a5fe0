package solar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"regexp"
	"sync/atomic"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/wheelibin/wemops/mocks"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func fixedNow() time.Time {
	return time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)
}

func newTestService(t *testing.T, settings settingsStore, geolocateURL, solarURL string) *Service {
	return &Service{
		logger:       testLogger(),
		settings:     settings,
		client:       &http.Client{Timeout: time.Second},
		geolocateURL: geolocateURL,
		solarURL:     solarURL,
		now:          fixedNow,
	}
}

func solarServer(counter *int64) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(counter, 1)
		fmt.Fprint(w, `{"results":{"sunrise":"2024-05-15T04:30:00+00:00","sunset":"2024-05-15T19:45:00+00:00"},"status":"OK"}`)
	}))
}

func Test_Times(t *testing.T) {

	t.Run("should fetch at most once per day", func(t *testing.T) {
		t.Parallel()
		// arrange
		var requests int64
		srv := solarServer(&requests)
		defer srv.Close()

		settings := mocks.NewMockSolarSettingsStore(t)
		settings.On("Coordinates").Return(51.5, -0.12, true, nil)

		service := newTestService(t, settings, "http://unused.invalid", srv.URL)

		// act
		first, ok1 := service.Times(context.Background())
		second, ok2 := service.Times(context.Background())

		// assert
		assert.True(t, ok1)
		assert.True(t, ok2)
		assert.Equal(t, "04:30", first.Sunrise)
		assert.Equal(t, "19:45", first.Sunset)
		assert.Equal(t, first, second)
		assert.Equal(t, int64(1), atomic.LoadInt64(&requests))
	})

	t.Run("should geolocate once and persist the coordinates", func(t *testing.T) {
		t.Parallel()
		// arrange
		var requests int64
		srv := solarServer(&requests)
		defer srv.Close()

		geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"loc":"51.5,-0.12"}`)
		}))
		defer geoSrv.Close()

		settings := mocks.NewMockSolarSettingsStore(t)
		settings.On("Coordinates").Return(0.0, 0.0, false, nil)
		settings.On("SaveCoordinates", 51.5, -0.12).Return(nil).Once()

		service := newTestService(t, settings, geoSrv.URL, srv.URL)

		// act
		times, ok := service.Times(context.Background())

		// assert
		assert.True(t, ok)
		assert.Equal(t, "2024-05-15", times.Date)
	})

	t.Run("should compute locally when the solar service fails", func(t *testing.T) {
		t.Parallel()
		// arrange
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"results":{},"status":"INVALID_REQUEST"}`)
		}))
		defer srv.Close()

		settings := mocks.NewMockSolarSettingsStore(t)
		settings.On("Coordinates").Return(51.5, -0.12, true, nil)

		service := newTestService(t, settings, "http://unused.invalid", srv.URL)

		// act
		times, ok := service.Times(context.Background())

		// assert
		assert.True(t, ok)
		assert.Equal(t, "2024-05-15", times.Date)
		assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}$`), times.Sunrise)
		assert.Regexp(t, regexp.MustCompile(`^\d{2}:\d{2}$`), times.Sunset)
	})

	t.Run("should report absence when no coordinates can be resolved", func(t *testing.T) {
		t.Parallel()
		// arrange: no stored coordinates and an unreachable geolocation service
		settings := mocks.NewMockSolarSettingsStore(t)
		settings.On("Coordinates").Return(0.0, 0.0, false, nil)

		service := newTestService(t, settings, "http://unreachable.invalid", "http://unused.invalid")

		// act
		_, ok := service.Times(context.Background())

		// assert
		assert.False(t, ok)
	})
}

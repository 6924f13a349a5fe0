package poller_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/poller"
	"github.com/wheelibin/wemops/internal/registry"

	"github.com/wheelibin/wemops/mocks"
)

func newTestLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func Test_PollOnce(t *testing.T) {

	t.Run("should record freshly polled state", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())

		handle := mocks.NewMockModelsDeviceHandle(t)
		handle.On("Identity").Return(models.Identity{Name: "Lamp", Kind: models.KindSwitch})
		handle.On("Address").Return("192.168.1.20")
		handle.On("GetState", mock.Anything, true).Return(1, nil).Once()
		reg.Upsert(handle, time.Now())

		resolver := mocks.NewMockPollerHandleResolver(t)

		p := poller.New(newTestLogger(), reg, resolver, time.Second)

		// act
		p.PollOnce(context.Background())

		// assert
		record, _ := reg.Get("Lamp")
		assert.Equal(t, 1, record.State)
	})

	t.Run("should re-resolve a cache-loaded record before polling it", func(t *testing.T) {
		t.Parallel()
		// arrange: a record loaded from the device cache has no handle yet
		reg := registry.New(newTestLogger())
		reg.Load([]models.DeviceRecord{{Name: "Lamp", Address: "192.168.1.20", LastSeen: time.Now()}})

		handle := mocks.NewMockModelsDeviceHandle(t)
		handle.On("Identity").Return(models.Identity{Name: "Lamp", Kind: models.KindSwitch})
		handle.On("Address").Return("192.168.1.20")
		handle.On("GetState", mock.Anything, true).Return(1, nil).Once()

		resolver := mocks.NewMockPollerHandleResolver(t)
		resolver.On("ResolveAny", "192.168.1.20").Return(handle, nil).Once()

		p := poller.New(newTestLogger(), reg, resolver, time.Second)

		// act
		p.PollOnce(context.Background())

		// assert
		record, _ := reg.Get("Lamp")
		assert.Equal(t, 1, record.State)
		_, hasHandle := reg.Handle("Lamp")
		assert.True(t, hasHandle)
	})

	t.Run("should keep the record when a device stops answering", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())

		handle := mocks.NewMockModelsDeviceHandle(t)
		handle.On("Identity").Return(models.Identity{Name: "Lamp", Kind: models.KindSwitch})
		handle.On("Address").Return("192.168.1.20")
		handle.On("GetState", mock.Anything, true).Return(0, errors.New("connection refused"))
		reg.Upsert(handle, time.Now())
		reg.UpdateState("Lamp", 1, time.Now())

		resolver := mocks.NewMockPollerHandleResolver(t)

		p := poller.New(newTestLogger(), reg, resolver, time.Second)

		// act
		p.PollOnce(context.Background())

		// assert: last known state survives, eviction is the scan's job
		record, ok := reg.Get("Lamp")
		assert.True(t, ok)
		assert.Equal(t, 1, record.State)
	})
}

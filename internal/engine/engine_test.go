package engine_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/wheelibin/wemops/internal/engine"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/registry"

	"github.com/wheelibin/wemops/mocks"
)

func newTestLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func newTestEngine(t *testing.T, reg *registry.Registry) *engine.Engine {
	return engine.New(newTestLogger(), reg, nil, nil, nil, nil, nil, time.Minute)
}

func registeredHandle(t *testing.T, name string) *mocks.MockModelsDeviceHandle {
	handle := mocks.NewMockModelsDeviceHandle(t)
	handle.On("Identity").Return(models.Identity{Name: name, Kind: models.KindSwitch})
	handle.On("Address").Return("192.168.1.20")
	return handle
}

func Test_DeviceAction(t *testing.T) {

	t.Run("should run the action and refresh the device state", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		handle := registeredHandle(t, "Lamp")
		handle.On("TurnOn", mock.Anything).Return(nil).Once()
		handle.On("GetState", mock.Anything, true).Return(1, nil).Once()
		reg.Upsert(handle, time.Now())

		eng := newTestEngine(t, reg)

		// act
		err := eng.DeviceAction(context.Background(), "Lamp", models.ActionOn)

		// assert
		assert.NoError(t, err)
		record, _ := reg.Get("Lamp")
		assert.Equal(t, 1, record.State)
	})

	t.Run("should error for an unregistered device", func(t *testing.T) {
		t.Parallel()
		// arrange
		eng := newTestEngine(t, registry.New(newTestLogger()))

		// act / assert
		assert.Error(t, eng.DeviceAction(context.Background(), "Nope", models.ActionOn))
	})

	t.Run("should reject an unknown action", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		reg.Upsert(registeredHandle(t, "Lamp"), time.Now())
		eng := newTestEngine(t, reg)

		// act / assert
		assert.Error(t, eng.DeviceAction(context.Background(), "Lamp", models.Action("sparkle")))
	})
}

func Test_SetBrightness(t *testing.T) {

	t.Run("should set the level and refresh state", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		handle := registeredHandle(t, "Hall")
		handle.On("SetBrightness", mock.Anything, 65).Return(nil).Once()
		handle.On("GetState", mock.Anything, true).Return(65, nil).Once()
		reg.Upsert(handle, time.Now())

		eng := newTestEngine(t, reg)

		// act
		err := eng.SetBrightness(context.Background(), "Hall", 65)

		// assert
		assert.NoError(t, err)
		record, _ := reg.Get("Hall")
		assert.Equal(t, 65, record.State)
	})
}

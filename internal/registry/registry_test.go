package registry_test

import (
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/registry"

	"github.com/wheelibin/wemops/mocks"
)

func newTestLogger() *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{Level: log.FatalLevel})
}

func newHandle(t *testing.T, name, address string) *mocks.MockModelsDeviceHandle {
	handle := mocks.NewMockModelsDeviceHandle(t)
	handle.On("Identity").Return(models.Identity{Name: name, MAC: "94:10:3e:00:00:01", Serial: "221435K0100000", Kind: models.KindSwitch})
	handle.On("Address").Return(address)
	return handle
}

func Test_Upsert(t *testing.T) {

	t.Run("should register an unknown device with state off", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		handle := newHandle(t, "Lamp", "192.168.1.20")

		// act
		reg.Upsert(handle, time.Now())

		// assert
		record, ok := reg.Get("Lamp")
		assert.True(t, ok)
		assert.Equal(t, 0, record.State)
		assert.Equal(t, "192.168.1.20", record.Address)
	})

	t.Run("should keep polled state when re-registering a known device", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		reg.Upsert(newHandle(t, "Lamp", "192.168.1.20"), time.Now())
		reg.UpdateState("Lamp", 1, time.Now())

		// act: a later scan finds the same device at a new address
		reg.Upsert(newHandle(t, "Lamp", "192.168.1.21"), time.Now())

		// assert
		record, _ := reg.Get("Lamp")
		assert.Equal(t, 1, record.State)
		assert.Equal(t, "192.168.1.21", record.Address)
	})
}

func Test_EvictStale(t *testing.T) {

	t.Run("should evict records last seen strictly before the cutoff", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		cutoff := time.Now()
		reg.Upsert(newHandle(t, "Old", "192.168.1.30"), cutoff.Add(-time.Second))
		reg.Upsert(newHandle(t, "Fresh", "192.168.1.31"), cutoff.Add(time.Second))

		// act
		evicted := reg.EvictStale(cutoff)

		// assert
		assert.Equal(t, []string{"Old"}, evicted)
		assert.Equal(t, 1, reg.Len())
	})

	t.Run("should retain a record last seen exactly at the cutoff", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		cutoff := time.Now()
		reg.Upsert(newHandle(t, "Boundary", "192.168.1.32"), cutoff)

		// act
		evicted := reg.EvictStale(cutoff)

		// assert
		assert.Empty(t, evicted)
		_, ok := reg.Get("Boundary")
		assert.True(t, ok)
	})
}

func Test_Load(t *testing.T) {

	t.Run("should seed records without handles", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())

		// act
		reg.Load([]models.DeviceRecord{{Name: "Lamp", Address: "192.168.1.20", State: 1, LastSeen: time.Now()}})

		// assert
		record, ok := reg.Get("Lamp")
		assert.True(t, ok)
		assert.Equal(t, 1, record.State)
		_, hasHandle := reg.Handle("Lamp")
		assert.False(t, hasHandle)
	})
}

func Test_Snapshot(t *testing.T) {

	t.Run("should return copies, not live records", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(newTestLogger())
		reg.Upsert(newHandle(t, "Lamp", "192.168.1.20"), time.Now())

		// act
		snapshot := reg.Snapshot()
		snapshot[0].State = 99

		// assert
		record, _ := reg.Get("Lamp")
		assert.Equal(t, 0, record.State)
	})
}

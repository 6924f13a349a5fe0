package scan

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/registry"

	"github.com/wheelibin/wemops/mocks"
)

func discoveredHandle(t *testing.T, name, address string) *mocks.MockModelsDeviceHandle {
	handle := mocks.NewMockModelsDeviceHandle(t)
	handle.On("Identity").Return(models.Identity{Name: name, Kind: models.KindSwitch})
	handle.On("Address").Return(address)
	return handle
}

func Test_Merge(t *testing.T) {

	t.Run("should evict a device the scan did not find within the window", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(testLogger())
		reg.Load([]models.DeviceRecord{{Name: "Gone", Address: "192.168.1.40", LastSeen: time.Now().Add(-20 * time.Minute)}})
		merger := NewMerger(testLogger(), reg, 15*time.Minute)

		// act
		merger.Merge(nil)

		// assert
		assert.Equal(t, 0, reg.Len())
	})

	t.Run("should retain a stale device the scan just re-confirmed", func(t *testing.T) {
		t.Parallel()
		// arrange
		reg := registry.New(testLogger())
		reg.Load([]models.DeviceRecord{{Name: "Lamp", Address: "192.168.1.40", LastSeen: time.Now().Add(-20 * time.Minute)}})
		merger := NewMerger(testLogger(), reg, 15*time.Minute)

		// act: the device answered this pass, its record must survive even
		// though the pass started with it already stale
		merger.Merge([]models.DeviceHandle{discoveredHandle(t, "Lamp", "192.168.1.40")})

		// assert
		record, ok := reg.Get("Lamp")
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now(), record.LastSeen, time.Minute)
	})

	t.Run("should survive a pass slower than the staleness window", func(t *testing.T) {
		t.Parallel()
		// arrange: a clock where the pass takes 14 minutes end to end, so a
		// device upserted early sits just inside a cutoff computed at the end
		reg := registry.New(testLogger())
		start := time.Now()
		calls := 0
		merger := &Merger{
			logger:   testLogger(),
			registry: reg,
			window:   15 * time.Minute,
			now: func() time.Time {
				calls++
				if calls == 1 {
					return start
				}
				return start.Add(14 * time.Minute)
			},
		}

		// act
		merger.Merge([]models.DeviceHandle{discoveredHandle(t, "Slow", "192.168.1.41")})

		// assert
		_, ok := reg.Get("Slow")
		assert.True(t, ok)
	})
}

package repos_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/wheelibin/wemops/internal/models"
	"github.com/wheelibin/wemops/internal/repos"
)

func Test_DeviceRepo(t *testing.T) {

	t.Run("should round-trip a registry snapshot", func(t *testing.T) {
		t.Parallel()
		// arrange
		db := openTestDB(t)
		repo, err := repos.NewDeviceRepo(newTestLogger(), db)
		assert.NoError(t, err)

		lastSeen := time.Now()
		snapshot := []models.DeviceRecord{
			{Name: "Lamp", Address: "192.168.1.20", MAC: "94:10:3e:00:00:01", Serial: "221435K0100000", Kind: models.KindSwitch, State: 1, LastSeen: lastSeen},
			{Name: "Hall", Address: "192.168.1.21", MAC: "94:10:3e:00:00:02", Serial: "221435K0100001", Kind: models.KindDimmer, State: 65, LastSeen: lastSeen},
		}

		// act
		assert.NoError(t, repo.SaveSnapshot(snapshot))
		loaded, err := repo.Load()
		assert.NoError(t, err)

		// assert
		assert.Len(t, loaded, 2)
		byName := map[string]models.DeviceRecord{}
		for _, record := range loaded {
			byName[record.Name] = record
		}
		assert.Equal(t, models.KindDimmer, byName["Hall"].Kind)
		assert.Equal(t, 65, byName["Hall"].State)
		assert.Equal(t, "192.168.1.20", byName["Lamp"].Address)
		assert.WithinDuration(t, lastSeen, byName["Lamp"].LastSeen, time.Second)
		assert.Nil(t, byName["Lamp"].Handle)
	})

	t.Run("should replace the previous snapshot entirely", func(t *testing.T) {
		t.Parallel()
		// arrange
		db := openTestDB(t)
		repo, err := repos.NewDeviceRepo(newTestLogger(), db)
		assert.NoError(t, err)

		assert.NoError(t, repo.SaveSnapshot([]models.DeviceRecord{{Name: "Old", LastSeen: time.Now()}}))

		// act
		assert.NoError(t, repo.SaveSnapshot([]models.DeviceRecord{{Name: "New", LastSeen: time.Now()}}))

		// assert
		loaded, err := repo.Load()
		assert.NoError(t, err)
		assert.Len(t, loaded, 1)
		assert.Equal(t, "New", loaded[0].Name)
	})
}

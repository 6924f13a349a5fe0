package repos_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/wheelibin/wemops/internal/repos"
)

func Test_SettingsRepo(t *testing.T) {

	t.Run("should report coordinates as absent before any are stored", func(t *testing.T) {
		t.Parallel()
		// arrange
		db := openTestDB(t)
		repo, err := repos.NewSettingsRepo(newTestLogger(), db)
		assert.NoError(t, err)

		// act
		_, _, ok, err := repo.Coordinates()

		// assert
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should round-trip coordinates", func(t *testing.T) {
		t.Parallel()
		// arrange
		db := openTestDB(t)
		repo, err := repos.NewSettingsRepo(newTestLogger(), db)
		assert.NoError(t, err)

		// act
		assert.NoError(t, repo.SaveCoordinates(51.5072, -0.1276))
		lat, lng, ok, err := repo.Coordinates()

		// assert
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 51.5072, lat)
		assert.Equal(t, -0.1276, lng)
	})

	t.Run("should round-trip subnets and overwrite on update", func(t *testing.T) {
		t.Parallel()
		// arrange
		db := openTestDB(t)
		repo, err := repos.NewSettingsRepo(newTestLogger(), db)
		assert.NoError(t, err)

		// act
		assert.NoError(t, repo.SetSubnets([]string{"192.168.1.0/24", "10.0.0.0/24"}))
		assert.NoError(t, repo.SetSubnets([]string{"192.168.1.0/24"}))
		subnets, err := repo.Subnets()

		// assert
		assert.NoError(t, err)
		assert.Equal(t, []string{"192.168.1.0/24"}, subnets)
	})

	t.Run("should return an empty list when no subnets are stored", func(t *testing.T) {
		t.Parallel()
		// arrange
		db := openTestDB(t)
		repo, err := repos.NewSettingsRepo(newTestLogger(), db)
		assert.NoError(t, err)

		// act
		subnets, err := repo.Subnets()

		// assert
		assert.NoError(t, err)
		assert.Empty(t, subnets)
	})
}

package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/wheelibin/wemops/internal/constants"
)

// Initialise sets up viper with the config search paths and registers
// defaults for every tunable, so a missing config file still yields a fully
// working daemon.
func Initialise() error {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	viper.AddConfigPath("/etc/wemops/")
	viper.AddConfigPath("$HOME/.config/wemops/")
	viper.AddConfigPath(".")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); notFound {
			// defaults only, settings may still come from the settings store
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func setDefaults() {
	viper.SetDefault("dbFile", "wemops.db")
	viper.SetDefault("logFile", "")

	viper.SetDefault("scanInterval", constants.ScanInterval)
	viper.SetDefault("pollInterval", constants.PollInterval)
	viper.SetDefault("schedulerInterval", constants.SchedulerInterval)
	viper.SetDefault("stalenessWindow", constants.StalenessWindow)

	// seeds for the settings store, empty unless configured
	viper.SetDefault("geoLocation", "")
	viper.SetDefault("subnets", []string{})
}

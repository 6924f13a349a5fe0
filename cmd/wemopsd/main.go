package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/wheelibin/wemops/internal/config"
	"github.com/wheelibin/wemops/internal/engine"
	"github.com/wheelibin/wemops/internal/poller"
	"github.com/wheelibin/wemops/internal/registry"
	"github.com/wheelibin/wemops/internal/repos"
	"github.com/wheelibin/wemops/internal/scan"
	"github.com/wheelibin/wemops/internal/schedule"
	"github.com/wheelibin/wemops/internal/solar"
	"github.com/wheelibin/wemops/internal/wemo"
)

func main() {

	if err := config.Initialise(); err != nil {
		log.Fatal("Error reading config", "err", err)
	}

	var sink io.Writer = os.Stderr
	if logFile := viper.GetString("logFile"); logFile != "" {
		sink = &lumberjack.Logger{
			Filename: logFile,
			MaxAge:   3,
		}
	}
	logger := log.NewWithOptions(sink, log.Options{
		Level:           log.InfoLevel,
		ReportTimestamp: true,
		TimeFormat:      "2006/01/02 15:04:05",
	})
	logger.Info("wemopsd starting")

	db, err := repos.Open(viper.GetString("dbFile"))
	if err != nil {
		logger.Fatal("Error opening database", "err", err)
	}
	defer db.Close()

	settingsRepo, err := repos.NewSettingsRepo(logger, db)
	if err != nil {
		logger.Fatal("Error initialising settings store", "err", err)
	}
	seedSettings(logger, settingsRepo)

	ruleRepo, err := repos.NewRuleRepo(logger, db)
	if err != nil {
		logger.Fatal("Error initialising rule store", "err", err)
	}
	deviceRepo, err := repos.NewDeviceRepo(logger, db)
	if err != nil {
		logger.Fatal("Error initialising device cache", "err", err)
	}

	// create/wire up services
	reg := registry.New(logger)
	if cached, err := deviceRepo.Load(); err != nil {
		logger.Error("Error loading device cache", "err", err)
	} else {
		reg.Load(cached)
	}

	client := wemo.NewClient(logger)
	discoverer := wemo.NewDiscoverer(logger, client)
	prober := scan.NewProber(logger, client)
	merger := scan.NewMerger(logger, reg, viper.GetDuration("stalenessWindow"))
	scanner := scan.NewScanner(logger, discoverer, prober, merger, reg, settingsRepo, deviceRepo)
	devicePoller := poller.New(logger, reg, client, viper.GetDuration("pollInterval"))
	solarService := solar.New(logger, settingsRepo)
	scheduler := schedule.NewScheduler(logger, ruleRepo, reg, solarService, viper.GetDuration("schedulerInterval"))

	eng := engine.New(logger, reg, scanner, devicePoller, scheduler, solarService, ruleRepo, viper.GetDuration("scanInterval"))

	ctx, cancel := context.WithCancel(context.Background())

	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quitChannel
		logger.Info("wemopsd is closing")
		cancel()
	}()

	eng.Run(ctx)
}

// seedSettings copies config-file values into the settings store the first
// time the daemon runs, so later edits via the store win over the file.
func seedSettings(logger *log.Logger, settings *repos.SettingsRepo) {
	if _, _, ok, err := settings.Coordinates(); err == nil && !ok {
		if loc := viper.GetString("geoLocation"); loc != "" {
			parts := strings.Split(loc, ",")
			if len(parts) == 2 {
				lat, errLat := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
				lng, errLng := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
				if errLat == nil && errLng == nil {
					if err := settings.SaveCoordinates(lat, lng); err != nil {
						logger.Error("Error seeding coordinates", "err", err)
					}
				}
			}
		}
	}

	if stored, err := settings.Subnets(); err == nil && len(stored) == 0 {
		if subnets := viper.GetStringSlice("subnets"); len(subnets) > 0 {
			if err := settings.SetSubnets(subnets); err != nil {
				logger.Error("Error seeding subnets", "err", err)
			}
		}
	}
}

package CronJobs

import (
	"fmt"
	"log"

	"FuelCore/Inventory"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// TankWatcher periodically checks tank levels against their alert thresholds
// and writes warnings to the log so low stock is noticed before a dry pump.
type TankWatcher struct {
	db             *gorm.DB
	cronScheduler  *cron.Cron
	runImmediately bool
	jobID          cron.EntryID
}

// NewTankWatcher creates a tank level watcher
func NewTankWatcher(db *gorm.DB, runImmediately bool) *TankWatcher {
	return &TankWatcher{
		db:             db,
		cronScheduler:  cron.New(cron.WithSeconds()),
		runImmediately: runImmediately,
	}
}

// Start schedules the hourly level check
func (w *TankWatcher) Start() error {
	var err error
	w.jobID, err = w.cronScheduler.AddFunc("0 0 * * * *", func() {
		w.checkLevels()
	})
	if err != nil {
		return fmt.Errorf("error scheduling cron job: %w", err)
	}

	w.cronScheduler.Start()
	fmt.Println("Tank watcher started - will check levels hourly")

	if w.runImmediately {
		w.checkLevels()
	}
	return nil
}

// Stop terminates the watcher
func (w *TankWatcher) Stop() {
	if w.cronScheduler != nil {
		w.cronScheduler.Stop()
		fmt.Println("Tank watcher stopped")
	}
}

func (w *TankWatcher) checkLevels() {
	tanks, err := Inventory.LowTanks(w.db)
	if err != nil {
		log.Printf("Tank level check failed: %v", err)
		return
	}
	for _, tank := range tanks {
		log.Printf("LOW STOCK: %s tank at %.2f L (alert level %.2f L)",
			tank.FuelType, tank.CurrentLevel, tank.LowAlertLevel)
	}
	if len(tanks) == 0 {
		log.Println("Tank level check: all tanks above alert level")
	}
}

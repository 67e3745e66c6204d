package scheduler

import (
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"vacation-rental-portal/internal/config"
	"vacation-rental-portal/internal/search"
)

// Scheduler runs the nightly full search reindex.
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	search    *search.SearchClient
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(db *gorm.DB, searchClient *search.SearchClient, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		db:     db,
		search: searchClient,
		config: cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.ReindexEnabled {
		log.Println("Scheduler: Daily reindex is disabled in configuration")
		return nil
	}
	if s.search == nil {
		log.Println("Scheduler: Search is disabled, nothing to schedule")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Scheduler.ReindexTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting daily reindex job...")
		if err := s.runReindex(); err != nil {
			log.Printf("Scheduler: Daily reindex failed: %v", err)
		} else {
			log.Println("Scheduler: Daily reindex completed successfully")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with daily reindex at %s (cron: %s)", s.config.Scheduler.ReindexTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

func (s *Scheduler) runReindex() error {
	count, err := search.Reindex(s.db, s.search, s.config.Media.BaseURL)
	if err != nil {
		return err
	}
	log.Printf("Scheduler: Reindexed %d properties", count)
	return nil
}

// RunNow immediately executes the reindex job (for manual trigger)
func (s *Scheduler) RunNow() error {
	if s.search == nil {
		return fmt.Errorf("search is disabled")
	}
	log.Println("Scheduler: Manual trigger - starting reindex job...")
	return s.runReindex()
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "02:00" -> "0 2 * * *" (run at 2:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	// Default to 3:00 AM if parsing fails
	log.Printf("Scheduler: Failed to parse time '%s', using default 03:00", timeStr)
	return "0 3 * * *"
}

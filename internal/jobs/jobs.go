package jobs

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// CatalogScanJobID identifies the job that rescans the library.
const CatalogScanJobID = "catalog-scan"

// StartJobs starts the background job scheduler. The returned scheduler
// should be stopped on shutdown.
func StartJobs(app JobContext) *gocron.Scheduler {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()

	startCatalogScanJob(s, app)

	log.Println("Starting background job scheduler...")
	s.StartAsync()
	return s
}

func startCatalogScanJob(s *gocron.Scheduler, app JobContext) {
	interval := app.Config().ScanInterval
	if interval == 0 {
		log.Println("Catalog scan interval is 0, scheduled scan is disabled.")
		return
	}

	log.Printf("Scheduling job: '%s' to run every %d minutes.", CatalogScanJobID, interval)

	// The first run happens at start-up elsewhere.
	_, err := s.Every(interval).Minutes().WaitForSchedule().Do(func() {
		log.Println("Scheduler is triggering job:", CatalogScanJobID)
		// Submit the job to the manager instead of running it directly.
		// This prevents conflicts with manually triggered jobs.
		err := app.JobManager().RunJob(CatalogScanJobID, app)
		if err != nil {
			log.Printf("Scheduled job '%s' could not start: %v", CatalogScanJobID, err)
		}
	})
	if err != nil {
		log.Printf("Error scheduling '%s' job: %v", CatalogScanJobID, err)
	}
}

// This file contains utility functions shared across the library package.

package library

import (
	"github.com/vrsandeep/mango-catalog/internal/jobs"
	"github.com/vrsandeep/mango-catalog/internal/models"
)

// sendProgress records a job's progress on the job manager and pushes it
// to websocket clients.
func sendProgress(ctx jobs.JobContext, jobId string, message string, progress float64, done bool) {
	if jm := ctx.JobManager(); jm != nil {
		jm.UpdateProgress(jobId, message, progress)
	}
	if hub := ctx.WsHub(); hub != nil {
		hub.BroadcastJSON(models.ProgressUpdate{
			JobID:    jobId,
			Message:  message,
			Progress: progress,
			Done:     done,
		})
	}
}

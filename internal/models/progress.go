package models

// ProgressUpdate is pushed to websocket clients while a job runs.
type ProgressUpdate struct {
	JobID    string  `json:"job_id"`
	Message  string  `json:"message"`
	Progress float64 `json:"progress"`
	Done     bool    `json:"done"`
}

// ScanProgress reports how far a scan has got. It is emitted once per
// processed file.
type ScanProgress struct {
	CurrentFile    string `json:"current_file"`
	ProcessedFiles int    `json:"processed_files"`
	TotalFiles     int    `json:"total_files"`
}

// Percentage returns the completed share of the scan in the range 0-100.
func (p ScanProgress) Percentage() float64 {
	if p.TotalFiles <= 0 {
		return 0
	}
	return float64(p.ProcessedFiles) / float64(p.TotalFiles) * 100
}

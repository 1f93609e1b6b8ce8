// Package jobs wires background report builds onto Asynq.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeReportBuild is the task type for asynchronous report builds.
	TaskTypeReportBuild = "report:build"
)

// ReportBuildPayload identifies the staged upload to build.
type ReportBuildPayload struct {
	ReportID string `json:"report_id"`
	Mode     string `json:"mode"`
}

// NewReportBuildTask constructs an Asynq task.
func NewReportBuildTask(payload ReportBuildPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeReportBuild, data), nil
}

package models

import (
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobQueued     JobStatus = "queued"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// GenerationJob tracks one upload through extraction, generation and parsing.
type GenerationJob struct {
	ID           uuid.UUID  `json:"id"`
	SessionID    uuid.UUID  `json:"session_id"`
	FileName     string     `json:"file_name"`
	Status       JobStatus  `json:"status"`
	Progress     int        `json:"progress"`
	SetID        *uuid.UUID `json:"set_id,omitempty"`
	ErrorCode    string     `json:"error_code,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
}

// WebSocket message types
const (
	WSStatusUpdate = "status_update"
	WSCompleted    = "completed"
	WSError        = "error"
)

type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type StatusUpdate struct {
	JobID        uuid.UUID `json:"job_id"`
	Progress     int       `json:"progress"`
	Batch        int       `json:"batch"`
	TotalBatches int       `json:"total_batches"`
	StepName     string    `json:"step_name"`
}

type CompletedEvent struct {
	JobID         uuid.UUID `json:"job_id"`
	SetID         uuid.UUID `json:"set_id"`
	QuestionCount int       `json:"question_count"`
}

type ErrorEvent struct {
	JobID        uuid.UUID `json:"job_id"`
	ErrorCode    string    `json:"error_code"`
	ErrorMessage string    `json:"error_message"`
}

// API Error response
type APIError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

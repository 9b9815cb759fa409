package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type JobStatus string

const (
	JobStatusOpen      JobStatus = "open"
	JobStatusAssigned  JobStatus = "assigned"
	JobStatusCompleted JobStatus = "completed"
)

type Job struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Title       string          `json:"title" db:"title"`
	Description string          `json:"description" db:"description"`
	Budget      decimal.Decimal `json:"budget" db:"budget"`
	BusinessID  int64           `json:"businessId" db:"business_id"`
	WorkerID    *int64          `json:"workerId,omitempty" db:"worker_id"`
	Status      JobStatus       `json:"status" db:"status"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}

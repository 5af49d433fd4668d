package trainer

import (
	"time"

	"github.com/lib/pq"
)

type Trainer struct {
	ID             int64          `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Phone          string         `db:"phone" json:"phone"`
	Specialization string         `db:"specialization" json:"specialization"`
	Comment        string         `db:"comment" json:"comment"`
	Groups         pq.StringArray `db:"groups" json:"groups" swaggertype:"array,string"`
	ClientsCount   int            `db:"-" json:"clients_count"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Request is the create/update body. Groups are group values from the
// reference data.
type Request struct {
	Name           string   `json:"name" validate:"required,max=100"`
	Phone          string   `json:"phone" validate:"omitempty,phone"`
	Specialization string   `json:"specialization" validate:"max=200"`
	Comment        string   `json:"comment"`
	Groups         []string `json:"groups" validate:"dive,required"`
}

// ScheduleEntry is one weekly training slot of a trainer.
type ScheduleEntry struct {
	Day       string `json:"day"`
	GroupID   string `json:"group"`
	GroupName string `json:"group_name"`
	TimeStart string `json:"time_start"`
	TimeEnd   string `json:"time_end"`
}

package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Punch is one clock action of one employee. Rows are written once at punch
// time; afterwards only the validation flag and the anomaly note may change.
// The composite unique index enforces at most one punch per kind per
// employee-day even under concurrent requests.
type Punch struct {
	gorm.Model
	EmployeeID uint           `json:"employee_id" gorm:"not null;uniqueIndex:idx_punch_emp_day_kind"`
	Day        string         `json:"day" gorm:"size:10;not null;uniqueIndex:idx_punch_emp_day_kind"`
	Kind       string         `json:"type" gorm:"size:16;not null;uniqueIndex:idx_punch_emp_day_kind"`
	Timestamp  time.Time      `json:"timestamp" gorm:"not null"`
	Source     string         `json:"source" gorm:"default:WEB"`
	Anomaly    string         `json:"anomaly" gorm:"default:NONE"`
	Location   datatypes.JSON `json:"location"`
	DeviceInfo datatypes.JSON `json:"device_info"`
	Validated  bool           `json:"validated" gorm:"default:false"`
	Note       string         `json:"note"`

	Employee *User `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
}

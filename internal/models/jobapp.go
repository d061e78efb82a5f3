package models

import "time"

// JobApp is a pending job offer sent by an employee to a user
type JobApp struct {
	JobAppID    uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	SenderID    uint64    `gorm:"index;not null" json:"sender_id"`
	Sender      *Employee `gorm:"foreignKey:SenderID;references:EmployeeID" json:"sender,omitempty"`
	RecipientID uint64    `gorm:"index;not null" json:"recipient_id"`
	Recipient   *User     `gorm:"foreignKey:RecipientID;references:UserID" json:"recipient,omitempty"`
	CompanyID   uint64    `gorm:"index;not null" json:"company_id"`
	Company     *Company  `gorm:"foreignKey:CompanyID;references:CompanyID" json:"company,omitempty"`
	Salary      *int64    `json:"salary,omitempty"`
	Position    string    `gorm:"size:64;not null" json:"position"`
	Timestamp   time.Time `gorm:"index;not null" json:"timestamp"`
}

// TableName overrides the table name for JobApp
func (JobApp) TableName() string {
	return "job_apps"
}

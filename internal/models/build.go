package models

import (
	"time"

	"gorm.io/datatypes"
)

// Build is a construction project registered by a user
type Build struct {
	BuildID       uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	Name          string          `gorm:"uniqueIndex;size:120;not null" json:"name"`
	Specification Text            `json:"specification"`
	Category      string          `gorm:"size:64" json:"category"`
	Worth         int64           `json:"worth"`
	Place         string          `gorm:"size:255" json:"place"`
	PostDate      time.Time       `gorm:"not null" json:"post_date"`
	StartDate     *datatypes.Date `json:"start_date,omitempty"`
	EndDate       *datatypes.Date `json:"end_date,omitempty"`
	Verified      bool            `gorm:"not null;default:false" json:"verified"`
	CreatorID     uint64          `gorm:"index;not null" json:"creator_id"`
	Creator       *User           `gorm:"foreignKey:CreatorID;references:UserID" json:"creator,omitempty"`
	ContractorID  *uint64         `gorm:"index" json:"contractor_id,omitempty"`
	Contractor    *Company        `gorm:"foreignKey:ContractorID;references:CompanyID" json:"contractor,omitempty"`
	UpdatedAt     time.Time       `json:"-"`
}

// TableName overrides the table name for Build
func (Build) TableName() string {
	return "builds"
}

// SearchFields lists the columns mirrored into the search index
func (Build) SearchFields() []string {
	return []string{"name", "specification", "category", "place"}
}

package models

import "time"

// Poll is a single time-boxed question under vote. Its option sequence is
// fixed at creation; IsActive is the only field that ever changes, flipped
// exactly once from true to false.
type Poll struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Question  string    `gorm:"type:text;not null" json:"question"`
	Options   []Option  `gorm:"foreignKey:PollID" json:"options,omitempty"`
	StartTime time.Time `gorm:"not null" json:"start_time"`
	Duration  int       `gorm:"not null" json:"duration"`
	IsActive  bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasOption reports whether optionID belongs to the poll's option set.
func (p *Poll) HasOption(optionID uint) bool {
	for _, opt := range p.Options {
		if opt.ID == optionID {
			return true
		}
	}
	return false
}

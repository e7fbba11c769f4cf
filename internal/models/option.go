package models

type Option struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	PollID   uint   `gorm:"not null;index" json:"poll_id"`
	Text     string `gorm:"size:500;not null" json:"text"`
	OrderNum int    `gorm:"not null" json:"order_num"`
}

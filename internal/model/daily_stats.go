package model

// DailyStat 每日重定向命中统计（按源文章）
type DailyStat struct {
	BaseModel
	SourcePostID uint   `gorm:"index"`
	Date         string `gorm:"type:date;index"` // YYYY-MM-DD
	PV           int64  `gorm:"default:0"`
	UV           int64  `gorm:"default:0"`
}

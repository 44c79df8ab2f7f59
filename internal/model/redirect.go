package model

import "time"

// 重定向类型
const (
	RedirectTypePost = "post"
	RedirectTypeURL  = "url"
)

// Redirect 文章重定向记录。
// SourcePostID 不是外键：源文章被删除后记录继续生效（墓碑）。
// TargetPostID 同样不级联：目标文章被删除后记录变为 broken（解析时返回 410）。
type Redirect struct {
	ID             string    `gorm:"primaryKey;size:36" json:"id"`
	SourcePostID   uint      `gorm:"uniqueIndex;not null" json:"sourcePostId"`
	RedirectType   string    `gorm:"size:8;not null" json:"redirectType"`
	TargetPostID   *uint     `json:"targetPostId,omitempty"`
	TargetURL      *string   `gorm:"size:2048" json:"targetUrl,omitempty"`
	HTTPStatusCode int       `gorm:"default:301" json:"httpStatusCode"`
	Notes          string    `gorm:"size:1024" json:"notes,omitempty"`
	CreatedBy      uint      `gorm:"index;not null" json:"createdBy"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

package model

// 文章状态
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post 文章实体（重定向子系统只读取 id/slug/title/status 投影）
type Post struct {
	BaseModel
	Slug     string `gorm:"uniqueIndex;size:255;not null" json:"slug"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Status   string `gorm:"size:16;default:draft" json:"status"`
	Content  string `gorm:"type:text" json:"content"`
	AuthorID uint   `gorm:"index" json:"authorId"`
}

package dto

import (
	"time"

	"cms-redirect-go/internal/model"
)

// PostResponse 文章读取响应，redirect 字段始终存在（无重定向时为 null）
type PostResponse struct {
	ID        uint              `json:"id"`
	Slug      string            `json:"slug"`
	Title     string            `json:"title"`
	Status    string            `json:"status"`
	Content   string            `json:"content"`
	AuthorID  uint              `json:"authorId"`
	CreatedAt time.Time         `json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
	Redirect  *RedirectDecision `json:"redirect"`
}

// NewPostResponse 由模型和解析结果组装响应
func NewPostResponse(post *model.Post, decision *RedirectDecision) *PostResponse {
	return &PostResponse{
		ID:        post.ID,
		Slug:      post.Slug,
		Title:     post.Title,
		Status:    post.Status,
		Content:   post.Content,
		AuthorID:  post.AuthorID,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Redirect:  decision,
	}
}

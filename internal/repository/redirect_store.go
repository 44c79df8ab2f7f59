package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/model"
)

// RedirectStore 重定向子系统的数据访问契约。
// 查询方法约定：记录不存在时返回 (nil, nil)，仅在存储故障时返回 error，
// 便于上层区分“无记录”与“查询失败”（读路径 fail open，写路径 fail closed）。
type RedirectStore interface {
	FindBySource(ctx context.Context, postID uint) (*model.Redirect, error)
	FindByTarget(ctx context.Context, postID uint) ([]model.Redirect, error)
	FindByID(ctx context.Context, id string) (*model.Redirect, error)
	Create(ctx context.Context, redirect *model.Redirect) error
	Update(ctx context.Context, redirect *model.Redirect) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, page, size int) ([]model.Redirect, int64, error)

	// 文章协作方的只读投影
	FetchPost(ctx context.Context, postID uint) (*model.Post, error)
	FetchPostBySlug(ctx context.Context, slug string) (*model.Post, error)
	DeletePost(ctx context.Context, postID uint) error
}

// GormRedirectStore 基于 GORM/MySQL 的 RedirectStore 实现
type GormRedirectStore struct {
	db *gorm.DB
}

func NewGormRedirectStore(db *gorm.DB) *GormRedirectStore {
	return &GormRedirectStore{db: db}
}

func (s *GormRedirectStore) FindBySource(ctx context.Context, postID uint) (*model.Redirect, error) {
	var redirect model.Redirect
	err := s.db.WithContext(ctx).Where("source_post_id = ?", postID).First(&redirect).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redirect, nil
}

func (s *GormRedirectStore) FindByTarget(ctx context.Context, postID uint) ([]model.Redirect, error) {
	var redirects []model.Redirect
	err := s.db.WithContext(ctx).
		Where("redirect_type = ? AND target_post_id = ?", model.RedirectTypePost, postID).
		Find(&redirects).Error
	if err != nil {
		return nil, err
	}
	return redirects, nil
}

func (s *GormRedirectStore) FindByID(ctx context.Context, id string) (*model.Redirect, error) {
	var redirect model.Redirect
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&redirect).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &redirect, nil
}

func (s *GormRedirectStore) Create(ctx context.Context, redirect *model.Redirect) error {
	if redirect.ID == "" {
		redirect.ID = uuid.NewString()
	}
	err := s.db.WithContext(ctx).Create(redirect).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发创建同一 sourcePostId：唯一索引拒绝后写者
		return apperrors.ConflictError("a redirect already exists for this source post")
	}
	return err
}

func (s *GormRedirectStore) Update(ctx context.Context, redirect *model.Redirect) error {
	redirect.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Save(redirect).Error
}

func (s *GormRedirectStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Delete(&model.Redirect{}, "id = ?", id).Error
}

func (s *GormRedirectStore) List(ctx context.Context, page, size int) ([]model.Redirect, int64, error) {
	var total int64
	db := s.db.WithContext(ctx).Model(&model.Redirect{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var redirects []model.Redirect
	if err := db.
		Limit(size).
		Offset((page - 1) * size).
		Order("created_at DESC").
		Find(&redirects).Error; err != nil {
		return nil, 0, err
	}
	return redirects, total, nil
}

func (s *GormRedirectStore) FetchPost(ctx context.Context, postID uint) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormRedirectStore) FetchPostBySlug(ctx context.Context, slug string) (*model.Post, error) {
	var post model.Post
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *GormRedirectStore) DeletePost(ctx context.Context, postID uint) error {
	// 只删除文章行本身；指向或源于该文章的重定向记录保留（墓碑 / broken）
	return s.db.WithContext(ctx).Delete(&model.Post{}, postID).Error
}

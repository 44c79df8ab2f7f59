package service

import (
	"context"

	"go.uber.org/zap"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/dto"
	"cms-redirect-go/internal/model"
)

// GetPost 文章读取路径：响应里始终带 redirect 字段（无重定向时为 null）
func GetPost(ctx context.Context, postID uint) (*dto.PostResponse, error) {
	post, err := store.FetchPost(ctx, postID)
	if err != nil {
		zap.L().Warn("查询文章失败",
			zap.Uint("post_id", postID),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}
	if post == nil {
		return nil, apperrors.NotFoundError("post not found")
	}

	decision := cache.Resolve(ctx, postID)
	return dto.NewPostResponse(post, decision), nil
}

// DeletePost 文章删除路径：先过守卫，force 显式越过。
// 源于该文章的重定向记录不随之删除（墓碑语义）。
// 返回的校验结果在守卫拦截时供调用方展示。
func DeletePost(ctx context.Context, postID uint, force bool) (*dto.ValidationResult, error) {
	post, err := store.FetchPost(ctx, postID)
	if err != nil {
		zap.L().Warn("查询文章失败",
			zap.Uint("post_id", postID),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}
	if post == nil {
		return nil, apperrors.NotFoundError("post not found")
	}

	result := guard.CanDeletePost(ctx, postID)
	if !result.Valid && !force {
		return &result, nil
	}

	if err := store.DeletePost(ctx, postID); err != nil {
		zap.L().Warn("删除文章失败",
			zap.Uint("post_id", postID),
			zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}

	// 指向该文章的重定向此刻起 broken（解析返回 410），失效它们的缓存
	for _, source := range resolver.InboundRedirectSources(ctx, postID) {
		cache.Invalidate(source)
	}
	cache.Invalidate(postID)

	return &result, nil
}

// ResolvePublic 公开读路径：先解析重定向再查文章，
// 这样源文章行已删除的墓碑重定向依然生效。
// 返回 (决定, 文章)；两者都为 nil 表示 404。
func ResolvePublic(ctx context.Context, postID uint) (*dto.RedirectDecision, *model.Post) {
	decision := cache.Resolve(ctx, postID)
	if decision != nil {
		return decision, nil
	}

	post, err := store.FetchPost(ctx, postID)
	if err != nil {
		zap.L().Warn("查询文章失败",
			zap.Uint("post_id", postID),
			zap.Error(err))
		return nil, nil
	}
	return nil, post
}

// LookupPostIDBySlug 把公开路径里的 slug 换成文章 id
func LookupPostIDBySlug(ctx context.Context, slug string) (uint, bool) {
	post, err := store.FetchPostBySlug(ctx, slug)
	if err != nil || post == nil {
		return 0, false
	}
	return post.ID, true
}

package service

import (
	"context"

	"go.uber.org/zap"

	"cms-redirect-go/internal/dto"
	"cms-redirect-go/internal/model"
	"cms-redirect-go/internal/repository"
)

// RedirectResolver 根据源文章 id 产出对外可见的重定向决定。
// 纯读组件：任何存储故障一律当作“无重定向”处理（fail open），
// 宁可展示原文也不让这个附属功能阻塞读路径。
type RedirectResolver struct {
	store repository.RedirectStore
}

func NewRedirectResolver(store repository.RedirectStore) *RedirectResolver {
	return &RedirectResolver{store: store}
}

// Resolve 解析 sourcePostID 的重定向。无重定向时返回 nil。
// post 类型最多做一次目标查询；目标不存在时用 410 覆盖配置的状态码。
func (r *RedirectResolver) Resolve(ctx context.Context, sourcePostID uint) *dto.RedirectDecision {
	redirect, err := r.store.FindBySource(ctx, sourcePostID)
	if err != nil {
		zap.L().Warn("redirect lookup failed, treating as no redirect",
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
		return nil
	}
	if redirect == nil {
		return nil
	}

	decision := &dto.RedirectDecision{
		Type:       redirect.RedirectType,
		HTTPStatus: redirect.HTTPStatusCode,
		Notes:      redirect.Notes,
	}

	if redirect.RedirectType == model.RedirectTypeURL {
		if redirect.TargetURL != nil {
			decision.Target.URL = *redirect.TargetURL
		}
		return decision
	}

	// post 类型：查目标文章（仅一跳）
	if redirect.TargetPostID == nil {
		// 数据不一致，按目标缺失处理
		decision.HTTPStatus = 410
		decision.Target.Error = "target post deleted"
		return decision
	}

	post, err := r.store.FetchPost(ctx, *redirect.TargetPostID)
	if err != nil {
		zap.L().Warn("target post lookup failed, treating as no redirect",
			zap.Uint("source_post_id", sourcePostID),
			zap.Uintp("target_post_id", redirect.TargetPostID),
			zap.Error(err))
		return nil
	}

	decision.Target.PostID = redirect.TargetPostID
	if post == nil {
		// 目标已删除：broken redirect，410 Gone 覆盖配置码
		decision.HTTPStatus = 410
		decision.Target.Error = "target post deleted"
		return decision
	}

	decision.Target.Slug = post.Slug
	decision.Target.Title = post.Title

	// 额外探测一跳：目标自己是否也有重定向。
	// 仅供调用方决定是否继续跟链，不改变本次决定，也不再往下递归。
	if next, peekErr := r.store.FindBySource(ctx, post.ID); peekErr == nil && next != nil {
		decision.Target.HasFurtherRedirect = true
	}

	return decision
}

// HasRedirect 判断文章是否存在重定向，查询失败按不存在处理
func (r *RedirectResolver) HasRedirect(ctx context.Context, postID uint) bool {
	redirect, err := r.store.FindBySource(ctx, postID)
	if err != nil {
		zap.L().Warn("redirect existence check failed",
			zap.Uint("post_id", postID),
			zap.Error(err))
		return false
	}
	return redirect != nil
}

// InboundRedirects 返回所有指向 targetPostID 的 post 类型重定向记录。
// 错误原样上抛，由调用方按各自的失败策略处理。
func (r *RedirectResolver) InboundRedirects(ctx context.Context, targetPostID uint) ([]model.Redirect, error) {
	return r.store.FindByTarget(ctx, targetPostID)
}

// InboundRedirectSources 返回所有指向 targetPostID 的重定向源文章 id，
// 查询失败时返回空序列
func (r *RedirectResolver) InboundRedirectSources(ctx context.Context, targetPostID uint) []uint {
	redirects, err := r.InboundRedirects(ctx, targetPostID)
	if err != nil {
		zap.L().Warn("inbound redirect lookup failed",
			zap.Uint("target_post_id", targetPostID),
			zap.Error(err))
		return []uint{}
	}
	sources := make([]uint, 0, len(redirects))
	for _, redirect := range redirects {
		sources = append(sources, redirect.SourcePostID)
	}
	return sources
}

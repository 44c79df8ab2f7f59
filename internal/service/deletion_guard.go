package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"cms-redirect-go/internal/dto"
)

// DeletionGuard 文章删除前的守卫：还有重定向指向该文章时阻止删除。
// 入边查询复用 Resolver 的原始接口；守卫自身的查询失败 fail open
//（放行并附警告）——偶尔漏拦一次好过让瞬时故障卡住删除。
type DeletionGuard struct {
	resolver *RedirectResolver
}

func NewDeletionGuard(resolver *RedirectResolver) *DeletionGuard {
	return &DeletionGuard{resolver: resolver}
}

// CanDeletePost 纯检查，不做任何删除或变更
func (g *DeletionGuard) CanDeletePost(ctx context.Context, postID uint) dto.ValidationResult {
	result := dto.NewValidationResult()

	inbound, err := g.resolver.InboundRedirects(ctx, postID)
	if err != nil {
		zap.L().Warn("inbound redirect check failed, allowing deletion",
			zap.Uint("post_id", postID),
			zap.Error(err))
		result.Warnings = append(result.Warnings, "inbound redirects could not be checked, deletion will proceed")
		return result
	}

	if len(inbound) > 0 {
		sources := make([]string, 0, len(inbound))
		for _, redirect := range inbound {
			sources = append(sources, fmt.Sprintf("%d", redirect.SourcePostID))
		}
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(
			"%d redirect(s) point to this post (source posts: %s), remove or repoint them before deleting",
			len(inbound), strings.Join(sources, ", ")))
	}

	return result
}

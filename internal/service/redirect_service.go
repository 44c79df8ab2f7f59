package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/dto"
	"cms-redirect-go/internal/model"
	"cms-redirect-go/internal/repository"
	"cms-redirect-go/pkg/utils"
	"cms-redirect-go/response"
)

// 包级协作对象，main 启动时通过 Init 注入
var (
	store     repository.RedirectStore
	validator *RedirectValidator
	resolver  *RedirectResolver
	cache     *CachedResolver
	guard     *DeletionGuard
)

// Init 组装重定向子系统。pool 允许为 nil（测试/无缓存场景）。
func Init(s repository.RedirectStore, pool *redis.Pool) {
	store = s
	validator = NewRedirectValidator(s)
	resolver = NewRedirectResolver(s)
	cache = NewCachedResolver(resolver, pool)
	guard = NewDeletionGuard(resolver)
}

// invalidateFor 失效一条重定向相关的解析缓存：源文章 + 当前目标文章
func invalidateFor(redirect *model.Redirect) {
	cache.Invalidate(redirect.SourcePostID)
	if redirect.RedirectType == model.RedirectTypePost && redirect.TargetPostID != nil {
		cache.Invalidate(*redirect.TargetPostID)
	}
}

// CreateRedirect 创建重定向。校验不通过时返回校验结果，不写库。
func CreateRedirect(ctx context.Context, req dto.CreateRedirectRequest, createdBy uint) (*model.Redirect, *dto.ValidationResult, error) {
	// 状态码白名单在服务层再查一遍，不依赖 HTTP 层的 binding 标签
	if req.HTTPStatusCode != 0 {
		if err := utils.ValidateHTTPStatusCode(req.HTTPStatusCode); err != nil {
			return nil, nil, apperrors.InvalidRequestError(err.Error())
		}
	}

	result := validator.Validate(ctx, req.SourcePostID, req.RedirectType, req.TargetPostID, req.TargetURL, "")
	if !result.Valid {
		return nil, &result, nil
	}

	statusCode := req.HTTPStatusCode
	if statusCode == 0 {
		statusCode = http.StatusMovedPermanently
	}

	redirect := &model.Redirect{
		SourcePostID:   req.SourcePostID,
		RedirectType:   req.RedirectType,
		TargetPostID:   req.TargetPostID,
		TargetURL:      req.TargetURL,
		HTTPStatusCode: statusCode,
		Notes:          req.Notes,
		CreatedBy:      createdBy,
	}

	if err := store.Create(ctx, redirect); err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			// 唯一索引裁决并发创建：409
			return nil, nil, err
		}
		zap.L().Warn("创建重定向失败",
			zap.Uint("source_post_id", req.SourcePostID),
			zap.Error(err))
		return nil, nil, apperrors.SystemErrorDefault()
	}

	invalidateFor(redirect)
	return redirect, &result, nil
}

// UpdateRedirect 更新重定向（type/target/状态码/notes；sourcePostId 与 id 不可变）
func UpdateRedirect(ctx context.Context, id string, req dto.UpdateRedirectRequest, actor uint) (*model.Redirect, *dto.ValidationResult, error) {
	if req.HTTPStatusCode != nil {
		if err := utils.ValidateHTTPStatusCode(*req.HTTPStatusCode); err != nil {
			return nil, nil, apperrors.InvalidRequestError(err.Error())
		}
	}

	existing, err := store.FindByID(ctx, id)
	if err != nil {
		zap.L().Warn("查询重定向失败",
			zap.String("id", id),
			zap.Error(err))
		return nil, nil, apperrors.SystemErrorDefault()
	}
	if existing == nil {
		return nil, nil, apperrors.NotFoundError("redirect not found")
	}
	if existing.CreatedBy != actor {
		// 写操作仅限创建者
		return nil, nil, apperrors.NotFoundError("redirect not found")
	}

	// 失效旧目标的缓存（目标可能被改走）
	oldTarget := existing.TargetPostID

	if req.RedirectType != nil {
		existing.RedirectType = *req.RedirectType
	}
	if req.TargetPostID != nil {
		existing.TargetPostID = req.TargetPostID
	}
	if req.TargetURL != nil {
		existing.TargetURL = req.TargetURL
	}
	if req.HTTPStatusCode != nil {
		existing.HTTPStatusCode = *req.HTTPStatusCode
	}
	if req.Notes != nil {
		existing.Notes = *req.Notes
	}

	// 类型与目标字段保持互斥
	switch existing.RedirectType {
	case model.RedirectTypePost:
		existing.TargetURL = nil
	case model.RedirectTypeURL:
		existing.TargetPostID = nil
	}

	result := validator.Validate(ctx, existing.SourcePostID, existing.RedirectType, existing.TargetPostID, existing.TargetURL, existing.ID)
	if !result.Valid {
		return nil, &result, nil
	}

	if err := store.Update(ctx, existing); err != nil {
		zap.L().Warn("更新重定向失败",
			zap.String("id", id),
			zap.Error(err))
		return nil, nil, apperrors.SystemErrorDefault()
	}

	invalidateFor(existing)
	if oldTarget != nil && (existing.TargetPostID == nil || *oldTarget != *existing.TargetPostID) {
		cache.Invalidate(*oldTarget)
	}
	return existing, &result, nil
}

// DeleteRedirect 删除重定向记录本身
func DeleteRedirect(ctx context.Context, id string, actor uint) error {
	existing, err := store.FindByID(ctx, id)
	if err != nil {
		zap.L().Warn("查询重定向失败",
			zap.String("id", id),
			zap.Error(err))
		return apperrors.SystemErrorDefault()
	}
	if existing == nil {
		return apperrors.NotFoundError("redirect not found")
	}
	if existing.CreatedBy != actor {
		return apperrors.NotFoundError("redirect not found")
	}

	if err := store.Delete(ctx, id); err != nil {
		return apperrors.SystemError("删除重定向失败: " + err.Error())
	}

	invalidateFor(existing)
	return nil
}

// GetRedirect 按 id 查询
func GetRedirect(ctx context.Context, id string) (*model.Redirect, error) {
	redirect, err := store.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.SystemErrorDefault()
	}
	if redirect == nil {
		return nil, apperrors.NotFoundError("redirect not found")
	}
	return redirect, nil
}

// ListRedirects 支持分页查询重定向列表
func ListRedirects(ctx context.Context, page, size int) (*response.PageResponse[model.Redirect], error) {
	// 参数校验
	if page < 1 {
		page = 1
	}
	if size < 1 || size > 100 {
		size = 10 // 默认每页10条，最大100条
	}

	redirects, total, err := store.List(ctx, page, size)
	if err != nil {
		zap.L().Warn("查询重定向列表失败", zap.Error(err))
		return nil, apperrors.SystemErrorDefault()
	}

	totalPage := (int(total) + size - 1) / size

	return &response.PageResponse[model.Redirect]{
		Page:      page,
		Size:      size,
		Total:     int(total),
		TotalPage: totalPage,
		List:      redirects,
	}, nil
}

// ValidateRedirect 只跑校验不写库（管理界面的 dry-run）
func ValidateRedirect(ctx context.Context, req dto.ValidateRedirectRequest) dto.ValidationResult {
	return validator.Validate(ctx, req.SourcePostID, req.RedirectType, req.TargetPostID, req.TargetURL, req.ExcludeRedirectID)
}

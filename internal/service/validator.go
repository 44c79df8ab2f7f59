package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"cms-redirect-go/internal/dto"
	"cms-redirect-go/internal/i18n"
	"cms-redirect-go/internal/model"
	"cms-redirect-go/internal/repository"
	"cms-redirect-go/pkg/utils"
)

// 环检测的最大跟链深度。到达上限仍未发现回环就放行，
// 只保证有界的查询次数，不对上限之外的数据下结论。
const maxChainDepth = 10

// RedirectValidator 在写入前校验重定向的所有不变量，
// 包括跨整个重定向图的多跳环检测。
// 与 Resolver 相反，这里的存储故障 fail closed：拦下一次可疑写入
// 好过放进坏数据。
type RedirectValidator struct {
	store repository.RedirectStore
}

func NewRedirectValidator(store repository.RedirectStore) *RedirectValidator {
	return &RedirectValidator{store: store}
}

// Validate 按固定顺序执行校验，遇到第一个硬错误立即返回。
// excludeRedirectID 为更新场景下当前记录自己的 id（避免唯一性检查误伤自身）。
// Warnings 只做提示，从不影响 Valid。
func (v *RedirectValidator) Validate(ctx context.Context, sourcePostID uint, redirectType string, targetPostID *uint, targetURL *string, excludeRedirectID string) dto.ValidationResult {
	result := dto.NewValidationResult()
	fail := func(msg string) dto.ValidationResult {
		result.Errors = append(result.Errors, msg)
		result.Valid = false
		return result
	}

	// 1. 类型对应的必填目标
	switch redirectType {
	case model.RedirectTypePost:
		if targetPostID == nil {
			return fail("targetPostId is required for post redirects")
		}
	case model.RedirectTypeURL:
		if targetURL == nil || *targetURL == "" {
			return fail("targetUrl is required for url redirects")
		}
	default:
		return fail("redirectType must be post or url")
	}

	if redirectType == model.RedirectTypePost {
		// 2. 禁止自我重定向
		if *targetPostID == sourcePostID {
			return fail("a post cannot redirect to itself")
		}

		// 3. 目标文章必须存在；草稿目标放行但提示
		post, err := v.store.FetchPost(ctx, *targetPostID)
		if err != nil {
			return fail("unable to verify target post, please retry")
		}
		if post == nil {
			return fail("target post does not exist")
		}
		if post.Status == model.PostStatusDraft {
			result.Warnings = append(result.Warnings, fmt.Sprintf("target post %d is a draft", *targetPostID))
		}

		// 4. 环检测
		cycleMsg, chainWarning, err := v.detectCycle(ctx, sourcePostID, *targetPostID)
		if err != nil {
			return fail("unable to verify redirect chain, please retry")
		}
		if cycleMsg != "" {
			return fail(cycleMsg)
		}
		if chainWarning != "" {
			result.Warnings = append(result.Warnings, chainWarning)
		}
	}

	if redirectType == model.RedirectTypeURL {
		// 5. URL 合法性：绝对 URL，scheme 仅限 http/https。
		// utils 返回 error.* 消息键，按请求语言翻译后原样进结果
		if err := utils.ValidateTargetURL(*targetURL); err != nil {
			return fail(i18n.Localize(ctx, err.Error()))
		}
		if utils.IsInsecureURL(*targetURL) {
			result.Warnings = append(result.Warnings, i18n.Localize(ctx, "warning.target_url_insecure"))
		}
	}

	// 6. 每个源文章至多一条重定向
	existing, err := v.store.FindBySource(ctx, sourcePostID)
	if err != nil {
		return fail("unable to verify source uniqueness, please retry")
	}
	if existing != nil && existing.ID != excludeRedirectID {
		return fail("a redirect already exists for this source post")
	}

	return result
}

// detectCycle 从 targetPostID 出发沿 post 类型重定向逐跳跟链，
// 命中 sourcePostID 或任何已访问节点即为环。
// 返回 (环错误消息, 链提示消息, 存储错误)；三者互斥。
func (v *RedirectValidator) detectCycle(ctx context.Context, sourcePostID, targetPostID uint) (string, string, error) {
	visited := make(map[uint]bool)
	path := []uint{sourcePostID, targetPostID}
	current := targetPostID

	for hop := 0; hop < maxChainDepth; hop++ {
		if current == sourcePostID || visited[current] {
			return fmt.Sprintf("redirect cycle detected: %s", formatChain(path)), "", nil
		}
		visited[current] = true

		next, err := v.store.FindBySource(ctx, current)
		if err != nil {
			return "", "", err
		}
		if next == nil || next.RedirectType != model.RedirectTypePost || next.TargetPostID == nil {
			// 链到头了（无重定向或 url 类型），没有环
			break
		}
		current = *next.TargetPostID
		path = append(path, current)
	}

	// path 里除了 source 和提议的 target 以外的节点都是已存在的后续跳
	extraHops := len(path) - 2
	if extraHops > 0 {
		return "", fmt.Sprintf("target post starts a redirect chain (%d further hop(s)): %s", extraHops, formatChain(path)), nil
	}
	return "", "", nil
}

func formatChain(path []uint) string {
	parts := make([]string, 0, len(path))
	for _, id := range path {
		parts = append(parts, strconv.FormatUint(uint64(id), 10))
	}
	return strings.Join(parts, " -> ")
}

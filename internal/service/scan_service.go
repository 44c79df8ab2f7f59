package service

import (
	"context"

	"go.uber.org/zap"

	"cms-redirect-go/internal/model"
	"cms-redirect-go/pkg/logging"
)

// ScanBrokenRedirects 周期巡检所有 post 类型重定向，
// 目标文章已删除的记录逐条告警（只读，不做修复）。
// 由 cron 周期触发。
func ScanBrokenRedirects() error {
	logging.Logger.Info("ScanBrokenRedirects start")

	ctx := context.Background()
	broken := 0
	checked := 0

	for page := 1; ; page++ {
		redirects, _, err := store.List(ctx, page, 100)
		if err != nil {
			logging.Logger.Error("获取重定向列表失败", zap.Error(err))
			return err
		}
		if len(redirects) == 0 {
			break
		}

		for _, redirect := range redirects {
			if redirect.RedirectType != model.RedirectTypePost || redirect.TargetPostID == nil {
				continue
			}
			checked++

			post, err := store.FetchPost(ctx, *redirect.TargetPostID)
			if err != nil {
				logging.Logger.Warn("目标文章查询失败，跳过",
					zap.String("redirect_id", redirect.ID),
					zap.Uintp("target_post_id", redirect.TargetPostID),
					zap.Error(err))
				continue
			}
			if post == nil {
				broken++
				logging.Logger.Warn("Broken redirect: target post deleted",
					zap.String("redirect_id", redirect.ID),
					zap.Uint("source_post_id", redirect.SourcePostID),
					zap.Uintp("target_post_id", redirect.TargetPostID),
				)
			}
		}

		if len(redirects) < 100 {
			break
		}
	}

	logging.Logger.Info("ScanBrokenRedirects end",
		zap.Int("checked", checked),
		zap.Int("broken", broken),
	)
	return nil
}

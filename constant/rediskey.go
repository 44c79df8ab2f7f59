package constant

import (
	"fmt"
	"time"
)

// 常量定义
const (
	BasePrefix = "cms:redirect:"
	Separator  = ":"
)

// Redis 键模板
const (
	ResolveDecision = BasePrefix + "resolve:%d"                              // cms:redirect:resolve:<sourcePostId>
	DailyPV         = BasePrefix + "pv" + Separator + "%s"                   // cms:redirect:pv:yyyyMMdd
	DailyUV         = BasePrefix + "uv" + Separator + "%s" + Separator + "%d" // cms:redirect:uv:yyyyMMdd:<sourcePostId>
)

// 解析缓存过期时间（秒）
const (
	ResolveCacheTTL         = 3600
	ResolveNegativeCacheTTL = 300
)

// GetResolveKey 生成解析结果缓存键
func GetResolveKey(sourcePostID uint) string {
	return fmt.Sprintf(ResolveDecision, sourcePostID)
}

// GetDateKey 生成当前日期的键（格式：yyyyMMdd）
func GetDateKey() string {
	return time.Now().Format("20060102")
}

// GetDailyPVKey 生成每日 PV 键（格式：cms:redirect:pv:yyyyMMdd）
func GetDailyPVKey(date string) string {
	return fmt.Sprintf(DailyPV, date)
}

// GetDailyUVKey 生成每日 UV 键（格式：cms:redirect:uv:yyyyMMdd:<sourcePostId>）
func GetDailyUVKey(sourcePostID uint, date string) string {
	return fmt.Sprintf(DailyUV, date, sourcePostID)
}

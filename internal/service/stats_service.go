package service

import (
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"

	"cms-redirect-go/constant"
	"cms-redirect-go/internal/model"
	"cms-redirect-go/internal/repository"
	"cms-redirect-go/pkg/logging"
)

// RecordDailyPV 记录每日重定向命中 PV
func RecordDailyPV(conn redis.Conn, sourcePostID uint) {
	dailyPvKey := constant.GetDailyPVKey(constant.GetDateKey())

	_, err := conn.Do("HINCRBY", dailyPvKey, sourcePostID, 1)
	if err != nil {
		logging.Logger.Error("Failed to record daily PV",
			zap.String("key", dailyPvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
	}

	_, err = conn.Do("EXPIRE", dailyPvKey, 3*24*3600) // 3天过期
	if err != nil {
		logging.Logger.Error("Failed to record daily PV Expire",
			zap.String("key", dailyPvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
	}
}

// RecordDailyUV 记录每日重定向命中 UV
func RecordDailyUV(conn redis.Conn, sourcePostID uint, ip string) {
	dailyUvKey := constant.GetDailyUVKey(sourcePostID, constant.GetDateKey())

	_, err := conn.Do("PFADD", dailyUvKey, ip)
	if err != nil {
		logging.Logger.Error("Failed to record daily UV",
			zap.String("key", dailyUvKey),
			zap.String("ip", ip),
			zap.Error(err))
	}

	_, err = conn.Do("EXPIRE", dailyUvKey, 3*24*3600) // 3天过期
	if err != nil {
		logging.Logger.Error("Failed to record daily UV Expire",
			zap.String("key", dailyUvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
	}
}

// GetDailyPv 获取某日期某源文章的重定向命中量（PV）
func GetDailyPv(conn redis.Conn, sourcePostID uint, date string) (int64, error) {
	dailyPvKey := constant.GetDailyPVKey(date)

	reply, err := conn.Do("HGET", dailyPvKey, sourcePostID)
	if err != nil {
		logging.Logger.Error("Failed to get daily PV",
			zap.String("key", dailyPvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
		return 0, err
	}

	result, err := redis.Int64(reply, err)
	if err != nil {
		logging.Logger.Error("Failed to parse daily PV",
			zap.String("key", dailyPvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
		return 0, err
	}

	return result, nil
}

// GetDailyUv 获取某日期某源文章的独立访客数（UV）
func GetDailyUv(conn redis.Conn, sourcePostID uint, date string) (int64, error) {
	dailyUvKey := constant.GetDailyUVKey(sourcePostID, date)

	// 使用 PFCOUNT 查询 HyperLogLog 的基数（UV 数量）
	reply, err := conn.Do("PFCOUNT", dailyUvKey)
	if err != nil {
		logging.Logger.Error("Failed to get daily UV",
			zap.String("key", dailyUvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
		return 0, err
	}

	result, err := redis.Int64(reply, err)
	if err != nil {
		logging.Logger.Error("Failed to parse daily UV",
			zap.String("key", dailyUvKey),
			zap.Uint("source_post_id", sourcePostID),
			zap.Error(err))
		return 0, err
	}

	return result, nil
}

// StatisticalData 把 Redis 中的当日命中统计落库（由 cron 周期触发）
func StatisticalData() error {
	logging.Logger.Info("StatisticalData start")

	var redirects []model.Redirect
	if err := repository.DB.Find(&redirects).Error; err != nil {
		logging.Logger.Error("获取重定向列表失败", zap.Error(err))
		return err
	}

	today := time.Now().Format("2006-01-02")
	for _, redirect := range redirects {
		doStatisticalData(redirect, today)
	}

	logging.Logger.Info("StatisticalData end")
	return nil
}

func doStatisticalData(redirect model.Redirect, today string) {
	conn := repository.RedisPool.Get()
	defer func() {
		if err := conn.Close(); err != nil {
			logging.Logger.Error("Failed to close Redis connection",
				zap.Error(err),
				zap.String("operation", "close"),
				zap.String("connection_type", "redis"),
			)
		}
	}()

	dailyPv, _ := GetDailyPv(conn, redirect.SourcePostID, today)
	dailyUv, _ := GetDailyUv(conn, redirect.SourcePostID, today)

	dailyStat := &model.DailyStat{
		SourcePostID: redirect.SourcePostID,
		Date:         today,
		PV:           dailyPv,
		UV:           dailyUv,
	}

	db := repository.DB.Where("source_post_id = ? AND date = ?", redirect.SourcePostID, today).
		Assign("pv", dailyPv, "uv", dailyUv).
		FirstOrCreate(dailyStat)

	if db.Error != nil {
		logging.Logger.Error("Failed to insert or update daily stat",
			zap.Uint("source_post_id", redirect.SourcePostID),
			zap.String("date", today),
			zap.Int64("pv", dailyPv),
			zap.Int64("uv", dailyUv),
			zap.Error(db.Error),
		)
	}
}

// GetStatsBySourcePostID 获取某源文章的每日命中统计
func GetStatsBySourcePostID(sourcePostID uint) ([]model.DailyStat, error) {
	var stats []model.DailyStat
	err := repository.DB.Where("source_post_id = ?", sourcePostID).Order("date DESC").Find(&stats).Error
	return stats, err
}

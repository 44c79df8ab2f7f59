package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/repository"
	"cms-redirect-go/internal/service"
	"cms-redirect-go/pkg/logging"
	"cms-redirect-go/response"
)

// GetPostHandler 文章读取（GET /api/posts/:id），响应恒带 redirect 字段
func GetPostHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("无效的文章 ID"))
		return
	}

	post, err := service.GetPost(c.Request.Context(), uint(id))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(post, "success"))
}

// DeletePostHandler 文章删除（DELETE /api/posts/:id?force=1）
// 守卫拦截时返回 409 和校验明细；force=1 显式越过守卫
func DeletePostHandler(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("无效的文章 ID"))
		return
	}

	force := c.Query("force") == "1"

	result, err := service.DeletePost(c.Request.Context(), uint(id), force)
	if err != nil {
		zap.L().Warn("Post deletion failed",
			zap.Error(err),
			zap.Uint64("post_id", id),
		)
		_ = c.Error(err)
		return
	}
	if result != nil && !result.Valid {
		c.JSON(http.StatusConflict, response.ErrorWithData(result, "post is still a redirect target"))
		return
	}

	c.JSON(http.StatusOK, response.OK(result, "post deleted"))
}

// ResolvePostHandler 公开读路径（GET /p/:idOrSlug）：
// 有重定向就发 HTTP 重定向（broken 时 410），否则返回文章本身。
// 先解析重定向再查文章，墓碑（源文章行已删）依然生效。
func ResolvePostHandler(c *gin.Context) {
	raw := strings.TrimSpace(c.Param("idOrSlug"))

	postID, parsed := uint(0), false
	if id, err := strconv.ParseUint(raw, 10, 64); err == nil && id > 0 {
		postID, parsed = uint(id), true
	} else if id, ok := service.LookupPostIDBySlug(c.Request.Context(), raw); ok {
		postID, parsed = id, true
	}
	if !parsed {
		c.Status(http.StatusNotFound)
		return
	}

	decision, post := service.ResolvePublic(c.Request.Context(), postID)

	if decision == nil {
		if post == nil {
			c.Status(http.StatusNotFound)
			return
		}
		c.JSON(http.StatusOK, response.OK(post, "success"))
		return
	}

	// 记录命中统计
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
	ip := c.ClientIP()
	service.RecordDailyPV(conn, postID)
	service.RecordDailyUV(conn, postID, ip)

	// broken redirect：目标文章已删除
	if decision.HTTPStatus == http.StatusGone {
		c.JSON(http.StatusGone, response.Error("redirect target no longer exists"))
		return
	}

	var location string
	if decision.Target.URL != "" {
		location = decision.Target.URL
	} else {
		location = "/p/" + decision.Target.Slug
	}

	// 临时重定向不允许缓存
	if decision.HTTPStatus == http.StatusFound || decision.HTTPStatus == http.StatusTemporaryRedirect {
		c.Header("Cache-Control", "no-cache, no-store, must-revalidate")
	}

	c.Redirect(decision.HTTPStatus, location)
}

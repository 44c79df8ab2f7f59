package handler

import (
	"net/http"
	"reflect"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"cms-redirect-go/internal/apperrors"
	"cms-redirect-go/internal/dto"
	"cms-redirect-go/internal/service"
	"cms-redirect-go/response"
)

// accountID 从请求头取操作者账号（认证由外围网关完成，这里只消费结果）
func accountID(c *gin.Context) (uint, bool) {
	raw := c.GetHeader("X-Account-ID")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// bindingErrorMessage 通过反射提取字段上的 msg 标签作为错误提示
func bindingErrorMessage(req interface{}, err error) string {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrs {
			field, ok := reflect.TypeOf(req).Elem().FieldByName(e.Field())
			if !ok {
				continue
			}
			if customMsg := field.Tag.Get("msg"); customMsg != "" {
				return customMsg
			}
		}
	}
	return ""
}

// CreateRedirectHandler 创建重定向（POST /api/redirects）
func CreateRedirectHandler(c *gin.Context) {
	actor, ok := accountID(c)
	if !ok {
		_ = c.Error(apperrors.BusinessError(http.StatusUnauthorized, "missing or invalid X-Account-ID"))
		return
	}

	var req dto.CreateRedirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		if msg := bindingErrorMessage(&req, err); msg != "" {
			_ = c.Error(apperrors.InvalidRequestError(msg))
			return
		}
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	redirect, result, err := service.CreateRedirect(c.Request.Context(), req, actor)
	if err != nil {
		zap.L().Warn("Redirect creation failed",
			zap.Error(err),
			zap.Uint("source_post_id", req.SourcePostID),
		)
		_ = c.Error(err)
		return
	}
	if result != nil && !result.Valid {
		// 校验错误原样返回给调用方
		c.JSON(http.StatusBadRequest, response.ErrorWithData(result, "validation failed"))
		return
	}

	c.JSON(http.StatusOK, response.OK(gin.H{
		"redirect": redirect,
		"warnings": result.Warnings,
	}, "redirect created"))
}

// ListRedirectsHandler 分页查询重定向列表（GET /api/redirects）
func ListRedirectsHandler(c *gin.Context) {
	pageStr := c.DefaultQuery("page", "1")
	sizeStr := c.DefaultQuery("size", "10")

	page, err := strconv.Atoi(pageStr)
	if err != nil || page < 1 {
		_ = c.Error(apperrors.InvalidRequestError("页码必须为正整数"))
		return
	}

	size, err := strconv.Atoi(sizeStr)
	if err != nil || size < 1 || size > 100 {
		_ = c.Error(apperrors.InvalidRequestError("每页数量必须为1-100之间的整数"))
		return
	}

	pageResp, err := service.ListRedirects(c.Request.Context(), page, size)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK(pageResp, "success"))
}

// GetRedirectHandler 按 id 查询（GET /api/redirects/:id）
func GetRedirectHandler(c *gin.Context) {
	redirect, err := service.GetRedirect(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, response.OK(redirect, "success"))
}

// UpdateRedirectHandler 更新重定向（PUT /api/redirects/:id）
func UpdateRedirectHandler(c *gin.Context) {
	actor, ok := accountID(c)
	if !ok {
		_ = c.Error(apperrors.BusinessError(http.StatusUnauthorized, "missing or invalid X-Account-ID"))
		return
	}

	var req dto.UpdateRedirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		zap.L().Warn("Request body binding failed",
			zap.Error(err),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		if msg := bindingErrorMessage(&req, err); msg != "" {
			_ = c.Error(apperrors.InvalidRequestError(msg))
			return
		}
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	redirect, result, err := service.UpdateRedirect(c.Request.Context(), c.Param("id"), req, actor)
	if err != nil {
		zap.L().Warn("Redirect update failed",
			zap.Error(err),
			zap.String("id", c.Param("id")),
		)
		_ = c.Error(err)
		return
	}
	if result != nil && !result.Valid {
		c.JSON(http.StatusBadRequest, response.ErrorWithData(result, "validation failed"))
		return
	}

	c.JSON(http.StatusOK, response.OK(gin.H{
		"redirect": redirect,
		"warnings": result.Warnings,
	}, "redirect updated"))
}

// DeleteRedirectHandler 删除重定向记录（DELETE /api/redirects/:id）
func DeleteRedirectHandler(c *gin.Context) {
	actor, ok := accountID(c)
	if !ok {
		_ = c.Error(apperrors.BusinessError(http.StatusUnauthorized, "missing or invalid X-Account-ID"))
		return
	}

	if err := service.DeleteRedirect(c.Request.Context(), c.Param("id"), actor); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, response.OK("", "redirect deleted"))
}

// ValidateRedirectHandler 校验 dry-run（POST /api/redirect-validation）
func ValidateRedirectHandler(c *gin.Context) {
	var req dto.ValidateRedirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(apperrors.InvalidRequestErrorDefault())
		return
	}

	result := service.ValidateRedirect(c.Request.Context(), req)
	c.JSON(http.StatusOK, response.OK(result, "success"))
}

// GetRedirectStatsHandler 源文章的每日命中统计（GET /api/redirect-stats/:sourcePostId）
func GetRedirectStatsHandler(c *gin.Context) {
	idStr := c.Param("sourcePostId")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id < 1 {
		_ = c.Error(apperrors.InvalidRequestError("无效的 ID"))
		return
	}

	stats, err := service.GetStatsBySourcePostID(uint(id))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

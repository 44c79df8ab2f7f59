package dto

// CreateRedirectRequest 用于创建重定向的请求参数
type CreateRedirectRequest struct {
	SourcePostID   uint    `json:"sourcePostId" binding:"required" msg:"sourcePostId is required"`
	RedirectType   string  `json:"redirectType" binding:"required,oneof=post url" msg:"redirectType must be post or url"`
	TargetPostID   *uint   `json:"targetPostId"`
	TargetURL      *string `json:"targetUrl"`
	HTTPStatusCode int     `json:"httpStatusCode" binding:"omitempty,oneof=301 302 307 308" msg:"httpStatusCode must be one of 301 302 307 308"` // 默认 301
	Notes          string  `json:"notes" binding:"max=1024"`
}

// UpdateRedirectRequest 用于更新重定向的请求参数。
// sourcePostId 与 id 不可变更，因此这里不出现。
type UpdateRedirectRequest struct {
	RedirectType   *string `json:"redirectType" binding:"omitempty,oneof=post url" msg:"redirectType must be post or url"`
	TargetPostID   *uint   `json:"targetPostId"`
	TargetURL      *string `json:"targetUrl"`
	HTTPStatusCode *int    `json:"httpStatusCode" binding:"omitempty,oneof=301 302 307 308" msg:"httpStatusCode must be one of 301 302 307 308"`
	Notes          *string `json:"notes"`
}

// ValidateRedirectRequest 校验接口（dry-run）的请求参数
type ValidateRedirectRequest struct {
	SourcePostID      uint    `json:"sourcePostId" binding:"required"`
	RedirectType      string  `json:"redirectType" binding:"required,oneof=post url"`
	TargetPostID      *uint   `json:"targetPostId"`
	TargetURL         *string `json:"targetUrl"`
	ExcludeRedirectID string  `json:"excludeRedirectId"`
}

// RedirectTarget 解析结果中的目标描述
type RedirectTarget struct {
	PostID             *uint  `json:"postId,omitempty"`
	Slug               string `json:"slug,omitempty"`
	Title              string `json:"title,omitempty"`
	URL                string `json:"url,omitempty"`
	Error              string `json:"error,omitempty"`
	HasFurtherRedirect bool   `json:"hasFurtherRedirect,omitempty"` // 目标文章自身还有重定向（仅探测一跳）
}

// RedirectDecision 对外暴露的解析结果
type RedirectDecision struct {
	Type       string         `json:"type"`
	HTTPStatus int            `json:"httpStatus"`
	Target     RedirectTarget `json:"target"`
	Notes      string         `json:"notes,omitempty"`
}

// ValidationResult 校验结果。Warnings 不影响 Valid。
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// NewValidationResult 构造空的通过结果（切片非 nil，序列化为 []）
func NewValidationResult() ValidationResult {
	return ValidationResult{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}
}

package utils

import (
	"fmt"
	"net/url"
)

// 允许的重定向状态码
var allowedStatusCodes = map[int]bool{
	301: true,
	302: true,
	307: true,
	308: true,
}

// ValidateTargetURL 校验目标 URL 的合法性：必须是绝对 URL，scheme 仅限 http/https
func ValidateTargetURL(targetURL string) error {
	// 1. 检查目标 URL 是否为空
	if targetURL == "" {
		return fmt.Errorf("error.target_url_required")
	}

	// 2. URL 格式校验
	u, err := url.Parse(targetURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("error.target_url_invalid")
	}

	// 3. scheme 限制
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("error.target_url_scheme")
	}

	// 4. URL 长度限制
	if len(targetURL) > 2048 {
		return fmt.Errorf("error.target_url_max_length")
	}
	return nil
}

// IsInsecureURL 判断是否为明文 http（合法但需要提示）
func IsInsecureURL(targetURL string) bool {
	u, err := url.Parse(targetURL)
	return err == nil && u.Scheme == "http"
}

// ValidateHTTPStatusCode 校验重定向状态码
func ValidateHTTPStatusCode(code int) error {
	if !allowedStatusCodes[code] {
		return fmt.Errorf("error.status_code_invalid")
	}
	return nil
}

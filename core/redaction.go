package core

import (
	"net/url"
	"strings"
)

const redactedValue = "***"

var sensitiveKeys = map[string]struct{}{
	"access_token":  {},
	"appsecret":     {},
	"app_secret":    {},
	"authorization": {},
	"secret":        {},
	"ticket":        {},
	"token":         {},
}

// RedactURLQuery 脱敏 URL 查询参数中的敏感字段。
func RedactURLQuery(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.RawQuery == "" {
		return rawURL
	}

	query := parsed.Query()
	for key, values := range query {
		if !isSensitiveKey(key) {
			continue
		}
		for i := range values {
			values[i] = redactedValue
		}
		query[key] = values
	}

	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// RedactJSON 脱敏 JSON 对象顶层的敏感字段（如 token 接口返回的 access_token）。
// 非 JSON 对象原样返回。
func RedactJSON(body []byte) string {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return string(body)
	}

	redacted := false
	for key := range fields {
		if isSensitiveKey(key) {
			fields[key] = redactedValue
			redacted = true
		}
	}
	if !redacted {
		return string(body)
	}

	out, err := json.Marshal(fields)
	if err != nil {
		return string(body)
	}
	return string(out)
}

func isSensitiveKey(key string) bool {
	_, exists := sensitiveKeys[strings.ToLower(key)]
	return exists
}

package core

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type wechatErrorEnvelope struct {
	ErrCode int    `json:"errcode"`
	ErrMsg  string `json:"errmsg"`
}

// DecodeWechat 解析微信响应
// 先探测 errcode/errmsg，非 0 时返回 *WechatError；再检查 HTTP 状态码；最后解析到 T。
func DecodeWechat[T any](statusCode int, body []byte) (T, error) {
	var zero T

	if len(bytes.TrimSpace(body)) == 0 {
		if statusCode >= 200 && statusCode < 300 {
			return zero, nil
		}
		return zero, fmt.Errorf("http status %d", statusCode)
	}

	if wechatErr := ParseWechatError(body); wechatErr != nil {
		return zero, wechatErr
	}

	if statusCode < 200 || statusCode >= 300 {
		return zero, fmt.Errorf("http status %d: %s", statusCode, truncateBody(body, 256))
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, NewResponseParseError(body, err)
	}
	return out, nil
}

// ParseWechatError 从响应体中探测微信错误
// 非 JSON 或 errcode 为 0 时返回 nil。
func ParseWechatError(body []byte) *WechatError {
	var envelope wechatErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil
	}
	if envelope.ErrCode != 0 {
		return NewWechatError(envelope.ErrCode, envelope.ErrMsg)
	}
	return nil
}

func truncateBody(body []byte, max int) string {
	if len(body) <= max {
		return string(body)
	}
	return string(body[:max]) + "..."
}

package officialaccount

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ShinyNito/officialwechat/core"
)

const (
	qrcodeCreatePath     = "/cgi-bin/qrcode/create"
	showQRCodePath       = "/cgi-bin/showqrcode"
	qrcodeCacheKeyPrefix = "officialaccount:qrcode:"
	qrcodeActionName     = "QR_STR_SCENE"

	// DefaultQRCodeExpireSeconds 未指定有效期时使用的秒数
	DefaultQRCodeExpireSeconds = 86400

	dataURIPrefix = "data:image/png;base64,"
)

// QRCodeRequest 临时字符串场景二维码请求
type QRCodeRequest struct {
	// SceneStr 场景值（必填）
	SceneStr string
	// ExpireSeconds 有效期秒数，0 时使用 DefaultQRCodeExpireSeconds。
	// 上限由微信校验，本地不做检查。
	ExpireSeconds int
}

// QRCodeTicket 二维码 ticket
type QRCodeTicket struct {
	Ticket        string `json:"ticket"`
	ExpireSeconds int    `json:"expire_seconds"`
	URL           string `json:"url"`
}

type qrcodeCreateRequest struct {
	ExpireSeconds int              `json:"expire_seconds"`
	ActionName    string           `json:"action_name"`
	ActionInfo    qrcodeActionInfo `json:"action_info"`
}

type qrcodeActionInfo struct {
	Scene qrcodeScene `json:"scene"`
}

type qrcodeScene struct {
	SceneStr string `json:"scene_str"`
}

// GetQRCode 获取临时二维码图片，返回 data:image/png;base64 形式的 data URI
//
// 先按场景值查缓存；未命中时创建 ticket、下载图片，成功后以
// ExpireSeconds 减去 core.DefaultExpireBuffer 为 TTL 写入缓存。
//
// 错误:
//   - core.ErrQRCodeTicket: 创建 ticket 重试耗尽
//   - core.ErrQRCodeImage: 下载图片重试耗尽
//   - core.ErrAccessToken: 获取 access_token 失败
func (c *Client) GetQRCode(ctx context.Context, req QRCodeRequest) (string, error) {
	if strings.TrimSpace(req.SceneStr) == "" {
		return "", fmt.Errorf("%w: scene_str is required", core.ErrQRCodeTicket)
	}
	if req.ExpireSeconds == 0 {
		req.ExpireSeconds = DefaultQRCodeExpireSeconds
	}

	cacheKey := c.qrcodeCacheKey(req.SceneStr)
	if image, ok := c.cache.GetQRCode(ctx, cacheKey); ok && image != "" {
		c.logger.DebugContext(ctx, "qrcode from cache", slog.String("scene", req.SceneStr))
		return image, nil
	}

	ticket, err := c.CreateQRCodeTicket(ctx, req)
	if err != nil {
		return "", err
	}

	data, err := c.GetQRCodeImage(ctx, ticket.Ticket)
	if err != nil {
		return "", err
	}
	image := EncodeDataURI(data)

	ttl := time.Duration(req.ExpireSeconds)*time.Second - core.DefaultExpireBuffer
	if ttl <= 0 {
		c.logger.DebugContext(ctx, "qrcode expires within buffer, not cached",
			slog.String("scene", req.SceneStr),
			slog.Int("expire_seconds", req.ExpireSeconds),
		)
		return image, nil
	}
	if err := c.cache.SetQRCode(ctx, cacheKey, image, ttl); err != nil {
		c.logger.WarnContext(ctx, "cache qrcode failed", slog.String("scene", req.SceneStr), slog.Any("error", err))
	}

	return image, nil
}

// CreateQRCodeTicket 创建临时字符串场景二维码 ticket
func (c *Client) CreateQRCodeTicket(ctx context.Context, req QRCodeRequest) (*QRCodeTicket, error) {
	if strings.TrimSpace(req.SceneStr) == "" {
		return nil, fmt.Errorf("%w: scene_str is required", core.ErrQRCodeTicket)
	}
	if req.ExpireSeconds == 0 {
		req.ExpireSeconds = DefaultQRCodeExpireSeconds
	}

	body := qrcodeCreateRequest{
		ExpireSeconds: req.ExpireSeconds,
		ActionName:    qrcodeActionName,
		ActionInfo:    qrcodeActionInfo{Scene: qrcodeScene{SceneStr: req.SceneStr}},
	}

	ticket, err := withToken(ctx, c, "create qrcode ticket failed", func(ctx context.Context) (QRCodeTicket, error) {
		resp, err := newRequest[QRCodeTicket](c).
			Path(qrcodeCreatePath).
			Body(body).
			Post(ctx)
		if err != nil {
			return QRCodeTicket{}, err
		}
		if resp.Ticket == "" {
			return QRCodeTicket{}, fmt.Errorf("empty ticket in response")
		}
		return resp, nil
	})
	if err != nil {
		return nil, opError(core.ErrQRCodeTicket, err)
	}

	c.logger.DebugContext(ctx, "qrcode ticket created",
		slog.String("scene", req.SceneStr),
		slog.Int("expire_seconds", ticket.ExpireSeconds),
	)
	return &ticket, nil
}

// GetQRCodeImage 用 ticket 换取二维码图片，不需要 access_token
func (c *Client) GetQRCodeImage(ctx context.Context, ticket string) ([]byte, error) {
	if ticket == "" {
		return nil, fmt.Errorf("%w: ticket is required", core.ErrQRCodeImage)
	}

	data, err := core.Retry(ctx, c.retrier, func(attempt int) ([]byte, error) {
		resp, err := c.imageClient.Request().
			Path(showQRCodePath).
			Query("ticket", ticket).
			WithoutToken().
			Get(ctx)
		if err == nil {
			err = checkImageResponse(resp)
		}
		if err != nil {
			core.LogFailure(ctx, c.logger, "get qrcode image failed", attempt, err)
			return nil, err
		}
		return resp.Body, nil
	})
	if err != nil {
		return nil, core.OpError(core.ErrQRCodeImage, err)
	}
	return data, nil
}

// checkImageResponse 图片接口失败时可能返回 JSON 错误体
func checkImageResponse(resp *core.Response) error {
	if wechatErr := core.ParseWechatError(resp.Body); wechatErr != nil {
		return wechatErr
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("http status %d", resp.StatusCode)
	}
	if len(resp.Body) == 0 {
		return fmt.Errorf("empty image body")
	}
	return nil
}

func (c *Client) qrcodeCacheKey(sceneStr string) string {
	return qrcodeCacheKeyPrefix + c.cfg.AppID + ":" + sceneStr
}

// EncodeDataURI 将 PNG 图片编码为 data URI
func EncodeDataURI(image []byte) string {
	return dataURIPrefix + base64.StdEncoding.EncodeToString(image)
}

// DecodeDataURI 从 EncodeDataURI 生成的 data URI 中取回图片
func DecodeDataURI(uri string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(uri, dataURIPrefix)
	if !ok {
		return nil, fmt.Errorf("not a png data uri")
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode data uri: %w", err)
	}
	return data, nil
}

package officialaccount

import (
	"context"
	"fmt"
	"strings"

	"github.com/ShinyNito/officialwechat/core"
)

const (
	userInfoPath = "/cgi-bin/user/info"

	// DefaultLang 用户信息默认语言
	DefaultLang = "zh_CN"
)

// Sex 用户性别
type Sex int

const (
	SexUnknown Sex = 0
	SexMale    Sex = 1
	SexFemale  Sex = 2
)

type GetUserInfoRequest struct {
	OpenID string
	// Lang 国家地区语言版本：zh_CN、zh_TW、en，默认 zh_CN
	Lang string
}

// UserInfo 用户基本信息
// 字段与接口返回一一对应，只改名不做转换。
type UserInfo struct {
	Subscribe     int    `json:"subscribe"` // 0 表示未关注
	OpenID        string `json:"openId"`
	Nickname      string `json:"nickname"`
	Sex           Sex    `json:"sex"`
	Language      string `json:"language"`
	City          string `json:"city"`
	Province      string `json:"province"`
	Country       string `json:"country"`
	SubscribeTime int64  `json:"subscribeTime"`
	UnionID       string `json:"unionId"`
	HeadImg       string `json:"headImg"`
}

type userInfoResponse struct {
	Subscribe     int    `json:"subscribe"`
	OpenID        string `json:"openid"`
	Nickname      string `json:"nickname"`
	Sex           Sex    `json:"sex"`
	Language      string `json:"language"`
	City          string `json:"city"`
	Province      string `json:"province"`
	Country       string `json:"country"`
	HeadImgURL    string `json:"headimgurl"`
	SubscribeTime int64  `json:"subscribe_time"`
	UnionID       string `json:"unionid"`
}

func (r userInfoResponse) toUserInfo() *UserInfo {
	return &UserInfo{
		Subscribe:     r.Subscribe,
		OpenID:        r.OpenID,
		Nickname:      r.Nickname,
		Sex:           r.Sex,
		Language:      r.Language,
		City:          r.City,
		Province:      r.Province,
		Country:       r.Country,
		SubscribeTime: r.SubscribeTime,
		UnionID:       r.UnionID,
		HeadImg:       r.HeadImgURL,
	}
}

// GetUserInfo 获取用户基本信息（含 UnionID），不缓存
func (c *Client) GetUserInfo(ctx context.Context, req GetUserInfoRequest) (*UserInfo, error) {
	if strings.TrimSpace(req.OpenID) == "" {
		return nil, fmt.Errorf("%w: openid is required", core.ErrUserInfo)
	}
	lang := req.Lang
	if lang == "" {
		lang = DefaultLang
	}

	resp, err := withToken(ctx, c, "get user info failed", func(ctx context.Context) (userInfoResponse, error) {
		resp, err := newRequest[userInfoResponse](c).
			Path(userInfoPath).
			Query("openid", req.OpenID).
			Query("lang", lang).
			Get(ctx)
		if err != nil {
			return userInfoResponse{}, err
		}
		if resp.OpenID == "" {
			return userInfoResponse{}, fmt.Errorf("empty user info in response")
		}
		return resp, nil
	})
	if err != nil {
		return nil, opError(core.ErrUserInfo, err)
	}

	return resp.toUserInfo(), nil
}

package officialaccount

import "github.com/ShinyNito/officialwechat/core"

func newRequest[T any](c *Client) *core.TypedRequest[T] {
	return core.NewTypedRequest[T](c.apiClient)
}

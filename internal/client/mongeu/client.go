package mongeu

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"mongeu/pkg/model"
)

// Client 是 Mongeu API 的客户端，只持有基础地址，不持有连接。
// 每次调用都是一次独立的 HTTP 请求。
type Client struct {
	baseURL string
	// follow 跟随重定向，noFollow 不跟随，分别服务于两种 campaign 创建方式。
	follow   *http.Client
	noFollow *http.Client
}

// New 创建一个 Client。timeout 为 0 时不设超时。
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		follow:  &http.Client{Timeout: timeout},
		noFollow: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// Ping 探测 API 是否存活。2xx 返回 true，其他状态码返回 false；
// 传输层失败（连接拒绝、超时等）作为 error 返回，与 false 区分开。
func (c *Client) Ping(ctx context.Context) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/ping", nil)
	if err != nil {
		return false, fmt.Errorf("构造 ping 请求失败：%w", err)
	}
	resp, err := c.follow.Do(req)
	if err != nil {
		return false, fmt.Errorf("ping 请求失败：%w", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode/100 == 2, nil
}

// Health 获取服务端健康信息。返回的结构由服务端定义，这里只做透传。
// 非 2xx 时向 stderr 打印响应并返回 (nil, nil)，调用方需检查 nil。
func (c *Client) Health(ctx context.Context) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/health", nil)
	if err != nil {
		return nil, fmt.Errorf("构造 health 请求失败：%w", err)
	}
	resp, err := c.follow.Do(req)
	if err != nil {
		return nil, fmt.Errorf("health 请求失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		logResponse("health", resp)
		return nil, nil
	}
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("解析 health JSON 失败：%w", err)
	}
	return out, nil
}

// Oneshot 发起一次一次性测量。duration 为 nil 时不带任何查询参数，
// 由服务端采用默认时长。非 2xx 返回 (nil, nil)。
func (c *Client) Oneshot(ctx context.Context, duration *time.Duration) (*model.Measurement, error) {
	rawURL := c.baseURL + "/v1/energy"
	if duration != nil {
		q := url.Values{}
		q.Set("duration", strconv.FormatInt(duration.Milliseconds(), 10))
		rawURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 oneshot 请求失败：%w", err)
	}
	resp, err := c.follow.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oneshot 请求失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		logResponse("oneshot", resp)
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取 oneshot 响应失败：%w", err)
	}
	return model.ParseMeasurement(body)
}

// NewCampaign 创建一个新的 campaign，不跟随重定向：
// 成功要求响应为 3xx 且带 Location 头。Location 为绝对地址时原样使用，
// 否则拼接到 baseURL 上。创建过程不会对新资源发起 GET。
// 非重定向响应返回 (nil, nil)。
func (c *Client) NewCampaign(ctx context.Context) (*Campaign, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/energy", nil)
	if err != nil {
		return nil, fmt.Errorf("构造 campaign 创建请求失败：%w", err)
	}
	resp, err := c.noFollow.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campaign 创建请求失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 3 {
		logResponse("创建 campaign", resp)
		return nil, nil
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		logResponse("创建 campaign", resp)
		return nil, nil
	}

	target := loc
	if u, err := url.Parse(loc); err != nil || !u.IsAbs() {
		target = c.baseURL + loc
	}
	return newCampaign(target, c.follow), nil
}

// NewCampaign2 创建一个新的 campaign，跟随重定向：
// 成功要求重定向链的最终响应为 2xx，campaign 绑定到最终地址。
// 与 NewCampaign 的差异可观察：这种方式会在创建过程中对新资源发起一次 GET。
func (c *Client) NewCampaign2(ctx context.Context) (*Campaign, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/energy", nil)
	if err != nil {
		return nil, fmt.Errorf("构造 campaign 创建请求失败：%w", err)
	}
	resp, err := c.follow.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campaign 创建请求失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		logResponse("创建 campaign", resp)
		return nil, nil
	}
	return newCampaign(resp.Request.URL.String(), c.follow), nil
}

// logResponse 把应用层失败的响应打到 stderr，正文最多截取 4096 字节。
func logResponse(op string, resp *http.Response) {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	fmt.Fprintf(os.Stderr, "%s 失败：status=%s body=%s\n", op, resp.Status, string(b))
}

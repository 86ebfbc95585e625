package mongeu

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync/atomic"

	"mongeu/pkg/model"
)

// ErrReleased 表示 campaign 已被释放，不能再轮询。
var ErrReleased = errors.New("campaign 已释放")

// Campaign 代表服务端的一个测量 campaign，绑定到创建时解析出的资源地址。
// url 创建后不变。服务端资源的删除权归本对象，且最多执行一次。
// 不支持并发使用同一个 Campaign，调用方需自行串行化。
type Campaign struct {
	url      string
	http     *http.Client
	released atomic.Bool
}

func newCampaign(url string, hc *http.Client) *Campaign {
	return &Campaign{url: url, http: hc}
}

// URL 返回 campaign 绑定的资源地址。
func (cp *Campaign) URL() string {
	return cp.url
}

// Get 获取该 campaign 当前的测量值。每次调用都是独立的快照。
// 非 2xx 时向 stderr 打印响应并返回 (nil, nil)。
func (cp *Campaign) Get(ctx context.Context) (*model.Measurement, error) {
	if cp.released.Load() {
		return nil, ErrReleased
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, cp.url, nil)
	if err != nil {
		return nil, fmt.Errorf("构造 campaign 轮询请求失败：%w", err)
	}
	resp, err := cp.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("campaign 轮询失败：%w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		logResponse("轮询 campaign", resp)
		return nil, nil
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取 campaign 响应失败：%w", err)
	}
	return model.ParseMeasurement(body)
}

// Close 释放服务端资源：对绑定地址发起 DELETE，响应不检查。
// 恰好执行一次，重复调用是空操作。调用方应在拿到 Campaign 后
// 立刻 defer Close，保证任何退出路径都会释放。
// 释放发生在清理阶段，失败只记录日志，不作为错误向上传播。
func (cp *Campaign) Close() error {
	if !cp.released.CompareAndSwap(false, true) {
		return nil
	}

	// 不带调用方的 ctx：清理动作不应因外层取消而被跳过。
	req, err := http.NewRequest(http.MethodDelete, cp.url, nil)
	if err != nil {
		log.Printf("构造 campaign 删除请求失败：%v", err)
		return nil
	}
	resp, err := cp.http.Do(req)
	if err != nil {
		log.Printf("释放 campaign 失败：%v", err)
		return nil
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return nil
}

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"mongeu/internal/server/campaign"
	"mongeu/internal/server/device"
)

// version 对应健康信息里上报的服务端版本号。
const version = "0.3.0-sim"

type Handlers struct {
	devices        *device.Set
	campaigns      *campaign.Registry
	oneshotEnabled bool
	oneshotDefault time.Duration
}

func NewHandlers(devices *device.Set, campaigns *campaign.Registry, oneshotEnabled bool, oneshotDefault time.Duration) *Handlers {
	if oneshotDefault <= 0 {
		oneshotDefault = 500 * time.Millisecond
	}
	return &Handlers{
		devices:        devices,
		campaigns:      campaigns,
		oneshotEnabled: oneshotEnabled,
		oneshotDefault: oneshotDefault,
	}
}

func (h *Handlers) Ping(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h *Handlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"device_count":    h.devices.Count(),
		"device_names":    h.devices.Names(),
		"version":         version,
		"driver_version":  "simulated",
		"nvml_version":    "simulated",
		"campaigns":       h.campaigns.Len(),
		"oneshot_enabled": h.oneshotEnabled,
	})
}

// Oneshot 阻塞指定时长后返回该窗口内的测量。
func (h *Handlers) Oneshot(c *gin.Context) {
	if !h.oneshotEnabled {
		c.JSON(http.StatusNotFound, gin.H{"error": "oneshot 已禁用"})
		return
	}

	d := h.oneshotDefault
	if raw := c.Query("duration"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || ms <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "duration 参数非法"})
			return
		}
		d = time.Duration(ms) * time.Millisecond
	}

	select {
	case <-time.After(d):
	case <-c.Request.Context().Done():
		return
	}
	c.JSON(http.StatusOK, h.devices.Measure(d))
}

// CreateCampaign 注册一个新 campaign 并重定向到其资源地址。
func (h *Handlers) CreateCampaign(c *gin.Context) {
	id := h.campaigns.Create()
	c.Redirect(http.StatusSeeOther, fmt.Sprintf("/v1/energy/%d", id))
}

func (h *Handlers) GetCampaign(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign id 非法"})
		return
	}
	start, ok := h.campaigns.Start(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign 不存在"})
		return
	}
	c.JSON(http.StatusOK, h.devices.Measure(time.Since(start)))
}

func (h *Handlers) DeleteCampaign(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "campaign id 非法"})
		return
	}
	if !h.campaigns.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "campaign 不存在"})
		return
	}
	c.Status(http.StatusNoContent)
}

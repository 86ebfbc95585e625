package api

import (
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"mongeu/internal/server/campaign"
	"mongeu/internal/server/device"
	"mongeu/pkg/model"
)

func newRouter(oneshotEnabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandlers(device.NewSet(2), campaign.NewRegistry(0, 0), oneshotEnabled, 10*time.Millisecond)
	r := gin.New()
	v1 := r.Group("/v1")
	{
		v1.GET("/ping", h.Ping)
		v1.GET("/health", h.Health)
		v1.GET("/energy", h.Oneshot)
		v1.POST("/energy", h.CreateCampaign)
		v1.GET("/energy/:id", h.GetCampaign)
		v1.DELETE("/energy/:id", h.DeleteCampaign)
	}
	return r
}

func TestPing(t *testing.T) {
	r := newRouter(true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/ping", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestHealth(t *testing.T) {
	r := newRouter(true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	body := w.Body.String()
	for _, key := range []string{"device_count", "device_names", "version", "driver_version", "nvml_version", "campaigns", "oneshot_enabled"} {
		if !regexp.MustCompile(`"` + key + `"`).MatchString(body) {
			t.Errorf("health 缺少字段 %s：%s", key, body)
		}
	}
}

func TestOneshot(t *testing.T) {
	r := newRouter(true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/energy?duration=20", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	m, err := model.ParseMeasurement(w.Body.Bytes())
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if m.Duration != 20 {
		t.Errorf("duration=%d", m.Duration)
	}
	if len(m.Devices) != 2 {
		t.Errorf("devices=%d", len(m.Devices))
	}
}

func TestOneshotBadDuration(t *testing.T) {
	r := newRouter(true)
	for _, q := range []string{"duration=abc", "duration=0", "duration=-5"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/energy?"+q, nil))
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status=%d", q, w.Code)
		}
	}
}

func TestOneshotDisabled(t *testing.T) {
	r := newRouter(false)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/energy", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCampaignLifecycle(t *testing.T) {
	r := newRouter(true)

	// 创建：303 + Location
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/energy", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status=%d", w.Code)
	}
	loc := w.Header().Get("Location")
	if !regexp.MustCompile(`^/v1/energy/\d+$`).MatchString(loc) {
		t.Fatalf("location=%q", loc)
	}

	// 轮询：测量随时间单调不减
	poll := func() *model.Measurement {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, loc, nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status=%d", w.Code)
		}
		m, err := model.ParseMeasurement(w.Body.Bytes())
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		return m
	}
	first := poll()
	time.Sleep(20 * time.Millisecond)
	second := poll()
	if second.Duration < first.Duration {
		t.Errorf("duration 倒退：%d -> %d", first.Duration, second.Duration)
	}
	for i := range first.Devices {
		if second.Devices[i].Energy < first.Devices[i].Energy {
			t.Errorf("device %d energy 倒退：%d -> %d", i, first.Devices[i].Energy, second.Devices[i].Energy)
		}
	}

	// 删除：204，之后 404
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, loc, nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, loc, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, loc, nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
}

func TestCampaignUnknown(t *testing.T) {
	r := newRouter(true)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/energy/999", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/energy/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", w.Code)
	}
}

package model

import (
	"strings"
	"testing"
)

func TestParseMeasurement(t *testing.T) {
	body := `{"duration": 1000, "devices": [{"id": 0, "energy": 500}, {"id": 1, "energy": 300}]}`
	m, err := ParseMeasurement([]byte(body))
	if err != nil {
		t.Fatalf("ParseMeasurement failed: %v", err)
	}
	if m.Duration != 1000 {
		t.Errorf("duration=%d", m.Duration)
	}
	if len(m.Devices) != 2 {
		t.Fatalf("devices=%d", len(m.Devices))
	}
	// 顺序必须与输入保持一致
	if m.Devices[0].ID != 0 || m.Devices[0].Energy != 500 {
		t.Errorf("devices[0]=%+v", m.Devices[0])
	}
	if m.Devices[1].ID != 1 || m.Devices[1].Energy != 300 {
		t.Errorf("devices[1]=%+v", m.Devices[1])
	}
}

func TestParseMeasurementEmptyDevices(t *testing.T) {
	m, err := ParseMeasurement([]byte(`{"duration": 42, "devices": []}`))
	if err != nil {
		t.Fatalf("ParseMeasurement failed: %v", err)
	}
	if len(m.Devices) != 0 {
		t.Errorf("devices=%d", len(m.Devices))
	}
}

func TestParseMeasurementMissingDevices(t *testing.T) {
	_, err := ParseMeasurement([]byte(`{"duration": 1000}`))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "devices") {
		t.Errorf("err=%v", err)
	}
}

func TestParseMeasurementMissingDuration(t *testing.T) {
	_, err := ParseMeasurement([]byte(`{"devices": []}`))
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestParseMeasurementNonIntegral(t *testing.T) {
	cases := []string{
		`{"duration": 10.5, "devices": []}`,
		`{"duration": "1000", "devices": []}`,
		`{"duration": 1000, "devices": [{"id": 0}]}`,
		`{"duration": 1000, "devices": [{"energy": 500}]}`,
		`{"duration": 1000, "devices": [{"id": 0, "energy": "500"}]}`,
	}
	for _, body := range cases {
		if _, err := ParseMeasurement([]byte(body)); err == nil {
			t.Errorf("expected error for %s", body)
		}
	}
}

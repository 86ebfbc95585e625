package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DeviceData 是单个设备在某一时间点的能耗数据，energy 单位为 mJ。
type DeviceData struct {
	ID     int   `json:"id"`
	Energy int64 `json:"energy"`
}

// Measurement 是跨多个设备的一次测量，duration 单位为 ms。
// devices 保持服务端返回的顺序，不做排序。
type Measurement struct {
	Duration int64        `json:"duration"`
	Devices  []DeviceData `json:"devices"`
}

// ParseMeasurement 严格解析服务端返回的 measurement JSON。
// duration 与 devices 均为必填字段；devices 可以为空数组；
// 每个设备条目必须同时带有整数 id 与 energy。
// 字段缺失或类型不符时返回解析错误，与 HTTP 层面的失败区分开。
func ParseMeasurement(data []byte) (*Measurement, error) {
	var raw struct {
		Duration *json.Number `json:"duration"`
		Devices  *[]struct {
			ID     *json.Number `json:"id"`
			Energy *json.Number `json:"energy"`
		} `json:"devices"`
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("解析 measurement JSON 失败：%w", err)
	}

	duration, err := intField(raw.Duration, "duration")
	if err != nil {
		return nil, err
	}
	if raw.Devices == nil {
		return nil, fmt.Errorf("measurement 缺少 devices 字段")
	}

	m := &Measurement{
		Duration: duration,
		Devices:  make([]DeviceData, 0, len(*raw.Devices)),
	}
	for i, d := range *raw.Devices {
		id, err := intField(d.ID, "id")
		if err != nil {
			return nil, fmt.Errorf("devices[%d]：%w", i, err)
		}
		energy, err := intField(d.Energy, "energy")
		if err != nil {
			return nil, fmt.Errorf("devices[%d]：%w", i, err)
		}
		m.Devices = append(m.Devices, DeviceData{ID: int(id), Energy: energy})
	}
	return m, nil
}

func intField(n *json.Number, name string) (int64, error) {
	if n == nil {
		return 0, fmt.Errorf("measurement 缺少 %s 字段", name)
	}
	v, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("measurement 字段 %s 不是整数：%w", name, err)
	}
	return v, nil
}

package device

import (
	"fmt"
	"time"

	"mongeu/pkg/model"
)

// Set 是一组模拟设备。每个设备以固定标称功率持续耗能，
// 同一时间窗口内读数随时间线性增长，因此单调不减。
type Set struct {
	names   []string
	powerMW []int64
}

func NewSet(n int) *Set {
	if n <= 0 {
		n = 1
	}
	s := &Set{
		names:   make([]string, 0, n),
		powerMW: make([]int64, 0, n),
	}
	for i := 0; i < n; i++ {
		s.names = append(s.names, fmt.Sprintf("Simulated GPU %d", i))
		// 功率逐台错开，便于区分各设备的读数
		s.powerMW = append(s.powerMW, 150000+int64(i)*25000)
	}
	return s
}

func (s *Set) Count() int {
	return len(s.names)
}

func (s *Set) Names() []string {
	return append([]string(nil), s.names...)
}

// Measure 返回长度为 elapsed 的时间窗口内的测量。
// energy(mJ) = power(mW) × elapsed(s)。
func (s *Set) Measure(elapsed time.Duration) *model.Measurement {
	if elapsed < 0 {
		elapsed = 0
	}
	ms := elapsed.Milliseconds()
	m := &model.Measurement{
		Duration: ms,
		Devices:  make([]model.DeviceData, 0, len(s.powerMW)),
	}
	for i, p := range s.powerMW {
		m.Devices = append(m.Devices, model.DeviceData{
			ID:     i,
			Energy: p * ms / 1000,
		})
	}
	return m
}

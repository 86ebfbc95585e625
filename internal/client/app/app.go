package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/olekukonko/tablewriter"

	"mongeu/internal/client/mongeu"
	"mongeu/internal/store"
	"mongeu/internal/store/duckdb"
	"mongeu/internal/store/sqlite"
	"mongeu/pkg/model"
)

func Run(cfg Config) error {
	ctx := context.Background()
	cli := mongeu.New(cfg.URL, cfg.Timeout)

	switch cfg.Action {
	case "ping":
		return runPing(ctx, cli)
	case "health":
		return runHealth(ctx, cli)
	case "oneshot":
		return runOneshot(ctx, cli, cfg.Interval)
	case "campaign":
		return runCampaign(ctx, cli, cfg)
	case "history":
		return runHistory(ctx, cfg)
	default:
		return fmt.Errorf("未知 action：%s", cfg.Action)
	}
}

func runPing(ctx context.Context, cli *mongeu.Client) error {
	ok, err := cli.Ping(ctx)
	if err != nil {
		return fmt.Errorf("无法连接 API：%w", err)
	}
	if !ok {
		return fmt.Errorf("无法 ping API")
	}
	fmt.Println("pong")
	return nil
}

func runHealth(ctx context.Context, cli *mongeu.Client) error {
	h, err := cli.Health(ctx)
	if err != nil {
		return err
	}
	if h == nil {
		return fmt.Errorf("health 查询失败")
	}
	renderHealth(h)
	return nil
}

func runOneshot(ctx context.Context, cli *mongeu.Client, interval time.Duration) error {
	m, err := cli.Oneshot(ctx, &interval)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("oneshot 测量失败")
	}
	renderMeasurement(m)
	return nil
}

func runCampaign(ctx context.Context, cli *mongeu.Client, cfg Config) error {
	var st store.Store
	if cfg.DBPath != "" {
		var err error
		st, err = openStore(cfg)
		if err != nil {
			return err
		}
		defer st.Close()
	}

	var cp *mongeu.Campaign
	var err error
	switch cfg.CampaignMethod {
	case 1:
		cp, err = cli.NewCampaign(ctx)
	case 2:
		cp, err = cli.NewCampaign2(ctx)
	default:
		return fmt.Errorf("未知 campaign 创建方式：%d", cfg.CampaignMethod)
	}
	if err != nil {
		return err
	}
	if cp == nil {
		return fmt.Errorf("创建 campaign 失败")
	}
	defer cp.Close()

	for i := 0; i < cfg.Count; i++ {
		if i > 0 {
			time.Sleep(cfg.Interval)
		}
		m, err := cp.Get(ctx)
		if err != nil {
			return err
		}
		if m == nil {
			return fmt.Errorf("轮询 campaign 失败")
		}
		renderMeasurement(m)
		if st != nil {
			if err := record(ctx, st, cp.URL(), m); err != nil {
				return err
			}
		}
	}
	return nil
}

func runHistory(ctx context.Context, cfg Config) error {
	if cfg.DBPath == "" {
		return fmt.Errorf("history 需要 -db 参数")
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	rows, err := st.Recent(ctx, 200)
	if err != nil {
		return err
	}
	renderSamples(rows)
	return nil
}

func openStore(cfg Config) (store.Store, error) {
	switch cfg.DBDriver {
	case "sqlite":
		return sqlite.NewStore(cfg.DBPath)
	case "duckdb", "":
		return duckdb.NewStore(cfg.DBPath)
	default:
		return nil, fmt.Errorf("未知数据库类型：%s", cfg.DBDriver)
	}
}

func record(ctx context.Context, st store.Store, campaign string, m *model.Measurement) error {
	now := time.Now()
	for _, d := range m.Devices {
		sample := &store.Sample{
			RecordedAt: now,
			Campaign:   campaign,
			DurationMS: m.Duration,
			DeviceID:   d.ID,
			EnergyMJ:   d.Energy,
		}
		if err := st.Insert(ctx, sample); err != nil {
			return fmt.Errorf("记录测量失败：%w", err)
		}
	}
	return nil
}

func renderMeasurement(m *model.Measurement) {
	fmt.Printf("duration: %d ms\n", m.Duration)
	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader([]string{"Device", "Energy(mJ)"})
	t.SetAutoWrapText(false)
	t.SetRowLine(false)
	for _, d := range m.Devices {
		t.Append([]string{
			fmt.Sprintf("%d", d.ID),
			fmt.Sprintf("%d", d.Energy),
		})
	}
	t.Render()
}

func renderHealth(h map[string]any) {
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader([]string{"Key", "Value"})
	t.SetAutoWrapText(false)
	t.SetRowLine(false)
	for _, k := range keys {
		t.Append([]string{k, fmt.Sprintf("%v", h[k])})
	}
	t.Render()
}

func renderSamples(rows []store.Sample) {
	t := tablewriter.NewWriter(os.Stdout)
	t.SetHeader([]string{"Time", "Campaign", "Duration(ms)", "Device", "Energy(mJ)"})
	t.SetAutoWrapText(false)
	t.SetRowLine(false)
	for _, r := range rows {
		t.Append([]string{
			r.RecordedAt.Format(time.RFC3339),
			r.Campaign,
			fmt.Sprintf("%d", r.DurationMS),
			fmt.Sprintf("%d", r.DeviceID),
			fmt.Sprintf("%d", r.EnergyMJ),
		})
	}
	t.Render()
}

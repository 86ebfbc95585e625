package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"mongeu/internal/store"
)

type Store struct {
	db  *sql.DB
	ins *sql.Stmt
}

func NewStore(path string) (*Store, error) {
	if path == "" {
		path = "./energy.sqlite"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开 SQLite 失败：%w", err)
	}
	s := &Store{db: db}
	if err := s.init(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init() error {
	ddl := `
CREATE TABLE IF NOT EXISTS energy_samples (
	recorded_at TIMESTAMP,
	campaign    TEXT,
	duration_ms INTEGER,
	device_id   INTEGER,
	energy_mj   INTEGER
);
CREATE INDEX IF NOT EXISTS idx_energy_campaign ON energy_samples(campaign);
CREATE INDEX IF NOT EXISTS idx_energy_device   ON energy_samples(device_id);
`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("建表失败：%w", err)
	}
	stmt, err := s.db.Prepare(`
INSERT INTO energy_samples (
	recorded_at, campaign, duration_ms, device_id, energy_mj
) VALUES (?, ?, ?, ?, ?);
`)
	if err != nil {
		return fmt.Errorf("准备插入语句失败：%w", err)
	}
	s.ins = stmt
	return nil
}

func (s *Store) Insert(ctx context.Context, sample *store.Sample) error {
	if sample == nil {
		return fmt.Errorf("sample 为空")
	}
	_, err := s.ins.ExecContext(ctx,
		sample.RecordedAt,
		sample.Campaign,
		sample.DurationMS,
		sample.DeviceID,
		sample.EnergyMJ,
	)
	if err != nil {
		return fmt.Errorf("插入失败：%w", err)
	}
	return nil
}

func (s *Store) Recent(ctx context.Context, limit int) ([]store.Sample, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT recorded_at, campaign, duration_ms, device_id, energy_mj
FROM energy_samples
ORDER BY recorded_at DESC
LIMIT ?;
`, limit)
	if err != nil {
		return nil, fmt.Errorf("查询失败：%w", err)
	}
	defer rows.Close()

	out := make([]store.Sample, 0, 64)
	for rows.Next() {
		var r store.Sample
		if err := rows.Scan(
			&r.RecordedAt,
			&r.Campaign,
			&r.DurationMS,
			&r.DeviceID,
			&r.EnergyMJ,
		); err != nil {
			return nil, fmt.Errorf("读取结果失败：%w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("遍历结果失败：%w", err)
	}
	return out, nil
}

func (s *Store) Close() error {
	if s.ins != nil {
		_ = s.ins.Close()
	}
	return s.db.Close()
}

package main

import (
	"flag"
	"log"
	"os"
	"time"

	"mongeu/internal/client/app"
)

func main() {
	var cfg app.Config
	var intervalMS int
	flag.StringVar(&cfg.URL, "url", "", "Mongeu API 基础地址，如 http://node:80")
	flag.StringVar(&cfg.Action, "action", "", "操作：ping、health、oneshot、campaign、history")
	flag.IntVar(&cfg.CampaignMethod, "campaign-method", 1, "campaign 创建方式：1 读 Location，2 跟随重定向")
	flag.IntVar(&intervalMS, "interval", 500, "轮询间隔 / oneshot 时长（毫秒）")
	flag.IntVar(&cfg.Count, "count", 4, "campaign 轮询次数")
	flag.DurationVar(&cfg.Timeout, "timeout", 10*time.Second, "HTTP 超时")
	flag.StringVar(&cfg.DBDriver, "db-driver", "duckdb", "数据库类型：duckdb 或 sqlite")
	flag.StringVar(&cfg.DBPath, "db", "", "数据库文件路径，设置后记录轮询结果")
	flag.Parse()

	if cfg.Action == "" || (cfg.URL == "" && cfg.Action != "history") {
		flag.Usage()
		os.Exit(2)
	}
	cfg.Interval = time.Duration(intervalMS) * time.Millisecond

	if err := app.Run(cfg); err != nil {
		log.Printf("client 失败：%v", err)
		os.Exit(1)
	}
}

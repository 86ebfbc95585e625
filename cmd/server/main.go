package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mongeu/internal/server/app"
)

func main() {
	var cfg app.Config
	var oneshotMS int
	flag.StringVar(&cfg.ListenAddr, "listen", ":8080", "监听地址")
	flag.IntVar(&cfg.Devices, "devices", 2, "模拟设备数量")
	flag.BoolVar(&cfg.OneshotEnabled, "oneshot", true, "是否开放 oneshot 测量")
	flag.IntVar(&oneshotMS, "oneshot-duration", 500, "oneshot 默认时长（毫秒）")
	flag.DurationVar(&cfg.GCMinAge, "gc-min-age", 24*time.Hour, "campaign 清理的最小年龄")
	flag.IntVar(&cfg.GCMinCampaigns, "gc-min-campaigns", 1<<16, "触发清理的 campaign 数量下限")
	flag.Parse()

	cfg.OneshotDefault = time.Duration(oneshotMS) * time.Millisecond

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := app.NewServer(cfg)
	if err != nil {
		log.Fatalf("server 初始化失败：%v", err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Printf("server 监听：%s", cfg.ListenAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server 运行失败：%v", err)
	}
}

package main

import (
	"time"

	"dice-duel-be/internal/api/http"
	"dice-duel-be/internal/config"
	"dice-duel-be/internal/identity"
	"dice-duel-be/internal/logger"
	"dice-duel-be/internal/service"
	"dice-duel-be/internal/state"
)

func main() {
	// 加载配置
	cfg := config.InitConfig()

	// 初始化日志器
	logger.InitLogger(cfg.LogLevel)

	// 组装应用状态
	gameSvc := service.NewGameService(time.Duration(cfg.WaitingTTLMin) * time.Minute)
	defer gameSvc.Close()

	appState := state.NewAppState(
		cfg,
		gameSvc,
		identity.NewProvider(
			cfg.SessionCookie,
			time.Duration(cfg.SessionExpiryMin)*time.Minute,
		),
	)

	// 启动服务器
	http.RunServer(appState)
}

package main

import (
	"log"

	"github.com/blues/wcs/internal/agent"
	"github.com/blues/wcs/internal/chain"
	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/database"
	"github.com/blues/wcs/internal/identity"
	"github.com/blues/wcs/internal/ipfs"
	"github.com/blues/wcs/internal/logger"
	"github.com/blues/wcs/internal/router"
	"github.com/blues/wcs/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链上客户端
	chainClient, err := chain.Init(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain client: %v", err)
	}

	// 初始化IPFS与身份目录
	ipfsSvc := ipfs.New(cfg.Ipfs)
	identitySvc := identity.New(db)
	agents := agent.New(cfg.Agent, ipfsSvc)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, chainClient, ipfsSvc, identitySvc, agents, cfg)

	// 启动定时任务
	manager := task.Start(chainClient, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}

package task

import (
	"context"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// Gateway 定时任务需要的链上操作
type Gateway interface {
	CanWrite() bool
	CommitmentCount(ctx context.Context) (int64, error)
	CanSettle(ctx context.Context, commitId int64) (bool, error)
	MaxBatchSize(ctx context.Context) (int, error)
	BatchSettle(ctx context.Context, commitIds []int64) (string, error)
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	gw        Gateway
	config    *config.Config
}

// NewManager 创建新的任务管理器
func NewManager(gw Gateway, cfg *config.Config) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		gw:        gw,
		config:    cfg,
	}
}

// Start 启动任务管理器
func Start(gw Gateway, cfg *config.Config) *Manager {
	manager := NewManager(gw, cfg)

	// 注册所有任务
	manager.RegisterJobs()

	// 启动调度器
	manager.scheduler.Start()

	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	if !m.config.Task.Enabled {
		logger.Info("Scheduled tasks disabled by configuration")
		return
	}

	// 注册自动结算任务
	m.RegisterSettlementJob()
}

// RegisterSettlementJob 注册自动结算任务
func (m *Manager) RegisterSettlementJob() {
	job := NewSettlementJob(m.gw, m.config)

	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}

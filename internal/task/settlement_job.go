package task

import (
	"context"
	"time"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/logger"
	"github.com/go-co-op/gocron/v2"
)

// SettlementJob 自动结算任务。每个周期全量扫描链上承诺，
// 把可结算的ID按合约上限分批提交。任务本身无状态，一个周期
// 失败了，下个周期会重新发现同样的待结算集合。
type SettlementJob struct {
	gw     Gateway
	config *config.Config
}

// NewSettlementJob 创建自动结算任务
func NewSettlementJob(gw Gateway, cfg *config.Config) *SettlementJob {
	return &SettlementJob{
		gw:     gw,
		config: cfg,
	}
}

// GetName 获取任务名称
func (j *SettlementJob) GetName() string {
	return "auto_settlement"
}

// GetSchedule 获取调度配置
func (j *SettlementJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *SettlementJob) Execute() {
	if !j.gw.CanWrite() {
		logger.Warn("Settlement task skipped: relayer key not configured, running read-only")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	logger.Info("Starting auto settlement task")

	eligible, err := j.collectEligible(ctx)
	if err != nil {
		logger.Error("Failed to scan for settlable commitments: %v", err)
		return
	}
	if len(eligible) == 0 {
		logger.Info("Auto settlement task completed. Nothing to settle")
		return
	}

	maxBatch, err := j.gw.MaxBatchSize(ctx)
	if err != nil {
		logger.Error("Failed to read max batch size: %v", err)
		return
	}

	settledCount := 0
	for _, batch := range partition(eligible, maxBatch) {
		txHash, err := j.gw.BatchSettle(ctx, batch)
		if err != nil {
			// 一批失败不影响后面的批次，失败的ID下个周期重试
			logger.Error("Failed to settle batch %v: %v", batch, err)
			continue
		}
		logger.Info("Settled %d commitments in tx %s", len(batch), txHash)
		settledCount += len(batch)
	}

	logger.Info("Auto settlement task completed. Settled %d of %d commitments", settledCount, len(eligible))
}

// collectEligible 顺序扫描所有承诺，返回可结算的ID。
// 合约没有待结算索引，只能线性扫。
func (j *SettlementJob) collectEligible(ctx context.Context) ([]int64, error) {
	count, err := j.gw.CommitmentCount(ctx)
	if err != nil {
		return nil, err
	}

	var eligible []int64
	for id := int64(0); id < count; id++ {
		ok, err := j.gw.CanSettle(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			eligible = append(eligible, id)
		}
	}
	return eligible, nil
}

// partition 把ID列表切成不超过size的批次
func partition(ids []int64, size int) [][]int64 {
	if size <= 0 {
		size = 1
	}
	var batches [][]int64
	for len(ids) > size {
		batches = append(batches, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		batches = append(batches, ids)
	}
	return batches
}

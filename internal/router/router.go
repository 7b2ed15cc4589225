package router

import (
	"github.com/blues/wcs/internal/agent"
	"github.com/blues/wcs/internal/chain"
	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/handler"
	"github.com/blues/wcs/internal/identity"
	"github.com/blues/wcs/internal/ipfs"
	"github.com/blues/wcs/internal/logic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, chainClient *chain.Client, ipfsSvc *ipfs.Service, identitySvc *identity.Service, agents *agent.Service, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())
	r.Use(requestIdMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":   "ok",
			"service":  "work-commitment-service",
			"canWrite": chainClient.CanWrite(),
		})
	})

	serverLogic := logic.NewServerLogic(chainClient, cfg.Chain.TokenDecimal)
	commitmentLogic := logic.NewCommitmentLogic(chainClient, identitySvc, ipfsSvc, db, cfg.Chain.TokenAddr, cfg.Chain.TokenDecimal)
	disputeLogic := logic.NewDisputeLogic(chainClient)
	settlementLogic := logic.NewSettlementLogic(chainClient)

	// 服务器账户
	serverHandler := handler.NewServerHandler(serverLogic)
	commitmentHandler := handler.NewCommitmentHandler(commitmentLogic)
	server := r.Group("/server")
	{
		server.POST("", serverHandler.Register)
		server.POST("/:guildId/deposit", serverHandler.Deposit)
		server.POST("/:guildId/withdraw", serverHandler.Withdraw)
		server.GET("/:guildId", serverHandler.Get)
		server.GET("/:guildId/commitments", commitmentHandler.ListByServer)
	}

	// 承诺生命周期
	commit := r.Group("/commit")
	{
		commit.POST("", commitmentHandler.Create)
		commit.POST("/:id/submit", commitmentHandler.Submit)
		commit.GET("/:id", commitmentHandler.Get)
	}
	r.GET("/contributor/:address/commitments", commitmentHandler.ListByContributor)

	// 争议
	disputeHandler := handler.NewDisputeHandler(disputeLogic)
	dispute := r.Group("/dispute")
	{
		dispute.POST("/:commitId/quote", disputeHandler.Quote)
		dispute.POST("/:commitId/open", disputeHandler.Open)
		dispute.GET("/:commitId", disputeHandler.Get)
		// 仲裁是平台动作，需要管理密钥
		dispute.POST("/:commitId/resolve", adminMiddleware(cfg.Admin.Secret), disputeHandler.Resolve)
	}

	// 结算
	settlementHandler := handler.NewSettlementHandler(settlementLogic)
	settlement := r.Group("/settlement")
	{
		settlement.POST("/batch", settlementHandler.BatchSettle)
		settlement.GET("/pending", settlementHandler.Pending)
	}
	r.GET("/admin/stats", settlementHandler.Stats)

	// 用户名绑定
	userHandler := handler.NewUserHandler(identitySvc)
	user := r.Group("/user")
	{
		user.POST("", userHandler.Upsert)
		user.GET("/:username", userHandler.Get)
		user.DELETE("/:username", userHandler.Delete)
	}
	r.GET("/wallet/:address", userHandler.GetByWallet)

	// 成果验收
	agentHandler := handler.NewAgentHandler(agents, ipfsSvc)
	agentGroup := r.Group("/agent")
	{
		agentGroup.POST("/github", agentHandler.AnalyzeCode)
		agentGroup.POST("/design", agentHandler.AnalyzeDesign)
		agentGroup.POST("/document", agentHandler.AnalyzeDocument)
		agentGroup.GET("/:cid", agentHandler.GetEvidence)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Admin-Secret")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// 请求ID中间件，没带就补一个
func requestIdMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader("X-Request-Id")
		if requestId == "" {
			requestId = uuid.NewString()
		}
		c.Set("requestId", requestId)
		c.Header("X-Request-Id", requestId)
		c.Next()
	}
}

// 管理密钥中间件
func adminMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || c.GetHeader("X-Admin-Secret") != secret {
			c.AbortWithStatusJSON(403, gin.H{
				"success": false,
				"message": "admin secret required",
			})
			return
		}
		c.Next()
	}
}

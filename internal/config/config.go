package config

import (
	"github.com/blues/wcs/internal/logger"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Chain    ChainConfig    `mapstructure:"chain"`
	Ipfs     IpfsConfig     `mapstructure:"ipfs"`
	Agent    AgentConfig    `mapstructure:"agent"`
	Task     TaskConfig     `mapstructure:"task"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

// ChainConfig 托管合约所在链配置
type ChainConfig struct {
	ChainId      int64  `mapstructure:"chain_id"`      // 链ID
	RpcUrl       string `mapstructure:"rpc_url"`       // RPC节点URL
	PrivateKey   string `mapstructure:"private_key"`   // relayer私钥，留空则进入只读模式
	ContractAddr string `mapstructure:"contract_addr"` // 托管合约地址
	TokenAddr    string `mapstructure:"token_addr"`    // 结算代币地址
	TokenDecimal int    `mapstructure:"token_decimal"` // 代币精度
	TimeoutSec   int    `mapstructure:"timeout_sec"`   // 单次RPC超时（秒）
}

// IpfsConfig 证据存储（Pinata）配置
type IpfsConfig struct {
	ApiUrl    string `mapstructure:"api_url"`
	ApiKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"`
	Gateway   string `mapstructure:"gateway"`
}

// AgentConfig 验收代理配置
type AgentConfig struct {
	GeminiApiKey string `mapstructure:"gemini_api_key"`
	GithubToken  string `mapstructure:"github_token"`
}

type TaskConfig struct {
	Interval int  `mapstructure:"interval"` // 秒
	Enabled  bool `mapstructure:"enabled"`
}

type AdminConfig struct {
	Secret string `mapstructure:"secret"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // 日志级别: debug, info, warn, error, fatal
	Output string `mapstructure:"output"` // 输出目标: stdout, file
	File   string `mapstructure:"file"`   // 日志文件路径（当output为file时使用）
}

// GetLevel 实现 logger.LogConfig 接口
func (l LogConfig) GetLevel() string {
	return l.Level
}

// GetOutput 实现 logger.LogConfig 接口
func (l LogConfig) GetOutput() string {
	return l.Output
}

// GetFile 实现 logger.LogConfig 接口
func (l LogConfig) GetFile() string {
	return l.File
}

func Load() *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/wcs")

	// 设置默认值
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.mode", "debug")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "wcs")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("chain.chain_id", 84532)
	viper.SetDefault("chain.rpc_url", "https://sepolia.base.org")
	viper.SetDefault("chain.token_decimal", 18)
	viper.SetDefault("chain.timeout_sec", 15)
	viper.SetDefault("ipfs.api_url", "https://api.pinata.cloud")
	viper.SetDefault("ipfs.gateway", "https://gateway.pinata.cloud/ipfs")
	viper.SetDefault("task.interval", 60)
	viper.SetDefault("task.enabled", true)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.file", "logs/app.log")

	// 自动读取环境变量
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		logger.Warn("Warning: Could not read config file: %v", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		logger.Fatal("Unable to decode config into struct: %v", err)
	}

	return &config
}

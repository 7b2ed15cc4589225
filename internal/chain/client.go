package chain

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/blues/wcs/internal/config"
	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/logger"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

var privateKeyPattern = regexp.MustCompile(`^[a-fA-F0-9]{64}$`)

// Client 托管合约网关。所有写操作由同一个relayer私钥签名，
// 并通过writeMu串行化：单写者假设是createCommitment之后
// 用commitmentCount-1推导新ID的前提，不能被并发写打破。
type Client struct {
	rpc          *ethclient.Client
	bound        *bind.BoundContract
	contractABI  abi.ABI
	contractAddr common.Address
	chainId      *big.Int
	privateKey   *ecdsa.PrivateKey // 为nil时只读
	timeout      time.Duration

	writeMu sync.Mutex
}

// Init 初始化合约网关
func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接链RPC
	rpc, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to chain rpc: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse escrow ABI: %w", err)
	}

	contractAddr := common.HexToAddress(cfg.ContractAddr)

	c := &Client{
		rpc:          rpc,
		bound:        bind.NewBoundContract(contractAddr, parsedABI, rpc, rpc, rpc),
		contractABI:  parsedABI,
		contractAddr: contractAddr,
		chainId:      big.NewInt(cfg.ChainId),
		timeout:      time.Duration(cfg.TimeoutSec) * time.Second,
	}
	if c.timeout <= 0 {
		c.timeout = 15 * time.Second
	}

	// 解析relayer私钥，无效或缺失时进入只读模式
	key := strings.TrimPrefix(cfg.PrivateKey, "0x")
	if key == "" {
		logger.Info("Chain gateway in read-only mode (no relayer key)")
	} else if !privateKeyPattern.MatchString(key) {
		logger.Warn("Relayer private key appears invalid - running in read-only mode")
	} else {
		privateKey, err := crypto.HexToECDSA(key)
		if err != nil {
			return nil, fmt.Errorf("failed to parse relayer private key: %w", err)
		}
		c.privateKey = privateKey
		logger.Info("Chain gateway connected with relayer %s", c.RelayerAddress())
	}

	logger.Info("Escrow contract initialized at %s (chain id %d)", cfg.ContractAddr, cfg.ChainId)
	return c, nil
}

// CanWrite 是否具备发起交易的能力
func (c *Client) CanWrite() bool {
	return c.privateKey != nil
}

// RelayerAddress 获取relayer地址
func (c *Client) RelayerAddress() string {
	if c.privateKey == nil {
		return ""
	}
	return crypto.PubkeyToAddress(c.privateKey.PublicKey).Hex()
}

// ContractAddress 获取合约地址
func (c *Client) ContractAddress() string {
	return c.contractAddr.Hex()
}

// ChainTime 读取最新区块时间戳。deadline等时间计算必须基于链时间
// 而非本地时钟，否则与分叉/测试网的区块时间偏差会导致创建即过期。
func (c *Client) ChainTime(ctx context.Context) (int64, error) {
	var ts int64
	err := withRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		header, err := c.rpc.HeaderByNumber(callCtx, nil)
		if err != nil {
			return classifyCallError(err)
		}
		ts = int64(header.Time)
		return nil
	})
	return ts, err
}

// call 只读调用，传输层错误自动重试
func (c *Client) call(ctx context.Context, out *[]interface{}, method string, args ...interface{}) error {
	return withRetry(ctx, func() error {
		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.bound.Call(&bind.CallOpts{Context: callCtx}, out, method, args...); err != nil {
			return classifyCallError(err)
		}
		return nil
	})
}

// transactLocked 发送交易并等待上链，调用方必须已持有writeMu。
// 写操作不做自动重试：失败原因不明时重发可能重复执行资金转移，
// 调度器下个tick会基于新鲜的链状态自然重试。
func (c *Client) transactLocked(ctx context.Context, value *big.Int, method string, args ...interface{}) (string, error) {
	if !c.CanWrite() {
		return "", errs.New(errs.KindUnavailable, "write operations not available - no relayer key")
	}

	auth, err := bind.NewKeyedTransactorWithChainID(c.privateKey, c.chainId)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, "failed to build transactor", err)
	}
	auth.Context = ctx
	auth.Value = value

	tx, err := c.bound.Transact(auth, method, args...)
	if err != nil {
		return "", classifyCallError(err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()
	receipt, err := bind.WaitMined(waitCtx, c.rpc, tx)
	if err != nil {
		return "", errs.Wrap(errs.KindTransport, fmt.Sprintf("waiting for tx %s", tx.Hash().Hex()), err)
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return "", errs.Newf(errs.KindReverted, "%s reverted (tx %s)", method, tx.Hash().Hex())
	}

	return tx.Hash().Hex(), nil
}

// transact 加锁发送单笔交易
func (c *Client) transact(ctx context.Context, value *big.Int, method string, args ...interface{}) (string, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.transactLocked(ctx, value, method, args...)
}

// parseGuildId Discord guild id是数字字符串，合约里是uint256
func parseGuildId(guildId string) (*big.Int, error) {
	id, ok := new(big.Int).SetString(guildId, 10)
	if !ok || id.Sign() < 0 {
		return nil, errs.Newf(errs.KindValidation, "invalid guild id: %q", guildId)
	}
	return id, nil
}

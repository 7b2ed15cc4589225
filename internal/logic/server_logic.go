package logic

import (
	"context"

	"github.com/blues/wcs/internal/errs"
	"github.com/blues/wcs/internal/model"
)

// ServerLogic 服务器账户业务逻辑
type ServerLogic struct {
	gw       Gateway
	decimals int
}

// NewServerLogic 创建服务器账户业务逻辑
func NewServerLogic(gw Gateway, decimals int) *ServerLogic {
	return &ServerLogic{gw: gw, decimals: decimals}
}

// RegisterResult 注册结果
type RegisterResult struct {
	GuildId         string `json:"guildId"`
	TxHash          string `json:"txHash"`
	RegistrationFee string `json:"registrationFee"`
}

// Register 注册服务器账户，重复注册直接拒绝
func (s *ServerLogic) Register(ctx context.Context, guildId, adminId string) (*RegisterResult, error) {
	if guildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}
	if adminId == "" {
		return nil, errs.New(errs.KindValidation, "adminId is required")
	}

	existing, err := s.gw.GetServer(ctx, guildId)
	if err != nil {
		return nil, err
	}
	if existing.Exists() {
		return nil, errs.Newf(errs.KindAlreadyFinal, "server %s is already registered", guildId)
	}

	txHash, err := s.gw.RegisterServer(ctx, guildId, adminId)
	if err != nil {
		return nil, err
	}

	fee, err := s.gw.RegistrationFee(ctx)
	if err != nil {
		return nil, err
	}

	return &RegisterResult{
		GuildId:         guildId,
		TxHash:          txHash,
		RegistrationFee: fee.String(),
	}, nil
}

// DepositResult 充值结果
type DepositResult struct {
	TxHash     string `json:"txHash"`
	Amount     string `json:"amount"`
	NewBalance string `json:"newBalance"`
}

// Deposit 向服务器余额充值，amountTokens为人类可读数量
func (s *ServerLogic) Deposit(ctx context.Context, guildId, amountTokens string) (*DepositResult, error) {
	if _, err := s.requireServer(ctx, guildId); err != nil {
		return nil, err
	}

	amount, err := ToBaseUnits(amountTokens, s.decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, errs.New(errs.KindValidation, "amount must be positive")
	}

	txHash, err := s.gw.DepositToServer(ctx, guildId, amount)
	if err != nil {
		return nil, err
	}

	balance, err := s.gw.GetServerBalance(ctx, guildId)
	if err != nil {
		return nil, err
	}

	return &DepositResult{
		TxHash:     txHash,
		Amount:     amount.String(),
		NewBalance: balance.AvailableBalance,
	}, nil
}

// WithdrawResult 提现结果
type WithdrawResult struct {
	TxHash string `json:"txHash"`
	Amount string `json:"amount"`
	To     string `json:"to"`
}

// Withdraw 从服务器余额提现
func (s *ServerLogic) Withdraw(ctx context.Context, guildId, to, amountTokens string) (*WithdrawResult, error) {
	if !isAddress(to) {
		return nil, errs.New(errs.KindValidation, "invalid recipient address")
	}

	server, err := s.requireServer(ctx, guildId)
	if err != nil {
		return nil, err
	}

	amount, err := ToBaseUnits(amountTokens, s.decimals)
	if err != nil {
		return nil, err
	}
	if amount.Sign() <= 0 {
		return nil, errs.New(errs.KindValidation, "amount must be positive")
	}

	available, ok := newBigInt(server.AvailableBalance)
	if ok && amount.Cmp(available) > 0 {
		return nil, errs.Newf(errs.KindInsufficient,
			"insufficient balance: requested %s, available %s", amount, available)
	}

	txHash, err := s.gw.WithdrawFromServer(ctx, guildId, to, amount)
	if err != nil {
		return nil, err
	}

	return &WithdrawResult{
		TxHash: txHash,
		Amount: amount.String(),
		To:     to,
	}, nil
}

// Get 读取服务器账户信息
func (s *ServerLogic) Get(ctx context.Context, guildId string) (*model.ServerAccount, error) {
	return s.requireServer(ctx, guildId)
}

func (s *ServerLogic) requireServer(ctx context.Context, guildId string) (*model.ServerAccount, error) {
	if guildId == "" {
		return nil, errs.New(errs.KindValidation, "guildId is required")
	}

	server, err := s.gw.GetServer(ctx, guildId)
	if err != nil {
		return nil, err
	}
	if !server.Exists() {
		return nil, errs.Newf(errs.KindNotFound, "server %s is not registered", guildId)
	}
	return server, nil
}

package logic

import (
	"math/big"
)

// 质押比例，与合约常量一致（10%）
const baseStakeRatePercent = 10

// MirrorStake 客户端镜像的质押额公式：max(baseStake, amount * 10%)。
// 权威计算在链上（calculateStake），这里只用于展示和测试，不用于发起交易。
func MirrorStake(amount, baseStake *big.Int) *big.Int {
	pct := new(big.Int).Mul(amount, big.NewInt(baseStakeRatePercent))
	pct.Div(pct, big.NewInt(100))
	if pct.Cmp(baseStake) < 0 {
		return new(big.Int).Set(baseStake)
	}
	return pct
}

package logic

import (
	"math/big"
	"strings"

	"github.com/blues/wcs/internal/errs"
)

// ToBaseUnits 把人类可读的代币数量转换成最小单位整数。
// 超出精度的小数位一律截断，绝不向上取整：向上取整会导致
// 扣款比服务器余额校验多出一个亚单位。
func ToBaseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errs.New(errs.KindValidation, "amount is required")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, errs.New(errs.KindValidation, "amount must be positive")
	}

	intPart := amount
	fracPart := ""
	if i := strings.IndexByte(amount, '.'); i >= 0 {
		intPart = amount[:i]
		fracPart = amount[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return nil, errs.Newf(errs.KindValidation, "invalid amount: %q", amount)
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return nil, errs.Newf(errs.KindValidation, "invalid amount: %q", amount)
	}

	// 截断超出精度的小数位
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	value, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, errs.Newf(errs.KindValidation, "invalid amount: %q", amount)
	}
	return value, nil
}

// FromBaseUnits 最小单位整数转回人类可读数量，去掉无意义的尾零
func FromBaseUnits(base *big.Int, decimals int) string {
	s := base.String()
	if decimals == 0 {
		return s
	}
	if len(s) <= decimals {
		s = strings.Repeat("0", decimals-len(s)+1) + s
	}

	intPart := s[:len(s)-decimals]
	fracPart := strings.TrimRight(s[len(s)-decimals:], "0")
	if fracPart == "" {
		return intPart
	}
	return intPart + "." + fracPart
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

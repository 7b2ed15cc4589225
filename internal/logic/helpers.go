package logic

import (
	"math/big"
	"regexp"
)

var addressPattern = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)

func isAddress(s string) bool {
	return addressPattern.MatchString(s)
}

func newBigInt(s string) (*big.Int, bool) {
	return new(big.Int).SetString(s, 10)
}

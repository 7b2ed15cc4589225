package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误分类
type Kind int

const (
	KindUnknown      Kind = iota
	KindValidation        // 入参非法，不可重试
	KindNotFound          // 引用不存在（用户名、服务器、承诺）
	KindInsufficient      // 余额/质押不足
	KindTransport         // RPC/网络故障，可重试
	KindReverted          // 合约回滚，不可重试
	KindAlreadyFinal      // 已处于终态或已解决
	KindUnavailable       // 依赖未配置（无relayer私钥、IPFS未配置等）
)

// Error 携带分类的业务错误
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 创建分类错误
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf 创建带格式化消息的分类错误
func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并附加分类
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf 提取错误分类，未分类返回KindUnknown
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsRetryable 是否值得重试（仅传输层错误）
func IsRetryable(err error) bool {
	return KindOf(err) == KindTransport
}

// HTTPStatus 错误分类到HTTP状态码的映射
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindInsufficient:
		return http.StatusBadRequest
	case KindTransport:
		return http.StatusBadGateway
	case KindReverted:
		return http.StatusConflict
	case KindAlreadyFinal:
		return http.StatusConflict
	case KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

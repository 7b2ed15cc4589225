package model

// CommitmentState 承诺状态，与合约中的枚举一一对应
type CommitmentState uint8

const (
	StateCreated   CommitmentState = iota // 合约保留值，承诺创建即注资，实际不会出现
	StateFunded                           // 已注资
	StateSubmitted                        // 已提交成果
	StateDisputed                         // 争议中
	StateSettled                          // 已结算给贡献者
	StateRefunded                         // 已退回服务器
)

// String 状态名称
func (s CommitmentState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateFunded:
		return "funded"
	case StateSubmitted:
		return "submitted"
	case StateDisputed:
		return "disputed"
	case StateSettled:
		return "settled"
	case StateRefunded:
		return "refunded"
	default:
		return "unknown"
	}
}

// IsTerminal 是否为终态
func (s CommitmentState) IsTerminal() bool {
	return s == StateSettled || s == StateRefunded
}

// Commitment 链上承诺记录，金额字段为代币最小单位的十进制字符串
type Commitment struct {
	CommitId      int64           `json:"commitId"`
	Creator       string          `json:"creator"` // 始终为relayer地址，而非发起人
	Contributor   string          `json:"contributor"`
	Token         string          `json:"token"`
	Amount        string          `json:"amount"`
	Deadline      int64           `json:"deadline"`
	DisputeWindow int64           `json:"disputeWindow"`
	SpecCid       string          `json:"specCid"`
	EvidenceCid   string          `json:"evidenceCid"`
	State         CommitmentState `json:"state"`
	StateName     string          `json:"stateName"`
	CreatedAt     int64           `json:"createdAt"`
	SubmittedAt   int64           `json:"submittedAt"`
}

// Exists 承诺是否存在（不存在时合约返回零值记录）
func (c *Commitment) Exists() bool {
	return c.Creator != "" && c.Creator != ZeroAddress
}

// ZeroAddress 以太坊零地址
const ZeroAddress = "0x0000000000000000000000000000000000000000"

// ListFilter 承诺列表过滤条件
type ListFilter string

const (
	FilterAll       ListFilter = "all"
	FilterActive    ListFilter = "active" // funded或submitted
	FilterCompleted ListFilter = "completed"
	FilterDisputed  ListFilter = "disputed"
	FilterRefunded  ListFilter = "refunded"
)

// Match 状态是否满足过滤条件
func (f ListFilter) Match(s CommitmentState) bool {
	switch f {
	case FilterAll, "":
		return true
	case FilterActive:
		return s == StateFunded || s == StateSubmitted
	case FilterCompleted:
		return s == StateSettled
	case FilterDisputed:
		return s == StateDisputed
	case FilterRefunded:
		return s == StateRefunded
	default:
		return false
	}
}

// ValidFilter 过滤条件是否合法
func ValidFilter(f string) bool {
	switch ListFilter(f) {
	case "", FilterAll, FilterActive, FilterCompleted, FilterDisputed, FilterRefunded:
		return true
	default:
		return false
	}
}

package chain

// 托管合约ABI（仅本服务用到的函数）
const escrowABI = `[
	{"type":"function","name":"registerServer","stateMutability":"nonpayable","inputs":[{"name":"_guildId","type":"uint256"},{"name":"_adminId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"depositToServer","stateMutability":"nonpayable","inputs":[{"name":"_guildId","type":"uint256"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"withdrawFromServer","stateMutability":"nonpayable","inputs":[{"name":"_guildId","type":"uint256"},{"name":"_to","type":"address"},{"name":"_amount","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getServerBalance","stateMutability":"view","inputs":[{"name":"_guildId","type":"uint256"}],"outputs":[{"name":"totalDeposited","type":"uint256"},{"name":"totalSpent","type":"uint256"},{"name":"availableBalance","type":"uint256"}]},
	{"type":"function","name":"servers","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"guildId","type":"uint256"},{"name":"adminId","type":"uint256"},{"name":"isActive","type":"bool"},{"name":"registeredAt","type":"uint256"},{"name":"totalDeposited","type":"uint256"},{"name":"totalSpent","type":"uint256"},{"name":"availableBalance","type":"uint256"}]},
	{"type":"function","name":"createCommitment","stateMutability":"nonpayable","inputs":[{"name":"_guildId","type":"uint256"},{"name":"_contributor","type":"address"},{"name":"_token","type":"address"},{"name":"_amount","type":"uint256"},{"name":"_deadline","type":"uint256"},{"name":"_disputeWindow","type":"uint256"},{"name":"_specCid","type":"string"}],"outputs":[{"name":"commitId","type":"uint256"}]},
	{"type":"function","name":"submitWork","stateMutability":"nonpayable","inputs":[{"name":"_guildId","type":"uint256"},{"name":"_commitId","type":"uint256"},{"name":"_evidenceCid","type":"string"}],"outputs":[]},
	{"type":"function","name":"getCommitment","stateMutability":"view","inputs":[{"name":"_commitId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"creator","type":"address"},{"name":"contributor","type":"address"},{"name":"token","type":"address"},{"name":"amount","type":"uint256"},{"name":"deadline","type":"uint256"},{"name":"disputeWindow","type":"uint256"},{"name":"specCid","type":"string"},{"name":"evidenceCid","type":"string"},{"name":"state","type":"uint8"},{"name":"createdAt","type":"uint256"},{"name":"submittedAt","type":"uint256"}]}]},
	{"type":"function","name":"commitmentCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"commitmentToServer","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"openDispute","stateMutability":"payable","inputs":[{"name":"_guildId","type":"uint256"},{"name":"_commitId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"getDispute","stateMutability":"view","inputs":[{"name":"_commitId","type":"uint256"}],"outputs":[{"name":"","type":"tuple","components":[{"name":"disputer","type":"address"},{"name":"stakeAmount","type":"uint256"},{"name":"createdAt","type":"uint256"},{"name":"resolved","type":"bool"},{"name":"favorContributor","type":"bool"}]}]},
	{"type":"function","name":"calculateStake","stateMutability":"view","inputs":[{"name":"_commitId","type":"uint256"}],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"resolveDispute","stateMutability":"nonpayable","inputs":[{"name":"_commitId","type":"uint256"},{"name":"_favorContributor","type":"bool"}],"outputs":[]},
	{"type":"function","name":"settle","stateMutability":"nonpayable","inputs":[{"name":"_commitId","type":"uint256"}],"outputs":[]},
	{"type":"function","name":"batchSettle","stateMutability":"nonpayable","inputs":[{"name":"_commitIds","type":"uint256[]"}],"outputs":[]},
	{"type":"function","name":"canSettle","stateMutability":"view","inputs":[{"name":"_commitId","type":"uint256"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"registrationFee","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"baseStake","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
	{"type":"function","name":"arbitrator","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"mneeToken","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"MAX_BATCH_SIZE","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]}
]`

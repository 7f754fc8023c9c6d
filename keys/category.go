// keys/category.go
// Key 分类：用于写集追踪与调试
package keys

import "strings"

// KeyCategory 定义 Key 的数据归属
type KeyCategory int

const (
	CategoryKV       KeyCategory = iota // 流水/回执（不可变）
	CategoryContract                    // 合约自身状态
	CategoryLedger                      // 账本余额/归属
)

var contractPrefixes = []string{
	"v1_soulp_state",
	"v1_contract_info",
}

var ledgerPrefixes = []string{
	"v1_balance_",
	"v1_cw20_balance_",
	"v1_cw721_owner_",
	"v1_denom_",
}

// CategorizeKey 判断 key 属于哪类数据
func CategorizeKey(key string) KeyCategory {
	for _, p := range contractPrefixes {
		if strings.HasPrefix(key, p) {
			return CategoryContract
		}
	}
	for _, p := range ledgerPrefixes {
		if strings.HasPrefix(key, p) {
			return CategoryLedger
		}
	}
	return CategoryKV
}

func (c KeyCategory) String() string {
	switch c {
	case CategoryContract:
		return "contract"
	case CategoryLedger:
		return "ledger"
	default:
		return "kv"
	}
}

// keys/keys.go
// 统一的 Key 定义包，供 VM、bank 和 DB 模块共同使用
package keys

import (
	"fmt"
	"strings"
)

// ===================== 版本控制 =====================
// 设置全局 Key 版本前缀（例如 "v1" → 产出 "v1_<key>"）。
const KeyVersion = "v1"

// withVer 把版本号拼到最前面（保持下划线风格：v1_<...>）
func withVer(s string) string {
	if KeyVersion == "" {
		return s
	}
	return KeyVersion + "_" + s
}

// StripVersion 把带版本的键去掉版本前缀
func StripVersion(prefixed string) string {
	if KeyVersion == "" {
		return prefixed
	}
	return strings.TrimPrefix(prefixed, KeyVersion+"_")
}

// ===================== 合约状态 =====================

// KeyCustodyState 托管状态（单例）
// 例：v1_soulp_state
func KeyCustodyState() string {
	return withVer("soulp_state")
}

// KeyContractInfo 合约名称/版本记录
// 例：v1_contract_info
func KeyContractInfo() string {
	return withVer("contract_info")
}

// ===================== 账本相关 =====================
// 地址/合约段带长度前缀 "<len>_<addr>"，denom 或 tokenID 可以含任意字符，
// 不同 (地址, denom) 组合不会拼出同一个 key

// lenPrefixed "<len>_<s>"
func lenPrefixed(s string) string {
	return fmt.Sprintf("%d_%s", len(s), s)
}

// KeyBalance 原生币余额
// 例：v1_balance_8_osmo1abc_uosmo
func KeyBalance(addr, denom string) string {
	return KeyBalancePrefix(addr) + denom
}

// KeyBalancePrefix 某地址下全部原生币余额的前缀
// 例：v1_balance_8_osmo1abc_
func KeyBalancePrefix(addr string) string {
	return withVer("balance_" + lenPrefixed(addr) + "_")
}

// DenomFromBalanceKey 从余额 key 中取出 denom
func DenomFromBalanceKey(addr, key string) (string, bool) {
	prefix := KeyBalancePrefix(addr)
	if !strings.HasPrefix(key, prefix) {
		return "", false
	}
	denom := key[len(prefix):]
	return denom, denom != ""
}

// KeyCw20Balance cw20 合约内余额
// 例：v1_cw20_balance_6_osmo1c_osmo1a
func KeyCw20Balance(contract, addr string) string {
	return withVer("cw20_balance_" + lenPrefixed(contract) + "_" + addr)
}

// KeyCw721Owner cw721 token 归属
// 例：v1_cw721_owner_6_osmo1c_token1
func KeyCw721Owner(contract, tokenID string) string {
	return withVer("cw721_owner_" + lenPrefixed(contract) + "_" + tokenID)
}

// KeyDenomMeta tokenfactory denom 注册记录
// 例：v1_denom_factory/<owner>/<subdenom>
func KeyDenomMeta(denom string) string {
	return withVer("denom_" + denom)
}

// ===================== 执行回执 =====================

// KeyReceipt 调用回执
// 例：v1_receipt_<invocationID>
func KeyReceipt(id string) string {
	return withVer("receipt_" + id)
}

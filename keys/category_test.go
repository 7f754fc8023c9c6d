package keys

import "testing"

func TestCategorizeKey(t *testing.T) {
	t.Parallel()

	cases := map[string]KeyCategory{
		KeyCustodyState():                  CategoryContract,
		KeyContractInfo():                  CategoryContract,
		KeyBalance("osmo1abc", "uosmo"):    CategoryLedger,
		KeyCw20Balance("osmo1c", "osmo1a"): CategoryLedger,
		KeyCw721Owner("osmo1c", "token1"):  CategoryLedger,
		KeyDenomMeta("factory/a/SouLP"):    CategoryLedger,
		KeyReceipt("inv-1"):                CategoryKV,
	}

	for key, want := range cases {
		if got := CategorizeKey(key); got != want {
			t.Fatalf("key %s: got %s want %s", key, got, want)
		}
	}
}

package vm

import (
	"encoding/json"
	"testing"

	"soulp/config"
	"soulp/tokenfactory"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContract(t *testing.T, ratioVersion string) *Contract {
	t.Helper()
	cfg := config.DefaultConfig().Contract
	cfg.RatioVersion = ratioVersion
	c, err := NewContract(&cfg)
	require.NoError(t, err)
	return c
}

func ratioPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func strPtr(s string) *string { return &s }

func TestInstantiateDefaults(t *testing.T) {
	env := newTestEnv()
	c := newTestContract(t, config.RatioVersionConfigurable)

	resp, err := c.Instantiate(env.ctx(testCreator), &InstantiateMsg{Pool: NativeAsset(testPoolLP)})
	require.NoError(t, err)

	require.Len(t, resp.Messages, 1)
	sg := resp.Messages[0].(StargateMsg)
	create, err := tokenfactory.DecodeCreateDenom(sg.Command())
	require.NoError(t, err)
	assert.Equal(t, testContract, create.Sender)
	assert.Equal(t, "SouLP", create.Subdenom)
	assert.Equal(t, []Attribute{{Key: "method", Value: "instantiate"}}, resp.Attributes)

	st, err := NewStateStore(env.sv).Load()
	require.NoError(t, err)
	assert.Equal(t, NativeAsset(testPoolLP), st.Pool)
	assert.Equal(t, testCreator, st.EvacuateAddress)
	assert.True(t, st.MintRatio.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, RatioConfigurable, st.RatioVersion)

	info, err := NewStateStore(env.sv).LoadInfo()
	require.NoError(t, err)
	assert.Equal(t, "crates.io:soulp-astroport-xyk", info.Contract)
	assert.Equal(t, "0.1.0", info.Version)
}

func TestInstantiateWithRatioAndAddress(t *testing.T) {
	env := newTestEnv()
	c := newTestContract(t, config.RatioVersionConfigurable)

	_, err := c.Instantiate(env.ctx(testCreator), &InstantiateMsg{
		Pool:            NativeAsset(testPoolLP),
		MintRatio:       ratioPtr("0.5"),
		EvacuateAddress: strPtr(testEvacuate),
	})
	require.NoError(t, err)

	st, err := NewStateStore(env.sv).Load()
	require.NoError(t, err)
	assert.Equal(t, testEvacuate, st.EvacuateAddress)
	assert.Equal(t, "0.5", st.MintRatio.String())
}

func TestInstantiateRejects(t *testing.T) {
	cases := []struct {
		name    string
		version string
		msg     InstantiateMsg
		check   func(t *testing.T, err error)
	}{
		{
			name:    "negative ratio",
			version: config.RatioVersionConfigurable,
			msg:     InstantiateMsg{Pool: NativeAsset(testPoolLP), MintRatio: ratioPtr("-1")},
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidRatio) },
		},
		{
			name:    "fixed version with custom ratio",
			version: config.RatioVersionFixed,
			msg:     InstantiateMsg{Pool: NativeAsset(testPoolLP), MintRatio: ratioPtr("2")},
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidRatio) },
		},
		{
			name:    "empty pool",
			version: config.RatioVersionConfigurable,
			msg:     InstantiateMsg{Pool: NativeAsset("")},
			check:   func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrInvalidPool) },
		},
		{
			name:    "bad cw20 pool",
			version: config.RatioVersionConfigurable,
			msg:     InstantiateMsg{Pool: Cw20Asset("BAD")},
			check: func(t *testing.T, err error) {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			},
		},
		{
			name:    "bad evacuate address",
			version: config.RatioVersionConfigurable,
			msg:     InstantiateMsg{Pool: NativeAsset(testPoolLP), EvacuateAddress: strPtr("nope")},
			check: func(t *testing.T, err error) {
				var verr *ValidationError
				assert.ErrorAs(t, err, &verr)
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv()
			c := newTestContract(t, tc.version)
			_, err := c.Instantiate(env.ctx(testCreator), &tc.msg)
			tc.check(t, err)
			assert.Empty(t, env.sv.Diff())
		})
	}
}

func TestInstantiateFixedVersionAcceptsOne(t *testing.T) {
	env := newTestEnv()
	c := newTestContract(t, config.RatioVersionFixed)

	_, err := c.Instantiate(env.ctx(testCreator), &InstantiateMsg{Pool: NativeAsset(testPoolLP), MintRatio: ratioPtr("1.0")})
	require.NoError(t, err)

	st, err := NewStateStore(env.sv).Load()
	require.NoError(t, err)
	assert.Equal(t, RatioFixed, st.RatioVersion)
	assert.True(t, st.EffectiveRatio().Equal(decimal.NewFromInt(1)))
}

func TestInstantiateTwice(t *testing.T) {
	env := newTestEnv()
	c := newTestContract(t, config.RatioVersionConfigurable)

	_, err := c.Instantiate(env.ctx(testCreator), &InstantiateMsg{Pool: NativeAsset(testPoolLP)})
	require.NoError(t, err)
	_, err = c.Instantiate(env.ctx(testCreator), &InstantiateMsg{Pool: NativeAsset("other")})
	assert.ErrorIs(t, err, ErrAlreadyInstantiated)
}

func TestExecuteRouting(t *testing.T) {
	c := newTestContract(t, config.RatioVersionConfigurable)
	assert.Equal(t, []string{KindChangeEvacuateAddress, KindDeposit, KindEvacuate}, c.Registry().List())

	env := newTestEnv()
	_, err := c.Execute(env.ctx(testCreator), &ExecuteMsg{})
	assert.ErrorIs(t, err, ErrUnknownMessage)

	_, err = c.Execute(env.ctx(testCreator), &ExecuteMsg{Deposit: &DepositMsg{}, ChangeEvacuateAddress: &ChangeEvacuateAddressMsg{}})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestExecuteMsgJSON(t *testing.T) {
	var msg ExecuteMsg
	require.NoError(t, json.Unmarshal([]byte(`{"evacuate":{"asset":{"cw721":{"contract":"osmo1n","token_ids":["7"]}}}}`), &msg))
	kind, err := msg.Kind()
	require.NoError(t, err)
	assert.Equal(t, KindEvacuate, kind)

	asset, err := msg.Evacuate.Asset.Asset()
	require.NoError(t, err)
	assert.Equal(t, EvacuateCw721{Contract: "osmo1n", TokenIDs: []string{"7"}}, asset)

	out, err := json.Marshal(NewChangeEvacuateAddressMsg("osmo1z"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"change_evacuate_address":{"new_address":"osmo1z"}}`, string(out))
}

func TestQuery(t *testing.T) {
	env := newTestEnv()
	c := newTestContract(t, config.RatioVersionConfigurable)
	_, err := c.Instantiate(env.ctx(testCreator), &InstantiateMsg{
		Pool:      NativeAsset(testPoolLP),
		MintRatio: ratioPtr("0.75"),
	})
	require.NoError(t, err)

	deps := env.ctx("").Deps
	envInfo := env.ctx("").Env

	q := QueryState()
	data, err := c.Query(deps, envInfo, &q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"pool":{"native":"gamm/pool/1"},"evacuate_address":"osmo1creator","mint_ratio":"0.75","ratio_version":"v2"}`, string(data))

	q = QueryReceiptDenom()
	data, err = c.Query(deps, envInfo, &q)
	require.NoError(t, err)
	assert.Equal(t, `"factory/osmo1contract/SouLP"`, string(data))

	q = QueryMsg{TokenAddress: &struct{}{}}
	alias, err := c.Query(deps, envInfo, &q)
	require.NoError(t, err)
	assert.Equal(t, data, alias)

	q = QueryContractVersion()
	data, err = c.Query(deps, envInfo, &q)
	require.NoError(t, err)
	assert.JSONEq(t, `{"contract":"crates.io:soulp-astroport-xyk","version":"0.1.0"}`, string(data))

	_, err = c.Query(deps, envInfo, &QueryMsg{})
	assert.ErrorIs(t, err, ErrUnknownMessage)
}

func TestQueryStateBeforeInstantiate(t *testing.T) {
	env := newTestEnv()
	c := newTestContract(t, config.RatioVersionConfigurable)
	q := QueryState()
	_, err := c.Query(env.ctx("").Deps, env.ctx("").Env, &q)
	assert.ErrorIs(t, err, ErrNotInstantiated)
}

func TestNewContractRejectsBadConfig(t *testing.T) {
	cfg := config.DefaultConfig().Contract
	cfg.RatioVersion = "v3"
	_, err := NewContract(&cfg)
	assert.Error(t, err)

	cfg = config.DefaultConfig().Contract
	cfg.Subdenom = ""
	_, err = NewContract(&cfg)
	assert.Error(t, err)
}

func TestReceiptDenomDeterministic(t *testing.T) {
	c := newTestContract(t, config.RatioVersionConfigurable)
	a := c.Token(Env{ContractAddress: "osmo1a"}).Denom()
	assert.Equal(t, a, c.Token(Env{ContractAddress: "osmo1a"}).Denom())
	assert.NotEqual(t, a, c.Token(Env{ContractAddress: "osmo1b"}).Denom())
}

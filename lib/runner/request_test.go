package runner

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/require"

	"boscoin.io/sctester/lib/common"
	"boscoin.io/sctester/lib/contract/callstack"
	"boscoin.io/sctester/lib/errors"
)

func TestParseRequest(t *testing.T) {
	{
		r, err := ParseRequest([]string{"hello.wasm"}, common.CoinsPolicyStrict)
		require.NoError(t, err)
		require.Equal(t, "hello.wasm", r.File())
		require.Empty(t, r.Address())

		_, _, found := r.Function()
		require.False(t, found)
		_, found = r.Caller()
		require.False(t, found)
	}

	{
		r, err := ParseRequest(
			[]string{"addr=addr1", "function=greet", "param=showme", "sender=addr2", "coins=10"},
			common.CoinsPolicyStrict,
		)
		require.NoError(t, err)
		require.Equal(t, "addr1", r.Address())

		function, param, found := r.Function()
		require.True(t, found)
		require.Equal(t, "greet", function)
		require.Equal(t, "showme", param)

		caller, found := r.Caller()
		require.True(t, found)
		require.Equal(t, callstack.CallItem{Address: "addr2", Coins: 10}, caller)
	}

	{ // sender without coins gives no coins
		r, err := ParseRequest([]string{"addr=addr1", "sender=addr2"}, common.CoinsPolicyStrict)
		require.NoError(t, err)
		caller, _ := r.Caller()
		require.Equal(t, common.Amount(0), caller.Coins)
	}

	{ // values may hold `=`
		r, err := ParseRequest([]string{"addr=addr1", "function=f", "param=a=b"}, common.CoinsPolicyStrict)
		require.NoError(t, err)
		_, param, _ := r.Function()
		require.Equal(t, "a=b", param)
	}
}

func TestParseRequestInvalid(t *testing.T) {
	cases := map[string][]string{
		"file and address":     {"hello.wasm", "addr=addr1"},
		"neither":              {"sender=addr2"},
		"no argument":          {},
		"two files":            {"a.wasm", "b.wasm"},
		"not wasm":             {"hello.wat"},
		"unknown option":       {"hello.wasm", "gas=10"},
		"duplicated option":    {"addr=addr1", "addr=addr2"},
		"param only":           {"hello.wasm", "param=showme"},
		"empty function":       {"hello.wasm", "function="},
		"coins without sender": {"hello.wasm", "coins=10"},
		"malformed coins":      {"hello.wasm", "sender=addr2", "coins=ten"},
		"negative coins":       {"hello.wasm", "sender=addr2", "coins=-1"},
		"too many coins":       {"hello.wasm", "sender=addr2", "coins=18446744073709551615"},
		"empty sender":         {"hello.wasm", "sender="},
	}

	for name, args := range cases {
		_, err := ParseRequest(args, common.CoinsPolicyStrict)
		require.True(t, stderrors.Is(err, errors.InvalidInvocation), name)
	}
}

func TestParseRequestLenientCoins(t *testing.T) {
	r, err := ParseRequest([]string{"hello.wasm", "sender=addr2", "coins=ten"}, common.CoinsPolicyLenient)
	require.NoError(t, err)

	caller, found := r.Caller()
	require.True(t, found)
	require.Equal(t, callstack.CallItem{Address: "addr2", Coins: 0}, caller)

	// the other checks still apply
	_, err = ParseRequest([]string{"hello.wasm", "coins=ten"}, common.CoinsPolicyLenient)
	require.True(t, stderrors.Is(err, errors.InvalidInvocation))
}

func TestRequestBuilders(t *testing.T) {
	r := NewAddressRequest("addr1")
	r2 := r.WithCaller("addr2", 10).WithFunction("greet", "showme")

	_, found := r.Caller()
	require.False(t, found)
	_, _, found = r.Function()
	require.False(t, found)

	caller, found := r2.Caller()
	require.True(t, found)
	require.Equal(t, "addr2", caller.Address)
	require.NoError(t, r2.Validate())

	require.True(t, stderrors.Is(NewFileRequest("").Validate(), errors.InvalidInvocation))
}

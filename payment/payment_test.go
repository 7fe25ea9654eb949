package payment

import (
	"context"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clothex/storefront/backend"
)

type fakeVerifier struct {
	momoCalls  int
	vnpayCalls int
	confirmed  bool
	message    string
	fail       bool
}

func (f *fakeVerifier) result() (*backend.VerifyResult, error) {
	if f.fail {
		return nil, errors.New("verification service down")
	}
	return &backend.VerifyResult{Confirmed: f.confirmed, Message: f.message}, nil
}

func (f *fakeVerifier) VerifyMoMoReturn(ctx context.Context, params url.Values) (*backend.VerifyResult, error) {
	f.momoCalls++
	return f.result()
}

func (f *fakeVerifier) VerifyVNPayReturn(ctx context.Context, params url.Values) (*backend.VerifyResult, error) {
	f.vnpayCalls++
	return f.result()
}

func momoQuery(resultCode string) url.Values {
	return url.Values{
		"partnerCode": {"MOMO"},
		"orderId":     {"o42"},
		"resultCode":  {resultCode},
		"amount":      {"300000"},
		"transId":     {"tx-1"},
	}
}

func vnpayQuery(responseCode string) url.Values {
	return url.Values{
		"vnp_TxnRef":        {"o42"},
		"vnp_ResponseCode":  {responseCode},
		"vnp_Amount":        {"30000000"},
		"vnp_TransactionNo": {"tx-2"},
	}
}

func TestParseReturn_MoMo(t *testing.T) {
	ret, err := ParseReturn(momoQuery("0"))

	require.NoError(t, err)
	assert.Equal(t, ProviderMoMo, ret.Provider)
	assert.Equal(t, "o42", ret.OrderID)
	assert.True(t, ret.GatewayOK)
	assert.Equal(t, "tx-1", ret.Transaction)
}

func TestParseReturn_MoMoDeclined(t *testing.T) {
	ret, err := ParseReturn(momoQuery("1006"))

	require.NoError(t, err)
	assert.False(t, ret.GatewayOK, "any non-zero resultCode means declined")
}

func TestParseReturn_VNPay(t *testing.T) {
	ret, err := ParseReturn(vnpayQuery("00"))

	require.NoError(t, err)
	assert.Equal(t, ProviderVNPay, ret.Provider)
	assert.Equal(t, "o42", ret.OrderID)
	assert.True(t, ret.GatewayOK)
}

func TestParseReturn_VNPayDeclined(t *testing.T) {
	ret, err := ParseReturn(vnpayQuery("24"))

	require.NoError(t, err)
	assert.False(t, ret.GatewayOK)
}

func TestParseReturn_UnrecognizedQuery(t *testing.T) {
	_, err := ParseReturn(url.Values{"utm_source": {"newsletter"}})

	assert.ErrorIs(t, err, ErrUnrecognized)
}

func TestProcess_VerifiesOnceAndReplaysOutcome(t *testing.T) {
	verifier := &fakeVerifier{confirmed: true, message: "paid"}
	proc := NewProcessor(verifier)

	first, err := proc.Process(context.Background(), momoQuery("0"))
	require.NoError(t, err)
	second, err := proc.Process(context.Background(), momoQuery("0"))
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.momoCalls, "a reloaded return page must not verify again")
	assert.True(t, first.Confirmed)
	assert.Same(t, first, second)
}

func TestProcess_GatewaySuccessParamsAloneAreNotProof(t *testing.T) {
	verifier := &fakeVerifier{confirmed: false, message: "signature mismatch"}
	proc := NewProcessor(verifier)

	outcome, err := proc.Process(context.Background(), momoQuery("0"))

	require.NoError(t, err)
	assert.False(t, outcome.Confirmed, "the verdict comes from verification, not the query string")
	assert.Equal(t, "signature mismatch", outcome.Message)
}

func TestProcess_UnrecognizedIssuesNoVerifyCall(t *testing.T) {
	verifier := &fakeVerifier{}
	proc := NewProcessor(verifier)

	_, err := proc.Process(context.Background(), url.Values{"foo": {"bar"}})

	require.ErrorIs(t, err, ErrUnrecognized)
	assert.Zero(t, verifier.momoCalls)
	assert.Zero(t, verifier.vnpayCalls)
}

func TestProcess_VerifyFailureIsTerminalForTheVisit(t *testing.T) {
	verifier := &fakeVerifier{fail: true}
	proc := NewProcessor(verifier)

	outcome, err := proc.Process(context.Background(), vnpayQuery("00"))
	require.Error(t, err)
	assert.False(t, outcome.Confirmed)

	// The failed outcome is replayed, not retried.
	replay, err := proc.Process(context.Background(), vnpayQuery("00"))
	require.NoError(t, err)
	assert.Same(t, outcome, replay)
	assert.Equal(t, 1, verifier.vnpayCalls)
}

func TestProcess_ProvidersVerifiedIndependently(t *testing.T) {
	verifier := &fakeVerifier{confirmed: true}
	proc := NewProcessor(verifier)

	_, err := proc.Process(context.Background(), momoQuery("0"))
	require.NoError(t, err)
	_, err = proc.Process(context.Background(), vnpayQuery("00"))
	require.NoError(t, err)

	assert.Equal(t, 1, verifier.momoCalls)
	assert.Equal(t, 1, verifier.vnpayCalls)
}

package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testURL = "http://127.0.0.1:8114"

func activateMock(t *testing.T) {
	httpmock.ActivateNonDefault(HTTPClient())
	t.Cleanup(httpmock.DeactivateAndReset)
}

func TestRPCPost(t *testing.T) {
	activateMock(t)
	httpmock.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		var body RequestBody
		data, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		assert.Equal(t, "2.0", body.Version)
		assert.Equal(t, "get_tip_block_number", body.Method)
		return httpmock.NewStringResponse(http.StatusOK, `{"jsonrpc":"2.0","id":1,"result":"0x400"}`), nil
	})

	var result string
	err := RPCPost(&result, testURL, "get_tip_block_number")
	require.NoError(t, err)
	assert.Equal(t, "0x400", result)
}

func TestRPCPostError(t *testing.T) {
	activateMock(t)
	httpmock.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":1,"error":{"code":-3,"message":"unknown method"}}`))

	var result string
	err := RPCPostWithTimeout(5, &result, testURL, "no_such_method")
	assert.True(t, IsRPCErrorCode(err, -3))
}

func TestRPCPostBadStatus(t *testing.T) {
	activateMock(t)
	httpmock.RegisterResponder(http.MethodPost, testURL, httpmock.NewStringResponder(http.StatusBadGateway, "bad gateway"))

	var result string
	err := RPCPost(&result, testURL, "get_tip_block_number")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestRPCBatchPost(t *testing.T) {
	activateMock(t)
	httpmock.RegisterResponder(http.MethodPost, testURL, func(req *http.Request) (*http.Response, error) {
		var body []RequestBody
		data, _ := io.ReadAll(req.Body)
		if err := json.Unmarshal(data, &body); err != nil {
			return httpmock.NewStringResponse(http.StatusBadRequest, err.Error()), nil
		}
		assert.Len(t, body, 3)
		// answer out of order, the second element fails
		return httpmock.NewStringResponse(http.StatusOK, `[
			{"jsonrpc":"2.0","id":2,"result":"0x03"},
			{"jsonrpc":"2.0","id":0,"result":"0x01"},
			{"jsonrpc":"2.0","id":1,"error":{"code":-1107,"message":"PoolRejectedDuplicatedTransaction"}}
		]`), nil
	})

	results := make([]string, 3)
	elems := make([]*BatchElem, 3)
	for i := range elems {
		elems[i] = &BatchElem{
			Method: "send_transaction",
			Params: []interface{}{i, "passthrough"},
			Result: &results[i],
		}
	}
	require.NoError(t, RPCBatchPost(context.Background(), testURL, elems, 10))

	assert.NoError(t, elems[0].Error)
	assert.Equal(t, "0x01", results[0])
	assert.True(t, IsRPCErrorCode(elems[1].Error, -1107))
	assert.NoError(t, elems[2].Error)
	assert.Equal(t, "0x03", results[2])
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestRPCBatchPostMissingResponse(t *testing.T) {
	activateMock(t)
	httpmock.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewStringResponder(http.StatusOK, `[{"jsonrpc":"2.0","id":0,"result":"0x01"}]`))

	elems := []*BatchElem{{Method: "send_transaction"}, {Method: "send_transaction"}}
	require.NoError(t, RPCBatchPost(context.Background(), testURL, elems, 10))
	assert.NoError(t, elems[0].Error)
	assert.Error(t, elems[1].Error)
}

func TestRPCBatchPostRejected(t *testing.T) {
	activateMock(t)
	httpmock.RegisterResponder(http.MethodPost, testURL,
		httpmock.NewStringResponder(http.StatusOK, `{"jsonrpc":"2.0","id":null,"error":{"code":-32600,"message":"Invalid request"}}`))

	elems := []*BatchElem{{Method: "send_transaction"}}
	err := RPCBatchPost(context.Background(), testURL, elems, 10)
	assert.True(t, IsRPCErrorCode(err, -32600))
}

func TestRPCBatchPostEmpty(t *testing.T) {
	activateMock(t)
	assert.NoError(t, RPCBatchPost(context.Background(), testURL, nil, 10))
	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

package client

import (
	"context"
	"encoding/json"
	"fmt"
)

// BatchElem is one call of a batch request.
// Result and Error are filled in by RPCBatchPost.
type BatchElem struct {
	Method string
	Params []interface{}
	Result interface{}
	Error  error
}

// RPCBatchPost send all elems in one json-rpc batch call.
// The returned error is set only if the call as a whole fails;
// per element errors are stored in BatchElem.Error.
func RPCBatchPost(ctx context.Context, url string, elems []*BatchElem, timeout int) error {
	if len(elems) == 0 {
		return nil
	}
	reqBody := make([]*RequestBody, len(elems))
	for i, elem := range elems {
		reqBody[i] = &RequestBody{
			Version: "2.0",
			Method:  elem.Method,
			Params:  elem.Params,
			ID:      i,
		}
	}
	body, err := post(ctx, url, reqBody, timeout)
	if err != nil {
		return err
	}

	var responses []*jsonrpcResponse
	if err = json.Unmarshal(body, &responses); err != nil {
		// a whole batch rejection is answered with one error object
		var single jsonrpcResponse
		if json.Unmarshal(body, &single) == nil && single.Error != nil {
			return single.Error
		}
		return fmt.Errorf("unmarshal batch body error: %w", err)
	}

	answered := make([]bool, len(elems))
	for _, resp := range responses {
		var id int
		if err = json.Unmarshal(resp.ID, &id); err != nil || id < 0 || id >= len(elems) {
			return fmt.Errorf("batch response with unknown id %s", string(resp.ID))
		}
		if answered[id] {
			return fmt.Errorf("batch response with duplicate id %d", id)
		}
		answered[id] = true
		elem := elems[id]
		switch {
		case resp.Error != nil:
			elem.Error = resp.Error
		case elem.Result != nil:
			if err = json.Unmarshal(resp.Result, elem.Result); err != nil {
				elem.Error = fmt.Errorf("unmarshal result error: %w", err)
			}
		}
	}
	for i, ok := range answered {
		if !ok {
			elems[i].Error = fmt.Errorf("no response for batch element %d", i)
		}
	}
	return nil
}

package tokens

import (
	"context"
	"fmt"

	"github.com/anyswap/CKB-BatchTx/rpc/client"
)

// WrapRPCQueryError wrap rpc error
func WrapRPCQueryError(err error, method string, params ...interface{}) error {
	if err == nil {
		return fmt.Errorf("call '%s %v' failed, err='%w'", method, params, ErrNotFound)
	}
	return fmt.Errorf("%w: call '%s %v' failed, err='%v'", ErrRPCQueryError, method, params, err)
}

// RPCCall common RPC calling
func RPCCall(ctx context.Context, result interface{}, url, method string, params ...interface{}) error {
	err := client.RPCPostWithContext(ctx, result, url, method, params...)
	if err != nil {
		return WrapRPCQueryError(err, method, params...)
	}
	return nil
}

// RPCBatchCall send elems in one batch RPC calling.
// Per element errors are left in the elems.
func RPCBatchCall(ctx context.Context, url string, timeout int, elems []*client.BatchElem) error {
	err := client.RPCBatchPost(ctx, url, elems, timeout)
	if err != nil {
		return fmt.Errorf("%w: batch call of %d elems failed, err='%v'", ErrRPCQueryError, len(elems), err)
	}
	return nil
}

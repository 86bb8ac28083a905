// Package worker includes the batch procedures of sending many small transactions.
//
// They are run one after another by the operator:
//	merge
//		collect scattered sender cells into one large offer cell.
//	split
//		spend the offer cell into chunks of fixed capacity split cells,
//		the change of each split tx becomes the next offer cell.
//	batchsend
//		build and sign one transaction for each split cell,
//		and send them in batch rpc calls.
// Every submission is recorded in the checkpoint journal before it is sent,
// pending entries left by an interrupted run are recovered first.
package worker

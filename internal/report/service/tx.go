package service

import "context"

// TxRunner scopes a function to a single store transaction. Implementations
// must guarantee rollback on error and release the underlying connection on
// every exit path; the service never sees the transaction handle itself.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// internal/app/system/txn/txn.go
// Package txn wraps multi-document MongoDB transactions with a fallback
// for deployments that do not support them (standalone servers, some
// DocumentDB configurations).
package txn

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// WithTransaction runs fn inside a session transaction when the
// deployment supports it. When transactions are unsupported, fn is run
// directly outside a transaction; callers that need atomicity across
// documents must pair this with an idempotent recovery path.
func WithTransaction(ctx context.Context, client *mongo.Client, logger *zap.Logger, fn func(ctx context.Context) error) error {
	sess, err := client.StartSession()
	if err != nil {
		if IsNotSupported(err) {
			return fn(ctx)
		}
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	if err != nil && IsNotSupported(err) {
		logger.Warn("mongo transactions unsupported; running without transaction")
		return fn(ctx)
	}
	return err
}

// Server error codes that indicate the deployment cannot run
// multi-document transactions.
var notSupportedCodes = map[int32]bool{
	20:  true, // IllegalOperation (standalone: "Transaction numbers are only allowed on a replica set member")
	51:  true, // illegal operation variants
	263: true, // OperationNotSupportedInTransaction
}

// IsNotSupported reports whether err indicates that the connected
// deployment cannot run transactions, as opposed to a transient or
// logical transaction failure.
func IsNotSupported(err error) bool {
	if err == nil {
		return false
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) && notSupportedCodes[ce.Code] {
		return true
	}

	// Driver and server wordings vary; look for the telltale pairs.
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "transaction") && !strings.Contains(msg, "session") {
		return false
	}
	for _, hint := range []string{"replica set", "not supported", "illegal operation", "session"} {
		if strings.Contains(msg, hint) {
			return true
		}
	}
	return false
}

package testutil

import (
	"context"

	"github.com/ticketpulse/adwallet/internal/types"
)

func SetupContext() context.Context {
	ctx := context.Background()
	ctx = types.SetUserID(ctx, "user_test")
	ctx = types.SetRequestID(ctx, types.GenerateUUID())
	return ctx
}

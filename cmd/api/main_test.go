package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/intlpay/payments-portal/pkg/logger"
)

func TestRun_RejectsInvalidConfig(t *testing.T) {
	logger.Reset()
	t.Cleanup(logger.Reset)
	t.Setenv("JWT_SECRET", "s3cr3t")
	t.Setenv("BCRYPT_COST", "4")

	err := run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "BCRYPT_COST")

	// main reports the failure through the logger initialised by run.
	require.NotPanics(t, func() {
		l := logger.Get()
		l.Error().Err(err).Msg("server stopped with error")
	})
}

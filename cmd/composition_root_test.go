package cmd_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"supplychain/cmd"
	"supplychain/internal/core/application/usecases/commands"
	"supplychain/internal/core/domain/services"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) cmd.Config {
	t.Helper()

	cfg, err := cmd.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Tracking.Autostart = false
	return cfg
}

func TestCompositionRoot(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	verifier := services.NewCommitmentVerifier()

	newOrder := commands.CreateOrderParams{
		SupplierID:      "acme",
		BuyerID:         "globex",
		Quantity:        10,
		EncryptedPrice:  "enc:blob",
		PriceCommitment: verifier.Commit("99.00", "n-1").String(),
		DestinationLat:  52.52,
		DestinationLng:  13.40,
	}

	for _, backend := range []string{cmd.LedgerBackendNone, cmd.LedgerBackendChain} {
		t.Run("should wire a working engine with the "+backend+" ledger", func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Ledger.Backend = backend

			root, err := cmd.NewCompositionRoot(cfg, logger)
			require.NoError(t, err)
			eng, err := root.CreateEngine(t.Context())
			require.NoError(t, err)

			o, err := eng.CreateOrder(t.Context(), newOrder)
			require.NoError(t, err)
			_, err = eng.ApproveOrder(t.Context(), o.ID().String(), services.Proof{Value: "99.00", Nonce: "n-1"})
			require.NoError(t, err)

			assert.False(t, eng.SchedulerStatus().Running)
			count, err := testutil.GatherAndCount(root.Registry(), "supplychain_transitions_total")
			require.NoError(t, err)
			assert.Positive(t, count)

			require.NoError(t, eng.Close(t.Context()))
		})
	}

	t.Run("should seed party locations into redis", func(t *testing.T) {
		mr := miniredis.RunT(t)

		cfg := testConfig(t)
		cfg.Directory.RedisURL = "redis://" + mr.Addr()
		cfg.Directory.PartyLocations = "acme=1.29:103.85"

		root, err := cmd.NewCompositionRoot(cfg, logger)
		require.NoError(t, err)
		eng, err := root.CreateEngine(t.Context())
		require.NoError(t, err)
		t.Cleanup(func() { _ = eng.Close(context.Background()) })

		got, err := mr.Get("party:location:acme")
		require.NoError(t, err)
		assert.NotEmpty(t, got)
	})

	t.Run("should reject malformed party locations", func(t *testing.T) {
		cfg := testConfig(t)
		cfg.Directory.PartyLocations = "acme=north"

		root, err := cmd.NewCompositionRoot(cfg, logger)
		require.NoError(t, err)
		_, err = root.CreateEngine(t.Context())
		assert.Error(t, err)
	})
}

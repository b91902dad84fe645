// Command ammsim drives the AMM engine through a randomized trading
// session and prints the resulting accounting. It exists to exercise the
// engine end to end outside of tests: pool creation, liquidity provision,
// swaps under slippage bounds, fee claims and the final invariant sweep.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"cosmossdk.io/log"
	sdkmath "cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/paw-chain/ammcore/x/amm/keeper"
	"github.com/paw-chain/ammcore/x/amm/types"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ammsim",
		Short: "Simulate a trading session against the AMM engine",
		Long: `Simulate a trading session against the AMM engine.

Creates a pool, seeds it with liquidity from several providers, runs a
randomized swap flow against it, claims fees, and prints the final pool
accounting. The run fails if any engine invariant is violated.

Example:
  $ ammsim --swaps 5000 --reserve-a 1000000000 --reserve-b 2000000000 --fee-bps 30
  $ ammsim --stable --amp 100 --swaps 1000`,
		RunE: runSim,
	}

	flags := cmd.Flags()
	flags.Uint64("swaps", 1000, "number of swaps to execute")
	flags.Int("providers", 3, "number of liquidity providers")
	flags.String("reserve-a", "1000000000", "initial token A deposit per provider")
	flags.String("reserve-b", "1000000000", "initial token B deposit per provider")
	flags.Uint64("fee-bps", 30, "total swap fee in basis points")
	flags.Uint64("protocol-fee-bps", 10, "protocol cut of the collected fee in basis points")
	flags.Uint64("creator-fee-bps", 5, "creator cut of the collected fee in basis points")
	flags.Bool("stable", false, "use a stable-swap pool instead of constant-product")
	flags.Uint64("amp", 100, "stable-swap amplification coefficient")
	flags.Int64("seed", 1, "random seed for the swap flow")
	flags.Bool("verbose", false, "log every engine operation")

	viper.SetEnvPrefix("AMMSIM")
	viper.AutomaticEnv()
	if err := viper.BindPFlags(flags); err != nil {
		panic(err)
	}

	return cmd
}

func runSim(cmd *cobra.Command, _ []string) error {
	swaps := cast.ToUint64(viper.Get("swaps"))
	providers := cast.ToInt(viper.Get("providers"))
	feeBps := cast.ToUint64(viper.Get("fee-bps"))
	protocolFeeBps := cast.ToUint64(viper.Get("protocol-fee-bps"))
	creatorFeeBps := cast.ToUint64(viper.Get("creator-fee-bps"))
	amp := cast.ToUint64(viper.Get("amp"))
	stable := cast.ToBool(viper.Get("stable"))
	seed := cast.ToInt64(viper.Get("seed"))

	depositA, ok := sdkmath.NewIntFromString(viper.GetString("reserve-a"))
	if !ok {
		return fmt.Errorf("invalid reserve-a: %s (must be integer)", viper.GetString("reserve-a"))
	}
	depositB, ok := sdkmath.NewIntFromString(viper.GetString("reserve-b"))
	if !ok {
		return fmt.Errorf("invalid reserve-b: %s (must be integer)", viper.GetString("reserve-b"))
	}
	if providers < 1 {
		return fmt.Errorf("providers must be at least 1")
	}

	logger := log.NewNopLogger()
	if cast.ToBool(viper.Get("verbose")) {
		logger = log.NewLogger(cmd.ErrOrStderr())
	}

	k := keeper.NewKeeper(types.SystemClock{}, logger, types.DefaultParams(), keeper.WithMetrics(keeper.NewMetrics()))

	kind := types.PoolKindConstantProduct
	if !stable {
		amp = 0
	} else {
		kind = types.PoolKindStable
	}

	pool, err := k.CreatePool("creator", kind, "uatom", "upaw", feeBps, protocolFeeBps, creatorFeeBps, amp)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	deadline := func() uint64 { return types.SystemClock{}.NowMs() + 60_000 }

	positions := make([]string, 0, providers)
	for i := 0; i < providers; i++ {
		owner := fmt.Sprintf("lp-%d", i)
		pos, _, _, err := k.AddLiquidity(pool.Id, owner, depositA, depositB, sdkmath.ZeroInt(), deadline())
		if err != nil {
			return fmt.Errorf("add liquidity for %s: %w", owner, err)
		}
		positions = append(positions, pos.Id)
	}

	rng := rand.New(rand.NewSource(seed))
	var executed, rejected uint64
	for i := uint64(0); i < swaps; i++ {
		state, err := k.GetPool(pool.Id)
		if err != nil {
			return err
		}

		aToB := rng.Intn(2) == 0
		reserveIn := state.ReserveA
		if !aToB {
			reserveIn = state.ReserveB
		}
		// Trade sizes up to ~1% of the input reserve keep the flow realistic
		amountIn := reserveIn.QuoRaw(100).QuoRaw(int64(rng.Intn(50) + 1)).AddRaw(1)

		trader := fmt.Sprintf("trader-%d", rng.Intn(8))
		if aToB {
			_, err = k.SwapAToB(pool.Id, trader, amountIn, sdkmath.OneInt(), nil, deadline())
		} else {
			_, err = k.SwapBToA(pool.Id, trader, amountIn, sdkmath.OneInt(), nil, deadline())
		}
		if err != nil {
			rejected++
			continue
		}
		executed++
	}

	if err := k.AllInvariants(); err != nil {
		return fmt.Errorf("invariant sweep failed after simulation: %w", err)
	}

	final, err := k.GetPool(pool.Id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "pool %d (%s) %s/%s fee=%dbps\n", final.Id, final.Kind, final.TokenA, final.TokenB, final.FeeBps)
	fmt.Fprintf(out, "swaps: %d executed, %d rejected\n", executed, rejected)
	fmt.Fprintf(out, "reserves: %s %s / %s %s\n", final.ReserveA, final.TokenA, final.ReserveB, final.TokenB)
	fmt.Fprintf(out, "total shares: %s\n", final.TotalShares)
	fmt.Fprintf(out, "protocol fees: %s / %s\n", final.ProtocolFeesA, final.ProtocolFeesB)
	fmt.Fprintf(out, "creator fees:  %s / %s\n", final.CreatorFeesA, final.CreatorFeesB)

	if price, err := k.GetSpotPrice(pool.Id); err == nil {
		fmt.Fprintf(out, "spot price: %s %s per %s\n", price, final.TokenB, final.TokenA)
	}

	for i, posID := range positions {
		owner := fmt.Sprintf("lp-%d", i)
		feeA, feeB, err := k.ClaimFees(posID, owner)
		if err != nil {
			return fmt.Errorf("claim fees for %s: %w", owner, err)
		}
		il, err := k.GetImpermanentLoss(posID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s: fees %s/%s, impermanent loss %d bps\n", owner, feeA, feeB, il)
	}

	return nil
}

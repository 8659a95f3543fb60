package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/node"
	"github.com/spf13/cobra"
)

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "Print every miner's reward, named by the local key files.",
	Run:   rewardsRun,
}

func init() {
	rootCmd.AddCommand(rewardsCmd)
}

func rewardsRun(cmd *cobra.Command, args []string) {
	ns, err := nameservice.New(accountPath)
	if err != nil {
		log.Fatal(err)
	}

	rewards, err := node.New(url).Rewards(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, reward := range rewards {
		fmt.Printf("%-20s %d\n", ns.Lookup(wallet.Address(reward.Address)), reward.Balance)
	}
}

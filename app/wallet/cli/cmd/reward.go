package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/node"
	"github.com/spf13/cobra"
)

var rewardCmd = &cobra.Command{
	Use:   "reward",
	Short: "Print the mining reward credited to your account.",
	Run:   rewardRun,
}

func init() {
	rootCmd.AddCommand(rewardCmd)
}

func rewardRun(cmd *cobra.Command, args []string) {
	kp, err := wallet.Load(getKeyPath(accountName))
	if err != nil {
		log.Fatal(err)
	}

	addr := kp.Address()
	fmt.Println("For Account:", addr.Short())

	rewards, err := node.New(url).Rewards(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	for _, reward := range rewards {
		if reward.Address == string(addr) {
			fmt.Println(reward.Balance)
			return
		}
	}

	fmt.Println(0)
}

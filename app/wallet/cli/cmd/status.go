package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/ardanlabs/powledger/foundation/node"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status <tx-uuid>",
	Short: "Print whether a transaction is pending or committed",
	Args:  cobra.ExactArgs(1),
	Run:   statusRun,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func statusRun(cmd *cobra.Command, args []string) {
	id, err := uuid.Parse(args[0])
	if err != nil {
		log.Fatal(err)
	}

	status, err := node.New(url).QueryTx(context.Background(), id)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Println(status.Status, status.BlockID)
}

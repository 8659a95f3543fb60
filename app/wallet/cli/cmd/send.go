package cmd

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ardanlabs/powledger/foundation/blockchain/database"
	"github.com/ardanlabs/powledger/foundation/blockchain/wallet"
	"github.com/ardanlabs/powledger/foundation/nameservice"
	"github.com/ardanlabs/powledger/foundation/node"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	to      string
	toName  string
	amount  uint64
	timeout time.Duration
)

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and submit a transaction",
	Run:   sendRun,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&to, "to", "t", "", "Address of the recipient.")
	sendCmd.Flags().StringVarP(&toName, "to-account", "r", "", "Name of a local key file for the recipient.")
	sendCmd.Flags().Uint64VarP(&amount, "amount", "v", 0, "Amount to send.")
	sendCmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "Time to wait for the node.")
	sendCmd.MarkFlagsOneRequired("to", "to-account")
	sendCmd.MarkFlagsMutuallyExclusive("to", "to-account")
	sendCmd.MarkFlagRequired("amount")
}

func sendRun(cmd *cobra.Command, args []string) {
	kp, err := wallet.Load(getKeyPath(accountName))
	if err != nil {
		log.Fatal(err)
	}

	recipient := wallet.Address(to)
	if toName != "" {
		ns, err := nameservice.New(accountPath)
		if err != nil {
			log.Fatal(err)
		}

		var exists bool
		if recipient, exists = ns.Address(toName); !exists {
			log.Fatalf("no key file named %q in %s", toName, accountPath)
		}
	}

	toKey, err := recipient.PublicKey()
	if err != nil {
		log.Fatal(err)
	}

	tx, err := database.NewTx(uuid.New(), kp.PublicKey, toKey, amount)
	if err != nil {
		log.Fatal(err)
	}

	if err := tx.Sign(kp.PrivateKey); err != nil {
		log.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := node.New(url).SubmitTx(ctx, tx); err != nil {
		log.Fatal(err)
	}

	fmt.Println("Submitted:", tx)
}

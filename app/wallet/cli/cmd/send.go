package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cypherchain/cypher/foundation/blockchain/database"
	"github.com/cypherchain/cypher/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var (
	sendURL   string
	recipient string
	amount    int64
	nonce     uint64
)

// sendCmd represents the send command.
var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Sign and send a transaction",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		sender := signature.AddressFromPublicKey(&privateKey.PublicKey)

		// When the nonce is not provided, ask the node what the ledger
		// expects next for this account.
		if !cmd.Flags().Changed("nonce") {
			act, err := queryAccount(sendURL, sender)
			if err != nil {
				log.Fatal(err)
			}
			nonce = act.NextNonce
		}

		tx, err := database.NewTx(database.AccountID(sender), database.AccountID(recipient), amount, nonce)
		if err != nil {
			log.Fatal(err)
		}

		signedTx, err := tx.Sign(privateKey)
		if err != nil {
			log.Fatal(err)
		}

		data, err := json.Marshal(database.NewTxData(signedTx))
		if err != nil {
			log.Fatal(err)
		}

		resp, err := http.Post(fmt.Sprintf("%s/v1/tx/submit", sendURL), "application/json", bytes.NewBuffer(data))
		if err != nil {
			log.Fatal(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(resp.Status, string(body))
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().StringVarP(&sendURL, "url", "u", "http://localhost:8080", "Url of the node.")
	sendCmd.Flags().StringVarP(&recipient, "to", "t", "", "Address of the recipient.")
	sendCmd.MarkFlagRequired("to")
	sendCmd.Flags().Int64VarP(&amount, "amount", "a", 0, "Amount to send.")
	sendCmd.Flags().Uint64VarP(&nonce, "nonce", "n", 0, "Nonce for the transaction. Defaults to what the ledger expects.")
}

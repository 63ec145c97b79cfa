package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/cypherchain/cypher/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

var url string

// accountInfo matches the balance endpoint payload.
type accountInfo struct {
	Account   string `json:"account"`
	Name      string `json:"name"`
	Balance   int64  `json:"balance"`
	NextNonce uint64 `json:"next_nonce"`
}

// balanceCmd represents the balance command.
var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the balance for the specified wallet",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		address := signature.AddressFromPublicKey(&privateKey.PublicKey)
		fmt.Println("For account:", address)

		act, err := queryAccount(url, address)
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(act.Balance)
	},
}

// queryAccount retrieves the ledger view of the specified address from
// the node.
func queryAccount(url string, address string) (accountInfo, error) {
	resp, err := http.Get(fmt.Sprintf("%s/v1/balance/%s", url, address))
	if err != nil {
		return accountInfo{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return accountInfo{}, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var act accountInfo
	if err := json.NewDecoder(resp.Body).Decode(&act); err != nil {
		return accountInfo{}, err
	}

	return act, nil
}

func init() {
	rootCmd.AddCommand(balanceCmd)
	balanceCmd.PersistentFlags().StringVarP(&url, "url", "u", "http://localhost:8080", "Url of the node.")
}

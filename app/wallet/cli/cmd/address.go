package cmd

import (
	"fmt"
	"log"

	"github.com/cypherchain/cypher/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/spf13/cobra"
)

// addressCmd represents the address command.
var addressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the address for the specified wallet",
	Run: func(cmd *cobra.Command, args []string) {
		privateKey, err := crypto.LoadECDSA(getPrivateKeyPath())
		if err != nil {
			log.Fatal(err)
		}

		fmt.Println(signature.AddressFromPublicKey(&privateKey.PublicKey))
	},
}

func init() {
	rootCmd.AddCommand(addressCmd)
}

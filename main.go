package main

import (
	"fmt"
	"os"

	configcmd "fjacquet/divledger/cmd/config"
	"fjacquet/divledger/cmd/division"
	"fjacquet/divledger/cmd/report"
	"fjacquet/divledger/cmd/root"
	"fjacquet/divledger/cmd/serve"
	"fjacquet/divledger/cmd/transaction"
	"fjacquet/divledger/internal/config"
)

func init() {
	// .env is loaded before any command reads configuration.
	config.LoadEnv()

	root.Cmd.AddCommand(division.Cmd)
	root.Cmd.AddCommand(transaction.Cmd)
	root.Cmd.AddCommand(report.Cmd)
	root.Cmd.AddCommand(serve.Cmd)
	root.Cmd.AddCommand(configcmd.Cmd)
}

func main() {
	if err := root.Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

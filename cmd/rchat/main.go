package main

import (
	"github.com/spf13/cobra"

	"github.com/sacr/rchat/chat"
	"github.com/sacr/rchat/internal/configuration"
)

const configFilepath = "~/.config/rchat/config.json"

var rootCmd = &cobra.Command{
	Use:     "rchat",
	Short:   "A CLI for research chats with an LLM",
	Version: "1.0",
}

func main() {
	config, err := configuration.Parse(configFilepath)
	if err != nil {
		panic(err)
	}

	rootCmd.AddCommand(chat.NewCmd(config))
	rootCmd.AddCommand(chat.NewListCmd(config))
	rootCmd.AddCommand(chat.NewRenameCmd(config))
	rootCmd.AddCommand(chat.NewDeleteCmd(config))
	rootCmd.AddCommand(chat.NewGenerateTitlesCmd(config))
	rootCmd.Execute()
}

package chat

import (
	"github.com/spf13/cobra"

	"github.com/sacr/rchat/internal/cli"
	"github.com/sacr/rchat/internal/configuration"
	"github.com/sacr/rchat/internal/store"
)

// NewListCmd instantiates and returns the list command.
func NewListCmd(config *configuration.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all chats",
		Long:  "List all chats, most recent first",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			s, err := store.New(config.ChatFile)
			cobra.CheckErr(err)

			// Headers.
			cli.Title("RCHAT LIST")

			chatStore := s.Load()
			if s.Degraded() {
				cli.Notice("chat history could not be read\n")
			}
			for _, chat := range chatStore.ListByRecency() {
				cli.AIOutput("chat (%s) - %s\n", chat.ID, chat.Title)
				cli.UserInput("  %d messages\n", len(chat.Messages))
			}
		},
	}
	return cmd
}

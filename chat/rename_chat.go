package chat

import (
	"github.com/spf13/cobra"

	"github.com/sacr/rchat/internal/cli"
	"github.com/sacr/rchat/internal/configuration"
	"github.com/sacr/rchat/internal/session"
	"github.com/sacr/rchat/internal/store"
)

// NewRenameCmd instantiates and returns the rename command.
func NewRenameCmd(config *configuration.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <chat-id> <title>",
		Short: "Rename a chat",
		Long:  "Rename a chat. An empty or unchanged title is a no-op",
		Args:  cobra.ExactArgs(2),
		Run: func(cmd *cobra.Command, args []string) {
			s, err := store.New(config.ChatFile)
			cobra.CheckErr(err)

			sess := session.New(s, nil, "")
			cobra.CheckErr(sess.Rename(args[0], args[1]))
			cli.Notice("chat (%s) renamed\n", args[0])
		},
	}
	return cmd
}

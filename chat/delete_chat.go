package chat

import (
	"github.com/spf13/cobra"

	"github.com/sacr/rchat/internal/cli"
	"github.com/sacr/rchat/internal/configuration"
	"github.com/sacr/rchat/internal/session"
	"github.com/sacr/rchat/internal/store"
)

// NewDeleteCmd instantiates and returns the delete command.
func NewDeleteCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		Force bool
	}
	cmd := &cobra.Command{
		Use:   "delete <chat-id>",
		Short: "Delete a chat",
		Long:  "Delete a chat. Deleting an unknown id is a no-op",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			if !opts.Force && !cli.QueryUser("Delete chat ("+args[0]+")?") {
				return
			}

			s, err := store.New(config.ChatFile)
			cobra.CheckErr(err)

			sess := session.New(s, nil, "")
			cobra.CheckErr(sess.Delete(args[0]))
			cli.Notice("chat (%s) deleted\n", args[0])
		},
	}
	cmd.Flags().BoolVarP(&opts.Force, "force", "f", false, "skip the confirmation prompt")
	return cmd
}

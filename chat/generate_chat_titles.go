package chat

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/sacr/rchat/internal/cli"
	"github.com/sacr/rchat/internal/configuration"
	"github.com/sacr/rchat/internal/llm"
	"github.com/sacr/rchat/internal/store"
)

// NewGenerateTitlesCmd instantiates and returns the generate-titles command.
// Backfills titles for chats that are still on the default one.
func NewGenerateTitlesCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		Model string
	}
	cmd := &cobra.Command{
		Use:   "generate-titles",
		Short: "Generate titles for chats that don't have one",
		Long:  "Generate titles for all stored chats still holding the default title",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			model, err := config.ResolveModel(opts.Model)
			cobra.CheckErr(err)

			client, err := llm.NewOpenAIClient(config)
			cobra.CheckErr(err)

			s, err := store.New(config.ChatFile)
			cobra.CheckErr(err)
			chatStore := s.Load()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			updated := 0
			for _, chat := range chatStore.ListByRecency() {
				if chat.Title != store.DefaultTitle || len(chat.Messages) < 2 {
					continue
				}
				title := llm.GenerateTitle(ctx, client, model, chat.Messages[:2])
				if title == "" {
					cli.Notice("chat (%s): no title generated\n", chat.ID)
					continue
				}
				chat.Title = title
				updated++
				cli.AIOutput("chat (%s): %s\n", chat.ID, title)
			}
			if updated > 0 {
				cobra.CheckErr(s.Save(chatStore))
			}
			cli.Notice("updated %d chats\n", updated)
		},
	}
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "specify a model")
	return cmd
}

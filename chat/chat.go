package chat

import (
	"context"
	"time"

	"github.com/buger/goterm"
	"github.com/spf13/cobra"

	"github.com/sacr/rchat/internal/cli"
	"github.com/sacr/rchat/internal/configuration"
	"github.com/sacr/rchat/internal/llm"
	"github.com/sacr/rchat/internal/markdown"
	"github.com/sacr/rchat/internal/session"
	"github.com/sacr/rchat/internal/store"
)

// NewCmd instantiates and returns the chat command.
func NewCmd(config *configuration.Config) *cobra.Command {
	var opts struct {
		ChatID string
		Model  string
	}
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Back and forth chat",
		Long:  "Back and forth chat. Replies stream in as they are generated",
		Args:  cobra.ExactArgs(0),
		Run: func(cmd *cobra.Command, args []string) {
			model, err := config.ResolveModel(opts.Model)
			cobra.CheckErr(err)

			// A missing credential halts the session before anything else runs.
			client, err := llm.NewOpenAIClient(config)
			cobra.CheckErr(err)

			s, err := store.New(config.ChatFile)
			cobra.CheckErr(err)

			sess := session.New(s, client, model)
			if s.Degraded() {
				cli.Notice("chat history could not be read; starting with an empty history\n")
			}
			if opts.ChatID != "" {
				sess.Select(opts.ChatID)
			}

			// Headers.
			cli.Title("RCHAT [%s]", model)
			if active := sess.Active(); active != nil {
				cli.Title("%s (%s)", active.Title, active.ID)
				replayMessages(active)
			} else if opts.ChatID != "" {
				cli.Notice("chat (%s) not found, starting a new one\n", opts.ChatID)
			}

			for {
				// Query user for prompt.
				text, err := cli.PromptUser()
				if err != nil {
					// Interrupt or EOF ends the session.
					return
				}
				if text == "" {
					continue
				}

				// Quick feedback so user knows query has been submitted.
				cli.AIOutput("AI: ")

				ctx, cancel := context.WithTimeout(context.Background(), time.Duration(config.RequestTimeout)*time.Second)
				_, err = sess.Submit(ctx, text, func(token string) {
					cli.AIOutput(token)
				})
				cancel()
				if err != nil {
					// The exchange was not persisted; resubmitting retries.
					cli.Notice("\nreply failed: %v\n", err)
					continue
				}
				cli.AIOutput("\n")
			}
		},
	}

	cmd.Flags().StringVar(&opts.ChatID, "id", "", "resume the chat with this id")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "specify a model")
	return cmd
}

// replayMessages prints the stored history of a resumed chat.
func replayMessages(chat *store.Chat) {
	renderer, err := markdown.NewRenderer(goterm.Width())
	for _, message := range chat.Messages {
		switch message.Role {
		case llm.UserRole:
			cli.UserInput("> %s\n", message.Content)
		case llm.AssistantRole:
			if err == nil {
				cli.AIOutput(renderer.Render(message.Content))
			} else {
				cli.AIOutput(message.Content + "\n")
			}
		}
	}
}

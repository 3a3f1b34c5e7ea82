package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"embedkit/config"
	"embedkit/internal/adapter/convlog"
	"embedkit/internal/adapter/llm"
	"embedkit/internal/port"
	"embedkit/internal/usecase"
)

var (
	chatIndex   string
	chatSession string
	chatTopK    int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with conversation logging",
	Long: `Start an interactive chat session. Every exchange is persisted as a
JSON conversation log under the configured conversations directory. With
--index, each user message is augmented with the nearest chunks from that
index before it reaches the model.

Commands inside the session: /new starts a fresh conversation, /quit exits.

Examples:
  embedkit chat --session support
  embedkit chat --index notes --session support`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().StringVar(&chatIndex, "index", "", "augment messages with context from this index")
	chatCmd.Flags().StringVar(&chatSession, "session", "default", "session name (groups conversation logs)")
	chatCmd.Flags().IntVar(&chatTopK, "top-k", 0, "retrieved chunks per message (default from config)")
}

func runChat(cmd *cobra.Command, args []string) error {
	c := cfg.Chat

	model, err := llm.NewCohereClient(c.APIKeyEnv, c.Model, "", llm.Options{
		Temperature:      c.Temperature,
		P:                c.P,
		FrequencyPenalty: c.FrequencyPenalty,
		PresencePenalty:  c.PresencePenalty,
	})
	if err != nil {
		return fmt.Errorf("failed to create chat client: %w", err)
	}

	convs, err := convlog.NewFileStore(config.ConversationsDir(rootDir, cfg))
	if err != nil {
		return err
	}

	session, err := usecase.NewChatSession(model, convs, "cohere", port.SessionMeta{
		Name:         chatSession,
		SystemPrompt: c.SystemPrompt,
		Model:        c.Model,
		Temperature:  c.Temperature,
		P:            c.P,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	if chatIndex != "" {
		st, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open index store: %w", err)
		}
		defer st.Close()

		indexer, err := newIndexer(st)
		if err != nil {
			return err
		}

		topK := chatTopK
		if topK <= 0 {
			topK = cfg.Search.TopK
		}
		session.WithRetrieval(indexer, chatIndex, topK)
		fmt.Printf("Augmenting with top %d chunks from index %q.\n", topK, chatIndex)
	}

	fmt.Printf("Session %q, conversation %s. /new for a fresh conversation, /quit to exit.\n\n", chatSession, session.ConversationID())

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case line == "/quit" || line == "/exit":
			return nil
		case line == "/new":
			if err := session.StartNew(); err != nil {
				return err
			}
			fmt.Printf("Started new conversation %s.\n", session.ConversationID())
			continue
		}

		reply, err := session.Send(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		fmt.Printf("\n%s\n\n", reply)
	}
	return scanner.Err()
}

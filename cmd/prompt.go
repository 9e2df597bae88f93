package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ugandalearn/learn-service/internal/events"
	"github.com/ugandalearn/learn-service/internal/llm"
	"github.com/ugandalearn/learn-service/internal/models"
	"github.com/ugandalearn/learn-service/internal/services"
	"github.com/ugandalearn/learn-service/internal/validator"
)

var promptCmd = &cobra.Command{
	Use:   "prompt",
	Short: "Print the prompts a content request would send, without calling a provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		req := &validator.ContentGenerateRequest{}
		contentType, _ := cmd.Flags().GetString("type")
		req.Type = models.ContentType(contentType)
		req.Subject, _ = cmd.Flags().GetString("subject")
		req.GradeLevel, _ = cmd.Flags().GetString("grade")
		req.Topic, _ = cmd.Flags().GetString("topic")
		req.Difficulty, _ = cmd.Flags().GetString("difficulty")
		req.Language, _ = cmd.Flags().GetString("language")

		return renderPrompt(cmd.OutOrStdout(), req)
	},
}

func init() {
	promptCmd.Flags().String("type", string(models.ContentLesson), "Content type: lesson, quiz, explanation or practice")
	promptCmd.Flags().String("subject", "", "Subject name")
	promptCmd.Flags().String("grade", "", "Grade level, e.g. P4")
	promptCmd.Flags().String("topic", "", "Topic")
	promptCmd.Flags().String("difficulty", "", "Difficulty (default medium)")
	promptCmd.Flags().String("language", "", "Language code (default en)")
}

func renderPrompt(w io.Writer, req *validator.ContentGenerateRequest) error {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	content := services.NewContentService(llm.NewMockProvider(), events.NopPublisher{}, logger, validator.New(), services.ContentConfig{})

	prompt, err := content.RenderPrompt(req)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "--- system ---\n%s\n\n--- user ---\n%s\n", prompt.System, prompt.User)
	return err
}

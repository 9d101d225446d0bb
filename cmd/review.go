package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/review"
	"github.com/spigell/interview-coach/internal/store"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Build a candidate review from your interview history",
	Run: func(cmd *cobra.Command, _ []string) {
		runReview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().Bool("dry-run", false, "print the review without saving it")
}

func runReview(cmd *cobra.Command) {
	ctx := context.Background()

	e := bootstrap(ctx, "review")
	defer e.close()

	builder := review.NewBuilder(review.Deps{
		Source: e.store,
		Saver:  e.store,
		Scores: e.scores,
		Logger: e.logger.Named("review"),
	})

	build := builder.BuildAndSave
	if dry, _ := cmd.Flags().GetBool("dry-run"); dry {
		build = builder.Build
	}

	summary, record, err := build(ctx, e.config.User.ID)
	if err != nil {
		e.logger.Fatal("building the review", zap.Error(err), zap.String("message", store.Message(err)))
	}

	printReview(summary, record)
}

func printReview(s review.Summary, r store.CandidateReview) {
	fmt.Printf("Overall rating: %d/100 (%s)\n", r.OverallRating, s.Label())
	fmt.Printf("Chatbot average %d, live mock average %d, resume %d\n\n", s.ChatBotAvg, s.LiveMockAvg, s.ResumeScore)

	printList("Strengths", s.Strengths)
	printList("Areas to improve", s.Weaknesses)
	printList("Recommendations", s.Recommendations)
}

func printList(title string, items []string) {
	fmt.Printf("%s:\n", title)
	for _, item := range items {
		fmt.Printf("  - %s\n", strings.TrimSpace(item))
	}
	fmt.Println()
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/quiz"
	"github.com/spigell/interview-coach/internal/store"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a timed multiple choice quiz for a role",
	Run: func(cmd *cobra.Command, _ []string) {
		runQuiz(cmd)
	},
}

func init() {
	rootCmd.AddCommand(quizCmd)

	quizCmd.Flags().StringP("role", "r", "", "quiz role")
}

func runQuiz(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := bootstrap(ctx, "quiz")
	defer e.close()

	role, _ := cmd.Flags().GetString("role")
	if role == "" {
		var err error
		role, err = askSelect("Choose a quiz", quiz.Roles()...)
		if err != nil {
			e.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		}
	}

	completed := make(chan struct{})
	q, err := quiz.New(quiz.Config{User: e.config.User.ID, Role: role}, quiz.Deps{
		Clock:  clock.Real(),
		Saver:  e.store,
		Logger: e.logger.Named("quiz"),
		OnComplete: func(r store.QuizResult, err error) {
			defer close(completed)
			fmt.Printf("\nQuiz complete: %d of %d (%d%%), %s\n", r.Score, r.Total, quiz.Percent(r.Score, r.Total), quiz.Label(r.Score, r.Total))
			if err != nil {
				fmt.Printf("Your result could not be saved: %s\n", store.Message(err))
			}
		},
	})
	if err != nil {
		e.logger.Fatal("starting the quiz", zap.Error(err), zap.String("role", role))
	}
	defer q.Close()

	q.Start()
	fmt.Printf("%s quiz: you have %s.\n", role, quiz.TimeLimit)

	if err := answerQuiz(ctx, q); err != nil && !errors.Is(err, quiz.ErrFinished) {
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, context.Canceled) {
			return
		}
		e.logger.Fatal("quiz failed", zap.Error(err))
	}

	<-completed
}

func answerQuiz(ctx context.Context, q *quiz.Quiz) error {
	for {
		index, question := q.Current()
		p := promptui.Select{
			Label: fmt.Sprintf("Q%d (%s left) %s", index+1, q.Remaining().Round(time.Second), question.Text),
			Items: question.Options,
		}
		choice, _, err := p.Run()
		if err != nil {
			return err
		}

		out, err := q.Answer(ctx, index, choice)
		if err != nil && !out.Done {
			return err
		}
		if out.Correct {
			fmt.Println("Correct!")
		} else {
			fmt.Printf("Wrong, the answer is %q.\n", question.Options[out.CorrectIndex])
		}
		if out.Done {
			return nil
		}
	}
}

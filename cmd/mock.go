package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/livemock"
	"github.com/spigell/interview-coach/internal/media"
	"github.com/spigell/interview-coach/internal/secrets"
	"github.com/spigell/interview-coach/internal/speech"
	"github.com/spigell/interview-coach/internal/store"
)

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run a spoken live mock interview",
	Run: func(cmd *cobra.Command, _ []string) {
		runMock(cmd)
	},
}

func init() {
	rootCmd.AddCommand(mockCmd)

	mockCmd.Flags().IntP("questions", "q", 0, "number of questions, 1 to 10")
}

func runMock(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := bootstrap(ctx, "mock")
	defer e.close()

	count := e.config.LiveMock.Questions
	if n, _ := cmd.Flags().GetInt("questions"); n > 0 {
		count = n
	}

	blobs, err := openBlobs(ctx, e.config.Blob)
	if err != nil {
		e.logger.Warn("captured frames will not be kept", zap.Error(err))
	}

	recognizer, typed, err := newRecognizer(e)
	if err != nil {
		e.logger.Fatal("configuring speech recognition", zap.Error(err))
	}
	if typed != nil {
		defer typed.Close()
	}

	session := livemock.New(livemock.Config{
		User:          e.config.User.ID,
		SessionID:     store.NewID("livemock"),
		QuestionCount: count,
		FrameDelay:    e.config.LiveMock.FrameDelay,
	}, livemock.Deps{
		Device:     media.NewVideoDevice(e.config.Media.Device),
		Recognizer: recognizer,
		Blobs:      blobs,
		Scores:     e.scores,
		Saver:      e.store,
		Clock:      clock.Real(),
		Logger:     e.logger.Named("livemock"),
		Notify:     func(msg string) { fmt.Println(msg) },
	})
	defer session.Close()

	if err := openDevice(ctx, session); err != nil {
		if errors.Is(err, errExit) {
			e.logger.Info("exiting", zap.String("reason", "camera is not available"))
			return
		}
		e.logger.Fatal("opening the camera", zap.Error(err))
	}

	// Typed answers are piped into the line recognizer so that stdin has a
	// single reader for both answers and Enter presses.
	lines := readLines(os.Stdin)

	if err := askQuestions(ctx, session, lines, typed); err != nil {
		if errors.Is(err, errExit) || errors.Is(err, context.Canceled) {
			return
		}
		e.logger.Fatal("live mock failed", zap.Error(err))
	}

	record, err := session.Complete(ctx)
	if err != nil {
		e.logger.Fatal("saving the live mock", zap.Error(err), zap.String("message", store.Message(err)))
	}

	printLiveMock(record)
}

// newRecognizer returns the websocket recognizer when speech.url is set.
// Otherwise answers are typed and the returned writer feeds them.
func newRecognizer(e *env) (speech.Recognizer, *io.PipeWriter, error) {
	if e.config.Speech.URL != "" {
		token, err := secrets.Optional(secrets.Source{Name: "speech token", File: e.config.Speech.TokenFile})
		if err != nil {
			return nil, nil, err
		}
		return speech.NewWebSocket(e.config.Speech.URL, token, e.logger.Named("speech")), nil, nil
	}

	r, w := io.Pipe()
	return speech.NewLines(r), w, nil
}

// openDevice opens the camera, offering a retry with the device message on
// failure. The retry prompt is asked before stdin is handed to readLines.
func openDevice(ctx context.Context, session *livemock.Session) error {
	err := session.Open(ctx)
	for err != nil {
		fmt.Println(media.Message(err))
		action, perr := askSelect("Camera is not available", PromptRetry, PromptExit)
		if perr != nil {
			return perr
		}
		if action == PromptExit {
			return errExit
		}
		err = session.Retry(ctx)
	}
	return nil
}

func askQuestions(ctx context.Context, session *livemock.Session, lines <-chan string, typed *io.PipeWriter) error {
	total := len(session.Questions())
	for {
		index, q := session.Current()
		fmt.Printf("\nQuestion %d of %d:\n%s\n", index+1, total, q.Text)
		if typed != nil {
			fmt.Println("Type your answer, then an empty line to stop recording.")
		} else {
			fmt.Println("Answer out loud. Press Enter to stop recording.")
		}

		if err := session.StartRecording(ctx); err != nil {
			return err
		}

		if err := waitAnswer(ctx, lines, typed); err != nil {
			return err
		}

		feedback, err := session.StopRecording(ctx)
		switch {
		case errors.Is(err, livemock.ErrNoAnswer):
			fmt.Println("No answer was recorded. Let's try that question again.")
			continue
		case err != nil:
			return err
		}

		fmt.Printf("\nTranscript: %s\nCorrectness: %d/100\n%s\nRecommended answer: %s\n",
			feedback.Transcript, feedback.CorrectnessRating, feedback.SuggestedImprovements, feedback.RecommendedAnswer)

		if _, ok := session.Next(); !ok {
			return nil
		}
	}
}

// waitAnswer returns when the user ends the answer. Typed lines are forwarded
// to the line recognizer, with the empty line closing its stream.
func waitAnswer(ctx context.Context, lines <-chan string, typed *io.PipeWriter) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return errExit
			}
			if typed == nil {
				return nil
			}
			if _, err := io.WriteString(typed, line+"\n"); err != nil {
				return fmt.Errorf("forward typed answer: %w", err)
			}
			if line == "" {
				return nil
			}
		}
	}
}

func printLiveMock(r store.LiveMockRecord) {
	fmt.Printf("\nLive mock complete (%d questions)\n", r.NumberOfQuestions)
	fmt.Printf("Body language %d, eye contact %d, facial expression %d\n", r.BodyLanguageScore, r.EyeContactScore, r.FacialExpressionScore)
	fmt.Printf("Confidence %d, attentiveness %d, clarity %d, tone %d, styling %d\n",
		r.ConfidenceScore, r.AttentivenessScore, r.ClarityScore, r.ToneScore, r.StylingScore)
	fmt.Printf("\n%s\n\n%s\n", r.AppearanceFeedback, r.Feedback)
	if r.SpokenAnswerFeedback != nil {
		fmt.Printf("\nAverage correctness: %d/100\n%s\n", r.SpokenAnswerFeedback.CorrectnessRating, r.SpokenAnswerFeedback.SuggestedImprovements)
	}
}

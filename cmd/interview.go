package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/interview-coach/internal/blob"
	"github.com/spigell/interview-coach/internal/chatbot"
	"github.com/spigell/interview-coach/internal/clock"
	"github.com/spigell/interview-coach/internal/logger"
	"github.com/spigell/interview-coach/internal/resume"
	"github.com/spigell/interview-coach/internal/store"
	"github.com/spigell/interview-coach/internal/verification"
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Verify your resume for a role and run a chatbot interview",
	Run: func(cmd *cobra.Command, _ []string) {
		runInterview(cmd)
	},
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewCmd.Flags().StringP("role", "r", "", "target role")
	interviewCmd.Flags().StringP("resume", "f", "", "path to the resume file")
}

// setup is the verification state of the interview command.
type setup struct {
	orchestrator *verification.Orchestrator
	role         string
	input        *resume.Input
	upload       resume.Upload
}

func runInterview(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := bootstrap(ctx, "interview")
	defer e.close()

	blobs, err := openBlobs(ctx, e.config.Blob)
	if err != nil {
		e.logger.Warn("resume files will not be kept", zap.Error(err))
	}

	s := &setup{
		orchestrator: verification.New(verification.Config{Debounce: e.config.Verification.Debounce}, verification.Deps{
			Pipeline: verification.NewPipeline(resume.NewExtractor(e.scores, e.logger.Named("resume"))),
			Clock:    clock.Real(),
			Logger:   logger.WithSession(e.logger.Named("verification"), e.config.User.ID, ""),
			Notify:   printNotice,
		}),
	}
	defer s.orchestrator.Close()

	role, _ := cmd.Flags().GetString("role")
	if err := s.changeRole(ctx, role); err != nil {
		e.logger.Fatal("exiting", zap.Error(err))
	}
	path, _ := cmd.Flags().GetString("resume")
	if err := s.changeResume(ctx, path); err != nil {
		e.logger.Fatal("exiting", zap.Error(err))
	}

	for {
		result, err := s.gate(ctx)
		if errors.Is(err, errExit) {
			e.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
			return
		}
		if err != nil {
			e.logger.Fatal("exiting", zap.Error(err))
		}
		if result == nil {
			continue
		}

		if err := startChatbot(ctx, e, blobs, s, *result); err != nil {
			if errors.Is(err, errExit) || errors.Is(err, context.Canceled) {
				return
			}
			e.logger.Fatal("interview failed", zap.Error(err), zap.String("message", store.Message(err)))
		}
		return
	}
}

// gate asks the orchestrator for a chatbot start and handles the outcome. It
// returns the verification result once the session may start, and nil when the
// user changed role or resume and the gate must be asked again.
func (s *setup) gate(ctx context.Context) (*verification.Result, error) {
	decision, err := s.orchestrator.RequestStart(ctx, verification.ModeChatbot)
	if errors.Is(err, verification.ErrResumeRequired) {
		if s.input == nil {
			return nil, s.changeResume(ctx, "")
		}
		return nil, s.changeRole(ctx, "")
	}
	if err != nil {
		return nil, err
	}

	switch decision.Outcome {
	case verification.Proceed:
		return decision.State.Result, nil
	case verification.Queued:
		if decision.State.Gate != verification.Passable || decision.State.Result == nil {
			return nil, nil
		}
		printSuggestions(decision.State.Result.Suggestions)
		action, err := askSelect("You're applicable for this job! Proceed?", PromptAcknowledge, PromptChangeRole, PromptUploadResume, PromptExit)
		if err != nil {
			return nil, err
		}
		if action == PromptAcknowledge {
			if _, ok := s.orchestrator.Acknowledge(); !ok {
				return nil, nil
			}
			return s.orchestrator.State().Result, nil
		}
		return nil, s.handleAction(ctx, action)
	default:
		if decision.State.Result != nil {
			fmt.Printf("Your resume looks like %s, which does not fit %s.\n", decision.State.Result.Signals.DetectedRole, s.role)
		}
		action, err := askSelect("What would you like to do?", PromptChangeRole, PromptUploadResume, PromptExit)
		if err != nil {
			return nil, err
		}
		return nil, s.handleAction(ctx, action)
	}
}

func (s *setup) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptChangeRole:
		s.orchestrator.ChangeRole()
		s.role = ""
		return s.changeRole(ctx, "")
	case PromptUploadResume:
		s.orchestrator.UploadNewResume()
		s.input = nil
		return s.changeResume(ctx, "")
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (s *setup) changeRole(ctx context.Context, role string) error {
	if role == "" {
		var err error
		role, err = askText("Target role", s.role)
		if err != nil {
			return err
		}
	}

	s.role = role
	printAutoConfig(s.orchestrator.SetRole(role))
	s.orchestrator.Enter(ctx)
	return nil
}

func (s *setup) changeResume(ctx context.Context, path string) error {
	upload, err := askResume(path)
	if err != nil {
		return err
	}

	s.upload = upload
	s.input = &resume.Input{ID: store.NewID("resume"), FileName: upload.FileName, Upload: &upload}
	s.orchestrator.SetResume(s.input)
	s.orchestrator.Enter(ctx)
	return nil
}

func startChatbot(ctx context.Context, e *env, blobs blob.Store, s *setup, result verification.Result) error {
	user := e.config.User.ID
	l := logger.WithSession(e.logger, user, result.Role)

	text, err := resume.ExtractText(s.upload)
	if err != nil {
		l.Warn("extracting resume text failed", zap.Error(err))
	}

	base := store.Resume{
		ID:            s.input.ID,
		Owner:         user,
		FileName:      s.upload.FileName,
		ContentType:   s.upload.Kind(),
		ParsedContent: text,
		UploadedAt:    time.Now(),
		QualityScore:  result.Signals.QualityScore,
	}
	if blobs != nil {
		base.BlobKey = blob.NewKey("resumes", user, s.upload.FileName)
		if err := blobs.Put(ctx, base.BlobKey, s.upload.Data, s.upload.Kind()); err != nil {
			l.Warn("storing resume file failed", zap.Error(err))
			base.BlobKey = ""
		}
	}

	if _, err := verification.PersistStart(ctx, e.store, base, result); err != nil {
		return err
	}

	finished := make(chan struct{})
	var (
		mu    sync.Mutex
		draft []string
	)

	session := chatbot.New(chatbot.Config{
		User:          user,
		Role:          result.Role,
		InterviewType: result.Config.InterviewType,
		Difficulty:    result.Config.Difficulty,
		QuestionCount: verification.SessionQuestionCount,
		Inactivity:    e.config.Chatbot.Inactivity,
		Transition:    e.config.Chatbot.TransitionDelay,
	}, chatbot.Deps{
		Clock:     clock.Real(),
		Logger:    e.logger.Named("chatbot"),
		Responses: e.store,
		Sessions:  &completionSaver{SessionSaver: e.store, done: finished},
		Emit: func(m chatbot.Message) {
			if m.Speaker == chatbot.SpeakerCandidate {
				mu.Lock()
				draft = nil
				mu.Unlock()
				return
			}
			if m.Rating > 0 {
				fmt.Printf("\nRating: %d/5\n%s\n\n", m.Rating, m.Text)
				return
			}
			fmt.Printf("\n%s\n\n", m.Text)
		},
	})
	defer session.Close()

	session.Start()
	fmt.Printf("Type your answer. A line with %q submits it, a pause of %s does too.\n", chatbot.Sentinel, e.config.Chatbot.Inactivity)

	lines := readLines(os.Stdin)
	for {
		select {
		case <-finished:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return errExit
			}

			text := line
			if !strings.EqualFold(strings.TrimSpace(line), chatbot.Sentinel) {
				mu.Lock()
				draft = append(draft, line)
				text = strings.Join(draft, "\n")
				mu.Unlock()
			}

			if _, err := session.Input(ctx, text); err != nil {
				if errors.Is(err, chatbot.ErrFinished) {
					continue
				}
				return err
			}
		}
	}
}

// completionSaver signals done once the finished session has been saved,
// whether the last answer came from the prompt or the inactivity timer.
type completionSaver struct {
	chatbot.SessionSaver
	done chan struct{}
	once sync.Once
}

func (c *completionSaver) SaveInterviewSession(ctx context.Context, s store.InterviewSession) error {
	defer c.once.Do(func() { close(c.done) })
	return c.SessionSaver.SaveInterviewSession(ctx, s)
}

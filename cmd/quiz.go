package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/store"
	"github.com/Lolmantran/vietlearn/internal/ui/theme"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

var quizCmd = &cobra.Command{
	Use:   "quiz",
	Short: "Take a quiz over your vocabulary",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		limit, _ := cmd.Flags().GetInt("questions")
		criteria, err := e.criteria(cmd, string(vocab.ModeAll), limit)
		if err != nil {
			return err
		}
		// Retired words stay quizzable; quizzes never touch schedules.
		criteria.IncludeRetired = true

		loader, err := e.loader(nil)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("free-text") {
			if ft, _ := cmd.Flags().GetBool("free-text"); ft {
				loader.QuizMode = session.FreeText
			} else {
				loader.QuizMode = session.MultipleChoice
			}
		}

		sessionID := uuid.NewString()
		q, err := loader.LoadQuiz(cmd.Context(), sessionID, criteria)
		if errors.Is(err, session.ErrFetchFailed) {
			return fmt.Errorf("could not load quiz, try again: %w", err)
		}
		if err != nil {
			return err
		}

		rec := &quizRecorder{db: e.db, log: e.log, learnerID: e.learner, sessionID: sessionID}
		out := cmd.OutOrStdout()
		runQuiz(cmd.Context(), cmd.InOrStdin(), out, q, rec)

		sum, err := q.Summary()
		if err != nil {
			p := q.Progress()
			lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Stopped after %d of %d questions.", p.Done, p.Total)))
			return nil
		}
		award, err := e.rewardService().Award(cmd.Context(), e.learner, sessionID, sum.Reward, sum.CorrectCount, sum.TotalReviewed)
		if err != nil {
			e.log.Warn("reward not saved", zap.String("session_id", sessionID), zap.Error(err))
		}
		printQuizSummary(out, sum, award)
		return nil
	},
}

func init() {
	addCriteriaFlags(quizCmd)
	quizCmd.Flags().Int("questions", 0, "Number of questions (0 = as many as allowed)")
	quizCmd.Flags().Bool("free-text", false, "Type answers instead of picking options")
}

// quizRecorder appends one quiz event per answer. Failures are logged and
// do not interrupt the quiz.
type quizRecorder struct {
	db        backend
	log       *zap.Logger
	learnerID string
	sessionID string
}

func (r *quizRecorder) record(ctx context.Context, mode session.QuizMode, res session.QuizResult) {
	if r == nil || r.db == nil {
		return
	}
	err := r.db.AppendQuizEvent(ctx, store.QuizEventData{
		LearnerID: r.learnerID,
		SessionID: r.sessionID,
		ItemID:    res.ItemID,
		Mode:      string(mode),
		Given:     res.Given,
		Expected:  res.Expected,
		Correct:   res.Correct,
	})
	if err != nil {
		r.log.Warn("quiz event not saved",
			zap.String("item_id", res.ItemID),
			zap.String("session_id", r.sessionID),
			zap.Error(err))
	}
}

// runQuiz drives q from line-based input until it completes, the input ends
// or the learner quits.
func runQuiz(ctx context.Context, in io.Reader, out io.Writer, q *session.Quiz, rec *quizRecorder) {
	if q.Phase() == session.PhaseEmpty {
		lipgloss.Fprintln(out, theme.Hint.Render("No words match this quiz. Import a deck or change --tag."))
		return
	}

	scanner := bufio.NewScanner(in)
	for q.Phase() == session.PhaseActive {
		question, err := q.Current()
		if err != nil {
			return
		}
		p := q.Progress()
		lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("[%d/%d]", p.Done+1, p.Total)))
		lipgloss.Fprintln(out, theme.Card.Render(theme.Prompt.Render(question.Item.Prompt)))
		for i, c := range question.Choices {
			lipgloss.Fprintf(out, "  %s %s\n", theme.Option.Render(fmt.Sprintf("%d)", i+1)), c.Text)
		}
		var resp session.Response
		for {
			lipgloss.Fprint(out, theme.Hint.Render("> "))
			if !scanner.Scan() {
				return
			}
			line := strings.TrimSpace(scanner.Text())
			if line == "q" {
				return
			}
			var ok bool
			if resp, ok = parseResponse(question, line); ok {
				break
			}
			lipgloss.Fprintln(out, theme.Incorrect.Render(
				fmt.Sprintf("Pick an option from 1 to %d.", len(question.Choices))))
		}

		res, err := q.Answer(question.Item.ID, resp)
		if err != nil {
			lipgloss.Fprintln(out, theme.Incorrect.Render(err.Error()))
			return
		}
		rec.record(ctx, question.Mode, res)

		if res.Correct {
			lipgloss.Fprintln(out, theme.Correct.Render("Correct!"))
		} else {
			lipgloss.Fprintln(out, theme.Incorrect.Render("Not quite. The answer is "+res.Expected))
		}
	}
}

// parseResponse maps learner input to a response. Multiple-choice input may
// be a 1-based option number or an option ID; anything else is reported as
// not ok so the caller can ask again.
func parseResponse(q session.Question, line string) (session.Response, bool) {
	if q.Mode != session.MultipleChoice {
		return session.Response{Text: line}, true
	}
	if n, err := strconv.Atoi(line); err == nil {
		if c, ok := q.ChoiceAt(n); ok {
			return session.Response{OptionID: c.ID}, true
		}
		return session.Response{}, false
	}
	for _, c := range q.Choices {
		if c.ID == line {
			return session.Response{OptionID: c.ID}, true
		}
	}
	return session.Response{}, false
}

func printQuizSummary(out io.Writer, sum session.QuizSummary, award *rewards.Award) {
	lipgloss.Fprintln(out, theme.Title.Render("Quiz complete"))
	lipgloss.Fprintf(out, "%d/%d correct %s %d%%\n",
		sum.CorrectCount, sum.TotalReviewed, theme.Bar(sum.Percentage, 20), sum.Percentage)
	if award == nil {
		return
	}
	lipgloss.Fprintf(out, "+%d XP %s\n", award.XP,
		theme.Rarity(award.Rarity).Render(award.Rarity.DisplayName()))
	if award.Perfect {
		lipgloss.Fprintln(out, theme.Correct.Render("Perfect score bonus!"))
	}
}

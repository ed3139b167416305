package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Lolmantran/vietlearn/internal/rewards"
	"github.com/Lolmantran/vietlearn/internal/session"
	"github.com/Lolmantran/vietlearn/internal/spacedrep"
	"github.com/Lolmantran/vietlearn/internal/ui/theme"
	"github.com/Lolmantran/vietlearn/internal/vocab"
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Run a self-graded review session",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := setup(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		criteria, err := e.criteria(cmd, e.cfg.Review.Mode, e.cfg.Review.Limit)
		if err != nil {
			return err
		}

		warnings := make(chan session.CommitWarning, 64)
		committer := session.NewAsyncCommitter(e.db, e.log, func(w session.CommitWarning) {
			select {
			case warnings <- w:
			default:
			}
		})
		defer committer.Close()

		loader, err := e.loader(committer)
		if err != nil {
			return err
		}
		sessionID := uuid.NewString()
		rv, err := loader.LoadReview(cmd.Context(), sessionID, criteria)
		if errors.Is(err, session.ErrFetchFailed) {
			return fmt.Errorf("could not load review queue, try again: %w", err)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		mastered := runReview(cmd.InOrStdin(), out, rv, e.table, warnings)

		ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
		defer cancel()
		failed, err := committer.Flush(ctx)
		drainWarnings(out, warnings)
		if err != nil {
			return fmt.Errorf("waiting for saves: %w", err)
		}
		if len(failed) > 0 {
			lipgloss.Fprintln(out, theme.Warn.Render(
				fmt.Sprintf("%d grade(s) could not be saved and will be shown again next time.", len(failed))))
		}

		sum, err := rv.Summary()
		if err != nil {
			return nil
		}
		svc := e.rewardService()
		svc.ResetSession()
		awardReview(cmd.Context(), svc, e.log, e.learner, sessionID, sum, mastered)
		printSessionAwards(out, svc)
		return nil
	},
}

func init() {
	addCriteriaFlags(reviewCmd)
}

// runReview drives rv from line-based input until it completes, the input
// ends or the learner quits. It returns the items retired during the sitting.
func runReview(in io.Reader, out io.Writer, rv *session.Review, table spacedrep.Table, warnings <-chan session.CommitWarning) []vocab.Item {
	if rv.Phase() == session.PhaseEmpty {
		lipgloss.Fprintln(out, theme.Hint.Render("Nothing to review right now."))
		return nil
	}

	var mastered []vocab.Item
	scanner := bufio.NewScanner(in)
	readLine := func() (string, bool) {
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

loop:
	for rv.Phase() == session.PhaseActive {
		drainWarnings(out, warnings)

		card, err := rv.Current()
		if err != nil {
			break
		}
		header := fmt.Sprintf("[%d/%d] %s", card.Index+1, card.Total, table.LevelName(card.Schedule.Level))
		lipgloss.Fprintln(out, theme.Hint.Render(header))
		lipgloss.Fprintln(out, theme.Card.Render(theme.Prompt.Render(card.Item.Prompt)))
		lipgloss.Fprint(out, theme.Hint.Render("Press Enter to reveal (q to quit) "))
		line, ok := readLine()
		if !ok || line == "q" {
			break
		}
		lipgloss.Fprintln(out, "Answer:", theme.Correct.Render(card.Item.Answer))

		for {
			lipgloss.Fprint(out, theme.Hint.Render("Rate 1=Again 2=Hard 3=Good 4=Easy: "))
			line, ok := readLine()
			if !ok || line == "q" {
				break loop
			}
			rating, err := spacedrep.ParseRating(line)
			if err != nil {
				lipgloss.Fprintln(out, theme.Incorrect.Render("Please answer 1-4 or a rating name."))
				continue
			}
			res, err := rv.Grade(card.Item.ID, rating)
			if err != nil {
				lipgloss.Fprintln(out, theme.Incorrect.Render(err.Error()))
				break loop
			}
			lipgloss.Fprintln(out, describeResult(res, table, time.Now()))
			if res.Retired {
				mastered = append(mastered, card.Item)
			}
			break
		}
	}

	printReviewSummary(out, rv)
	return mastered
}

// awardReview grants the flashcard reward for a finished sitting plus one
// mastery reward per retired word. Failures are logged.
func awardReview(ctx context.Context, svc *rewards.Service, log *zap.Logger, learnerID, sessionID string, sum session.Summary, mastered []vocab.Item) {
	if _, err := svc.AwardReview(ctx, learnerID, sessionID, sum.CorrectCount, sum.TotalReviewed); err != nil {
		log.Warn("reward not saved", zap.String("session_id", sessionID), zap.Error(err))
	}
	for _, it := range mastered {
		if _, err := svc.AwardMastery(ctx, learnerID, sessionID, it.Answer); err != nil {
			log.Warn("reward not saved",
				zap.String("session_id", sessionID),
				zap.String("item_id", it.ID),
				zap.Error(err))
		}
	}
}

func printSessionAwards(out io.Writer, svc *rewards.Service) {
	for _, a := range svc.SessionAwards {
		lipgloss.Fprintf(out, "+%d XP %s %s\n", a.XP,
			theme.Rarity(a.Rarity).Render(a.Rarity.DisplayName()), theme.Hint.Render(a.Reason))
	}
	if len(svc.SessionAwards) > 1 {
		lipgloss.Fprintln(out, theme.Title.Render(fmt.Sprintf("%d XP this session", svc.SessionXP())))
	}
}

func describeResult(res session.ReviewResult, table spacedrep.Table, now time.Time) string {
	switch {
	case res.Retired:
		return theme.Correct.Render(fmt.Sprintf("%s! This word is retired.", table.LevelName(res.To)))
	case !res.Recalled:
		return theme.Incorrect.Render(fmt.Sprintf("Back to %s, due again now.", table.LevelName(res.To)))
	default:
		days := (&spacedrep.Schedule{DueAt: res.DueAt}).DaysUntilReview(now)
		return theme.Correct.Render(fmt.Sprintf("%s -> %s, next review in %d day(s).",
			table.LevelName(res.From), table.LevelName(res.To), days))
	}
}

func printReviewSummary(out io.Writer, rv *session.Review) {
	sum, err := rv.Summary()
	if err != nil {
		p := rv.Progress()
		lipgloss.Fprintln(out, theme.Hint.Render(fmt.Sprintf("Stopped after %d of %d items.", p.Done, p.Total)))
		return
	}
	pct := int(math.Round(sum.Accuracy() * 100))
	lipgloss.Fprintln(out, theme.Title.Render("Session complete"))
	lipgloss.Fprintf(out, "%d reviewed, %d recalled %s %d%%\n",
		sum.TotalReviewed, sum.CorrectCount, theme.Bar(pct, 20), pct)
}

func drainWarnings(out io.Writer, warnings <-chan session.CommitWarning) {
	for {
		select {
		case w := <-warnings:
			lipgloss.Fprintln(out, theme.Warn.Render("warning: "+w.Error()))
		default:
			return
		}
	}
}

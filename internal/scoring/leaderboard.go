// Package scoring computes quiz reports and leaderboards. Everything here
// is a pure function of (quiz, responses, participants); nothing is cached
// or persisted, so every report view recomputes from the stored records.
package scoring

import (
	"sort"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/google/uuid"
)

// DefaultLeaderboardSize is the top-N cutoff when the caller passes 0.
const DefaultLeaderboardSize = 5

// Entry is one ranked leaderboard row.
type Entry struct {
	UserID  int    `json:"user_id"`
	Name    string `json:"name"`
	Correct int    `json:"correct"`
	// TotalTimeSeconds sums the answer times, with every unanswered
	// question charged at the full per-question timer. Whole seconds,
	// rounded.
	TotalTimeSeconds int64 `json:"total_time_seconds"`
}

// QuestionBreakdown lists the recorded responses for one question, in
// authoring order rather than database return order.
type QuestionBreakdown struct {
	QuestionID uuid.UUID        `json:"question_id"`
	Prompt     string           `json:"prompt"`
	Responses  []model.Response `json:"responses"`
}

// Report is the full derived report for one session.
type Report struct {
	Leaderboard []Entry             `json:"leaderboard"`
	Questions   []QuestionBreakdown `json:"questions"`
}

type tally struct {
	correct int
	totalMS int64
}

// Compute derives the leaderboard for one session.
//
// Correctness uses each response's snapshotted CorrectOption, so an answer
// key edited after the fact never rewrites historical scores. A registered
// participant with no response for a question is charged the full timer
// duration for it; non-responders therefore cannot out-rank responders by
// accruing zero time. Responses referencing unknown questions are dropped
// rather than treated as fatal.
func Compute(quiz *model.Quiz, responses []model.Response, participants []model.QuizParticipant, topN int) []Entry {
	if quiz == nil {
		return nil
	}
	if topN <= 0 {
		topN = DefaultLeaderboardSize
	}

	known := make(map[uuid.UUID]struct{}, len(quiz.Questions))
	for _, q := range quiz.Questions {
		known[q.ID] = struct{}{}
	}

	names := make(map[int]string, len(participants))
	for _, p := range participants {
		names[p.UserID] = p.Name
	}

	tallies := make(map[int]*tally)
	answered := make(map[uuid.UUID]map[int]struct{}, len(quiz.Questions))

	for _, r := range responses {
		if _, ok := known[r.QuestionID]; !ok {
			continue
		}
		if byUser := answered[r.QuestionID]; byUser != nil {
			if _, dup := byUser[r.UserID]; dup {
				continue // storage enforces one-shot; first record wins
			}
		} else {
			answered[r.QuestionID] = make(map[int]struct{})
		}
		answered[r.QuestionID][r.UserID] = struct{}{}

		t := tallies[r.UserID]
		if t == nil {
			t = &tally{}
			tallies[r.UserID] = t
		}
		if r.SelectedOption == r.CorrectOption {
			t.correct++
		}
		t.totalMS += r.TimeTakenMS
	}

	// Charge the full timer for every (question, registered participant)
	// pair without a response.
	penaltyMS := int64(quiz.TimerSeconds) * 1000
	for _, q := range quiz.Questions {
		byUser := answered[q.ID]
		for _, p := range participants {
			if byUser != nil {
				if _, ok := byUser[p.UserID]; ok {
					continue
				}
			}
			t := tallies[p.UserID]
			if t == nil {
				t = &tally{}
				tallies[p.UserID] = t
			}
			t.totalMS += penaltyMS
		}
	}

	entries := make([]Entry, 0, len(tallies))
	for userID, t := range tallies {
		entries = append(entries, Entry{
			UserID:           userID,
			Name:             names[userID],
			Correct:          t.correct,
			TotalTimeSeconds: (t.totalMS + 500) / 1000,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Correct != entries[j].Correct {
			return entries[i].Correct > entries[j].Correct
		}
		if entries[i].TotalTimeSeconds != entries[j].TotalTimeSeconds {
			return entries[i].TotalTimeSeconds < entries[j].TotalTimeSeconds
		}
		return entries[i].UserID < entries[j].UserID
	})

	if len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}

// BuildReport groups responses per question in authoring order and attaches
// the computed leaderboard.
func BuildReport(quiz *model.Quiz, responses []model.Response, participants []model.QuizParticipant, topN int) Report {
	report := Report{
		Leaderboard: Compute(quiz, responses, participants, topN),
	}
	if quiz == nil {
		return report
	}

	grouped := make(map[uuid.UUID][]model.Response, len(quiz.Questions))
	for _, r := range responses {
		grouped[r.QuestionID] = append(grouped[r.QuestionID], r)
	}

	report.Questions = make([]QuestionBreakdown, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		report.Questions = append(report.Questions, QuestionBreakdown{
			QuestionID: q.ID,
			Prompt:     q.Prompt,
			Responses:  grouped[q.ID],
		})
	}
	return report
}

package scoring

import (
	"testing"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/google/uuid"
)

func testQuiz(timerSeconds int, questionCount int) *model.Quiz {
	quiz := &model.Quiz{
		ID:           uuid.New(),
		TimerSeconds: timerSeconds,
	}
	for i := 0; i < questionCount; i++ {
		quiz.Questions = append(quiz.Questions, model.Question{
			ID:            uuid.New(),
			Prompt:        "question",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: 1,
		})
	}
	return quiz
}

func participants(ids ...int) []model.QuizParticipant {
	var list []model.QuizParticipant
	for _, id := range ids {
		list = append(list, model.QuizParticipant{UserID: id, Name: "user"})
	}
	return list
}

func TestComputeTwoParticipantScenario(t *testing.T) {
	// alice answers Q1 correctly in 3000ms and Q2 incorrectly in 10000ms;
	// bob answers only Q1, incorrectly, in 5000ms. bob's unanswered Q2
	// contributes the full 10s.
	quiz := testQuiz(10, 2)
	alice, bob := 1, 2

	responses := []model.Response{
		{QuestionID: quiz.Questions[0].ID, UserID: alice, SelectedOption: 1, CorrectOption: 1, TimeTakenMS: 3000},
		{QuestionID: quiz.Questions[1].ID, UserID: alice, SelectedOption: 0, CorrectOption: 1, TimeTakenMS: 10000},
		{QuestionID: quiz.Questions[0].ID, UserID: bob, SelectedOption: 2, CorrectOption: 1, TimeTakenMS: 5000},
	}

	entries := Compute(quiz, responses, participants(alice, bob), 5)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].UserID != alice || entries[0].Correct != 1 || entries[0].TotalTimeSeconds != 13 {
		t.Fatalf("unexpected first entry: %+v", entries[0])
	}
	if entries[1].UserID != bob || entries[1].Correct != 0 || entries[1].TotalTimeSeconds != 15 {
		t.Fatalf("unexpected second entry: %+v", entries[1])
	}
}

func TestComputeNonResponderPenalty(t *testing.T) {
	// A registered participant with zero responses for a 3-question quiz
	// with timer=10 accrues exactly 30 seconds.
	quiz := testQuiz(10, 3)

	entries := Compute(quiz, nil, participants(7), 5)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if entries[0].TotalTimeSeconds != 30 {
		t.Fatalf("expected 30s penalty, got %d", entries[0].TotalTimeSeconds)
	}
	if entries[0].Correct != 0 {
		t.Fatalf("expected 0 correct, got %d", entries[0].Correct)
	}
}

func TestComputeSnapshotScoring(t *testing.T) {
	// The response carries CorrectOption=2 as snapshotted at submission.
	// The quiz's current answer key says 1. The snapshot must win.
	quiz := testQuiz(10, 1)

	responses := []model.Response{
		{QuestionID: quiz.Questions[0].ID, UserID: 1, SelectedOption: 2, CorrectOption: 2, TimeTakenMS: 1000},
	}

	entries := Compute(quiz, responses, participants(1), 5)
	if entries[0].Correct != 1 {
		t.Fatalf("expected snapshot answer to score as correct, got %d", entries[0].Correct)
	}
}

func TestComputeOrderingAndTruncation(t *testing.T) {
	quiz := testQuiz(10, 1)
	qid := quiz.Questions[0].ID

	var responses []model.Response
	var ps []model.QuizParticipant
	// users 1..7: odd users correct; faster user wins ties.
	for id := 1; id <= 7; id++ {
		selected := 0
		if id%2 == 1 {
			selected = 1
		}
		responses = append(responses, model.Response{
			QuestionID:     qid,
			UserID:         id,
			SelectedOption: selected,
			CorrectOption:  1,
			TimeTakenMS:    int64(id) * 1000,
		})
		ps = append(ps, model.QuizParticipant{UserID: id})
	}

	entries := Compute(quiz, responses, ps, 5)
	if len(entries) != 5 {
		t.Fatalf("expected top 5, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Correct > prev.Correct {
			t.Fatalf("correct ordering violated at %d: %+v before %+v", i, prev, cur)
		}
		if cur.Correct == prev.Correct && cur.TotalTimeSeconds < prev.TotalTimeSeconds {
			t.Fatalf("time tie-break violated at %d: %+v before %+v", i, prev, cur)
		}
	}
	if entries[0].UserID != 1 {
		t.Fatalf("expected fastest correct user first, got %+v", entries[0])
	}
}

func TestComputeIgnoresUnknownQuestions(t *testing.T) {
	quiz := testQuiz(10, 1)

	responses := []model.Response{
		{QuestionID: uuid.New(), UserID: 1, SelectedOption: 1, CorrectOption: 1, TimeTakenMS: 1000},
	}

	entries := Compute(quiz, responses, participants(1), 5)
	// The stray response is dropped; the participant is scored as a
	// non-responder for the quiz's one real question.
	if entries[0].Correct != 0 || entries[0].TotalTimeSeconds != 10 {
		t.Fatalf("unexpected entry after stray response: %+v", entries[0])
	}
}

func TestComputeEmptyInputs(t *testing.T) {
	if entries := Compute(nil, nil, nil, 5); entries != nil {
		t.Fatalf("expected nil for nil quiz, got %+v", entries)
	}
	quiz := testQuiz(10, 2)
	if entries := Compute(quiz, nil, nil, 5); len(entries) != 0 {
		t.Fatalf("expected empty leaderboard with no participants, got %+v", entries)
	}
}

func TestBuildReportAuthoringOrder(t *testing.T) {
	quiz := testQuiz(10, 3)

	// Responses arrive in reverse question order; the report must follow
	// authoring order.
	responses := []model.Response{
		{QuestionID: quiz.Questions[2].ID, UserID: 1, SelectedOption: 1, CorrectOption: 1, TimeTakenMS: 1000},
		{QuestionID: quiz.Questions[0].ID, UserID: 1, SelectedOption: 1, CorrectOption: 1, TimeTakenMS: 1000},
	}

	report := BuildReport(quiz, responses, participants(1), 5)
	if len(report.Questions) != 3 {
		t.Fatalf("expected 3 question groups, got %d", len(report.Questions))
	}
	for i, q := range report.Questions {
		if q.QuestionID != quiz.Questions[i].ID {
			t.Fatalf("question %d out of authoring order", i)
		}
	}
	if len(report.Questions[1].Responses) != 0 {
		t.Fatalf("expected no responses for unanswered question")
	}
}

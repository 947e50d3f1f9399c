package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
	"github.com/google/uuid"
)

// ErrBadQuestion is returned when a question payload's answer index does
// not point at one of its options.
var ErrBadQuestion = errors.New("correct_option out of range")

// ErrBadChapter is returned when the chapter does not belong to the
// caller's institute.
var ErrBadChapter = errors.New("chapter not found in institute")

// QuizService handles quiz authoring. Live transitions live in LiveService;
// this layer only ever touches quizzes that are not running.
type QuizService struct {
	quizRepo     *repository.QuizRepository
	syllabusRepo *repository.SyllabusRepository
}

// NewQuizService creates a new QuizService.
func NewQuizService(quizRepo *repository.QuizRepository, syllabusRepo *repository.SyllabusRepository) *QuizService {
	return &QuizService{quizRepo: quizRepo, syllabusRepo: syllabusRepo}
}

// Create authors a new quiz under a chapter of the institute's syllabus.
// Question IDs are minted here and stay stable for the quiz's lifetime;
// responses reference them across edits.
func (s *QuizService) Create(ctx context.Context, inst *model.Institute, authorID int, req *model.CreateQuizRequest) (*model.Quiz, error) {
	if _, err := s.syllabusRepo.ResolvePath(ctx, inst.ID, req.ChapterID); err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrBadChapter
		}
		return nil, fmt.Errorf("resolve chapter: %w", err)
	}

	questions, err := buildQuestions(req.Questions)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		InstituteID:  inst.ID,
		Title:        req.Title,
		AuthorID:     authorID,
		BoardID:      req.BoardID,
		StandardID:   req.StandardID,
		SubjectID:    req.SubjectID,
		ChapterID:    req.ChapterID,
		Questions:    questions,
		TimerSeconds: req.TimerSeconds,
		ScheduledAt:  req.ScheduledAt,
		LiveState:    model.LiveStateNotStarted,
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return quiz, nil
}

// Get retrieves a quiz with its answer keys. Staff view; participants go
// through LiveService.State instead.
func (s *QuizService) Get(ctx context.Context, inst *model.Institute, id uuid.UUID) (*model.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(ctx, inst.ID, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	return quiz, nil
}

// List retrieves quizzes, optionally scoped to one chapter.
func (s *QuizService) List(ctx context.Context, inst *model.Institute, chapterID, limit, offset int) ([]model.Quiz, int, error) {
	return s.quizRepo.ListByChapter(ctx, inst.ID, chapterID, limit, offset)
}

// Update edits a quiz that has not started. Replacing the question list
// mints fresh question IDs; a quiz that already ran keeps its history under
// the old IDs because reports score against snapshotted responses.
func (s *QuizService) Update(ctx context.Context, inst *model.Institute, id uuid.UUID, req *model.UpdateQuizRequest) (*model.Quiz, error) {
	quiz, err := s.Get(ctx, inst, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		quiz.Title = req.Title
	}
	if req.ChapterID != nil {
		if _, err := s.syllabusRepo.ResolvePath(ctx, inst.ID, *req.ChapterID); err != nil {
			if repository.IsNotFound(err) {
				return nil, ErrBadChapter
			}
			return nil, fmt.Errorf("resolve chapter: %w", err)
		}
		quiz.ChapterID = *req.ChapterID
	}
	if req.TimerSeconds != nil {
		quiz.TimerSeconds = *req.TimerSeconds
	}
	if req.ScheduledAt != nil {
		quiz.ScheduledAt = *req.ScheduledAt
	}
	if len(req.Questions) > 0 {
		questions, err := buildQuestions(req.Questions)
		if err != nil {
			return nil, err
		}
		quiz.Questions = questions
	}

	if err := s.quizRepo.Update(ctx, quiz); err != nil {
		if errors.Is(err, repository.ErrStateConflict) {
			return nil, ErrQuizAlreadyLive
		}
		return nil, err
	}
	return quiz, nil
}

// Delete removes a quiz that is not currently running.
func (s *QuizService) Delete(ctx context.Context, inst *model.Institute, id uuid.UUID) error {
	err := s.quizRepo.Delete(ctx, inst.ID, id)
	if errors.Is(err, repository.ErrStateConflict) {
		return ErrQuizAlreadyLive
	}
	return err
}

// Reschedule resets an ended quiz to NOT_STARTED under a new date. The
// previous run's session and responses stay behind untouched.
func (s *QuizService) Reschedule(ctx context.Context, inst *model.Institute, id uuid.UUID, scheduledAt time.Time) (*model.Quiz, error) {
	err := s.quizRepo.Reschedule(ctx, inst.ID, id, scheduledAt)
	if errors.Is(err, repository.ErrStateConflict) {
		quiz, readErr := s.quizRepo.GetByID(ctx, inst.ID, id)
		if readErr != nil {
			if repository.IsNotFound(readErr) {
				return nil, ErrQuizNotFound
			}
			return nil, readErr
		}
		if quiz.LiveState == model.LiveStateRunning {
			return nil, ErrQuizAlreadyLive
		}
		return nil, ErrQuizNotEnded
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, inst, id)
}

func buildQuestions(payloads []model.QuestionPayload) ([]model.Question, error) {
	questions := make([]model.Question, 0, len(payloads))
	for i, p := range payloads {
		if p.CorrectOption < 0 || p.CorrectOption >= len(p.Options) {
			return nil, fmt.Errorf("question %d: %w", i, ErrBadQuestion)
		}
		questions = append(questions, model.Question{
			ID:            uuid.New(),
			Prompt:        p.Prompt,
			Options:       p.Options,
			CorrectOption: p.CorrectOption,
		})
	}
	return questions, nil
}

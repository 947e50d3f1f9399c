package service

import (
	"context"
	"errors"

	"github.com/edumitra/edumitra-backend/internal/model"
	"github.com/edumitra/edumitra-backend/internal/repository"
)

// ErrSyllabusNodeNotFound is returned for lookups under a parent node that
// does not belong to the institute.
var ErrSyllabusNodeNotFound = errors.New("syllabus node not found")

// SyllabusService handles the board → standard → subject → chapter tree.
// Parent ownership is checked on writes so one institute cannot attach
// nodes under another's tree.
type SyllabusService struct {
	repo *repository.SyllabusRepository
}

// NewSyllabusService creates a new SyllabusService.
func NewSyllabusService(repo *repository.SyllabusRepository) *SyllabusService {
	return &SyllabusService{repo: repo}
}

// Boards lists the institute's boards.
func (s *SyllabusService) Boards(ctx context.Context, inst *model.Institute) ([]model.Board, error) {
	return s.repo.ListBoards(ctx, inst.ID)
}

// Standards lists the standards under a board of the institute.
func (s *SyllabusService) Standards(ctx context.Context, inst *model.Institute, boardID int) ([]model.Standard, error) {
	if err := s.ownsBoard(ctx, inst, boardID); err != nil {
		return nil, err
	}
	return s.repo.ListStandards(ctx, boardID)
}

// Subjects lists the subjects under a standard.
func (s *SyllabusService) Subjects(ctx context.Context, standardID int) ([]model.Subject, error) {
	return s.repo.ListSubjects(ctx, standardID)
}

// Chapters lists the chapters under a subject in authoring order.
func (s *SyllabusService) Chapters(ctx context.Context, subjectID int) ([]model.Chapter, error) {
	return s.repo.ListChapters(ctx, subjectID)
}

// Path resolves a chapter to its full display path.
func (s *SyllabusService) Path(ctx context.Context, inst *model.Institute, chapterID int) (*model.SyllabusPath, error) {
	path, err := s.repo.ResolvePath(ctx, inst.ID, chapterID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrSyllabusNodeNotFound
		}
		return nil, err
	}
	return path, nil
}

// AddBoard creates a board under the institute.
func (s *SyllabusService) AddBoard(ctx context.Context, inst *model.Institute, req *model.CreateBoardRequest) (*model.Board, error) {
	board := &model.Board{InstituteID: inst.ID, Name: req.Name}
	if err := s.repo.CreateBoard(ctx, board); err != nil {
		return nil, err
	}
	return board, nil
}

// AddStandard creates a standard under one of the institute's boards.
func (s *SyllabusService) AddStandard(ctx context.Context, inst *model.Institute, req *model.CreateStandardRequest) (*model.Standard, error) {
	if err := s.ownsBoard(ctx, inst, req.BoardID); err != nil {
		return nil, err
	}
	standard := &model.Standard{BoardID: req.BoardID, Name: req.Name}
	if err := s.repo.CreateStandard(ctx, standard); err != nil {
		return nil, err
	}
	return standard, nil
}

// AddSubject creates a subject under a standard.
func (s *SyllabusService) AddSubject(ctx context.Context, req *model.CreateSubjectRequest) (*model.Subject, error) {
	subject := &model.Subject{StandardID: req.StandardID, Name: req.Name}
	if err := s.repo.CreateSubject(ctx, subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// AddChapter creates a chapter under a subject.
func (s *SyllabusService) AddChapter(ctx context.Context, req *model.CreateChapterRequest) (*model.Chapter, error) {
	chapter := &model.Chapter{SubjectID: req.SubjectID, Name: req.Name, OrderNum: req.OrderNum}
	if err := s.repo.CreateChapter(ctx, chapter); err != nil {
		return nil, err
	}
	return chapter, nil
}

// RemoveChapter deletes a chapter after checking it resolves within the
// institute. Quizzes referencing it block the delete at the FK.
func (s *SyllabusService) RemoveChapter(ctx context.Context, inst *model.Institute, chapterID int) error {
	if _, err := s.Path(ctx, inst, chapterID); err != nil {
		return err
	}
	return s.repo.DeleteChapter(ctx, chapterID)
}

func (s *SyllabusService) ownsBoard(ctx context.Context, inst *model.Institute, boardID int) error {
	boards, err := s.repo.ListBoards(ctx, inst.ID)
	if err != nil {
		return err
	}
	for _, b := range boards {
		if b.ID == boardID {
			return nil
		}
	}
	return ErrSyllabusNodeNotFound
}

package model

// The syllabus tree: board → standard → subject → chapter. Quizzes and
// students reference nodes of this tree by ID; the lookup service resolves
// IDs back to display names.

// Board is an examination board (e.g. CBSE, ICSE) within an institute.
type Board struct {
	ID          int    `json:"id"`
	InstituteID int    `json:"institute_id"`
	Name        string `json:"name"`
}

// Standard is a class level under a board (e.g. "Class 10").
type Standard struct {
	ID      int    `json:"id"`
	BoardID int    `json:"board_id"`
	Name    string `json:"name"`
}

// Subject belongs to a standard (e.g. "Mathematics").
type Subject struct {
	ID         int    `json:"id"`
	StandardID int    `json:"standard_id"`
	Name       string `json:"name"`
}

// Chapter belongs to a subject.
type Chapter struct {
	ID        int    `json:"id"`
	SubjectID int    `json:"subject_id"`
	Name      string `json:"name"`
	OrderNum  int    `json:"order_num"`
}

// SyllabusPath is the resolved display path for one chapter.
type SyllabusPath struct {
	Board    string `json:"board"`
	Standard string `json:"standard"`
	Subject  string `json:"subject"`
	Chapter  string `json:"chapter"`
}

// CreateBoardRequest is the payload for adding a board.
type CreateBoardRequest struct {
	Name string `json:"name" binding:"required,min=2,max=100"`
}

// CreateStandardRequest is the payload for adding a standard to a board.
type CreateStandardRequest struct {
	BoardID int    `json:"board_id" binding:"required"`
	Name    string `json:"name" binding:"required,min=1,max=100"`
}

// CreateSubjectRequest is the payload for adding a subject to a standard.
type CreateSubjectRequest struct {
	StandardID int    `json:"standard_id" binding:"required"`
	Name       string `json:"name" binding:"required,min=1,max=100"`
}

// CreateChapterRequest is the payload for adding a chapter to a subject.
type CreateChapterRequest struct {
	SubjectID int    `json:"subject_id" binding:"required"`
	Name      string `json:"name" binding:"required,min=1,max=150"`
	OrderNum  int    `json:"order_num" binding:"min=0"`
}

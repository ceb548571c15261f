package model

const (
	MinQuestionOptions = 2
	MaxQuestionOptions = 6
)

type TestQuestion struct {
	ID            int64    `json:"id"`
	TestID        int64    `json:"test_id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"` // zero-based index into Options
	OrderIndex    int      `json:"order_index"`
}

type QuestionFields struct {
	TestID        int64    `json:"test_id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correct_answer"`
	OrderIndex    int      `json:"order_index"`
}

type QuestionPatch struct {
	Question      *string  `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer *int     `json:"correct_answer"`
	OrderIndex    *int     `json:"order_index"`
}

func (p QuestionPatch) Apply(q *TestQuestion) {
	if p.Question != nil {
		q.Question = *p.Question
	}
	if p.Options != nil {
		q.Options = p.Options
	}
	if p.CorrectAnswer != nil {
		q.CorrectAnswer = *p.CorrectAnswer
	}
	if p.OrderIndex != nil {
		q.OrderIndex = *p.OrderIndex
	}
}

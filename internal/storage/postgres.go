package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"coursehub/internal/common"
	"coursehub/internal/domain/model"

	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres is the relational backend. All statements are parameterized;
// referential integrity and cascades are enforced by the schema.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Name() string { return "postgres" }

func (p *Postgres) Ping(ctx context.Context) error {
	if err := p.db.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping: %v: %w", err, common.ErrBackendUnavailable)
	}
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		password VARCHAR(255) NOT NULL,
		is_admin BOOLEAN DEFAULT FALSE,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS courses (
		id SERIAL PRIMARY KEY,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		order_index INTEGER DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS lessons (
		id SERIAL PRIMARY KEY,
		course_id INTEGER REFERENCES courses(id) ON DELETE CASCADE,
		title VARCHAR(255) NOT NULL,
		content TEXT NOT NULL,
		order_index INTEGER DEFAULT 0,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS tests (
		id SERIAL PRIMARY KEY,
		course_id INTEGER REFERENCES courses(id) ON DELETE CASCADE,
		lesson_id INTEGER REFERENCES lessons(id) ON DELETE SET NULL,
		title VARCHAR(255) NOT NULL,
		description TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS test_questions (
		id SERIAL PRIMARY KEY,
		test_id INTEGER REFERENCES tests(id) ON DELETE CASCADE,
		question TEXT NOT NULL,
		options TEXT NOT NULL,
		correct_answer INTEGER NOT NULL,
		order_index INTEGER DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS test_results (
		id SERIAL PRIMARY KEY,
		user_id INTEGER REFERENCES users(id) ON DELETE CASCADE,
		test_id INTEGER REFERENCES tests(id) ON DELETE CASCADE,
		score INTEGER NOT NULL,
		total_questions INTEGER NOT NULL,
		answers TEXT,
		created_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
	)`,
}

// EnsureSchema creates the tables if they do not exist. Best effort at
// startup; a down database just leaves this backend unavailable.
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return classify("postgres.EnsureSchema", err)
		}
	}
	return nil
}

// classify maps driver errors onto the shared taxonomy. Unique
// violations become conflicts, missing rows become not-found, foreign
// key violations are caller mistakes, and everything else is treated as
// backend unavailability so the resolver falls through.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w", op, common.ErrConflict)
		case "23503":
			return fmt.Errorf("%s: referenced record does not exist: %w", op, common.ErrValidation)
		}
	}
	return fmt.Errorf("%s: %v: %w", op, err, common.ErrBackendUnavailable)
}

// --- users ---

const userColumns = "id, email, name, password, is_admin, created_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	u := &model.User{}
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := p.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, classify("postgres.ListUsers", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, classify("postgres.ListUsers", err)
		}
		users = append(users, *u)
	}
	return users, classify("postgres.ListUsers", rows.Err())
}

func (p *Postgres) GetUser(ctx context.Context, id int64) (*model.User, error) {
	u, err := scanUser(p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, classify("postgres.GetUser", err)
	}
	return u, nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	u, err := scanUser(p.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, classify("postgres.GetUserByEmail", err)
	}
	return u, nil
}

func (p *Postgres) CreateUser(ctx context.Context, nu model.NewUser) (*model.User, error) {
	u := &model.User{
		Email:        nu.Email,
		Name:         nu.Name,
		PasswordHash: nu.PasswordHash,
		IsAdmin:      nu.IsAdmin,
	}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, password, is_admin)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		nu.Email, nu.Name, nu.PasswordHash, nu.IsAdmin,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		return nil, classify("postgres.CreateUser", err)
	}
	return u, nil
}

// --- courses ---

func (p *Postgres) ListCourses(ctx context.Context) ([]model.Course, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, title, description, order_index, created_at
		 FROM courses ORDER BY order_index ASC, id ASC`)
	if err != nil {
		return nil, classify("postgres.ListCourses", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.Title, &c.Description, &c.OrderIndex, &c.CreatedAt); err != nil {
			return nil, classify("postgres.ListCourses", err)
		}
		courses = append(courses, c)
	}
	return courses, classify("postgres.ListCourses", rows.Err())
}

func (p *Postgres) GetCourse(ctx context.Context, id int64) (*model.Course, error) {
	c := &model.Course{}
	err := p.db.QueryRowContext(ctx,
		`SELECT id, title, description, order_index, created_at FROM courses WHERE id = $1`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.OrderIndex, &c.CreatedAt)
	if err != nil {
		return nil, classify("postgres.GetCourse", err)
	}
	return c, nil
}

func (p *Postgres) CreateCourse(ctx context.Context, f model.CourseFields) (*model.Course, error) {
	c := &model.Course{Title: f.Title, Description: f.Description, OrderIndex: f.OrderIndex}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO courses (title, description, order_index)
		 VALUES ($1, $2, $3) RETURNING id, created_at`,
		f.Title, f.Description, f.OrderIndex,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return nil, classify("postgres.CreateCourse", err)
	}
	return c, nil
}

func (p *Postgres) UpdateCourse(ctx context.Context, id int64, patch model.CoursePatch) (*model.Course, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("postgres.UpdateCourse", err)
	}
	defer tx.Rollback()

	c := &model.Course{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, title, description, order_index, created_at
		 FROM courses WHERE id = $1 FOR UPDATE`, id,
	).Scan(&c.ID, &c.Title, &c.Description, &c.OrderIndex, &c.CreatedAt)
	if err != nil {
		return nil, classify("postgres.UpdateCourse", err)
	}

	patch.Apply(c)
	_, err = tx.ExecContext(ctx,
		`UPDATE courses SET title = $1, description = $2, order_index = $3 WHERE id = $4`,
		c.Title, c.Description, c.OrderIndex, c.ID)
	if err != nil {
		return nil, classify("postgres.UpdateCourse", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("postgres.UpdateCourse", err)
	}
	return c, nil
}

func (p *Postgres) DeleteCourse(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return false, classify("postgres.DeleteCourse", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// --- lessons ---

func (p *Postgres) ListLessons(ctx context.Context, f LessonFilter) ([]model.Lesson, error) {
	query := `SELECT id, course_id, title, content, order_index, created_at FROM lessons`
	args := []interface{}{}
	if f.CourseID != nil {
		query += ` WHERE course_id = $1`
		args = append(args, *f.CourseID)
	}
	query += ` ORDER BY order_index ASC, id ASC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("postgres.ListLessons", err)
	}
	defer rows.Close()

	var lessons []model.Lesson
	for rows.Next() {
		var l model.Lesson
		if err := rows.Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.OrderIndex, &l.CreatedAt); err != nil {
			return nil, classify("postgres.ListLessons", err)
		}
		lessons = append(lessons, l)
	}
	return lessons, classify("postgres.ListLessons", rows.Err())
}

func (p *Postgres) GetLesson(ctx context.Context, id int64) (*model.Lesson, error) {
	l := &model.Lesson{}
	err := p.db.QueryRowContext(ctx,
		`SELECT id, course_id, title, content, order_index, created_at FROM lessons WHERE id = $1`, id,
	).Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.OrderIndex, &l.CreatedAt)
	if err != nil {
		return nil, classify("postgres.GetLesson", err)
	}
	return l, nil
}

func (p *Postgres) CreateLesson(ctx context.Context, f model.LessonFields) (*model.Lesson, error) {
	l := &model.Lesson{CourseID: f.CourseID, Title: f.Title, Content: f.Content, OrderIndex: f.OrderIndex}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO lessons (course_id, title, content, order_index)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		f.CourseID, f.Title, f.Content, f.OrderIndex,
	).Scan(&l.ID, &l.CreatedAt)
	if err != nil {
		return nil, classify("postgres.CreateLesson", err)
	}
	return l, nil
}

func (p *Postgres) UpdateLesson(ctx context.Context, id int64, patch model.LessonPatch) (*model.Lesson, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("postgres.UpdateLesson", err)
	}
	defer tx.Rollback()

	l := &model.Lesson{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, course_id, title, content, order_index, created_at
		 FROM lessons WHERE id = $1 FOR UPDATE`, id,
	).Scan(&l.ID, &l.CourseID, &l.Title, &l.Content, &l.OrderIndex, &l.CreatedAt)
	if err != nil {
		return nil, classify("postgres.UpdateLesson", err)
	}

	patch.Apply(l)
	_, err = tx.ExecContext(ctx,
		`UPDATE lessons SET course_id = $1, title = $2, content = $3, order_index = $4 WHERE id = $5`,
		l.CourseID, l.Title, l.Content, l.OrderIndex, l.ID)
	if err != nil {
		return nil, classify("postgres.UpdateLesson", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("postgres.UpdateLesson", err)
	}
	return l, nil
}

func (p *Postgres) DeleteLesson(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id)
	if err != nil {
		return false, classify("postgres.DeleteLesson", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// --- tests ---

func (p *Postgres) ListTests(ctx context.Context, f TestFilter) ([]model.Test, error) {
	query := `SELECT id, course_id, lesson_id, title, description, created_at FROM tests`
	args := []interface{}{}
	if f.CourseID != nil {
		query += ` WHERE course_id = $1`
		args = append(args, *f.CourseID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("postgres.ListTests", err)
	}
	defer rows.Close()

	var tests []model.Test
	for rows.Next() {
		var t model.Test
		if err := rows.Scan(&t.ID, &t.CourseID, &t.LessonID, &t.Title, &t.Description, &t.CreatedAt); err != nil {
			return nil, classify("postgres.ListTests", err)
		}
		tests = append(tests, t)
	}
	return tests, classify("postgres.ListTests", rows.Err())
}

func (p *Postgres) GetTest(ctx context.Context, id int64) (*model.Test, error) {
	t := &model.Test{}
	err := p.db.QueryRowContext(ctx,
		`SELECT id, course_id, lesson_id, title, description, created_at FROM tests WHERE id = $1`, id,
	).Scan(&t.ID, &t.CourseID, &t.LessonID, &t.Title, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, classify("postgres.GetTest", err)
	}
	return t, nil
}

func (p *Postgres) CreateTest(ctx context.Context, f model.TestFields) (*model.Test, error) {
	t := &model.Test{CourseID: f.CourseID, LessonID: f.LessonID, Title: f.Title, Description: f.Description}
	err := p.db.QueryRowContext(ctx,
		`INSERT INTO tests (course_id, lesson_id, title, description)
		 VALUES ($1, $2, $3, $4) RETURNING id, created_at`,
		f.CourseID, f.LessonID, f.Title, f.Description,
	).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return nil, classify("postgres.CreateTest", err)
	}
	return t, nil
}

func (p *Postgres) UpdateTest(ctx context.Context, id int64, patch model.TestPatch) (*model.Test, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("postgres.UpdateTest", err)
	}
	defer tx.Rollback()

	t := &model.Test{}
	err = tx.QueryRowContext(ctx,
		`SELECT id, course_id, lesson_id, title, description, created_at
		 FROM tests WHERE id = $1 FOR UPDATE`, id,
	).Scan(&t.ID, &t.CourseID, &t.LessonID, &t.Title, &t.Description, &t.CreatedAt)
	if err != nil {
		return nil, classify("postgres.UpdateTest", err)
	}

	patch.Apply(t)
	_, err = tx.ExecContext(ctx,
		`UPDATE tests SET course_id = $1, lesson_id = $2, title = $3, description = $4 WHERE id = $5`,
		t.CourseID, t.LessonID, t.Title, t.Description, t.ID)
	if err != nil {
		return nil, classify("postgres.UpdateTest", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("postgres.UpdateTest", err)
	}
	return t, nil
}

func (p *Postgres) DeleteTest(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM tests WHERE id = $1`, id)
	if err != nil {
		return false, classify("postgres.DeleteTest", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// --- questions ---

func scanQuestion(row interface{ Scan(...interface{}) error }) (*model.TestQuestion, error) {
	q := &model.TestQuestion{}
	var options string
	if err := row.Scan(&q.ID, &q.TestID, &q.Question, &options, &q.CorrectAnswer, &q.OrderIndex); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(options), &q.Options); err != nil {
		return nil, fmt.Errorf("malformed options payload: %w", err)
	}
	return q, nil
}

func (p *Postgres) ListQuestions(ctx context.Context, testID int64) ([]model.TestQuestion, error) {
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, test_id, question, options, correct_answer, order_index
		 FROM test_questions WHERE test_id = $1 ORDER BY order_index ASC, id ASC`, testID)
	if err != nil {
		return nil, classify("postgres.ListQuestions", err)
	}
	defer rows.Close()

	var questions []model.TestQuestion
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, classify("postgres.ListQuestions", err)
		}
		questions = append(questions, *q)
	}
	return questions, classify("postgres.ListQuestions", rows.Err())
}

func (p *Postgres) GetQuestion(ctx context.Context, id int64) (*model.TestQuestion, error) {
	q, err := scanQuestion(p.db.QueryRowContext(ctx,
		`SELECT id, test_id, question, options, correct_answer, order_index
		 FROM test_questions WHERE id = $1`, id))
	if err != nil {
		return nil, classify("postgres.GetQuestion", err)
	}
	return q, nil
}

func (p *Postgres) CreateQuestion(ctx context.Context, f model.QuestionFields) (*model.TestQuestion, error) {
	options, err := json.Marshal(f.Options)
	if err != nil {
		return nil, fmt.Errorf("postgres.CreateQuestion: %w", err)
	}
	q := &model.TestQuestion{
		TestID:        f.TestID,
		Question:      f.Question,
		Options:       append([]string(nil), f.Options...),
		CorrectAnswer: f.CorrectAnswer,
		OrderIndex:    f.OrderIndex,
	}
	err = p.db.QueryRowContext(ctx,
		`INSERT INTO test_questions (test_id, question, options, correct_answer, order_index)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		f.TestID, f.Question, string(options), f.CorrectAnswer, f.OrderIndex,
	).Scan(&q.ID)
	if err != nil {
		return nil, classify("postgres.CreateQuestion", err)
	}
	return q, nil
}

func (p *Postgres) UpdateQuestion(ctx context.Context, id int64, patch model.QuestionPatch) (*model.TestQuestion, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("postgres.UpdateQuestion", err)
	}
	defer tx.Rollback()

	q, err := scanQuestion(tx.QueryRowContext(ctx,
		`SELECT id, test_id, question, options, correct_answer, order_index
		 FROM test_questions WHERE id = $1 FOR UPDATE`, id))
	if err != nil {
		return nil, classify("postgres.UpdateQuestion", err)
	}

	patch.Apply(q)
	options, err := json.Marshal(q.Options)
	if err != nil {
		return nil, fmt.Errorf("postgres.UpdateQuestion: %w", err)
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE test_questions SET question = $1, options = $2, correct_answer = $3, order_index = $4 WHERE id = $5`,
		q.Question, string(options), q.CorrectAnswer, q.OrderIndex, q.ID)
	if err != nil {
		return nil, classify("postgres.UpdateQuestion", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, classify("postgres.UpdateQuestion", err)
	}
	return q, nil
}

func (p *Postgres) DeleteQuestion(ctx context.Context, id int64) (bool, error) {
	res, err := p.db.ExecContext(ctx, `DELETE FROM test_questions WHERE id = $1`, id)
	if err != nil {
		return false, classify("postgres.DeleteQuestion", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// --- results ---

func scanResult(row interface{ Scan(...interface{}) error }) (*model.TestResult, error) {
	r := &model.TestResult{}
	var answers sql.NullString
	if err := row.Scan(&r.ID, &r.UserID, &r.TestID, &r.Score, &r.TotalQuestions, &answers, &r.CreatedAt); err != nil {
		return nil, err
	}
	if answers.Valid && answers.String != "" {
		if err := json.Unmarshal([]byte(answers.String), &r.Answers); err != nil {
			return nil, fmt.Errorf("malformed answers payload: %w", err)
		}
	}
	return r, nil
}

func (p *Postgres) ListResults(ctx context.Context, f ResultFilter) ([]model.TestResult, error) {
	query := `SELECT id, user_id, test_id, score, total_questions, answers, created_at FROM test_results`
	var args []interface{}
	var where []string
	if f.TestID != nil {
		args = append(args, *f.TestID)
		where = append(where, fmt.Sprintf("test_id = $%d", len(args)))
	}
	if f.UserID != nil {
		args = append(args, *f.UserID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}
	for i, cond := range where {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("postgres.ListResults", err)
	}
	defer rows.Close()

	var results []model.TestResult
	for rows.Next() {
		r, err := scanResult(rows)
		if err != nil {
			return nil, classify("postgres.ListResults", err)
		}
		results = append(results, *r)
	}
	return results, classify("postgres.ListResults", rows.Err())
}

func (p *Postgres) GetResult(ctx context.Context, id int64) (*model.TestResult, error) {
	r, err := scanResult(p.db.QueryRowContext(ctx,
		`SELECT id, user_id, test_id, score, total_questions, answers, created_at
		 FROM test_results WHERE id = $1`, id))
	if err != nil {
		return nil, classify("postgres.GetResult", err)
	}
	return r, nil
}

func (p *Postgres) CreateResult(ctx context.Context, f model.ResultFields) (*model.TestResult, error) {
	answers, err := json.Marshal(f.Answers)
	if err != nil {
		return nil, fmt.Errorf("postgres.CreateResult: %w", err)
	}
	r := &model.TestResult{
		UserID:         f.UserID,
		TestID:         f.TestID,
		Score:          f.Score,
		TotalQuestions: f.TotalQuestions,
		Answers:        append([]int(nil), f.Answers...),
	}
	err = p.db.QueryRowContext(ctx,
		`INSERT INTO test_results (user_id, test_id, score, total_questions, answers)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at`,
		f.UserID, f.TestID, f.Score, f.TotalQuestions, string(answers),
	).Scan(&r.ID, &r.CreatedAt)
	if err != nil {
		return nil, classify("postgres.CreateResult", err)
	}
	return r, nil
}

// --- seeding ---

// Seed replaces all table contents with the dataset and realigns the
// id sequences so newly created records continue past the fixtures.
func (p *Postgres) Seed(ctx context.Context, ds *Dataset) error {
	if err := p.EnsureSchema(ctx); err != nil {
		return err
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return classify("postgres.Seed", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`TRUNCATE users, courses, lessons, tests, test_questions, test_results RESTART IDENTITY CASCADE`); err != nil {
		return classify("postgres.Seed", err)
	}

	for _, u := range ds.Users {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, email, name, password, is_admin, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			u.ID, u.Email, u.Name, u.PasswordHash, u.IsAdmin, u.CreatedAt); err != nil {
			return classify("postgres.Seed", err)
		}
	}
	for _, c := range ds.Courses {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO courses (id, title, description, order_index, created_at) VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.Title, c.Description, c.OrderIndex, c.CreatedAt); err != nil {
			return classify("postgres.Seed", err)
		}
	}
	for _, l := range ds.Lessons {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO lessons (id, course_id, title, content, order_index, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			l.ID, l.CourseID, l.Title, l.Content, l.OrderIndex, l.CreatedAt); err != nil {
			return classify("postgres.Seed", err)
		}
	}
	for _, t := range ds.Tests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO tests (id, course_id, lesson_id, title, description, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
			t.ID, t.CourseID, t.LessonID, t.Title, t.Description, t.CreatedAt); err != nil {
			return classify("postgres.Seed", err)
		}
	}
	for _, q := range ds.TestQuestions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("postgres.Seed: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO test_questions (id, test_id, question, options, correct_answer, order_index) VALUES ($1, $2, $3, $4, $5, $6)`,
			q.ID, q.TestID, q.Question, string(options), q.CorrectAnswer, q.OrderIndex); err != nil {
			return classify("postgres.Seed", err)
		}
	}
	for _, r := range ds.TestResults {
		answers, err := json.Marshal(r.Answers)
		if err != nil {
			return fmt.Errorf("postgres.Seed: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO test_results (id, user_id, test_id, score, total_questions, answers, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			r.ID, r.UserID, r.TestID, r.Score, r.TotalQuestions, string(answers), r.CreatedAt); err != nil {
			return classify("postgres.Seed", err)
		}
	}

	sequences := map[string]int64{
		"users_id_seq":          ds.LastIDs.Users,
		"courses_id_seq":        ds.LastIDs.Courses,
		"lessons_id_seq":        ds.LastIDs.Lessons,
		"tests_id_seq":          ds.LastIDs.Tests,
		"test_questions_id_seq": ds.LastIDs.TestQuestions,
		"test_results_id_seq":   ds.LastIDs.TestResults,
	}
	for seq, last := range sequences {
		val := last
		isCalled := true
		if val < 1 {
			val = 1
			isCalled = false
		}
		if _, err := tx.ExecContext(ctx, `SELECT setval($1, $2, $3)`, seq, val, isCalled); err != nil {
			return classify("postgres.Seed", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return classify("postgres.Seed", err)
	}
	return nil
}

package data

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/uid"
)

func CreateQuestion(db *gorm.DB, question *models.Question) error {
	switch {
	case question.AuthorID == 0:
		return fmt.Errorf("authorID is required")
	case strings.TrimSpace(question.Title) == "":
		return fmt.Errorf("title is required")
	}
	return add(db, question)
}

// GetQuestion returns the question with its author, and its answers ordered
// oldest first.
func GetQuestion(db *gorm.DB, id uid.ID) (*models.Question, error) {
	question, err := get[models.Question](db, ByID(id), WithAuthor())
	if err != nil {
		return nil, err
	}

	answers, err := ListAnswers(db, id)
	if err != nil {
		return nil, err
	}
	question.Answers = answers

	return question, nil
}

// ListQuestions returns questions newest first, with their authors.
func ListQuestions(db *gorm.DB, p *models.Pagination, selectors ...SelectorFunc) ([]models.Question, error) {
	selectors = append([]SelectorFunc{ByNewest()}, selectors...)
	questions, err := list[models.Question](db, p, selectors...)
	if err != nil {
		return nil, err
	}

	ids := make([]uid.ID, 0, len(questions))
	for _, q := range questions {
		ids = append(ids, q.AuthorID)
	}
	authors, err := loadUsers(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Author = authors[questions[i].AuthorID]
	}

	return questions, nil
}

func CreateAnswer(db *gorm.DB, answer *models.Answer) error {
	switch {
	case answer.AuthorID == 0:
		return fmt.Errorf("authorID is required")
	case answer.QuestionID == 0:
		return fmt.Errorf("questionID is required")
	}
	return add(db, answer)
}

// ListAnswers returns the answers to a question oldest first, with their
// authors.
func ListAnswers(db *gorm.DB, questionID uid.ID) ([]models.Answer, error) {
	answers, err := list[models.Answer](db, nil, ByQuestionID(questionID), ByOldest())
	if err != nil {
		return nil, err
	}

	ids := make([]uid.ID, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.AuthorID)
	}
	authors, err := loadUsers(db, ids)
	if err != nil {
		return nil, err
	}
	for i := range answers {
		answers[i].Author = authors[answers[i].AuthorID]
	}

	return answers, nil
}

func loadUsers(db *gorm.DB, ids []uid.ID) (map[uid.ID]*models.User, error) {
	users, err := ListUsers(db, ids)
	if err != nil {
		return nil, fmt.Errorf("load authors: %w", err)
	}

	result := make(map[uid.ID]*models.User, len(users))
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

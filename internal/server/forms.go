package server

import (
	"sort"

	"github.com/askhq/ask/internal/validate"
)

type registerForm struct {
	Username string `form:"username"`
	Email    string `form:"email"`
	Password string `form:"password"`
}

func (r registerForm) ValidationRules() []validate.ValidationRule {
	return []validate.ValidationRule{
		validate.Required("username", r.Username),
		validate.StringRule{Name: "username", Value: r.Username, MaxLength: 64},
		validate.Required("email", r.Email),
		validate.Email("email", r.Email),
		validate.Required("password", r.Password),
	}
}

type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

func (r loginForm) ValidationRules() []validate.ValidationRule {
	return []validate.ValidationRule{
		validate.Required("username", r.Username),
		validate.Required("password", r.Password),
	}
}

type forgotForm struct {
	Email string `form:"email"`
}

func (r forgotForm) ValidationRules() []validate.ValidationRule {
	return []validate.ValidationRule{
		validate.Required("email", r.Email),
		validate.Email("email", r.Email),
	}
}

type resetForm struct {
	Password string `form:"password"`
}

func (r resetForm) ValidationRules() []validate.ValidationRule {
	return []validate.ValidationRule{
		validate.Required("password", r.Password),
	}
}

type questionForm struct {
	Title   string `form:"title"`
	Content string `form:"content"`
}

func (r questionForm) ValidationRules() []validate.ValidationRule {
	return []validate.ValidationRule{
		validate.Required("title", r.Title),
		validate.StringRule{Name: "title", Value: r.Title, MaxLength: 200},
	}
}

type answerForm struct {
	Content string `form:"content"`
}

func (r answerForm) ValidationRules() []validate.ValidationRule {
	return []validate.ValidationRule{
		validate.Required("content", r.Content),
	}
}

var fieldLabels = map[string]string{
	"username": "Usuario",
	"email":    "Email",
	"password": "Contraseña",
	"title":    "Título",
	"content":  "Respuesta",
}

// formProblems returns the problems in err prefixed by the label of the
// field they belong to, ordered by field name.
func formProblems(err validate.Error) []string {
	names := make([]string, 0, len(err))
	for name := range err {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []string
	for _, name := range names {
		label, ok := fieldLabels[name]
		if !ok {
			label = name
		}
		for _, problem := range err[name] {
			if label == "" {
				result = append(result, problem)
				continue
			}
			result = append(result, label+" "+problem)
		}
	}
	return result
}

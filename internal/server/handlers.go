package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/access"
	"github.com/askhq/ask/internal/server/data"
	"github.com/askhq/ask/internal/server/models"
	"github.com/askhq/ask/internal/validate"
	"github.com/askhq/ask/metrics"
	"github.com/askhq/ask/uid"
)

// MessageLoginRequired is shown when an anonymous user opens a page that
// requires a session.
const MessageLoginRequired = "Iniciá sesión para acceder a esta página"

// pages handles the requests for the server rendered pages.
type pages struct {
	db   *gorm.DB
	auth *access.Authenticator
}

func (p *pages) dbFor(c *gin.Context) *gorm.DB {
	return p.db.WithContext(c.Request.Context())
}

// bindForm reads the submitted form into form and validates it. When it
// returns false a response has already been written.
func bindForm(c *gin.Context, form validate.Request, template string, view page) bool {
	if err := c.ShouldBind(form); err != nil {
		sendPageError(c, fmt.Errorf("%w: %v", internal.ErrBadRequest, err))
		return false
	}

	err := validate.Validate(form)
	var validationErr validate.Error
	switch {
	case err == nil:
		return true
	case errors.As(err, &validationErr):
		view.Problems = formProblems(validationErr)
		render(c, http.StatusBadRequest, template, view)
		return false
	default:
		sendPageError(c, err)
		return false
	}
}

func healthHandler(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (p *pages) notFound(c *gin.Context) {
	renderError(c, http.StatusNotFound)
}

func (p *pages) home(c *gin.Context) {
	pageNumber, _ := strconv.Atoi(c.Query("page"))
	pagination := models.NewPagination(pageNumber)

	questions, err := data.ListQuestions(p.dbFor(c), &pagination)
	if err != nil {
		sendPageError(c, err)
		return
	}

	render(c, http.StatusOK, "home.html", page{
		Questions:  questions,
		Pagination: &pagination,
	})
}

func (p *pages) registerPage(c *gin.Context) {
	render(c, http.StatusOK, "register.html", page{Title: "Registrarse"})
}

func (p *pages) register(c *gin.Context) {
	form := &registerForm{}
	view := page{Title: "Registrarse"}
	view.Form = map[string]string{"username": c.PostForm("username"), "email": c.PostForm("email")}
	if !bindForm(c, form, "register.html", view) {
		return
	}

	_, err := p.auth.Register(c.Request.Context(), form.Username, form.Email, form.Password)
	metrics.RecordAuthEvent("register", err)
	if message := access.UserMessage(err); message != "" {
		setFlash(c, message)
		c.Redirect(http.StatusSeeOther, "/register")
		return
	}
	if err != nil {
		sendPageError(c, err)
		return
	}

	setFlash(c, access.MessageRegistered)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (p *pages) loginPage(c *gin.Context) {
	render(c, http.StatusOK, "login.html", page{Title: "Iniciar sesión"})
}

func (p *pages) login(c *gin.Context) {
	form := &loginForm{}
	view := page{Title: "Iniciar sesión", Form: map[string]string{"username": c.PostForm("username")}}
	if !bindForm(c, form, "login.html", view) {
		return
	}

	session, err := p.auth.Login(c.Request.Context(), form.Username, form.Password)
	metrics.RecordAuthEvent("login", err)
	switch {
	case errors.Is(err, access.ErrInvalidCredentials):
		view.Flash = access.MessageInvalidCredentials
		render(c, http.StatusUnauthorized, "login.html", view)
		return
	case err != nil:
		sendPageError(c, err)
		return
	}

	setSessionCookie(c, session.Token(), session.ExpiresAt)
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *pages) logout(c *gin.Context) {
	err := p.auth.Logout(c.Request.Context(), currentSession(c))
	metrics.RecordAuthEvent("logout", err)
	if err != nil {
		sendPageError(c, err)
		return
	}

	deleteSessionCookie(c)
	c.Redirect(http.StatusSeeOther, "/")
}

func (p *pages) forgotPage(c *gin.Context) {
	render(c, http.StatusOK, "forgot.html", page{Title: "Recuperar contraseña"})
}

func (p *pages) forgot(c *gin.Context) {
	form := &forgotForm{}
	view := page{Title: "Recuperar contraseña", Form: map[string]string{"email": c.PostForm("email")}}
	if !bindForm(c, form, "forgot.html", view) {
		return
	}

	err := p.auth.RequestReset(c.Request.Context(), form.Email)
	metrics.RecordAuthEvent("reset_request", err)
	if err != nil {
		sendPageError(c, err)
		return
	}

	setFlash(c, access.MessageResetRequested)
	c.Redirect(http.StatusSeeOther, "/login")
}

// invalidResetLink sends the user back to the login page when a reset token
// can not be used.
func invalidResetLink(c *gin.Context) {
	setFlash(c, access.MessageInvalidLink)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (p *pages) resetPage(c *gin.Context) {
	token := c.Param("token")
	if _, err := p.auth.VerifyResetToken(token); err != nil {
		invalidResetLink(c)
		return
	}
	render(c, http.StatusOK, "reset.html", page{Title: "Nueva contraseña", Token: token})
}

func (p *pages) reset(c *gin.Context) {
	token := c.Param("token")
	if _, err := p.auth.VerifyResetToken(token); err != nil {
		metrics.RecordAuthEvent("reset", err)
		invalidResetLink(c)
		return
	}

	form := &resetForm{}
	view := page{Title: "Nueva contraseña", Token: token}
	if !bindForm(c, form, "reset.html", view) {
		return
	}

	err := p.auth.CompleteReset(c.Request.Context(), token, form.Password)
	metrics.RecordAuthEvent("reset", err)
	switch {
	case errors.Is(err, access.ErrInvalidToken), errors.Is(err, access.ErrExpiredToken):
		invalidResetLink(c)
		return
	case errors.Is(err, access.ErrWeakPassword):
		view.Flash = access.MessageWeakPassword
		render(c, http.StatusBadRequest, "reset.html", view)
		return
	case err != nil:
		sendPageError(c, err)
		return
	}

	setFlash(c, access.MessagePasswordReset)
	c.Redirect(http.StatusSeeOther, "/login")
}

func (p *pages) askPage(c *gin.Context) {
	render(c, http.StatusOK, "ask.html", page{Title: "Hacer una pregunta"})
}

func (p *pages) ask(c *gin.Context) {
	form := &questionForm{}
	view := page{
		Title: "Hacer una pregunta",
		Form:  map[string]string{"title": c.PostForm("title"), "content": c.PostForm("content")},
	}
	if !bindForm(c, form, "ask.html", view) {
		return
	}

	question := &models.Question{
		Title:    form.Title,
		Content:  form.Content,
		AuthorID: currentSession(c).UserID,
	}
	if err := data.CreateQuestion(p.dbFor(c), question); err != nil {
		sendPageError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// getQuestion loads the question named by the id URL parameter. When it
// returns nil a response has already been written.
func (p *pages) getQuestion(c *gin.Context) *models.Question {
	id, err := uid.Parse(c.Param("id"))
	if err != nil {
		sendPageError(c, fmt.Errorf("%w: invalid question id", internal.ErrNotFound))
		return nil
	}

	question, err := data.GetQuestion(p.dbFor(c), id)
	if err != nil {
		sendPageError(c, err)
		return nil
	}
	return question
}

func (p *pages) question(c *gin.Context) {
	question := p.getQuestion(c)
	if question == nil {
		return
	}
	render(c, http.StatusOK, "question.html", page{Title: question.Title, Question: question})
}

func (p *pages) answer(c *gin.Context) {
	question := p.getQuestion(c)
	if question == nil {
		return
	}

	location := "/question/" + question.ID.String()
	session := currentSession(c)
	if !p.auth.IsAuthenticated(session) {
		c.Redirect(http.StatusSeeOther, location)
		return
	}

	form := &answerForm{}
	view := page{Title: question.Title, Question: question}
	if !bindForm(c, form, "question.html", view) {
		return
	}

	answer := &models.Answer{
		Content:    form.Content,
		AuthorID:   session.UserID,
		QuestionID: question.ID,
	}
	if err := data.CreateAnswer(p.dbFor(c), answer); err != nil {
		sendPageError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, location)
}

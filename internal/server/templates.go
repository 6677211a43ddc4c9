package server

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/askhq/ask/internal/format"
	"github.com/askhq/ask/internal/server/models"
)

//go:embed templates/*.html
var templateFiles embed.FS

var templateFuncs = template.FuncMap{
	"humanTime": format.HumanTime,
	"add":       func(a, b int) int { return a + b },
}

func loadTemplates() *template.Template {
	return template.Must(template.New("").Funcs(templateFuncs).ParseFS(templateFiles, "templates/*.html"))
}

// page is the data passed to every template.
type page struct {
	Title    string
	User     *models.User
	Flash    string
	Problems []string

	// Form holds the submitted values so that a form can be shown again
	// after a failure. Passwords are never included.
	Form map[string]string

	Questions  []models.Question
	Question   *models.Question
	Pagination *models.Pagination

	// Token is the password reset token in the URL of the reset page.
	Token string
}

// render writes the named template. The user and any pending flash message
// are added to data.
func render(c *gin.Context, status int, name string, data page) {
	data.User = currentUser(c)
	if data.Flash == "" {
		data.Flash = popFlash(c)
	}
	c.HTML(status, name, data)
}

var errorTitles = map[int]string{
	http.StatusNotFound:            "Página no encontrada",
	http.StatusInternalServerError: "Algo salió mal",
	http.StatusGatewayTimeout:      "La solicitud tardó demasiado",
}

func renderError(c *gin.Context, status int) {
	title, ok := errorTitles[status]
	if !ok {
		title = http.StatusText(status)
	}
	render(c, status, "error.html", page{Title: title})
}

package api

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/lockedin/lockedin-web/pkg/models"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// LoadTemplates parses the screen templates. Each screen is named after its
// view: signup.tmpl, success.tmpl, manage.tmpl.
func LoadTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.tmpl")
}

// RegisterBindings adds the custom validation tags used by the form models
// to gin's validator.
func RegisterBindings() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected gin validator engine %T", binding.Validator.Engine())
	}
	return models.RegisterValidators(v)
}

package rendering

import (
	"bytes"
	"embed"
	"html/template"
	"io"
	"sync"

	"github.com/jonathan/cvmaker/internal/types"
)

// MarkerID is the id of the element that wraps the rendered resume on every page.
// The document service waits for it and prints only its content.
const MarkerID = "cv-preview"

// DefaultStylesheetURL is the utility CSS framework the templates are written against.
const DefaultStylesheetURL = "https://cdn.tailwindcss.com"

// State is what the preview currently shows.
type State string

// Preview states.
const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// PreviewState is the input of RenderPreview. Data and Template are only used in
// the ready state, Message only in the error state.
type PreviewState struct {
	State    State
	Message  string
	Data     *types.ResumeData
	Template types.TemplateVariant
}

// PageOptions configures the full preview page.
type PageOptions struct {
	Title         string
	StylesheetURL string
}

//go:embed templates/*.html
var templateFS embed.FS

var loadTemplates = sync.OnceValues(func() (*template.Template, error) {
	tmpl, err := template.New("resume").Funcs(templateFuncs()).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, &TemplateError{Name: "templates/*.html", Message: "failed to parse templates", Cause: err}
	}
	return tmpl, nil
})

// Render writes the layout of variant for data. Unknown variants render as ui1;
// a nil resume renders as an empty one.
func Render(w io.Writer, data *types.ResumeData, variant types.TemplateVariant) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}
	if data == nil {
		data = types.NewResumeData()
	}
	name := string(variant.Resolve())
	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return &TemplateError{Name: name, Message: "failed to execute template", Cause: err}
	}
	return nil
}

// RenderString is Render into a string.
func RenderString(data *types.ResumeData, variant types.TemplateVariant) (string, error) {
	var buf bytes.Buffer
	if err := Render(&buf, data, variant); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderPreview writes the marker element with a skeleton, an inline error or the
// resume layout inside, depending on the state.
func RenderPreview(w io.Writer, state PreviewState) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}
	view, err := previewView(state)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, "preview", view); err != nil {
		return &TemplateError{Name: "preview", Message: "failed to execute template", Cause: err}
	}
	return nil
}

// RenderPage writes a complete HTML document containing the preview, suitable for
// a browser or for the live snapshot export.
func RenderPage(w io.Writer, state PreviewState, opts PageOptions) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}
	view, err := previewView(state)
	if err != nil {
		return err
	}
	if opts.Title == "" {
		opts.Title = "CV Maker"
	}
	if opts.StylesheetURL == "" {
		opts.StylesheetURL = DefaultStylesheetURL
	}
	page := struct {
		Title         string
		StylesheetURL string
		Preview       previewData
	}{opts.Title, opts.StylesheetURL, view}
	if err := tmpl.ExecuteTemplate(w, "page", page); err != nil {
		return &TemplateError{Name: "page", Message: "failed to execute template", Cause: err}
	}
	return nil
}

// RenderDocument renders the resume inside a standalone A4 document that links the
// stylesheet. This is the HTML submitted for direct conversion.
func RenderDocument(data *types.ResumeData, variant types.TemplateVariant, stylesheetURL string) (string, error) {
	body, err := RenderString(data, variant)
	if err != nil {
		return "", err
	}
	return WrapDocument(body, stylesheetURL)
}

// WrapDocument places already rendered markup inside the standalone A4 document.
func WrapDocument(body, stylesheetURL string) (string, error) {
	tmpl, err := loadTemplates()
	if err != nil {
		return "", err
	}
	if stylesheetURL == "" {
		stylesheetURL = DefaultStylesheetURL
	}
	doc := struct {
		StylesheetURL string
		Body          template.HTML
	}{stylesheetURL, template.HTML(body)}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "document", doc); err != nil {
		return "", &TemplateError{Name: "document", Message: "failed to execute template", Cause: err}
	}
	return buf.String(), nil
}

type previewData struct {
	State   string
	Message string
	Body    template.HTML
}

func previewView(state PreviewState) (previewData, error) {
	switch state.State {
	case StateLoading:
		return previewData{State: string(StateLoading)}, nil
	case StateError:
		msg := state.Message
		if msg == "" {
			msg = "Failed to load resume data. Please refresh the page."
		}
		return previewData{State: string(StateError), Message: msg}, nil
	}

	body, err := RenderString(state.Data, state.Template)
	if err != nil {
		return previewData{}, &RenderError{Template: string(state.Template.Resolve()), Cause: err}
	}
	return previewData{State: string(StateReady), Body: template.HTML(body)}, nil
}

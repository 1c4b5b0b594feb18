package api

import (
	"html/template"
	"log"
	"net/http"

	"github.com/technosupport/live-urlgen/internal/config"
	"github.com/technosupport/live-urlgen/internal/urlgen"
)

var formTmpl = template.Must(template.New("form").Parse(formHTML))

var fieldLabels = map[string]string{
	"ingestDomain":         "Ingest domain",
	"ingestValidationKey":  "Ingest validation key",
	"streamDomain":         "Streaming domain",
	"streamValidationKey":  "Streaming validation key",
	"transcodingTemplates": "Transcoding templates (comma separated)",
	"appName":              "App name",
	"streamName":           "Stream name",
}

type formField struct {
	Name  string
	Label string
	Value string
}

type formPage struct {
	Fields []formField
	Output string
}

// FormHandler serves the browser form and renders results into it.
type FormHandler struct {
	URLs *URLHandler
}

func NewFormHandler(u *URLHandler) *FormHandler {
	return &FormHandler{URLs: u}
}

// GET /
func (h *FormHandler) Show(w http.ResponseWriter, r *http.Request) {
	in := h.URLs.Store.Get().Example
	if r.URL.Query().Get("empty") != "" {
		in = config.Empty()
	}
	h.render(w, in, "")
}

// POST /
func (h *FormHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	in := urlgen.FromValues(r.PostForm.Get)

	res, err := h.URLs.run(in)
	if err != nil {
		http.Error(w, "failed to generate urls", http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Generation-ID", res.ID)
	h.render(w, in, res.Text())
}

func (h *FormHandler) render(w http.ResponseWriter, in urlgen.FormInput, output string) {
	page := formPage{Output: output}
	for _, name := range urlgen.FieldNames {
		page.Fields = append(page.Fields, formField{Name: name, Label: fieldLabels[name], Value: in.Get(name)})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := formTmpl.Execute(w, page); err != nil {
		log.Printf("[urlgen] render form: %v", err)
	}
}

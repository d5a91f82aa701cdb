package fetchartifact

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Search defaults.
const (
	DefaultPerPage          = 10
	DefaultMaxPages         = 50
	DefaultMaxWorkflowPages = 100
)

// SearchRequest identifies the artifact to look for.
type SearchRequest struct {
	Owner        string `json:"owner" validate:"required"`
	Repo         string `json:"repo" validate:"required"`
	Branch       string `json:"branch" validate:"required"`
	WorkflowName string `json:"workflow" validate:"required"`
	ArtifactName string `json:"artifact" validate:"required,filename"`

	// Commit pins the search to runs built from this SHA. Empty accepts
	// the newest successful run. It is compared verbatim against run head
	// SHAs, so a value that is not a SHA finds nothing.
	Commit string `json:"commit,omitempty"`

	// WorkflowEvent restricts runs to one trigger event, such as "push".
	WorkflowEvent string `json:"event,omitempty"`

	// PerPage is the run page size. Zero means DefaultPerPage.
	PerPage int `json:"per_page,omitempty" validate:"gte=0,lte=100"`

	// MaxPages bounds how many run pages may be scanned without finding
	// the commit; the search gives up on the first non-matching page after
	// more than MaxPages have been counted. Nil means DefaultMaxPages, and
	// zero still reads a second page.
	MaxPages *int `json:"max_pages,omitempty" validate:"omitempty,gte=0"`

	// MaxWorkflowPages bounds the workflow catalog lookup. Zero means
	// DefaultMaxWorkflowPages.
	MaxWorkflowPages int `json:"max_workflow_pages,omitempty" validate:"gte=0"`
}

// DownloadRequest is a SearchRequest plus the directory that receives
// the extracted archive.
type DownloadRequest struct {
	SearchRequest
	DownloadPath string `json:"path" validate:"required"`
}

// Validate checks required fields and bounds.
func (r SearchRequest) Validate() error {
	return validateStruct(r)
}

// Validate checks required fields and bounds.
func (r DownloadRequest) Validate() error {
	return validateStruct(r)
}

func (r SearchRequest) withDefaults() SearchRequest {
	if r.PerPage == 0 {
		r.PerPage = DefaultPerPage
	}
	if r.MaxPages == nil {
		n := DefaultMaxPages
		r.MaxPages = &n
	}
	if r.MaxWorkflowPages == 0 {
		r.MaxWorkflowPages = DefaultMaxWorkflowPages
	}
	return r
}

// fullName is the owner/repo form used to recognise runs from forks.
func (r SearchRequest) fullName() string {
	return r.Owner + "/" + r.Repo
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names so messages match config keys
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			if tag == "" || tag == "-" {
				return fld.Name
			}
			return tag
		})

		_ = v.RegisterValidation("filename", func(fl validator.FieldLevel) bool {
			name := fl.Field().String()
			return name != "." && name != ".." && !strings.ContainsAny(name, `/\`)
		})

		validate = v
	})
	return validate
}

func validateStruct(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &InvalidRequestError{Err: err}
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return &InvalidRequestError{Err: errors.New(strings.Join(msgs, "; "))}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "filename":
		return fmt.Sprintf("%s %q must not contain path separators", fe.Field(), fe.Value())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

package manifest

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validation error codes for the Source download invariant.
const (
	// CodeDownloadDirectoryRequired: download is set but
	// download_directory is not.
	CodeDownloadDirectoryRequired = "download_directory_required"

	// CodeDownloadRequired: download_directory is set but download is not.
	CodeDownloadRequired = "download_is_required"
)

// ValidationError describes a single manifest invariant violation.
type ValidationError struct {
	// Path locates the offending value (e.g.
	// "dependencies.platforms.ubuntu.source").
	Path string `json:"path,omitempty"`

	// Code identifies the violated rule.
	Code string `json:"code"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// Validator enforces cross-field manifest invariants. Resolution does not
// run it automatically; install flows call it explicitly between Resolve
// and dispatch.
type Validator struct {
	v *validator.Validate
}

// NewValidator builds a Validator with the Source download rule
// registered.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(sourceDownloadRule, Source{})
	return &Validator{v: v}
}

// sourceDownloadRule enforces that download and download_directory are
// either both present or both absent.
func sourceDownloadRule(sl validator.StructLevel) {
	src := sl.Current().Interface().(Source)

	if src.Download != nil && src.DownloadDirectory == nil {
		sl.ReportError(src.DownloadDirectory, "download_directory", "DownloadDirectory", CodeDownloadDirectoryRequired, "")
	}
	if src.DownloadDirectory != nil && src.Download == nil {
		sl.ReportError(src.Download, "download", "Download", CodeDownloadRequired, "")
	}
}

// ValidateSource checks the Source download invariant and returns the
// violations found, or nil when the value is valid.
func (val *Validator) ValidateSource(src Source) []ValidationError {
	return val.collect("", val.v.Struct(src))
}

// ValidateManifest checks the manifest's required scalar fields and
// every platform entry under dependencies.platforms, including each
// entry's Source invariant.
func (val *Validator) ValidateManifest(m *Manifest) []ValidationError {
	errs := val.collect("", val.v.Struct(m))

	if m.Dependencies == nil {
		return errs
	}
	for name, p := range m.Dependencies.Platforms {
		path := fmt.Sprintf("dependencies.platforms.%s", name)
		for _, ve := range val.collect(path, val.v.Struct(p)) {
			switch ve.Code {
			case CodeDownloadDirectoryRequired, CodeDownloadRequired:
				ve.Path = path + ".source"
			}
			errs = append(errs, ve)
		}
	}
	return errs
}

// collect converts validator output into ValidationErrors, prefixing
// paths with the given location.
func (val *Validator) collect(path string, err error) []ValidationError {
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []ValidationError{{Path: path, Code: "invalid", Message: err.Error()}}
	}

	out := make([]ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		ve := ValidationError{
			Path:    path,
			Code:    fe.Tag(),
			Message: fmt.Sprintf("field %s failed rule %s", fe.Field(), fe.Tag()),
		}
		switch fe.Tag() {
		case CodeDownloadDirectoryRequired:
			ve.Message = "download is set but download_directory is missing"
		case CodeDownloadRequired:
			ve.Message = "download_directory is set but download is missing"
		}
		out = append(out, ve)
	}
	return out
}

package model

import (
	"context"
	"net/url"

	"github.com/pkg/errors"
)

var (
	ErrNameMustBeSet        = errors.New("name must be set")
	ErrLocalFolderMustBeSet = errors.New("local folder must be set")
	ErrURIMustBeSet         = errors.New("uri must be set")
	ErrRuntimeMustBeSet     = errors.New("runtime must be set")
)

// Tensor is a flat numeric array: one feature vector on input, one prediction on output.
type Tensor []float64

// Details describes a deployable artifact.
type Details struct {
	Name        string         `json:"name" yaml:"name"`
	Platform    ModelFramework `json:"platform" yaml:"platform"`
	LocalFolder string         `json:"local_folder" yaml:"local_folder"`
	URI         string         `json:"uri" yaml:"uri"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
}

// Validate checks that every mandatory field is set.
func (d Details) Validate() error {
	if d.Name == "" {
		return ErrNameMustBeSet
	}
	if !d.Platform.Valid() {
		return errors.Wrapf(ErrUnknownFramework, "model %s: %q", d.Name, string(d.Platform))
	}
	if d.LocalFolder == "" {
		return errors.Wrapf(ErrLocalFolderMustBeSet, "model %s", d.Name)
	}

	return validateURI(d.Name, d.URI)
}

func validateURI(name, rawURI string) error {
	if rawURI == "" {
		return errors.Wrapf(ErrURIMustBeSet, "model %s", name)
	}
	parsed, err := url.Parse(rawURI)
	if err != nil {
		return errors.Wrapf(err, "model %s: unable to parse uri", name)
	}
	if parsed.Scheme == "" {
		return errors.Errorf("model %s: uri %q has no scheme", name, rawURI)
	}

	return nil
}

// Runtime invokes a model hosted by an external serving platform.
// Errors are returned to callers unmodified.
type Runtime interface {
	Predict(ctx context.Context, details Details, input Tensor) (Tensor, error)
}

// RuntimeFunc adapts a function to the Runtime interface.
type RuntimeFunc func(ctx context.Context, details Details, input Tensor) (Tensor, error)

func (f RuntimeFunc) Predict(ctx context.Context, details Details, input Tensor) (Tensor, error) {
	return f(ctx, details, input)
}

// Model is a reference to a trained artifact. It never changes after New.
type Model struct {
	details Details
}

// New creates a model reference.
func New(details Details) (*Model, error) {
	err := details.Validate()
	if err != nil {
		return nil, err
	}

	return &Model{details: details}, nil
}

// Details returns a copy of the model metadata.
func (m *Model) Details() Details {
	return m.details
}

func (m *Model) Name() string {
	return m.details.Name
}

// Predict invokes the model through rt.
func (m *Model) Predict(ctx context.Context, rt Runtime, input Tensor) (Tensor, error) {
	if rt == nil {
		return nil, ErrRuntimeMustBeSet
	}

	return rt.Predict(ctx, m.details, input)
}

package pipeline

import "github.com/pkg/errors"

var (
	ErrFuncMustBeSet      = errors.New("routing function must be set")
	ErrModelsMustBeSet    = errors.New("at least one model must be set")
	ErrModelMustBeSet     = errors.New("model must be set")
	ErrDuplicateModelName = errors.New("model name is used more than once")
	ErrModelNotDeclared   = errors.New("model is not declared in the pipeline")
)

package model

import (
	"github.com/pkg/errors"
)

// ModelFramework identifies the framework a model artifact was produced with.
type ModelFramework string

const (
	SKLearn       ModelFramework = "sklearn"
	XGBoost       ModelFramework = "xgboost"
	TensorFlow    ModelFramework = "tensorflow"
	PyTorch       ModelFramework = "pytorch"
	ONNX          ModelFramework = "onnx"
	MLFlow        ModelFramework = "mlflow"
	TempoPipeline ModelFramework = "tempo"
	Custom        ModelFramework = "custom"
)

var ErrUnknownFramework = errors.New("unknown model framework")

var knownFrameworks = map[ModelFramework]struct{}{
	SKLearn:       {},
	XGBoost:       {},
	TensorFlow:    {},
	PyTorch:       {},
	ONNX:          {},
	MLFlow:        {},
	TempoPipeline: {},
	Custom:        {},
}

// Valid reports whether f is one of the known frameworks.
func (f ModelFramework) Valid() bool {
	_, ok := knownFrameworks[f]

	return ok
}

func (f ModelFramework) String() string {
	return string(f)
}

// MarshalText implements encoding.TextMarshaler.
func (f ModelFramework) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, errors.Wrapf(ErrUnknownFramework, "%q", string(f))
	}

	return []byte(f), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (f *ModelFramework) UnmarshalText(text []byte) error {
	framework := ModelFramework(text)
	if !framework.Valid() {
		return errors.Wrapf(ErrUnknownFramework, "%q", string(text))
	}

	*f = framework

	return nil
}

// Package classifier declares the iris classifier pipeline: an sklearn model whose positive predictions are
// trusted as is, and an xgboost model consulted for everything else.
package classifier

import (
	"context"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/askiada/go-tempo/pkg/pipeline"
	"github.com/askiada/go-tempo/pkg/pipeline/model"
)

const (
	SKLearnFolder  = "sklearn"
	XGBFolder      = "xgboost"
	PipelineFolder = "classifier"

	SKLearnURI  = "s3://tempo/basic/sklearn"
	XGBoostURI  = "s3://tempo/basic/xgboost"
	PipelineURI = "s3://tempo/basic/pipeline"

	SKLearnModelName = "test-iris-sklearn"
	XGBoostModelName = "test-iris-xgboost"
	PipelineName     = "classifier"

	// Roles under which the models are grouped in the pipeline.
	SKLearnRole = "sklearn"
	XGBoostRole = "xgboost"

	SKLearnTag = "sklearn prediction"
	XGBoostTag = "xgboost prediction"
)

var ErrEmptyPrediction = errors.New("model returned an empty prediction")

// GetTempoArtifacts declares both models and the pipeline routing between them.
// Local folders are laid out under artifactsFolder.
func GetTempoArtifacts(artifactsFolder string, opts ...model.PipelineOption) (*pipeline.Pipeline, *model.Model, *model.Model, error) {
	sklearnModel, err := model.New(model.Details{
		Name:        SKLearnModelName,
		Platform:    model.SKLearn,
		LocalFolder: filepath.Join(artifactsFolder, SKLearnFolder),
		URI:         SKLearnURI,
	})
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "unable to declare sklearn model")
	}

	xgboostModel, err := model.New(model.Details{
		Name:        XGBoostModelName,
		Platform:    model.XGBoost,
		LocalFolder: filepath.Join(artifactsFolder, XGBFolder),
		URI:         XGBoostURI,
	})
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "unable to declare xgboost model")
	}

	classifier, err := pipeline.New(pipeline.Config{
		Name:        PipelineName,
		URI:         PipelineURI,
		LocalFolder: filepath.Join(artifactsFolder, PipelineFolder),
		Models: pipeline.Models{
			SKLearnRole: sklearnModel,
			XGBoostRole: xgboostModel,
		},
	}, Route, opts...)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "unable to declare classifier pipeline")
	}

	return classifier, sklearnModel, xgboostModel, nil
}

// Route trusts the sklearn model when it predicts class 1 and asks the xgboost model otherwise.
func Route(ctx context.Context, models *pipeline.Invoker, payload model.Tensor) (model.Tensor, string, error) {
	res, err := models.Predict(ctx, SKLearnRole, payload)
	if err != nil {
		return nil, "", err
	}

	if len(res) == 0 {
		return nil, "", errors.Wrap(ErrEmptyPrediction, SKLearnModelName)
	}

	if res[0] == 1 {
		return res, SKLearnTag, nil
	}

	res, err = models.Predict(ctx, XGBoostRole, payload)
	if err != nil {
		return nil, "", err
	}

	return res, XGBoostTag, nil
}

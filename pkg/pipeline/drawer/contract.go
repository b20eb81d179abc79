package drawer

import (
	"io"

	"github.com/askiada/go-tempo/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStep adds a pipeline or a model to the drawer.
	AddStep(stepName string) error
	// AddLink adds a link from a pipeline to one of its models.
	AddLink(parentStepName, childrenStepName, label string) error
	// AddMeasure decorates the graph with the collected measures.
	AddMeasure(measure measure.Measure) error
	// Render writes the graph to w.
	Render(w io.Writer) error
	// Draw creates a file with the pipeline graph.
	Draw() error
}

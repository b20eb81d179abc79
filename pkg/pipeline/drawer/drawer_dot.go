// Package drawer renders a pipeline and the models it calls as a Graphviz DOT graph.
package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-tempo/internal/store"
	"github.com/askiada/go-tempo/pkg/pipeline/measure"
)

// DOTDrawer is a drawer that creates a DOT file with the pipeline graph.
type DOTDrawer struct {
	graph       graph.Graph[string, string]
	store       store.CustomStore[string, string]
	dotFileName string
}

// NewDOTDrawer creates a new DOT drawer. Draw writes to dotFileName.
func NewDOTDrawer(dotFileName string) *DOTDrawer {
	str := store.NewMemoryStore[string, string]()

	return &DOTDrawer{
		dotFileName: dotFileName,
		store:       str,
		graph:       graph.NewWithStore(graph.StringHash, graph.Store[string, string](str), graph.Directed()),
	}
}

// AddStep adds a vertex to the pipeline graph.
func (d *DOTDrawer) AddStep(name string) error {
	err := d.graph.AddVertex(name, graph.VertexAttribute("shape", "box"))
	if err != nil {
		return errors.Wrapf(err, "unable to add vertex %s", name)
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *DOTDrawer) AddLink(parentName, childrenName, label string) error {
	err := d.graph.AddEdge(parentName, childrenName, graph.EdgeAttribute("taillabel", label))
	if err != nil {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw creates a DOT file with the pipeline graph.
func (d *DOTDrawer) Draw() error {
	file, err := os.Create(d.dotFileName)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", d.dotFileName)
	}
	defer file.Close()

	err = d.Render(file)
	if err != nil {
		return errors.Wrapf(err, "unable to create dot file %s", d.dotFileName)
	}

	return nil
}

// Render writes the DOT description of the graph to wrt.
func (d *DOTDrawer) Render(wrt io.Writer) error {
	return dot(d.graph, wrt, GraphAttribute("rankdir", "LR"))
}

const maxRGB = 240

// AddMeasure labels every vertex with its average latency and colours every edge from blue (fastest model)
// to red (slowest model).
func (d *DOTDrawer) AddMeasure(msr measure.Measure) error {
	edges, err := d.graph.Edges()
	if err != nil {
		return errors.Wrap(err, "unable to list edges")
	}

	metrics := msr.AllMetrics()

	var minValue, maxValue time.Duration

	for _, edge := range edges {
		mt, ok := metrics[edge.Target]
		if !ok || mt.AVGDuration() == 0 {
			continue
		}

		avg := mt.AVGDuration()
		if minValue == 0 || avg < minValue {
			minValue = avg
		}

		if avg > maxValue {
			maxValue = avg
		}
	}

	for name, mt := range metrics {
		err := d.updateVertex(name, mt)
		if err != nil {
			return err
		}
	}

	for _, edge := range edges {
		mt, ok := metrics[edge.Target]
		if !ok || mt.AVGDuration() == 0 {
			continue
		}

		hex, err := gradient(mt.AVGDuration(), minValue, maxValue)
		if err != nil {
			return err
		}

		err = d.graph.UpdateEdge(edge.Source, edge.Target,
			graph.EdgeAttribute("label", fmt.Sprintf("%s x%d", mt.AVGDuration(), mt.Total())),
			graph.EdgeAttribute("fontcolor", "blue"),
			graph.EdgeAttribute("color", hex),
		)
		if err != nil {
			return errors.Wrapf(err, "unable to update edge from %s to %s", edge.Source, edge.Target)
		}
	}

	return nil
}

func (d *DOTDrawer) updateVertex(name string, mt measure.Metric) error {
	parts := []string{}
	if avg := mt.AVGDuration(); avg != 0 {
		parts = append(parts, "avg: "+avg.String())
	}

	if errs := mt.Errors(); errs > 0 {
		parts = append(parts, "errors: "+strconv.FormatInt(errs, 10))
	}

	tags := mt.Tags()
	tagNames := make([]string, 0, len(tags))

	for tag := range tags {
		tagNames = append(tagNames, tag)
	}

	sort.Strings(tagNames)

	for _, tag := range tagNames {
		parts = append(parts, tag+": "+strconv.FormatInt(tags[tag], 10))
	}

	if len(parts) == 0 {
		return nil
	}

	err := d.store.UpdateVertex(name, func(p *graph.VertexProperties) {
		p.Attributes["xlabel"] = strings.Join(parts, "<BR />")
	})
	if err != nil {
		return errors.Wrapf(err, "unable to update vertex %s", name)
	}

	return nil
}

func gradient(curr, minValue, maxValue time.Duration) (string, error) {
	fraction := 1.0
	if maxValue > minValue {
		fraction = float64(curr-minValue) / float64(maxValue-minValue)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	color, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return color.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           interface{}
	Target           interface{}
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], wrt io.Writer, options ...func(*description)) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return fmt.Errorf("failed to generate DOT description: %w", err)
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute is a functional option for the [dot] function.
func GraphAttribute(key, value string) func(*description) {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

func generateDOT(gra graph.Graph[string, string], options ...func(*description)) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	vertices := make([]string, 0, len(adjacencyMap))
	for vertex := range adjacencyMap {
		vertices = append(vertices, vertex)
	}

	sort.Strings(vertices)

	for _, vertex := range vertices {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		htmlAttributes := make(map[string]string)
		sourceAttributes := make(map[string]string, len(sourceProperties.Attributes))

		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%+v <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)

				continue
			}

			sourceAttributes[k] = v
		}

		stmt := statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: sourceAttributes,
			HTMLAttributes:   htmlAttributes,
		}
		desc.Statements = append(desc.Statements, stmt)

		targets := make([]string, 0, len(adjacencyMap[vertex]))
		for target := range adjacencyMap[vertex] {
			targets = append(targets, target)
		}

		sort.Strings(targets)

		for _, target := range targets {
			edge := adjacencyMap[vertex][target]
			stmt := statement{
				Source:         vertex,
				Target:         target,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			}
			desc.Statements = append(desc.Statements, stmt)
		}
	}

	return desc, nil
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*DOTDrawer)(nil)

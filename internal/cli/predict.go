package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/askiada/go-tempo/pkg/classifier"
	"github.com/askiada/go-tempo/pkg/pipeline"
	"github.com/askiada/go-tempo/pkg/pipeline/drawer"
	"github.com/askiada/go-tempo/pkg/pipeline/logger"
	"github.com/askiada/go-tempo/pkg/pipeline/measure"
	"github.com/askiada/go-tempo/pkg/pipeline/metrics"
	"github.com/askiada/go-tempo/pkg/pipeline/model"
	"github.com/askiada/go-tempo/pkg/runtime"
	"github.com/askiada/go-tempo/pkg/stream"
)

const maxLineSize = 1 << 20

var ErrNoPayload = errors.New("no payload to predict")

type payloadRecord struct {
	index   int
	payload model.Tensor
}

// predictionRecord is one line of the predict output.
type predictionRecord struct {
	Index   int          `json:"index"`
	Payload model.Tensor `json:"payload"`
	Output  model.Tensor `json:"output"`
	Tag     string       `json:"tag"`
}

type predictFlags struct {
	payload     string
	input       string
	output      string
	dot         string
	metricsFile string
	concurrency int
	progress    bool
}

type PredictCmd struct{}

func NewPredictCmd() *PredictCmd {
	return &PredictCmd{}
}

func (c *PredictCmd) Command() *cobra.Command {
	flags := &predictFlags{}

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score payloads through the pipeline on a V2 inference server",
		Long: "Score payloads through the pipeline on a V2 inference server.\n\n" +
			"Payloads are JSON arrays of numbers, either one with --payload or one per line of --input.\n" +
			"Each prediction is written as a JSON line with its index, output and tag.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := loadSettings(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.run(ctx, cmd, st, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.payload, "payload", "p", "", "single payload as a JSON array, for example [5.1,3.5,1.4,0.2]")
	cmd.Flags().StringVarP(&flags.input, "input", "i", "-", "JSON lines file of payloads, - for stdin")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "-", "JSON lines file of predictions, - for stdout")
	cmd.Flags().StringVar(&flags.dot, "dot", "", "write the pipeline graph decorated with latencies to this DOT file")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write Prometheus metrics in text format to this file")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "number of concurrent predictions, overrides the configuration file")
	cmd.Flags().BoolVar(&flags.progress, "progress", false, "show a progress bar")

	return cmd
}

func (c *PredictCmd) run(ctx context.Context, cmd *cobra.Command, st *settings, flags *predictFlags) error {
	rt, err := runtime.New(st.cfg.RuntimeConfig(st.log))
	if err != nil {
		return err
	}

	msr := measure.NewDefaultMeasure()
	opts := []model.PipelineOption{
		measure.PipelineMeasure(msr),
		logger.PipelineLogger(st.log),
	}

	var registry *prometheus.Registry
	if flags.metricsFile != "" {
		registry = prometheus.NewRegistry()
		opts = append(opts, metrics.PipelineMetrics(registry))
	}

	if flags.dot != "" {
		opts = append(opts, drawer.PipelineDrawer(drawer.NewDOTDrawer(flags.dot), msr))
	}

	pipe, _, _, err := classifier.GetTempoArtifacts(st.cfg.ArtifactsFolder, opts...)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, flags)
	if err != nil {
		return err
	}
	defer closeIn()

	out, closeOut, err := openOutput(cmd, flags.output)
	if err != nil {
		return err
	}
	defer closeOut()

	concurrency := st.cfg.Batch.Concurrency
	if flags.concurrency > 0 {
		concurrency = flags.concurrency
	}

	total := -1
	if flags.payload != "" {
		total = 1
	}

	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("predicting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(flags.progress),
	)

	streamMsr := measure.NewDefaultMeasure()

	count, runErr := scorePayloads(ctx, scoreConfig{
		pipe:        pipe,
		rt:          rt,
		in:          in,
		out:         out,
		bar:         bar,
		msr:         streamMsr,
		concurrency: concurrency,
		bufferSize:  st.cfg.Batch.BufferSize,
	})

	_ = bar.Finish()

	err = pipe.Finish()
	if err != nil && runErr == nil {
		runErr = err
	}

	if registry != nil {
		err = writeMetrics(registry, flags.metricsFile)
		if err != nil && runErr == nil {
			runErr = err
		}
	}

	for name, metric := range streamMsr.AllMetrics() {
		st.log.Debug("step done", "step", name, "avg", metric.AVGDuration(), "total", metric.Total(), "errors", metric.Errors())
	}

	if runErr != nil {
		return runErr
	}

	if count == 0 {
		return ErrNoPayload
	}

	attrs := []any{"predictions", count}
	if metric := msr.GetMetric(pipe.Details().Name); metric != nil {
		for tag, n := range metric.Tags() {
			attrs = append(attrs, tag, n)
		}

		attrs = append(attrs, "avg", metric.AVGDuration())
	}

	st.log.Info("predictions done", attrs...)

	return nil
}

type scoreConfig struct {
	pipe        *pipeline.Pipeline
	rt          model.Runtime
	in          io.Reader
	out         io.Writer
	bar         *progressbar.ProgressBar
	msr         measure.Measure
	concurrency int
	bufferSize  int
}

// scorePayloads reads one payload per line of sc.in and writes one prediction per line to sc.out.
func scorePayloads(ctx context.Context, sc scoreConfig) (int, error) {
	sp := stream.New(stream.WithMeasure(sc.msr))

	root, err := stream.AddRootStep(sp, "read", func(ctx context.Context, rootChan chan<- payloadRecord) error {
		return readPayloads(ctx, sc.in, rootChan)
	}, stream.StepBufferSize[payloadRecord](sc.bufferSize))
	if err != nil {
		return 0, err
	}

	predicted, err := stream.AddStepOneToOne(sp, "predict", root, func(ctx context.Context, rec payloadRecord) (predictionRecord, error) {
		out, tag, err := sc.pipe.Predict(ctx, sc.rt, rec.payload)
		if err != nil {
			return predictionRecord{}, errors.Wrapf(err, "payload %d", rec.index)
		}

		return predictionRecord{
			Index:   rec.index,
			Payload: rec.payload,
			Output:  out,
			Tag:     tag,
		}, nil
	}, stream.StepConcurrency[predictionRecord](sc.concurrency), stream.StepBufferSize[predictionRecord](sc.bufferSize))
	if err != nil {
		return 0, err
	}

	count := 0
	enc := json.NewEncoder(sc.out)

	err = stream.AddSink(sp, "write", predicted, func(_ context.Context, rec predictionRecord) error {
		err := enc.Encode(rec)
		if err != nil {
			return errors.Wrapf(err, "unable to write prediction %d", rec.Index)
		}

		count++

		return errors.Wrap(sc.bar.Add(1), "unable to update progress")
	})
	if err != nil {
		return 0, err
	}

	err = sp.Run(ctx)

	return count, err
}

func readPayloads(ctx context.Context, in io.Reader, rootChan chan<- payloadRecord) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	index := 0
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		payload, err := parsePayload(text)
		if err != nil {
			return errors.Wrapf(err, "line %d", line)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case rootChan <- payloadRecord{index: index, payload: payload}:
		}

		index++
	}

	return errors.Wrap(scanner.Err(), "unable to read payloads")
}

func parsePayload(raw string) (model.Tensor, error) {
	var payload model.Tensor

	err := json.Unmarshal([]byte(raw), &payload)
	if err != nil {
		return nil, errors.Wrap(err, "payload must be a JSON array of numbers")
	}

	return payload, nil
}

func openInput(cmd *cobra.Command, flags *predictFlags) (io.Reader, func(), error) {
	if flags.payload != "" {
		return strings.NewReader(flags.payload), func() {}, nil
	}

	if flags.input == "" || flags.input == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}

	file, err := os.Open(flags.input)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open %s", flags.input)
	}

	return file, func() { _ = file.Close() }, nil
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() {}, nil
	}

	file, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to create %s", path)
	}

	return file, func() { _ = file.Close() }, nil
}

func writeMetrics(gatherer prometheus.Gatherer, path string) error {
	families, err := gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "unable to gather metrics")
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create %s", path)
	}
	defer file.Close()

	for _, family := range families {
		_, err = expfmt.MetricFamilyToText(file, family)
		if err != nil {
			return errors.Wrapf(err, "unable to write metric %s", family.GetName())
		}
	}

	return nil
}

// Package export publishes decoded hypnograms to InfluxDB, one point per
// 30-second epoch, so staging results can be charted next to other
// recording-night series. Export is optional and sits outside the
// processing path: a failed or disabled exporter never affects the tensors
// written to disk.
package export

import (
	"fmt"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/XingXingYuoos/sleep-kit-project/config"
	"github.com/XingXingYuoos/sleep-kit-project/stage"
)

// PointSink receives measurement points. The Influx client's WriteAPI
// satisfies it; tests substitute a recorder.
type PointSink interface {
	WritePoint(point *write.Point)
}

// HypnogramExporter writes stage sequences as time series points.
type HypnogramExporter struct {
	sink        PointSink
	measurement string
	epochLen    time.Duration
}

// NewHypnogramExporter creates an exporter writing to sink under the given
// measurement name. epochSeconds fixes the spacing between points.
func NewHypnogramExporter(sink PointSink, measurement string, epochSeconds int) *HypnogramExporter {
	return &HypnogramExporter{
		sink:        sink,
		measurement: measurement,
		epochLen:    time.Duration(epochSeconds) * time.Second,
	}
}

// Export writes one point per epoch, timestamped from the recording start.
// A zero start time means the recording header carried no clock; nothing
// is exported and the caller is told why.
func (e *HypnogramExporter) Export(dataset, subject string, start time.Time, stages []stage.Stage) error {
	if start.IsZero() {
		return fmt.Errorf("recording start time unknown for %s/%s", dataset, subject)
	}

	for i, s := range stages {
		point := influxdb2.NewPointWithMeasurement(e.measurement).
			AddTag("dataset", dataset).
			AddTag("subject", subject).
			AddField("stage", int64(s)).
			SetTime(start.Add(time.Duration(i) * e.epochLen))
		e.sink.WritePoint(point)
	}
	return nil
}

// InfluxWriter owns the Influx client connection behind a HypnogramExporter.
type InfluxWriter struct {
	client influxdb2.Client
	api    api.WriteAPI
}

// NewInfluxWriter connects a client from the export settings.
func NewInfluxWriter(cfg config.InfluxConfig) *InfluxWriter {
	client := influxdb2.NewClient(cfg.URL, cfg.AuthToken)
	return &InfluxWriter{
		client: client,
		api:    client.WriteAPI(cfg.Org, cfg.Bucket),
	}
}

// Sink returns the write API as a PointSink.
func (w *InfluxWriter) Sink() PointSink {
	return w.api
}

// Close flushes buffered points and shuts the client down.
func (w *InfluxWriter) Close() {
	w.api.Flush()
	w.client.Close()
}

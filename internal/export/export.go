// Package export writes recorded firing events to Arrow IPC files so they
// can be loaded into columnar analysis tools.
package export

import (
	"fmt"
	"os"

	"github.com/apache/arrow/go/v17/arrow"
	"github.com/apache/arrow/go/v17/arrow/array"
	"github.com/apache/arrow/go/v17/arrow/ipc"
	"github.com/apache/arrow/go/v17/arrow/memory"

	"github.com/nvandessel/spikenet/internal/recorder"
)

// batchSize caps rows per record batch so large exports stay bounded in
// memory.
const batchSize = 4096

func spikeSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "neuron", Type: arrow.PrimitiveTypes.Int32},
		{Name: "potential", Type: arrow.PrimitiveTypes.Float32},
		{Name: "at", Type: arrow.FixedWidthTypes.Timestamp_us},
	}, nil)
}

// WriteFile writes spikes to path as an Arrow IPC file.
func WriteFile(path string, spikes []recorder.Spike) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	alloc := memory.NewGoAllocator()
	schema := spikeSchema()

	w, err := ipc.NewFileWriter(f, ipc.WithSchema(schema), ipc.WithAllocator(alloc))
	if err != nil {
		return fmt.Errorf("creating arrow writer: %w", err)
	}

	for start := 0; start < len(spikes); start += batchSize {
		end := start + batchSize
		if end > len(spikes) {
			end = len(spikes)
		}
		rec, err := buildRecord(alloc, schema, spikes[start:end])
		if err != nil {
			w.Close()
			return err
		}
		writeErr := w.Write(rec)
		rec.Release()
		if writeErr != nil {
			w.Close()
			return fmt.Errorf("writing record batch: %w", writeErr)
		}
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("closing arrow writer: %w", err)
	}
	return f.Close()
}

func buildRecord(alloc memory.Allocator, schema *arrow.Schema, spikes []recorder.Spike) (arrow.Record, error) {
	b := array.NewRecordBuilder(alloc, schema)
	defer b.Release()

	neurons := b.Field(0).(*array.Int32Builder)
	potentials := b.Field(1).(*array.Float32Builder)
	times := b.Field(2).(*array.TimestampBuilder)

	for _, s := range spikes {
		ts, err := arrow.TimestampFromTime(s.At, arrow.Microsecond)
		if err != nil {
			return nil, fmt.Errorf("converting timestamp for neuron %d: %w", s.Neuron, err)
		}
		neurons.Append(int32(s.Neuron))
		potentials.Append(s.Potential)
		times.Append(ts)
	}

	return b.NewRecord(), nil
}

// ReadFile loads spikes back from an Arrow IPC file written by WriteFile.
func ReadFile(path string) ([]recorder.Spike, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}
	defer f.Close()

	r, err := ipc.NewFileReader(f, ipc.WithAllocator(memory.NewGoAllocator()))
	if err != nil {
		return nil, fmt.Errorf("creating arrow reader: %w", err)
	}
	defer r.Close()

	var spikes []recorder.Spike
	for i := 0; i < r.NumRecords(); i++ {
		rec, err := r.RecordAt(i)
		if err != nil {
			return nil, fmt.Errorf("reading record batch %d: %w", i, err)
		}
		neurons := rec.Column(0).(*array.Int32)
		potentials := rec.Column(1).(*array.Float32)
		times := rec.Column(2).(*array.Timestamp)
		for row := 0; row < int(rec.NumRows()); row++ {
			spikes = append(spikes, recorder.Spike{
				Neuron:    int(neurons.Value(row)),
				Potential: potentials.Value(row),
				At:        times.Value(row).ToTime(arrow.Microsecond),
			})
		}
	}
	return spikes, nil
}

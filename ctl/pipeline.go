// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/featurebasedb/streamsql"
	"github.com/featurebasedb/streamsql/logger"
	"github.com/featurebasedb/streamsql/processinglog"
	"github.com/featurebasedb/streamsql/row"
	"github.com/featurebasedb/streamsql/schema"
	"github.com/featurebasedb/streamsql/serde"
	"github.com/linkedin/goavro/v2"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// maxLineSize bounds a single newline delimited record.
const maxLineSize = 16 << 20

// record is one input record: raw bytes, or a value already decoded from
// an Avro object container file. err is set when the record could not be
// extracted from its framing.
type record struct {
	data   []byte
	native interface{}
	err    error
}

type recordReader interface {
	// next returns io.EOF after the last record.
	next() (record, error)
}

// lineReader reads one record per non-blank line.
type lineReader struct {
	sc     *bufio.Scanner
	base64 bool
}

func newLineReader(r io.Reader, b64 bool) *lineReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	return &lineReader{sc: sc, base64: b64}
}

func (lr *lineReader) next() (record, error) {
	for lr.sc.Scan() {
		line := bytes.TrimSpace(lr.sc.Bytes())
		if len(line) == 0 {
			continue
		}
		// must copy line as scanner will reuse the buffer it's given us
		data := make([]byte, len(line))
		copy(data, line)
		if !lr.base64 {
			return record{data: data}, nil
		}
		decoded, err := base64.StdEncoding.DecodeString(string(data))
		if err != nil {
			return record{data: data, err: streamsql.NewErrMalformedRecord("invalid base64: " + err.Error())}, nil
		}
		return record{data: decoded}, nil
	}
	if err := lr.sc.Err(); err != nil {
		return record{}, errors.Wrap(err, "scanning input")
	}
	return record{}, io.EOF
}

// ocfReader reads the values of an Avro object container file.
type ocfReader struct {
	r *goavro.OCFReader
}

func (o *ocfReader) next() (record, error) {
	if !o.r.Scan() {
		if err := o.r.Err(); err != nil {
			return record{}, errors.Wrap(err, "reading object container file")
		}
		return record{}, io.EOF
	}
	native, err := o.r.Read()
	if err != nil {
		return record{}, errors.Wrap(err, "reading object container file")
	}
	return record{native: native}, nil
}

// session holds what a command run needs once its configuration is read.
type session struct {
	cfg      *Config
	cio      *streamsql.CmdIO
	log      logger.Logger
	plog     processinglog.Logger
	schema   *schema.Schema
	closeLog func() error

	// read and written belong to the run loop; skipped and failed are
	// updated by workers.
	read, written, skipped, failed int64
}

func newSession(cfg *Config, cio *streamsql.CmdIO) (*session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	s, err := schema.Parse(cfg.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "parsing schema")
	}
	log, closeLog, err := newLogger(cfg, cio.Stderr)
	if err != nil {
		return nil, err
	}
	cio.SetLogger(log)
	return &session{
		cfg:      cfg,
		cio:      cio,
		log:      log,
		plog:     processinglog.NewLogger(log, processinglog.OptLoggerIncludeRows(cfg.IncludeRows)),
		schema:   s,
		closeLog: closeLog,
	}, nil
}

func (s *session) Close() error {
	return s.closeLog()
}

// open returns the reader for the configured input and the function that
// turns its records into rows.
func (s *session) open(in io.Reader) (recordReader, func(record) (*row.Row, error), error) {
	format := strings.ToUpper(s.cfg.Format)
	opts := []serde.Option{serde.OptLogger(s.log), serde.OptIncludeRows(s.cfg.IncludeRows)}

	if format == serde.FormatAvro && s.cfg.AvroSchema == "" {
		ocf, err := goavro.NewOCFReader(bufio.NewReader(in))
		if err != nil {
			return nil, nil, errors.Wrap(err, "reading object container file header")
		}
		d, err := serde.NewAvroDeserializer(s.schema, ocf.Codec().Schema(), s.plog, opts...)
		if err != nil {
			return nil, nil, err
		}
		return &ocfReader{r: ocf}, func(rec record) (*row.Row, error) {
			return d.DeserializeNative(s.cfg.Topic, rec.native)
		}, nil
	}

	if format == serde.FormatAvro {
		writerSchema, err := loadArg("avro-schema", s.cfg.AvroSchema)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, serde.OptAvroSchema(string(writerSchema)))
	}
	d, err := serde.New(format, s.schema, s.plog, opts...)
	if err != nil {
		return nil, nil, err
	}
	return newLineReader(in, format == serde.FormatAvro), func(rec record) (*row.Row, error) {
		if rec.err != nil {
			s.plog.Error(processinglog.DeserializationErrorMessage(rec.err, rec.data, s.cfg.IncludeRows))
			return nil, streamsql.NewErrDeserialization(s.cfg.Topic, rec.err)
		}
		return d.Deserialize(s.cfg.Topic, rec.data)
	}, nil
}

// run decodes every input record, applies transform when it is not nil, and
// writes the resulting rows to stdout as JSON lines in input order. Records
// that fail are reported to the processing log and skipped.
func (s *session) run(ctx context.Context, transform func(*row.Row) (*row.Row, error)) error {
	in, err := openInput(s.cfg.Input, s.cio.Stdin)
	if err != nil {
		return err
	}
	defer in.Close()

	rr, decode, err := s.open(in)
	if err != nil {
		return err
	}
	process := decode
	if transform != nil {
		process = func(rec record) (*row.Row, error) {
			r, err := decode(rec)
			if err != nil || r == nil {
				return r, err
			}
			return transform(r)
		}
	}

	w := bufio.NewWriter(s.cio.Stdout)
	interval := time.Duration(s.cfg.ProgressInterval)
	lastProgress := time.Now()
	start := lastProgress
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, readErr := s.readBatch(rr)
		if err := s.processBatch(ctx, batch, process, w); err != nil {
			return err
		}
		if readErr == io.EOF {
			break
		} else if readErr != nil {
			return readErr
		}
		if interval > 0 && time.Since(lastProgress) >= interval {
			lastProgress = time.Now()
			s.log.Infof("progress: %d records read, %d rows written", s.read, s.written)
		}
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "flushing output")
	}
	s.log.Infof("topic %s: read %d records, wrote %d rows, skipped %d, failed %d in %s",
		s.cfg.Topic, s.read, s.written, s.skipped, s.failed, time.Since(start).Truncate(time.Millisecond))
	return nil
}

func (s *session) readBatch(rr recordReader) ([]record, error) {
	batch := make([]record, 0, s.cfg.BatchSize)
	for len(batch) < s.cfg.BatchSize {
		rec, err := rr.next()
		if err != nil {
			return batch, err
		}
		batch = append(batch, rec)
	}
	return batch, nil
}

// processBatch runs process over batch on up to Workers goroutines, then
// writes the rows in batch order.
func (s *session) processBatch(ctx context.Context, batch []record, process func(record) (*row.Row, error), w io.Writer) error {
	if len(batch) == 0 {
		return nil
	}
	base := s.read
	s.read += int64(len(batch))

	rows := make([]*row.Row, len(batch))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)
	for i := range batch {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := process(batch[i])
			switch {
			case err != nil:
				atomic.AddInt64(&s.failed, 1)
				s.log.Debugf("record %d: %v", base+int64(i)+1, err)
			case r == nil:
				atomic.AddInt64(&s.skipped, 1)
			default:
				rows[i] = r
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, r := range rows {
		if r == nil {
			continue
		}
		b, err := serde.MarshalRow(r)
		if err != nil {
			atomic.AddInt64(&s.failed, 1)
			s.log.Printf("record %d: marshalling row: %v", base+int64(i)+1, err)
			continue
		}
		b = append(b, '\n')
		if _, err := w.Write(b); err != nil {
			return errors.Wrap(err, "writing row")
		}
		s.written++
	}
	return nil
}

// Package docframe reads MongoDB collections, or mongoexport Extended JSON
// files, into typed columnar tables backed by Apache Arrow.
//
// A read runs in three phases:
//
//  1. Schema inference: a sample of documents is classified field by field
//     and the observed types are merged into one column type per field.
//  2. Materialization: every document is streamed through a cursor and its
//     values are coerced into per-column buffers. Values that do not fit the
//     column type become nulls. With more than one worker, columns are split
//     into groups filled concurrently, batch by batch.
//  3. Finalization: the buffers are closed into a table whose columns all
//     have the same length. A registry can be finalized once.
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/ajitpratap0/docframe/pkg/reader"
//	    "github.com/ajitpratap0/docframe/pkg/source"
//	)
//
//	r, err := reader.Connect(ctx, source.Options{
//	    ConnectionStr: "mongodb://localhost:27017",
//	    Database:      "shop",
//	    Collection:    "orders",
//	}, logger)
//	if err != nil {
//	    return err
//	}
//	defer r.Close(ctx)
//
//	table, err := r.Read(ctx, reader.ReadOptions{
//	    Columns: []string{"sku", "qty", "at"},
//	    Workers: 4,
//	})
//	if err != nil {
//	    return err
//	}
//	defer table.Release()
//
// # Key Packages
//
//	pkg/schema        - Value classification, type lattice and schema inference
//	pkg/columnar      - Column buffers, the buffer registry and tables
//	pkg/source        - MongoDB, Extended JSON file and in-memory sources
//	pkg/reader        - The read state machine tying the phases together
//	internal/pipeline - Sequential and column-parallel materialization
//	pkg/formats       - Arrow IPC, Parquet, Avro, JSON lines and CSV writers
//	pkg/compression   - Stream codecs for input and output files
//	pkg/config        - YAML configuration with environment substitution
//	pkg/errors        - Structured errors, including the compute error kind
//	pkg/logger        - Structured logging
//	pkg/metrics       - Prometheus metrics
//	pkg/observability - OpenTelemetry tracing
//
// # Command Line
//
// The docframe command prints inferred schemas and reads collections to
// files:
//
//	docframe schema --connection-str mongodb://localhost --db shop --collection orders
//	docframe read -i orders.jsonl.zst --columns sku,qty -o orders.parquet
//
// Every flag can also be set through a DOCFRAME_ environment variable or a
// YAML file passed with --config.
package docframe

// Package config loads and validates docframe configuration.
//
// # Key Features
//
// - Config: one structure with Source, Read, Output and Observability sections
// - Environment variable substitution with ${VAR_NAME} and ${VAR_NAME:-default}
// - Defaults from NewConfig, overridden by whatever the file sets
// - Conversion helpers to reader, logger and tracing options
//
// # Usage
//
//	cfg, err := config.Load("docframe.yaml")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	r, err := reader.Connect(ctx, cfg.SourceOptions(), logger)
//	if err != nil {
//		log.Fatal(err)
//	}
//	table, err := r.Read(ctx, cfg.ReadOptions())
//
// ## Environment Variable Substitution
//
//	# docframe.yaml
//	source:
//	  connection_str: ${MONGO_URI}
//	  db: shop
//	  collection: orders
//	read:
//	  infer_schema_len: 100
//	  limit: ${READ_LIMIT:-10000}
//	  columns: [ticker, peers, address]
//	output:
//	  format: parquet
//	  path: orders.parquet
//
// The command line overlays flags and DOCFRAME_* environment variables on
// top of the loaded file.
package config

// Package columnar turns a stream of documents into typed Arrow columns.
//
// # Overview
//
// A read materializes one column per schema field:
//   - Buffer: an append-only, typed column under construction
//   - Registry: one Buffer per field, fed a document at a time or a batch of
//     columns at a time
//   - Table: the immutable result, backed by an arrow.Record
//
// # Coercion
//
// Every value passes through Buffer.Add, which converts it to the column type
// or appends a null when it cannot:
//
//	Bool      bool only
//	numeric   int32, int64, double and bool (as 0/1); floats truncate toward
//	          zero; NaN, infinities, out-of-range values and negatives into
//	          unsigned columns become null
//	String    strings, symbols, object ids (hex), regexes, JavaScript code,
//	          timestamps, and embedded documents or arrays as relaxed
//	          Extended JSON
//	Datetime  datetimes, timestamps (seconds) and recognized date/time text
//	Date      the same inputs, floored to days since the epoch
//
// Coercion failures are counted per buffer (Buffer.CoercionNulls) and never
// reported as errors.
//
// # Usage Example
//
//	reg, err := columnar.NewRegistry(s, 10_000)
//	if err != nil {
//		return err
//	}
//	for _, doc := range docs {
//		if err := reg.Append(doc); err != nil {
//			reg.Release()
//			return err
//		}
//	}
//	table, err := reg.Finish()
//	if err != nil {
//		return err
//	}
//	defer table.Release()
//
// # Memory
//
// Buffers and tables hold Arrow memory. Use WithAllocator to supply a
// memory.Allocator (for example memory.NewCheckedAllocator in tests) and
// always Release a Table, or a Registry that will not be finished.
package columnar

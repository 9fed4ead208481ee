// Package benchmark provides performance benchmarks for webstash.
//
// Run benchmarks with:
//
//	go test -bench=. -benchmem ./internal/tests/benchmark/...
//
// Run the capacity scan benchmarks only:
//
//	go test -bench=BenchmarkManagerSet_Prefilled -benchmem -benchtime=5s ./internal/tests/benchmark/...
//
// Generate performance report:
//
//	go test -bench=. -benchmem -count=5 ./internal/tests/benchmark/... | tee benchmark.txt
//
// Compare results:
//
//	benchstat old.txt new.txt
package benchmark

package ingestion

import "sync"

// countChunkSize is the per-goroutine batch size above which
// CountByBuilding splits work across goroutines instead of counting
// sequentially, grounded on group_by_time.rs's count_by fold/reduce.
const countChunkSize = 2048

// CountByBuilding counts how many elements of data map to each key via
// key, folding per-chunk maps in parallel and reducing them into one.
func CountByBuilding[T any, K comparable](data []T, key func(T) K) map[K]uint64 {
	if len(data) <= countChunkSize {
		return countSequential(data, key)
	}

	numChunks := (len(data) + countChunkSize - 1) / countChunkSize
	partials := make([]map[K]uint64, numChunks)

	var wg sync.WaitGroup
	wg.Add(numChunks)
	for i := 0; i < numChunks; i++ {
		start := i * countChunkSize
		end := start + countChunkSize
		if end > len(data) {
			end = len(data)
		}

		go func(i, start, end int) {
			defer wg.Done()
			partials[i] = countSequential(data[start:end], key)
		}(i, start, end)
	}
	wg.Wait()

	total := make(map[K]uint64)
	for _, p := range partials {
		for k, c := range p {
			total[k] += c
		}
	}
	return total
}

func countSequential[T any, K comparable](data []T, key func(T) K) map[K]uint64 {
	m := make(map[K]uint64, len(data))
	for _, d := range data {
		m[key(d)]++
	}
	return m
}

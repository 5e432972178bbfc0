package keyframe

import "sync"

// task splits [0, size) into one contiguous chunk per worker and runs fn on every chunk.
func task(workersCount int, size int, fn func(start, end int)) {
	workersCount = max(1, min(workersCount, size))
	chunkSize := (size + workersCount - 1) / workersCount

	var wg sync.WaitGroup
	for workerID := 0; workerID < workersCount; workerID++ {
		start, end := workerID*chunkSize, min((workerID+1)*chunkSize, size)
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			fn(start, end)
		}(start, end)
	}
	wg.Wait()
}

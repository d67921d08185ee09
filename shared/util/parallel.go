package util

import (
	"runtime"
	"sync"
)

// ParallelFor divide o intervalo [0, n) em blocos contíguos e executa body
// em `workers` goroutines simultâneas, aguardando a conclusão de todas (join síncrono).
// A ordem de processamento entre blocos é indefinida; o corpo não pode depender dela.
func ParallelFor(workers, n int, body func(start, end int)) {
	if n <= 0 {
		return
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > n {
		workers = n
	}
	if workers == 1 {
		body(0, n)
		return
	}

	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for start := 0; start < n; start += chunk {
		end := start + chunk
		if end > n {
			end = n
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			body(s, e)
		}(start, end)
	}
	wg.Wait()
}

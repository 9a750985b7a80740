package model

// ChunkPlan returns the sizes of the frames a file of size bytes is split
// into. Every chunk is chunkSize long except the last, which holds the
// remainder. An empty file produces no chunks.
func ChunkPlan(size int64, chunkSize int) []int {
	if size <= 0 || chunkSize <= 0 {
		return nil
	}

	n := ChunkCount(size, chunkSize)
	plan := make([]int, n)
	for i := range plan {
		plan[i] = chunkSize
	}
	if rem := int(size % int64(chunkSize)); rem != 0 {
		plan[n-1] = rem
	}
	return plan
}

// ChunkCount is ceil(size / chunkSize).
func ChunkCount(size int64, chunkSize int) int {
	if size <= 0 || chunkSize <= 0 {
		return 0
	}
	c := int64(chunkSize)
	return int((size + c - 1) / c)
}

// Chunks slices data into consecutive chunks without copying.
func Chunks(data []byte, chunkSize int) [][]byte {
	if chunkSize <= 0 {
		return nil
	}
	var chunks [][]byte
	for offset := 0; offset < len(data); offset += chunkSize {
		end := min(offset+chunkSize, len(data))
		chunks = append(chunks, data[offset:end])
	}
	return chunks
}

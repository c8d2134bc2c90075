package ingest

// IngestConfig holds the defaults applied to documents that do not carry
// their own chunking parameters.
type IngestConfig struct {
	ChunkSize        int
	ChunkOverlap     int
	EmbedParallelism int
	EmbedModel       string
	QueueSize        int
}

func (c *IngestConfig) applyDefaults() {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 1000
	}
	if c.ChunkOverlap < 0 {
		c.ChunkOverlap = 200
	}
	if c.EmbedParallelism <= 0 {
		c.EmbedParallelism = 4
	}
	if c.QueueSize <= 0 {
		c.QueueSize = 100
	}
}

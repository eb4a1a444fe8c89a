package network

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	"github.com/mitchelldurbincs/LightTrailRL/internal/common"
)

// checkpointVersion is bumped whenever the blob layout changes
const checkpointVersion = 1

// checkpoint is the on-disk parameter blob
type checkpoint struct {
	Version int
	Sizes   []int
	Params  [][]float64
}

// WriteTo encodes the parameters as a gob blob
func (q *QNetwork) WriteTo(w io.Writer) (int64, error) {
	q.mu.Lock()
	cp := checkpoint{
		Version: checkpointVersion,
		Sizes:   append([]int(nil), q.sizes...),
		Params:  q.parameterSlices(),
	}
	q.mu.Unlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(cp); err != nil {
		return 0, fmt.Errorf("encode checkpoint: %w", err)
	}
	return buf.WriteTo(w)
}

// ReadFrom restores parameters from a blob written by WriteTo. The layer
// sizes in the blob must match the network.
func (q *QNetwork) ReadFrom(r io.Reader) (int64, error) {
	cr := &countingReader{r: r}
	var cp checkpoint
	if err := gob.NewDecoder(cr).Decode(&cp); err != nil {
		return cr.n, fmt.Errorf("decode checkpoint: %w", err)
	}
	if cp.Version != checkpointVersion {
		return cr.n, fmt.Errorf("checkpoint version %d, want %d: %w", cp.Version, checkpointVersion, ErrCheckpointShape)
	}
	if !equalSizes(cp.Sizes, q.sizes) {
		return cr.n, fmt.Errorf("checkpoint layers %v, network layers %v: %w", cp.Sizes, q.sizes, ErrCheckpointShape)
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return cr.n, q.setParameterSlices(cp.Params)
}

// Save writes the parameters to path atomically: the blob goes to a
// temporary file in the same directory which is synced and then renamed.
func (q *QNetwork) Save(path string) error {
	err := common.WriteFileAtomic(path, func(w io.Writer) error {
		_, err := q.WriteTo(w)
		return err
	})
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}

	q.logger.Debug().Str("path", path).Msg("Checkpoint written")
	return nil
}

// Load restores parameters from a checkpoint file. A missing file is
// reported with an error wrapping fs.ErrNotExist.
func (q *QNetwork) Load(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open checkpoint: %w", err)
	}
	defer f.Close()

	if _, err := q.ReadFrom(f); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	q.logger.Debug().Str("path", path).Msg("Checkpoint loaded")
	return nil
}

func equalSizes(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

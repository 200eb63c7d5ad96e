package cgan_go

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

const checkpointFileName = "checkpoint.json"

// Checkpoint On-disk snapshot of model weights and training progress.
type Checkpoint struct {
	Weights    []WeightTensor     `json:"weights"`
	GlobalStep int                `json:"global_step"`
	Metadata   CheckpointMetadata `json:"metadata"`
}

// WeightTensor Single named weight tensor. Name must match the graph node name it restores into.
type WeightTensor struct {
	Name  string    `json:"name"`
	Shape []int     `json:"shape"`
	Data  []float64 `json:"data"`
}

// CheckpointMetadata Bookkeeping information about checkpoint origin.
type CheckpointMetadata struct {
	RunID     string    `json:"run_id"`
	Library   string    `json:"library"`
	CreatedAt time.Time `json:"created_at"`
}

// NewCheckpoint Snapshots provided learnable nodes.
//
// globalStep - number of consumed training batches so far
// learnables - nodes to snapshot; each must have a unique name and a bound value
//
func NewCheckpoint(globalStep int, learnables gorgonia.Nodes) (*Checkpoint, error) {
	ckpt := Checkpoint{
		Weights:    make([]WeightTensor, 0, len(learnables)),
		GlobalStep: globalStep,
		Metadata: CheckpointMetadata{
			RunID:     uuid.New().String(),
			Library:   "cgan-go",
			CreatedAt: time.Now().UTC(),
		},
	}
	seen := make(map[string]bool, len(learnables))
	for _, node := range learnables {
		if node.Value() == nil {
			return nil, fmt.Errorf("Node '%s' has no bound value", node.Name())
		}
		if seen[node.Name()] {
			return nil, fmt.Errorf("Duplicate node name '%s' in checkpoint", node.Name())
		}
		seen[node.Name()] = true
		raw, ok := node.Value().Data().([]float64)
		if !ok {
			return nil, fmt.Errorf("Node '%s' does not hold float64 data", node.Name())
		}
		data := make([]float64, len(raw))
		copy(data, raw)
		ckpt.Weights = append(ckpt.Weights, WeightTensor{
			Name:  node.Name(),
			Shape: []int(node.Shape().Clone()),
			Data:  data,
		})
	}
	return &ckpt, nil
}

// Save Writes checkpoint as JSON into provided directory (file name is fixed).
// Write goes through a temporary file and rename, so readers never observe a partial checkpoint.
func (ckpt *Checkpoint) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "Can't prepare checkpoint directory")
	}
	raw, err := json.Marshal(ckpt)
	if err != nil {
		return errors.Wrap(err, "Can't marshal checkpoint")
	}
	tmp := filepath.Join(dir, checkpointFileName+".tmp")
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return errors.Wrap(err, "Can't write checkpoint file")
	}
	if err := os.Rename(tmp, filepath.Join(dir, checkpointFileName)); err != nil {
		return errors.Wrap(err, "Can't finalize checkpoint file")
	}
	return nil
}

// LoadCheckpoint Reads checkpoint from provided directory.
func LoadCheckpoint(dir string) (*Checkpoint, error) {
	raw, err := os.ReadFile(filepath.Join(dir, checkpointFileName))
	if err != nil {
		return nil, errors.Wrap(err, "Can't read checkpoint file")
	}
	ckpt := Checkpoint{}
	if err := json.Unmarshal(raw, &ckpt); err != nil {
		return nil, errors.Wrap(err, "Can't unmarshal checkpoint")
	}
	return &ckpt, nil
}

// Apply Copies stored weights into matching nodes (matched by node name).
//
// Restore is non-strict: stored weights without a matching node are skipped and
// nodes without a stored weight keep their current values. A shape mismatch for
// a matched name is an error. Data is copied into the node's existing tensor
// backing, so any node sharing that backing (frozen discriminator copies on
// generator graphs) picks the restored weights up as well.
//
func (ckpt *Checkpoint) Apply(learnables gorgonia.Nodes) error {
	byName := make(map[string]*gorgonia.Node, len(learnables))
	for _, node := range learnables {
		byName[node.Name()] = node
	}
	for _, w := range ckpt.Weights {
		node, ok := byName[w.Name]
		if !ok {
			continue
		}
		if node.Value() == nil {
			return fmt.Errorf("Node '%s' has no bound value to restore into", w.Name)
		}
		// Equal element count is not enough: a transposed shape would restore with scrambled layout
		if !node.Shape().Eq(tensor.Shape(w.Shape)) {
			return fmt.Errorf("Shape mismatch for node '%s': node has shape %v, checkpoint has %v", w.Name, node.Shape(), tensor.Shape(w.Shape))
		}
		if node.Shape().TotalSize() != len(w.Data) {
			return fmt.Errorf("Data size mismatch for node '%s': node has %d elements, checkpoint has %d", w.Name, node.Shape().TotalSize(), len(w.Data))
		}
		dst, ok := node.Value().Data().([]float64)
		if !ok {
			return fmt.Errorf("Node '%s' does not hold float64 data", w.Name)
		}
		copy(dst, w.Data)
	}
	return nil
}

package statecache

import (
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/solflu/outbreak/pkg/simulation"
)

// Encode serializes a snapshot to snappy-compressed JSON for transport.
// Snapshots repeat country field names heavily, so block compression pays
// for itself well before the payload reaches wire size limits.
func Encode(snapshot *simulation.Snapshot) ([]byte, error) {
	raw, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	return snappy.Encode(nil, raw), nil
}

// Decode reverses Encode.
func Decode(data []byte) (*simulation.Snapshot, error) {
	raw, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	var snapshot simulation.Snapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}

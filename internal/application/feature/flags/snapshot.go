package flags

import (
	"encoding/json"
	"fmt"
	"maps"
	"time"

	"github.com/bodrix-ai/bodrix/internal/shared/biztime"
)

// Snapshot is the portable form of a flag configuration. A nil Context or nil
// Overrides leaves the corresponding state untouched on Import.
type Snapshot struct {
	Context   *EvalContext    `json:"context"`
	Overrides map[string]bool `json:"overrides"`
	Timestamp time.Time       `json:"timestamp"`
}

// Export captures the current context and overrides.
func (f *Flags) Export() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()

	evalCtx := f.evalCtx.Clone()
	return Snapshot{
		Context:   &evalCtx,
		Overrides: maps.Clone(f.overrides),
		Timestamp: biztime.NowUTC(),
	}
}

// Import replaces the context and the override map wholesale when present in s.
// Replacing overrides publishes and notifies like any other override change.
func (f *Flags) Import(s Snapshot) {
	if s.Context != nil {
		f.Initialize(*s.Context)
	}
	if s.Overrides != nil {
		f.applyChange(ChangeEvent{Kind: ChangeReplace, Overrides: s.Overrides}, true)
	}
}

// ParseSnapshot decodes an exported snapshot.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("invalid flag snapshot: %w", err)
	}
	if s.Context != nil && s.Context.Environment != "" && !s.Context.Environment.IsValid() {
		return Snapshot{}, fmt.Errorf("invalid flag snapshot: unknown environment %q", s.Context.Environment)
	}
	return s, nil
}

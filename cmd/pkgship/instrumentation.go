package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"path"
	"sync"
	"time"

	"github.com/pkgship/pkgship/cmd/pkgship/internal/typeutil"
)

// Instrumentation collects step timings and artifact sizes of a pipeline
// run. It gets dumped to stderr at the end, so slow steps are easy to spot.
type Instrumentation struct {
	l *sync.Mutex

	Durations struct {
		Steps     *DurationMap `json:"steps,omitempty"`
		Checks    *DurationMap `json:"checks,omitempty"`
		Building  *DurationMap `json:"build,omitempty"`
		Artifacts *DurationMap `json:"artifacts,omitempty"`
		Upload    *DurationMap `json:"upload,omitempty"`
	} `json:",omitempty"`

	Sizes map[string]typeutil.JSONBytes `json:",omitempty"`
}

func NewInstrumentation() *Instrumentation {
	inst := new(Instrumentation)
	inst.l = new(sync.Mutex)

	inst.Durations.Steps = NewDurationMap()
	inst.Durations.Checks = NewDurationMap()
	inst.Durations.Building = NewDurationMap()
	inst.Durations.Artifacts = NewDurationMap()
	inst.Durations.Upload = NewDurationMap()

	return inst
}

// ReadSize records the size of a file in the dist directory.
func (i *Instrumentation) ReadSize(distDir, name string) {
	fi, err := os.Stat(path.Join(distDir, name))
	if err != nil {
		slog.Error("Failed to get artifact size", "name", name, "error", err.Error())
		return
	}

	i.l.Lock()
	defer i.l.Unlock()

	if i.Sizes == nil {
		i.Sizes = map[string]typeutil.JSONBytes{}
	}

	i.Sizes[name] = typeutil.JSONBytes{
		Size: fi.Size(),
	}
}

// DurationMap is a concurrency safe map of named durations.
type DurationMap struct {
	m map[string]typeutil.JSONDuration
	l *sync.Mutex
}

func NewDurationMap() *DurationMap {
	return &DurationMap{
		m: map[string]typeutil.JSONDuration{},
		l: new(sync.Mutex),
	}
}

func (m *DurationMap) MarshalJSON() ([]byte, error) {
	m.l.Lock()
	defer m.l.Unlock()

	return json.Marshal(m.m)
}

// Set stores an externally measured duration.
func (m *DurationMap) Set(name string, d time.Duration) {
	m.l.Lock()
	defer m.l.Unlock()

	m.m[name] = typeutil.JSONDuration{
		Duration: d.Truncate(time.Millisecond),
	}
}

// Stopwatch starts a timer and returns the function that stops it and
// stores the result. Meant for defer.
func (m *DurationMap) Stopwatch(name string) func() {
	start := time.Now()

	return func() {
		d := time.Since(start).Truncate(time.Millisecond)

		m.l.Lock()
		defer m.l.Unlock()

		m.m[name] = typeutil.JSONDuration{
			Duration: d,
		}
	}
}

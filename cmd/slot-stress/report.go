package main

import (
	"bytes"
	"fmt"
	"io"
	"runtime"
	"text/template"
	"time"

	"github.com/natefinch/atomic"
	"github.com/plus3/slotstore/ecs"
)

type Report struct {
	// Configuration
	Duration time.Duration
	Cycles   int
	Owners   int
	Churn    float64
	Reserve  int
	Seed     int64

	// Results
	TotalCycles int64
	TotalTime   time.Duration
	CycleTime   Stats
	Spawned     int64
	Destroyed   int64
	Churned     int64
	Registry    ecs.RegistryStats

	MemStatsStart runtime.MemStats
	MemStatsEnd   runtime.MemStats
}

type Stats struct {
	Min     time.Duration
	Max     time.Duration
	Avg     time.Duration
	Samples []time.Duration
}

func (s *Stats) Finalize() {
	if len(s.Samples) == 0 {
		return
	}

	var total time.Duration
	s.Min = s.Samples[0]
	s.Max = s.Samples[0]

	for _, sample := range s.Samples {
		s.Min = min(s.Min, sample)
		s.Max = max(s.Max, sample)
		total += sample
	}
	s.Avg = total / time.Duration(len(s.Samples))
}

const reportTemplate = `
# Slot Store Stress Report

## Configuration
- **Run Duration:** {{.Duration}}
- **Cycle Limit:** {{if .Cycles}}{{.Cycles}}{{else}}none{{end}}
- **Owners:** {{.Owners}}
- **Churn:** {{printf "%.2f" .Churn}}
- **Reserve:** {{.Reserve}}
- **Seed:** {{.Seed}}

## Results
- **Total Cycles:** {{.TotalCycles}}
- **Total Time:** {{.TotalTime}}
- **Cycle Time:**
  - **Avg:** {{.CycleTime.Avg}}
  - **Min:** {{.CycleTime.Min}}
  - **Max:** {{.CycleTime.Max}}
- **Owners Spawned:** {{.Spawned}}
- **Owners Destroyed:** {{.Destroyed}}
- **Velocity Churns:** {{.Churned}}

## Containers
| Type | Name | Live | Stored | Capacity | Next Id | Pending Cull |
|------|------|------|--------|----------|---------|--------------|
{{- range .Registry.Containers}}
| {{.Type}} | {{.Name}} | {{.Size}} | {{.Stored}} | {{.Capacity}} | {{.NextId}} | {{.PendingCull}} |
{{- end}}

- **Containers:** {{.Registry.ContainerCount}}
- **Live Records:** {{.Registry.TotalRecords}}

## Memory Usage (MiB)
- Heap Alloc:  {{mb .MemStatsStart.HeapAlloc}} (start) -> {{mb .MemStatsEnd.HeapAlloc}} (end)
- Total Alloc: {{mb .MemStatsStart.TotalAlloc}} (start) -> {{mb .MemStatsEnd.TotalAlloc}} (end)
- Sys Memory:  {{mb .MemStatsStart.Sys}} (start) -> {{mb .MemStatsEnd.Sys}} (end)
- Num GC:      {{usub .MemStatsEnd.NumGC .MemStatsStart.NumGC}}
- GC Pause:    {{ns .MemStatsEnd.PauseTotalNs}}
`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"mb": func(v uint64) string {
		return fmt.Sprintf("%.2f", float64(v)/1024/1024)
	},
	"usub": func(a, b uint32) uint32 {
		return a - b
	},
	"ns": func(ns uint64) string {
		return time.Duration(ns).String()
	},
}).Parse(reportTemplate))

func (r *Report) Generate(w io.Writer) error {
	return reportTmpl.Execute(w, r)
}

// WriteFile renders the report and replaces path atomically.
func (r *Report) WriteFile(path string) error {
	var buf bytes.Buffer
	if err := r.Generate(&buf); err != nil {
		return err
	}
	if err := atomic.WriteFile(path, &buf); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

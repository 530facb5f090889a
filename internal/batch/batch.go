// Package batch runs the simulation across multiple selected instances
// with per-instance isolation, reporting each instance's score
// (sentinel for a fatal abort) and the mean of the successful ones
// (spec.md §7, §8 "selected_instances").
package batch

import (
	"context"

	"github.com/YJFKD/Food-delivery-simulator/internal/obslog"
	"github.com/YJFKD/Food-delivery-simulator/internal/scorer"
	"github.com/YJFKD/Food-delivery-simulator/internal/simulation"
)

// InstanceResult is one instance's outcome.
type InstanceResult struct {
	Instance string
	Score    scorer.Score
	Err      error
}

// Report is the full batch outcome.
type Report struct {
	Instances []InstanceResult
	MeanScore float64
}

// Run builds an Engine per instance via build, runs each independently,
// and never lets a failure in one instance affect another.
func Run(ctx context.Context, instances []string, log *obslog.Logger, build func(instance string) (*simulation.Engine, error)) Report {
	report := Report{Instances: make([]InstanceResult, 0, len(instances))}

	var sum float64
	var successCount int

	for _, name := range instances {
		engine, err := build(name)
		if err != nil {
			if log != nil {
				log.Errorw("instance setup failed", "instance", name, "err", err)
			}
			report.Instances = append(report.Instances, InstanceResult{
				Instance: name,
				Score:    scorer.Score{Value: scorer.Sentinel},
				Err:      err,
			})
			continue
		}

		result, err := engine.Run(ctx)
		if err != nil {
			if log != nil {
				log.Errorw("instance run failed", "instance", name, "err", err)
			}
			report.Instances = append(report.Instances, InstanceResult{
				Instance: name,
				Score:    scorer.Score{Value: scorer.Sentinel},
				Err:      err,
			})
			continue
		}

		report.Instances = append(report.Instances, InstanceResult{Instance: name, Score: result.Score})
		if result.Score.Value != scorer.Sentinel {
			sum += result.Score.Value
			successCount++
		}
	}

	if successCount > 0 {
		report.MeanScore = sum / float64(successCount)
	} else {
		report.MeanScore = scorer.Sentinel
	}
	return report
}

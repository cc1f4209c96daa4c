package main

import (
	"flag"
	"fmt"
	"sort"
	"strings"

	"github.com/paulmach/orb"

	"github.com/perbrage/flood-rescue-swarm/internal/swarm"
)

// defaultCenter is the demo flood centre (Odense harbour) used when no
// coordinates are given.
var defaultCenter = orb.Point{10.3883, 55.3959}

type runStats struct {
	runIndex int
	seed     int64

	detected      int
	rescued       int
	completed     bool
	completionTik int
	firstRescue   int
	fallbacks     int
	targetsSet    int
	perDrone      map[string]int
}

func main() {
	var runs int
	var maxTicks int
	var seedBase int64
	var seedStep int64
	var configPath string
	var agents, density int
	var radius, trigger, speed float64

	flag.IntVar(&runs, "runs", 5, "number of headless simulation runs")
	flag.IntVar(&maxTicks, "ticks", 3000, "tick budget per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&configPath, "config", "", "optional YAML config file")
	flag.IntVar(&agents, "agents", 0, "override drone count")
	flag.IntVar(&density, "density", 0, "override victim density")
	flag.Float64Var(&radius, "radius", 0, "override flood radius in meters")
	flag.Float64Var(&trigger, "trigger", 0, "override rescue trigger range in meters")
	flag.Float64Var(&speed, "speed", 0, "override drone speed in meters per tick")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if maxTicks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}

	cfg := swarm.DefaultConfig()
	if configPath != "" {
		loaded, err := swarm.LoadConfig(configPath)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		cfg = loaded
	}
	if agents > 0 {
		cfg.Agents = agents
	}
	if density > 0 {
		cfg.Density = float64(density)
	}
	if radius > 0 {
		cfg.FloodRadius = radius
	}
	if trigger > 0 {
		cfg.TriggerRange = trigger
	}
	if speed > 0 {
		cfg.Speed = speed
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}

	fmt.Printf("=== Headless Rescue Report ===\n")
	fmt.Printf("runs=%d ticks=%d seed_base=%d seed_step=%d agents=%d density=%.0f radius=%.0fm trigger=%.0fm speed=%.0fm/t\n\n",
		runs, maxTicks, seedBase, seedStep, cfg.Agents, cfg.Density, cfg.FloodRadius, cfg.TriggerRange, cfg.Speed)

	all := make([]runStats, 0, runs)
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		stats := runRescue(i+1, seed, maxTicks, cfg)
		all = append(all, stats)
		printRun(stats)
	}

	printAggregate(all, maxTicks)
}

func runRescue(runIndex int, seed int64, maxTicks int, cfg swarm.Config) runStats {
	center := defaultCenter
	if cfg.FloodCenter != nil {
		center = cfg.FloodCenter.Point()
	}
	s := swarm.New(
		swarm.WithConfig(cfg),
		swarm.WithSeed(seed),
		swarm.WithFloodCenter(center),
	)
	if err := s.Launch(); err != nil {
		fmt.Printf("error: run %d launch: %v\n", runIndex, err)
		return runStats{runIndex: runIndex, seed: seed}
	}
	s.RunTicks(maxTicks)

	sum := s.Summary()
	log := s.Log()
	perDrone := make(map[string]int, len(sum.PerDrone))
	for _, dc := range sum.PerDrone {
		perDrone[dc.Label] = dc.Rescued
	}

	completionTick := -1
	if entry, ok := log.LastOf("run", "complete"); ok {
		completionTick = entry.Tick
	}

	return runStats{
		runIndex:      runIndex,
		seed:          seed,
		detected:      sum.TotalDetected,
		rescued:       sum.TotalRescued,
		completed:     sum.Finished,
		completionTik: completionTick,
		firstRescue:   log.FirstTick("rescue", "completed", ""),
		fallbacks:     log.CountCategory("partition", "fallback"),
		targetsSet:    log.CountCategory("allocate", "target_set"),
		perDrone:      perDrone,
	}
}

func printRun(rs runStats) {
	fmt.Printf("--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Printf("victims: detected=%d rescued=%d completed=%v completion_tick=%d first_rescue_tick=%d\n",
		rs.detected, rs.rescued, rs.completed, rs.completionTik, rs.firstRescue)
	fmt.Printf("allocation: targets_set=%d partition_fallbacks=%d\n", rs.targetsSet, rs.fallbacks)
	fmt.Printf("per_drone: %s\n\n", formatPerDrone(rs.perDrone))
}

func printAggregate(all []runStats, maxTicks int) {
	completedRuns := 0
	totalDetected := 0
	totalRescued := 0
	completionTicks := make([]int, 0, len(all))
	firstRescueTicks := make([]int, 0, len(all))
	droneTotals := map[string]int{}

	for _, rs := range all {
		totalDetected += rs.detected
		totalRescued += rs.rescued
		if rs.completed {
			completedRuns++
			completionTicks = append(completionTicks, rs.completionTik)
		}
		if rs.firstRescue >= 0 {
			firstRescueTicks = append(firstRescueTicks, rs.firstRescue)
		}
		for label, n := range rs.perDrone {
			droneTotals[label] += n
		}
	}

	fmt.Println("=== Aggregate ===")
	fmt.Printf("runs=%d completed=%d/%d (tick budget %d)\n", len(all), completedRuns, len(all), maxTicks)
	fmt.Printf("victims: detected=%d rescued=%d (%.1f%%)\n",
		totalDetected, totalRescued, pct(totalRescued, totalDetected))
	fmt.Printf("avg_ticks: completion=%s first_rescue=%s\n",
		avgTickString(completionTicks), avgTickString(firstRescueTicks))
	fmt.Printf("per_drone_totals: %s\n", formatPerDrone(droneTotals))
}

func formatPerDrone(counts map[string]int) string {
	if len(counts) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(counts))
	for label := range counts {
		labels = append(labels, label)
	}
	sort.Strings(labels)
	parts := make([]string, 0, len(labels))
	for _, label := range labels {
		parts = append(parts, fmt.Sprintf("%s=%d", label, counts[label]))
	}
	return strings.Join(parts, " ")
}

func pct(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func avgTickString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

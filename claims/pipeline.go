package claims

import (
	"context"
	"hash/fnv"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Defaults for the ranked outputs.
const (
	DefaultTopChains     = 2
	DefaultTopQuantities = 5
)

// Inputs is one already-materialized batch of raw feed records.
type Inputs struct {
	Pharmacies []Pharmacy
	Claims     []Claim
	Reverts    []Revert
}

// Options tunes a pipeline run. Zero values select the defaults.
type Options struct {
	Policy        Policy
	TopChains     int
	TopQuantities int
	// Workers caps the aggregation goroutines; <= 0 uses NumCPU, 1 runs
	// sequentially. The result is identical for any worker count.
	Workers int
}

// Report holds the three output streams of one run.
type Report struct {
	Metrics       []MetricRow
	TopChains     []ChainRank
	TopQuantities []QuantityFrequency
}

// Run executes one full batch: eligibility filter, revert resolution, then
// the three aggregations. Claims are partitioned by ndc hash so no grouping
// key spans two partitions (every grouping nests inside ndc); each worker
// builds local accumulators which are merged after the fan-out completes.
func Run(ctx context.Context, in Inputs, opts Options) (*Report, error) {
	topChains := opts.TopChains
	if topChains <= 0 {
		topChains = DefaultTopChains
	}
	topQuantities := opts.TopQuantities
	if topQuantities <= 0 {
		topQuantities = DefaultTopQuantities
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	reconciled := Reconcile(in.Claims, NewDirectory(in.Pharmacies), NewRevertIndex(in.Reverts))

	metrics := NewMetricsAccumulator(opts.Policy)
	chains := NewChainAccumulator(opts.Policy)
	quantities := NewQuantityAccumulator()

	if workers == 1 || len(reconciled) < 2*workers {
		for _, c := range reconciled {
			metrics.Add(c)
			chains.Add(c)
			quantities.Add(c)
		}
	} else {
		type partial struct {
			metrics    *MetricsAccumulator
			chains     *ChainAccumulator
			quantities *QuantityAccumulator
		}
		parts := partitionByNDC(reconciled, workers)
		partials := make([]partial, len(parts))

		g, ctx := errgroup.WithContext(ctx)
		for i := range parts {
			i := i
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}
				p := partial{
					metrics:    NewMetricsAccumulator(opts.Policy),
					chains:     NewChainAccumulator(opts.Policy),
					quantities: NewQuantityAccumulator(),
				}
				for _, c := range parts[i] {
					p.metrics.Add(c)
					p.chains.Add(c)
					p.quantities.Add(c)
				}
				partials[i] = p
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, p := range partials {
			metrics.Merge(p.metrics)
			chains.Merge(p.chains)
			quantities.Merge(p.quantities)
		}
	}

	return &Report{
		Metrics:       metrics.Rows(),
		TopChains:     chains.Top(topChains),
		TopQuantities: quantities.Top(topQuantities),
	}, nil
}

// partitionByNDC splits claims into n buckets keyed by ndc hash. All claims
// for one drug land in the same bucket.
func partitionByNDC(cs []ReconciledClaim, n int) [][]ReconciledClaim {
	parts := make([][]ReconciledClaim, n)
	for _, c := range cs {
		h := fnv.New32a()
		h.Write([]byte(c.NDC))
		i := int(h.Sum32() % uint32(n))
		parts[i] = append(parts[i], c)
	}
	return parts
}

package analyze

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/card"
	"github.com/Shabthana123/Contextual-Personal-Assistant/internal/embed"
)

const embedBatchSize = 32

// embedAll embeds texts in batches, at most workers batches at a time.
// Output order matches texts.
func embedAll(ctx context.Context, e embed.Embedder, texts []string, workers int) ([][]float64, error) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	out := make([][]float64, len(texts))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		g.Go(func() error {
			vecs, err := e.EmbedBatch(ctx, texts[start:end])
			if err != nil {
				return err
			}
			for i, v := range vecs {
				f := make([]float64, len(v))
				for d, x := range v {
					f[d] = float64(x)
				}
				out[start+i] = f
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// clusterCards groups cards by description similarity. Cards without a
// description are left out. Clusters smaller than minSize are dropped.
func (a *Analyzer) clusterCards(ctx context.Context, cards []card.Card) ([]Cluster, error) {
	var usable []card.Card
	var texts []string
	for _, c := range cards {
		if card.Normalize(c.Description) == "" {
			continue
		}
		usable = append(usable, c)
		texts = append(texts, c.Description)
	}
	if len(usable) < 2 {
		return nil, nil
	}

	points, err := embedAll(ctx, a.embedder, texts, a.cfg.EmbedWorkers)
	if err != nil {
		return nil, err
	}

	k := clusterCount(len(points))
	p := kmeans(points, k, a.cfg.ClusterSeed, a.cfg.ClusterRestarts)

	members := make([][]int, k)
	for i, l := range p.labels {
		members[l] = append(members[l], i)
	}

	var out []Cluster
	for label, idxs := range members {
		if len(idxs) == 0 || len(idxs) < a.cfg.MinClusterSize {
			continue
		}
		rep, repSim := idxs[0], cosine64(p.centroids[label], points[idxs[0]])
		for _, i := range idxs[1:] {
			if s := cosine64(p.centroids[label], points[i]); s > repSim {
				rep, repSim = i, s
			}
		}

		cl := Cluster{
			ClusterID:      label,
			Size:           len(idxs),
			Representative: CardRef{ID: usable[rep].ID, Description: usable[rep].Description},
		}
		for _, i := range idxs {
			cl.Members = append(cl.Members, ref(usable[i]))
		}
		out = append(out, cl)
	}
	return out, nil
}

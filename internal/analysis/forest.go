package analysis

import (
	"errors"
	"math"
	"math/rand"
	"sort"
)

// ForestConfig configures the bagged regression tree ensemble.
type ForestConfig struct {
	Trees    int
	MaxDepth int
	Seed     int64
}

// DefaultForestConfig matches the production model: 100 trees, depth 5,
// fixed seed so identical training data yields identical predictions.
func DefaultForestConfig() ForestConfig {
	return ForestConfig{Trees: 100, MaxDepth: 5, Seed: 42}
}

// Forest is a bagged ensemble of variance-reduction regression trees.
type Forest struct {
	trees []*treeNode
}

type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	value     float64
}

func (n *treeNode) isLeaf() bool {
	return n.left == nil
}

// TrainForest fits an ensemble on the given feature rows and targets. Each
// tree is grown on a bootstrap resample drawn from a deterministic rng.
func TrainForest(features [][]float64, targets []float64, cfg ForestConfig) (*Forest, error) {
	n := len(targets)
	if n == 0 || len(features) != n {
		return nil, errors.New("training rows and targets must be non-empty and equal length")
	}
	if cfg.Trees <= 0 {
		cfg.Trees = 100
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = 5
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	trees := make([]*treeNode, 0, cfg.Trees)
	sampleFeat := make([][]float64, n)
	sampleTgt := make([]float64, n)

	for i := 0; i < cfg.Trees; i++ {
		for j := 0; j < n; j++ {
			k := rng.Intn(n)
			sampleFeat[j] = features[k]
			sampleTgt[j] = targets[k]
		}
		trees = append(trees, growTree(sampleFeat, sampleTgt, 0, cfg.MaxDepth))
	}
	return &Forest{trees: trees}, nil
}

// Predict averages the per-tree estimates for one feature row.
func (f *Forest) Predict(x []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	sum := 0.0
	for _, root := range f.trees {
		sum += predictTree(root, x)
	}
	return sum / float64(len(f.trees))
}

func predictTree(node *treeNode, x []float64) float64 {
	for !node.isLeaf() {
		if x[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

func growTree(features [][]float64, targets []float64, depth, maxDepth int) *treeNode {
	if depth >= maxDepth || len(targets) < 2 || isConstant(targets) {
		return &treeNode{value: mean(targets)}
	}

	feature, threshold, ok := bestSplit(features, targets)
	if !ok {
		return &treeNode{value: mean(targets)}
	}

	var leftFeat, rightFeat [][]float64
	var leftTgt, rightTgt []float64
	for i, row := range features {
		if row[feature] <= threshold {
			leftFeat = append(leftFeat, row)
			leftTgt = append(leftTgt, targets[i])
		} else {
			rightFeat = append(rightFeat, row)
			rightTgt = append(rightTgt, targets[i])
		}
	}
	if len(leftTgt) == 0 || len(rightTgt) == 0 {
		return &treeNode{value: mean(targets)}
	}

	return &treeNode{
		feature:   feature,
		threshold: threshold,
		left:      growTree(leftFeat, leftTgt, depth+1, maxDepth),
		right:     growTree(rightFeat, rightTgt, depth+1, maxDepth),
	}
}

func isConstant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

type splitPair struct {
	x float64
	y float64
}

// bestSplit scans midpoint thresholds on every feature and returns the split
// minimizing the summed squared deviation within the two children.
func bestSplit(features [][]float64, targets []float64) (int, float64, bool) {
	numFeatures := len(features[0])
	bestScore := math.Inf(1)
	bestFeature := -1
	bestThreshold := 0.0

	pairs := make([]splitPair, len(targets))
	prefixSum := make([]float64, len(targets)+1)
	prefixSq := make([]float64, len(targets)+1)

	for f := 0; f < numFeatures; f++ {
		for i := range targets {
			pairs[i] = splitPair{x: features[i][f], y: targets[i]}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].x < pairs[j].x })

		// Prefix sums make each candidate threshold constant time to score.
		for i, p := range pairs {
			prefixSum[i+1] = prefixSum[i] + p.y
			prefixSq[i+1] = prefixSq[i] + p.y*p.y
		}
		totalSum := prefixSum[len(pairs)]
		totalSq := prefixSq[len(pairs)]

		for i := 1; i < len(pairs); i++ {
			if pairs[i].x == pairs[i-1].x {
				continue
			}
			nl := float64(i)
			nr := float64(len(pairs) - i)
			leftSS := prefixSq[i] - prefixSum[i]*prefixSum[i]/nl
			rightSum := totalSum - prefixSum[i]
			rightSS := (totalSq - prefixSq[i]) - rightSum*rightSum/nr
			score := leftSS + rightSS
			if score < bestScore {
				bestScore = score
				bestFeature = f
				bestThreshold = (pairs[i].x + pairs[i-1].x) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

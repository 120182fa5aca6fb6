package service

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

var ErrTooFewSamples = errors.New("样本数少于聚类数")

// KMeans k-means++ 初始化 + Lloyd 迭代，多次初始化取惯性最小的结果
type KMeans struct {
	K       int
	Seed    uint64
	NInit   int
	MaxIter int
	Tol     float64

	Centroids [][]float64
	Inertia   float64
}

func NewKMeans(k int, seed uint64, nInit int) *KMeans {
	if nInit < 1 {
		nInit = 1
	}
	return &KMeans{K: k, Seed: seed, NInit: nInit, MaxIter: 300, Tol: 1e-4}
}

// Fit 训练并返回每个样本的分组；相同输入与种子得到相同结果
func (km *KMeans) Fit(data [][]float64) ([]int, error) {
	if km.K < 1 {
		return nil, fmt.Errorf("聚类数必须大于 0: %d", km.K)
	}
	if len(data) < km.K {
		return nil, fmt.Errorf("%w: %d < %d", ErrTooFewSamples, len(data), km.K)
	}
	dim := len(data[0])
	if dim == 0 {
		return nil, errors.New("样本维度为 0")
	}
	for i, row := range data {
		if len(row) != dim {
			return nil, fmt.Errorf("第 %d 个样本维度为 %d，期望 %d", i, len(row), dim)
		}
	}

	rng := rand.New(rand.NewPCG(km.Seed, km.Seed^0x9e3779b97f4a7c15))
	tol := km.Tol * meanVariance(data)

	var (
		bestCenters [][]float64
		bestLabels  []int
		bestInertia = math.Inf(1)
	)
	for run := 0; run < km.NInit; run++ {
		centers := initPlusPlus(data, km.K, rng)
		labels, inertia := km.lloyd(data, centers, tol)
		if inertia < bestInertia {
			bestCenters, bestLabels, bestInertia = centers, labels, inertia
		}
	}

	km.Centroids = bestCenters
	km.Inertia = bestInertia
	return bestLabels, nil
}

// Predict 返回距离最近的中心，距离相同取编号较小者
func (km *KMeans) Predict(x []float64) int {
	label, _ := nearest(x, km.Centroids)
	return label
}

func (km *KMeans) lloyd(data, centers [][]float64, tol float64) ([]int, float64) {
	labels := make([]int, len(data))
	dim := len(data[0])

	for iter := 0; iter < km.MaxIter; iter++ {
		for i, x := range data {
			labels[i], _ = nearest(x, centers)
		}

		sums := make([][]float64, len(centers))
		counts := make([]int, len(centers))
		for c := range sums {
			sums[c] = make([]float64, dim)
		}
		for i, x := range data {
			floats.Add(sums[labels[i]], x)
			counts[labels[i]]++
		}

		shift := 0.0
		for c := range centers {
			// 空簇保留原中心
			if counts[c] == 0 {
				continue
			}
			floats.Scale(1/float64(counts[c]), sums[c])
			d := floats.Distance(centers[c], sums[c], 2)
			shift += d * d
			centers[c] = sums[c]
		}
		if shift <= tol {
			break
		}
	}

	inertia := 0.0
	for i, x := range data {
		var d float64
		labels[i], d = nearest(x, centers)
		inertia += d
	}
	return labels, inertia
}

// initPlusPlus 按距离平方加权抽取初始中心
func initPlusPlus(data [][]float64, k int, rng *rand.Rand) [][]float64 {
	n := len(data)
	centers := make([][]float64, 0, k)
	centers = append(centers, clone(data[rng.IntN(n)]))

	dist := make([]float64, n)
	for i, x := range data {
		dist[i] = sqDist(x, centers[0])
	}

	for len(centers) < k {
		total := floats.Sum(dist)
		next := -1
		if total > 0 {
			r := rng.Float64() * total
			acc := 0.0
			for i, d := range dist {
				if d == 0 {
					continue
				}
				next = i
				acc += d
				if acc > r {
					break
				}
			}
		}
		// 所有样本都已与中心重合
		if next < 0 {
			next = rng.IntN(n)
		}
		center := clone(data[next])
		centers = append(centers, center)
		for i, x := range data {
			if d := sqDist(x, center); d < dist[i] {
				dist[i] = d
			}
		}
	}
	return centers
}

// nearest 返回最近中心编号与距离平方
func nearest(x []float64, centers [][]float64) (int, float64) {
	best, bestDist := 0, math.Inf(1)
	for c, center := range centers {
		if d := sqDist(x, center); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best, bestDist
}

func sqDist(a, b []float64) float64 {
	d := floats.Distance(a, b, 2)
	return d * d
}

// meanVariance 各维方差的均值，用于缩放收敛阈值
func meanVariance(data [][]float64) float64 {
	dim := len(data[0])
	n := float64(len(data))
	total := 0.0
	for j := 0; j < dim; j++ {
		mean := 0.0
		for _, x := range data {
			mean += x[j]
		}
		mean /= n
		for _, x := range data {
			total += (x[j] - mean) * (x[j] - mean)
		}
	}
	return total / n / float64(dim)
}

func clone(x []float64) []float64 {
	out := make([]float64, len(x))
	copy(out, x)
	return out
}

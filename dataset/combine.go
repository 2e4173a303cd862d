package dataset

import (
	"cmp"
	"slices"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/ssyssy/ottertune/pkg/errors"
)

// CombineDuplicateRows は X の行が完全に一致する観測値を一行にまとめる
//
// すべての行が異なる場合は入力をそのまま返す。重複がある場合、結果の行は
// X の一意な行を辞書順に並べたものになり、対応する y の行は各列の中央値
// （件数が偶数なら中央の二値の平均）、ラベルは元の出現順に連結される。
// 入力は変更しない。
func CombineDuplicateRows(X, y *mat.Dense, rowLabels [][]string) (*mat.Dense, *mat.Dense, [][]string, error) {
	rows, xCols := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != rows {
		return nil, nil, nil, errors.NewDimensionError("CombineDuplicateRows", rows, yRows, 0)
	}
	if len(rowLabels) != rows {
		return nil, nil, nil, errors.NewDimensionError("CombineDuplicateRows", rows, len(rowLabels), 0)
	}

	groups := groupRows(X, rows)
	if len(groups) == rows {
		return X, y, rowLabels, nil
	}

	slices.SortFunc(groups, func(a, b rowGroup) int {
		return compareRows(a.values, b.values)
	})

	outX := mat.NewDense(len(groups), xCols, nil)
	outY := mat.NewDense(len(groups), yCols, nil)
	outLabels := make([][]string, len(groups))
	column := make([]float64, 0, rows)
	for g, group := range groups {
		outX.SetRow(g, group.values)
		for j := 0; j < yCols; j++ {
			column = column[:0]
			for _, i := range group.members {
				column = append(column, y.At(i, j))
			}
			outY.Set(g, j, median(column))
		}
		var labels []string
		for _, i := range group.members {
			labels = append(labels, rowLabels[i]...)
		}
		outLabels[g] = labels
	}
	return outX, outY, outLabels, nil
}

type rowGroup struct {
	values  []float64
	members []int // 元の行番号、出現順
}

func groupRows(X *mat.Dense, rows int) []rowGroup {
	var groups []rowGroup
	for i := 0; i < rows; i++ {
		row := mat.Row(nil, i, X)
		idx := slices.IndexFunc(groups, func(g rowGroup) bool {
			return compareRows(g.values, row) == 0
		})
		if idx < 0 {
			groups = append(groups, rowGroup{values: row, members: []int{i}})
			continue
		}
		groups[idx].members = append(groups[idx].members, i)
	}
	return groups
}

// compareRows は要素ごとに比較する。NaN 同士は等しく、NaN は他のどの値より小さい
func compareRows(a, b []float64) int {
	for k := range a {
		if c := cmp.Compare(a[k], b[k]); c != 0 {
			return c
		}
	}
	return 0
}

// median は values を並べ替える
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return (values[n/2-1] + values[n/2]) / 2
}

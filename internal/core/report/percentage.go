package report

import (
	"math"
	"strconv"
)

// ComputePercentage は completed/total*100 を返します。total が 0 以下なら 0 です。
// 集計・サマリー・グラフのすべてがこの関数を通して率を求めます。
func ComputePercentage(completed, total int) float64 {
	if total <= 0 {
		return 0.0
	}
	return float64(completed) / float64(total) * 100.0
}

// Round2 は小数第 2 位に丸めます。
// float の厳密な二進値を基準に最近接へ丸め、ちょうど中間の場合は偶数側を選びます (3.125 -> 3.12)。
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	return rounded
}

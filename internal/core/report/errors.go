package report

import "errors"

var (
	// ErrRunNotFound は保存済みの集計結果が存在しない場合に返却されます。
	ErrRunNotFound = errors.New("report: run not found")
	// ErrInvalidRunID は集計結果の ID が不正な場合に返却されます。
	ErrInvalidRunID = errors.New("report: invalid run id")
)

package task

import "errors"

var (
	// ErrInvalidArgument は担当者など文字列引数が空または文字列でない場合に返却されます。
	ErrInvalidArgument = errors.New("task: invalid argument")
	// ErrTypeMismatch は完了状態が bool 以外で渡された場合に返却されます。
	ErrTypeMismatch = errors.New("task: type mismatch")
	// ErrIOFailure はタスクの読み込み元が利用できない場合に返却されます。
	ErrIOFailure = errors.New("task: io failure")
)

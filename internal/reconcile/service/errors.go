package service

import "errors"

var (
	ErrInvalidThreshold = errors.New("threshold must be within 0..100")
	ErrNilScorer        = errors.New("scorer is nil")
	ErrScorer           = errors.New("scorer failed")
	ErrScoreOutOfRange  = errors.New("score out of 0..100")
	ErrUnknownScorer    = errors.New("unknown scorer")
	ErrArityMismatch    = errors.New("column count differs between A and B")
	ErrNoColumns        = errors.New("no columns selected")
	ErrUnknownColumn    = errors.New("unknown column")
)
